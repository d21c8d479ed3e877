package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/types"
)

const pgUniqueViolation = "23505"

// GormStore implements Store and Tx on top of gorm.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps driver errors onto apperr kinds. entity names the record in messages.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", entity)
	}
	var pgErr *pgconn.PgError
	if errors.Is(err, gorm.ErrDuplicatedKey) || (errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation) {
		return apperr.Conflict("%s already exists", entity)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func paged(db *gorm.DB, p Page) *gorm.DB {
	p = p.Normalize()
	if p.All {
		return db.Offset(p.Skip)
	}
	return db.Offset(p.Skip).Limit(p.Limit)
}

// deleteByID returns NotFound when nothing was removed.
func deleteByID(db *gorm.DB, model any, id uint, entity string) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return translate(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s not found", entity)
	}
	return nil
}

// Users

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context, page Page) ([]models.User, error) {
	var users []models.User
	if err := paged(s.conn(ctx), page).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(user).Error, "user")
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(user).Error, "user")
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return deleteByID(s.conn(ctx), &models.User{}, id, "user")
}

// Projects

func (s *GormStore) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.conn(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err, "project")
	}
	return &project, nil
}

func (s *GormStore) LockProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, id).Error
	if err != nil {
		return nil, translate(err, "project")
	}
	return &project, nil
}

func (s *GormStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	q := s.conn(ctx).Model(&models.Project{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var projects []models.Project
	if err := paged(q, filter.Page).Order("id").Find(&projects).Error; err != nil {
		return nil, translate(err, "projects")
	}
	return projects, nil
}

func (s *GormStore) ListProjectsForMember(ctx context.Context, userID uint, status *types.ProjectStatus) ([]models.Project, error) {
	q := s.conn(ctx).Model(&models.Project{}).
		Joins("JOIN memberships ON memberships.project_id = projects.id").
		Where("memberships.user_id = ?", userID)
	if status != nil {
		q = q.Where("projects.status = ?", *status)
	}

	var projects []models.Project
	if err := q.Order("projects.id").Find(&projects).Error; err != nil {
		return nil, translate(err, "projects")
	}
	return projects, nil
}

func (s *GormStore) CreateProject(ctx context.Context, project *models.Project) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(project).Error, "project")
}

func (s *GormStore) SaveProject(ctx context.Context, project *models.Project) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(project).Error, "project")
}

func (s *GormStore) DeleteProject(ctx context.Context, id uint) error {
	if !s.inTx {
		return s.Transaction(ctx, func(tx Tx) error { return tx.DeleteProject(ctx, id) })
	}

	db := s.conn(ctx)
	children := []struct {
		model  any
		entity string
	}{
		{&models.Task{}, "tasks"},
		{&models.Comment{}, "comments"},
		{&models.File{}, "files"},
		{&models.Membership{}, "memberships"},
	}
	for _, child := range children {
		if err := db.Where("project_id = ?", id).Delete(child.model).Error; err != nil {
			return translate(err, child.entity)
		}
	}

	return deleteByID(db, &models.Project{}, id, "project")
}

// Memberships

func (s *GormStore) GetMembership(ctx context.Context, id uint) (*models.Membership, error) {
	var membership models.Membership
	if err := s.conn(ctx).First(&membership, id).Error; err != nil {
		return nil, translate(err, "membership")
	}
	return &membership, nil
}

func (s *GormStore) FindMembership(ctx context.Context, userID, projectID uint) (*models.Membership, error) {
	var memberships []models.Membership
	err := s.conn(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Limit(1).
		Find(&memberships).Error
	if err != nil {
		return nil, translate(err, "membership")
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return &memberships[0], nil
}

func (s *GormStore) ListMemberships(ctx context.Context, filter MembershipFilter) ([]models.Membership, error) {
	q := s.conn(ctx).Model(&models.Membership{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	var memberships []models.Membership
	if err := paged(q, filter.Page).Order("id").Find(&memberships).Error; err != nil {
		return nil, translate(err, "memberships")
	}
	return memberships, nil
}

func (s *GormStore) ListProjectMembers(ctx context.Context, projectID uint) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Model(&models.User{}).
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.project_id = ?", projectID).
		Order("memberships.id").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "members")
	}
	return users, nil
}

func (s *GormStore) CountOwners(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Membership{}).
		Where("project_id = ? AND role = ?", projectID, types.MembershipRoleOwner).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "memberships")
	}
	return count, nil
}

func (s *GormStore) CreateMembership(ctx context.Context, membership *models.Membership) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(membership).Error, "membership")
}

func (s *GormStore) SaveMembership(ctx context.Context, membership *models.Membership) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(membership).Error, "membership")
}

func (s *GormStore) DeleteMembership(ctx context.Context, id uint) error {
	return deleteByID(s.conn(ctx), &models.Membership{}, id, "membership")
}

// Tasks

func (s *GormStore) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.conn(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err, "task")
	}
	return &task, nil
}

func (s *GormStore) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	q := s.conn(ctx).Model(&models.Task{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var tasks []models.Task
	if err := q.Order("id").Find(&tasks).Error; err != nil {
		return nil, translate(err, "tasks")
	}
	return tasks, nil
}

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(task).Error, "task")
}

func (s *GormStore) SaveTask(ctx context.Context, task *models.Task) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(task).Error, "task")
}

func (s *GormStore) DeleteTask(ctx context.Context, id uint) error {
	return deleteByID(s.conn(ctx), &models.Task{}, id, "task")
}

// Comments

func (s *GormStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.conn(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &comment, nil
}

func (s *GormStore) ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	q := s.conn(ctx).Model(&models.Comment{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	var comments []models.Comment
	if err := paged(q, filter.Page).Order("created_at DESC, id DESC").Find(&comments).Error; err != nil {
		return nil, translate(err, "comments")
	}
	return comments, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(comment).Error, "comment")
}

func (s *GormStore) SaveComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(comment).Error, "comment")
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) error {
	return deleteByID(s.conn(ctx), &models.Comment{}, id, "comment")
}

// Files

func (s *GormStore) GetFile(ctx context.Context, id uint) (*models.File, error) {
	var file models.File
	if err := s.conn(ctx).First(&file, id).Error; err != nil {
		return nil, translate(err, "file")
	}
	return &file, nil
}

func (s *GormStore) ListFiles(ctx context.Context, projectID uint) ([]models.File, error) {
	var files []models.File
	if err := s.conn(ctx).Where("project_id = ?", projectID).Order("id").Find(&files).Error; err != nil {
		return nil, translate(err, "files")
	}
	return files, nil
}

func (s *GormStore) CreateFile(ctx context.Context, file *models.File) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(file).Error, "file")
}

func (s *GormStore) DeleteFile(ctx context.Context, id uint) error {
	return deleteByID(s.conn(ctx), &models.File{}, id, "file")
}

var (
	_ Store = (*GormStore)(nil)
	_ Tx    = (*GormStore)(nil)
)
