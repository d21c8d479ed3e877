// Package memstore is an in-memory store.Store. Transactions run one at a time against a copy of
// the state that replaces the live state only on commit, so a failed callback leaves nothing behind.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

type state struct {
	users       map[uint]models.User
	projects    map[uint]models.Project
	memberships map[uint]models.Membership
	tasks       map[uint]models.Task
	comments    map[uint]models.Comment
	files       map[uint]models.File
	lastID      uint
}

func newState() *state {
	return &state{
		users:       map[uint]models.User{},
		projects:    map[uint]models.Project{},
		memberships: map[uint]models.Membership{},
		tasks:       map[uint]models.Task{},
		comments:    map[uint]models.Comment{},
		files:       map[uint]models.File{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[uint]models.User, len(s.users)),
		projects:    make(map[uint]models.Project, len(s.projects)),
		memberships: make(map[uint]models.Membership, len(s.memberships)),
		tasks:       make(map[uint]models.Task, len(s.tasks)),
		comments:    make(map[uint]models.Comment, len(s.comments)),
		files:       make(map[uint]models.File, len(s.files)),
		lastID:      s.lastID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.tasks {
		v.AssignedTo = cloneID(v.AssignedTo)
		c.tasks[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock replaces the timestamp source, for deterministic ordering in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{state: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	state *state
	now   func() time.Time
}

func (t *tx) nextID() uint {
	t.state.lastID++
	return t.state.lastID
}

func (t *tx) stamp(base *models.BaseModel, create bool) {
	now := t.now()
	if create {
		base.ID = t.nextID()
		if base.CreatedAt.IsZero() {
			base.CreatedAt = now
		}
	}
	base.UpdatedAt = now
}

func cloneID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func window[T any](items []T, p store.Page) []T {
	p = p.Normalize()
	if p.Skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if !p.All {
		end = min(p.Skip+p.Limit, end)
	}
	return items[p.Skip:end]
}

func sortedByID[T any](m map[uint]T) []T {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return lo.Map(keys, func(k uint, _ int) T { return m[k] })
}

// Users

func (t *tx) GetUser(_ context.Context, id uint) (*models.User, error) {
	user, ok := t.state.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &user, nil
}

func (t *tx) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := lo.Find(lo.Values(t.state.users), func(u models.User) bool { return u.Email == email })
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &user, nil
}

func (t *tx) ListUsers(_ context.Context, page store.Page) ([]models.User, error) {
	return window(sortedByID(t.state.users), page), nil
}

func (t *tx) emailTaken(email string, except uint) bool {
	return lo.SomeBy(lo.Values(t.state.users), func(u models.User) bool {
		return u.Email == email && u.ID != except
	})
}

func (t *tx) CreateUser(_ context.Context, user *models.User) error {
	if t.emailTaken(user.Email, 0) {
		return apperr.Conflict("user already exists")
	}
	t.stamp(&user.BaseModel, true)
	t.state.users[user.ID] = *user
	return nil
}

func (t *tx) SaveUser(_ context.Context, user *models.User) error {
	if _, ok := t.state.users[user.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	if t.emailTaken(user.Email, user.ID) {
		return apperr.Conflict("user already exists")
	}
	t.stamp(&user.BaseModel, false)
	t.state.users[user.ID] = *user
	return nil
}

// DeleteUser follows the foreign keys: owned projects and memberships cascade, assignments are cleared.
func (t *tx) DeleteUser(ctx context.Context, id uint) error {
	if _, ok := t.state.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	for pid, p := range t.state.projects {
		if p.OwnerID == id {
			if err := t.DeleteProject(ctx, pid); err != nil {
				return err
			}
		}
	}
	for mid, m := range t.state.memberships {
		if m.UserID == id {
			delete(t.state.memberships, mid)
		}
	}
	for cid, c := range t.state.comments {
		if c.UserID == id {
			delete(t.state.comments, cid)
		}
	}
	for fid, f := range t.state.files {
		if f.UserID == id {
			delete(t.state.files, fid)
		}
	}
	for tid, task := range t.state.tasks {
		if task.AssignedTo != nil && *task.AssignedTo == id {
			task.AssignedTo = nil
			t.state.tasks[tid] = task
		}
	}
	delete(t.state.users, id)
	return nil
}

// Projects

func (t *tx) GetProject(_ context.Context, id uint) (*models.Project, error) {
	project, ok := t.state.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return &project, nil
}

// LockProject is a plain lookup: transactions are already serialised.
func (t *tx) LockProject(ctx context.Context, id uint) (*models.Project, error) {
	return t.GetProject(ctx, id)
}

func (t *tx) ListProjects(_ context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	projects := lo.Filter(sortedByID(t.state.projects), func(p models.Project, _ int) bool {
		return filter.Status == nil || p.Status == *filter.Status
	})
	return window(projects, filter.Page), nil
}

func (t *tx) ListProjectsForMember(_ context.Context, userID uint, status *types.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project
	for _, m := range sortedByID(t.state.memberships) {
		if m.UserID != userID {
			continue
		}
		p, ok := t.state.projects[m.ProjectID]
		if !ok || (status != nil && p.Status != *status) {
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (t *tx) CreateProject(_ context.Context, project *models.Project) error {
	if _, ok := t.state.users[project.OwnerID]; !ok {
		return fmt.Errorf("project: foreign key violation on owner_id %d", project.OwnerID)
	}
	t.stamp(&project.BaseModel, true)
	t.state.projects[project.ID] = *project
	return nil
}

func (t *tx) SaveProject(_ context.Context, project *models.Project) error {
	if _, ok := t.state.projects[project.ID]; !ok {
		return apperr.NotFound("project not found")
	}
	t.stamp(&project.BaseModel, false)
	t.state.projects[project.ID] = *project
	return nil
}

func (t *tx) DeleteProject(_ context.Context, id uint) error {
	if _, ok := t.state.projects[id]; !ok {
		return apperr.NotFound("project not found")
	}
	for k, v := range t.state.tasks {
		if v.ProjectID == id {
			delete(t.state.tasks, k)
		}
	}
	for k, v := range t.state.comments {
		if v.ProjectID == id {
			delete(t.state.comments, k)
		}
	}
	for k, v := range t.state.files {
		if v.ProjectID == id {
			delete(t.state.files, k)
		}
	}
	for k, v := range t.state.memberships {
		if v.ProjectID == id {
			delete(t.state.memberships, k)
		}
	}
	delete(t.state.projects, id)
	return nil
}

// Memberships

func (t *tx) GetMembership(_ context.Context, id uint) (*models.Membership, error) {
	membership, ok := t.state.memberships[id]
	if !ok {
		return nil, apperr.NotFound("membership not found")
	}
	return &membership, nil
}

func (t *tx) FindMembership(_ context.Context, userID, projectID uint) (*models.Membership, error) {
	membership, ok := lo.Find(sortedByID(t.state.memberships), func(m models.Membership) bool {
		return m.UserID == userID && m.ProjectID == projectID
	})
	if !ok {
		return nil, nil
	}
	return &membership, nil
}

func (t *tx) ListMemberships(_ context.Context, filter store.MembershipFilter) ([]models.Membership, error) {
	memberships := lo.Filter(sortedByID(t.state.memberships), func(m models.Membership, _ int) bool {
		return (filter.ProjectID == nil || m.ProjectID == *filter.ProjectID) &&
			(filter.UserID == nil || m.UserID == *filter.UserID)
	})
	return window(memberships, filter.Page), nil
}

func (t *tx) ListProjectMembers(_ context.Context, projectID uint) ([]models.User, error) {
	users := []models.User{}
	for _, m := range sortedByID(t.state.memberships) {
		if m.ProjectID != projectID {
			continue
		}
		if u, ok := t.state.users[m.UserID]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (t *tx) CountOwners(_ context.Context, projectID uint) (int64, error) {
	count := lo.CountBy(lo.Values(t.state.memberships), func(m models.Membership) bool {
		return m.ProjectID == projectID && m.IsOwner()
	})
	return int64(count), nil
}

func (t *tx) CreateMembership(ctx context.Context, membership *models.Membership) error {
	if _, ok := t.state.users[membership.UserID]; !ok {
		return fmt.Errorf("membership: foreign key violation on user_id %d", membership.UserID)
	}
	if _, ok := t.state.projects[membership.ProjectID]; !ok {
		return fmt.Errorf("membership: foreign key violation on project_id %d", membership.ProjectID)
	}
	if existing, _ := t.FindMembership(ctx, membership.UserID, membership.ProjectID); existing != nil {
		return apperr.Conflict("membership already exists")
	}
	t.stamp(&membership.BaseModel, true)
	t.state.memberships[membership.ID] = *membership
	return nil
}

func (t *tx) SaveMembership(_ context.Context, membership *models.Membership) error {
	if _, ok := t.state.memberships[membership.ID]; !ok {
		return apperr.NotFound("membership not found")
	}
	t.stamp(&membership.BaseModel, false)
	t.state.memberships[membership.ID] = *membership
	return nil
}

func (t *tx) DeleteMembership(_ context.Context, id uint) error {
	if _, ok := t.state.memberships[id]; !ok {
		return apperr.NotFound("membership not found")
	}
	delete(t.state.memberships, id)
	return nil
}

// Tasks

func (t *tx) GetTask(_ context.Context, id uint) (*models.Task, error) {
	task, ok := t.state.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	task.AssignedTo = cloneID(task.AssignedTo)
	return &task, nil
}

func (t *tx) ListTasks(_ context.Context, filter store.TaskFilter) ([]models.Task, error) {
	tasks := lo.Filter(sortedByID(t.state.tasks), func(task models.Task, _ int) bool {
		if filter.ProjectID != nil && task.ProjectID != *filter.ProjectID {
			return false
		}
		if filter.AssignedTo != nil && (task.AssignedTo == nil || *task.AssignedTo != *filter.AssignedTo) {
			return false
		}
		return filter.Status == nil || task.Status == *filter.Status
	})
	return lo.Map(tasks, func(task models.Task, _ int) models.Task {
		task.AssignedTo = cloneID(task.AssignedTo)
		return task
	}), nil
}

func (t *tx) checkTaskRefs(task *models.Task) error {
	if _, ok := t.state.projects[task.ProjectID]; !ok {
		return fmt.Errorf("task: foreign key violation on project_id %d", task.ProjectID)
	}
	if task.AssignedTo != nil {
		if _, ok := t.state.users[*task.AssignedTo]; !ok {
			return fmt.Errorf("task: foreign key violation on assigned_to %d", *task.AssignedTo)
		}
	}
	return nil
}

func (t *tx) CreateTask(_ context.Context, task *models.Task) error {
	if err := t.checkTaskRefs(task); err != nil {
		return err
	}
	t.stamp(&task.BaseModel, true)
	stored := *task
	stored.AssignedTo = cloneID(task.AssignedTo)
	t.state.tasks[task.ID] = stored
	return nil
}

func (t *tx) SaveTask(_ context.Context, task *models.Task) error {
	if _, ok := t.state.tasks[task.ID]; !ok {
		return apperr.NotFound("task not found")
	}
	if err := t.checkTaskRefs(task); err != nil {
		return err
	}
	t.stamp(&task.BaseModel, false)
	stored := *task
	stored.AssignedTo = cloneID(task.AssignedTo)
	t.state.tasks[task.ID] = stored
	return nil
}

func (t *tx) DeleteTask(_ context.Context, id uint) error {
	if _, ok := t.state.tasks[id]; !ok {
		return apperr.NotFound("task not found")
	}
	delete(t.state.tasks, id)
	return nil
}

// Comments

func (t *tx) GetComment(_ context.Context, id uint) (*models.Comment, error) {
	comment, ok := t.state.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment not found")
	}
	return &comment, nil
}

func (t *tx) ListComments(_ context.Context, filter store.CommentFilter) ([]models.Comment, error) {
	comments := lo.Filter(lo.Values(t.state.comments), func(c models.Comment, _ int) bool {
		return (filter.ProjectID == nil || c.ProjectID == *filter.ProjectID) &&
			(filter.UserID == nil || c.UserID == *filter.UserID)
	})
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return window(comments, filter.Page), nil
}

func (t *tx) CreateComment(_ context.Context, comment *models.Comment) error {
	if _, ok := t.state.projects[comment.ProjectID]; !ok {
		return fmt.Errorf("comment: foreign key violation on project_id %d", comment.ProjectID)
	}
	if _, ok := t.state.users[comment.UserID]; !ok {
		return fmt.Errorf("comment: foreign key violation on user_id %d", comment.UserID)
	}
	t.stamp(&comment.BaseModel, true)
	t.state.comments[comment.ID] = *comment
	return nil
}

func (t *tx) SaveComment(_ context.Context, comment *models.Comment) error {
	if _, ok := t.state.comments[comment.ID]; !ok {
		return apperr.NotFound("comment not found")
	}
	t.stamp(&comment.BaseModel, false)
	t.state.comments[comment.ID] = *comment
	return nil
}

func (t *tx) DeleteComment(_ context.Context, id uint) error {
	if _, ok := t.state.comments[id]; !ok {
		return apperr.NotFound("comment not found")
	}
	delete(t.state.comments, id)
	return nil
}

// Files

func (t *tx) GetFile(_ context.Context, id uint) (*models.File, error) {
	file, ok := t.state.files[id]
	if !ok {
		return nil, apperr.NotFound("file not found")
	}
	return &file, nil
}

func (t *tx) ListFiles(_ context.Context, projectID uint) ([]models.File, error) {
	return lo.Filter(sortedByID(t.state.files), func(f models.File, _ int) bool {
		return f.ProjectID == projectID
	}), nil
}

func (t *tx) CreateFile(_ context.Context, file *models.File) error {
	if _, ok := t.state.projects[file.ProjectID]; !ok {
		return fmt.Errorf("file: foreign key violation on project_id %d", file.ProjectID)
	}
	if _, ok := t.state.users[file.UserID]; !ok {
		return fmt.Errorf("file: foreign key violation on user_id %d", file.UserID)
	}
	t.stamp(&file.BaseModel, true)
	t.state.files[file.ID] = *file
	return nil
}

func (t *tx) DeleteFile(_ context.Context, id uint) error {
	if _, ok := t.state.files[id]; !ok {
		return apperr.NotFound("file not found")
	}
	delete(t.state.files, id)
	return nil
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*tx)(nil)
)
