package services

import (
	"context"

	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

type ProjectPatch struct {
	Title       *string
	Description *string
	Status      *types.ProjectStatus
}

// ProjectDetails is a project with everything hanging off it.
type ProjectDetails struct {
	Project  models.Project
	Owner    models.User
	Members  []models.User
	Tasks    []models.Task
	Comments []models.Comment
	Files    []models.File
}

type ProjectService struct {
	store  store.Store
	engine *ownership.Engine
}

func NewProjectService(s store.Store, engine *ownership.Engine) *ProjectService {
	return &ProjectService{store: s, engine: engine}
}

func (s *ProjectService) Create(ctx context.Context, in ownership.NewProject) (*models.Project, error) {
	return s.engine.CreateProject(ctx, in)
}

func (s *ProjectService) List(ctx context.Context, filter store.ProjectFilter) ([]models.Project, error) {
	var projects []models.Project
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		projects, err = tx.ListProjects(ctx, filter)
		return err
	})
	return projects, err
}

func (s *ProjectService) Details(ctx context.Context, id uint) (*ProjectDetails, error) {
	details := &ProjectDetails{}
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		project, err := tx.GetProject(ctx, id)
		if err != nil {
			return err
		}
		details.Project = *project

		owner, err := tx.GetUser(ctx, project.OwnerID)
		if err != nil {
			return err
		}
		details.Owner = *owner

		if details.Members, err = tx.ListProjectMembers(ctx, id); err != nil {
			return err
		}
		if details.Tasks, err = tx.ListTasks(ctx, store.TaskFilter{ProjectID: &id}); err != nil {
			return err
		}
		if details.Comments, err = tx.ListComments(ctx, store.CommentFilter{ProjectID: &id, Page: store.Unpaged}); err != nil {
			return err
		}
		details.Files, err = tx.ListFiles(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *ProjectService) Update(ctx context.Context, id uint, patch ProjectPatch) (*models.Project, error) {
	var project *models.Project
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		project, err = tx.GetProject(ctx, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			project.Title = *patch.Title
		}
		if patch.Description != nil {
			project.Description = *patch.Description
		}
		if patch.Status != nil {
			project.Status = *patch.Status
		}

		return tx.SaveProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project together with its tasks, comments, files and memberships.
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.DeleteProject(ctx, id)
	})
}

func (s *ProjectService) ListForUser(ctx context.Context, userID uint, status *types.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		var err error
		projects, err = tx.ListProjectsForMember(ctx, userID, status)
		return err
	})
	return projects, err
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID uint, role types.MembershipRole) (*models.Membership, error) {
	return s.engine.AddProjectMember(ctx, projectID, userID, role)
}

func (s *ProjectService) Members(ctx context.Context, projectID uint) ([]models.User, error) {
	var users []models.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		users, err = tx.ListProjectMembers(ctx, projectID)
		return err
	})
	return users, err
}
