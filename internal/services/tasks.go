package services

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

type NewTask struct {
	Title       string
	Description string
	Status      types.TaskStatus
	DueDate     time.Time
	ProjectID   uint
	AssignedTo  *uint
}

// TaskPatch overwrites present fields. Assignment can be changed but not cleared.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *types.TaskStatus
	DueDate     *time.Time
	AssignedTo  *uint
}

// TaskView is a task with its project's title and status copied in.
type TaskView struct {
	Task          models.Task
	ProjectTitle  string
	ProjectStatus types.ProjectStatus
}

type TaskService struct {
	store store.Store
}

func NewTaskService(s store.Store) *TaskService {
	return &TaskService{store: s}
}

func checkAssignee(ctx context.Context, tx store.Tx, userID *uint) error {
	if userID == nil {
		return nil
	}
	if _, err := tx.GetUser(ctx, *userID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.NotFound("assigned user not found")
		}
		return err
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, in NewTask) (*models.Task, error) {
	status := in.Status
	if status == "" {
		status = types.TaskStatusTodo
	}
	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
	}

	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, in.ProjectID); err != nil {
			return err
		}
		if err := checkAssignee(ctx, tx, in.AssignedTo); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*TaskView, error) {
	var view *TaskView
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		task, err := tx.GetTask(ctx, id)
		if err != nil {
			return err
		}
		project, err := tx.GetProject(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		view = &TaskView{Task: *task, ProjectTitle: project.Title, ProjectStatus: project.Status}
		return nil
	})
	return view, err
}

func (s *TaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*models.Task, error) {
	var task *models.Task
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, id)
		if err != nil {
			return err
		}

		if patch.AssignedTo != nil {
			if err := checkAssignee(ctx, tx, patch.AssignedTo); err != nil {
				return err
			}
			task.AssignedTo = patch.AssignedTo
		}
		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.DueDate != nil {
			task.DueDate = *patch.DueDate
		}

		return tx.SaveTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.DeleteTask(ctx, id)
	})
}

func (s *TaskService) ListForProject(ctx context.Context, projectID uint, status *types.TaskStatus) ([]TaskView, error) {
	var views []TaskView
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		tasks, err := tx.ListTasks(ctx, store.TaskFilter{ProjectID: &projectID, Status: status})
		if err != nil {
			return err
		}
		views = lo.Map(tasks, func(task models.Task, _ int) TaskView {
			return TaskView{Task: task, ProjectTitle: project.Title, ProjectStatus: project.Status}
		})
		return nil
	})
	return views, err
}

func (s *TaskService) ListForUser(ctx context.Context, userID uint) ([]TaskView, error) {
	var views []TaskView
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		tasks, err := tx.ListTasks(ctx, store.TaskFilter{AssignedTo: &userID})
		if err != nil {
			return err
		}

		projects := map[uint]*models.Project{}
		views = make([]TaskView, 0, len(tasks))
		for _, task := range tasks {
			project, ok := projects[task.ProjectID]
			if !ok {
				if project, err = tx.GetProject(ctx, task.ProjectID); err != nil {
					return err
				}
				projects[task.ProjectID] = project
			}
			views = append(views, TaskView{Task: task, ProjectTitle: project.Title, ProjectStatus: project.Status})
		}
		return nil
	})
	return views, err
}
