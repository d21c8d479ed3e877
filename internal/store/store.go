// Package store is the entity access layer. Every operation runs against a Tx obtained from
// Store.Transaction, which commits when the callback returns nil and rolls back otherwise.
//
// Point lookups return an apperr NotFound error on a miss. Inserts that hit a unique index
// return an apperr Conflict error.
package store

import (
	"context"

	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/types"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page is a skip/limit window over an ordered scan. All drops the limit.
type Page struct {
	Skip  int
	Limit int
	All   bool
}

// Unpaged returns every row of a scan.
var Unpaged = Page{All: true}

// Normalize clamps negative skips and out-of-range limits.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.All {
		p.Limit = 0
		return p
	}
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

type ProjectFilter struct {
	Status *types.ProjectStatus
	Page   Page
}

type MembershipFilter struct {
	ProjectID *uint
	UserID    *uint
	Page      Page
}

type TaskFilter struct {
	ProjectID  *uint
	AssignedTo *uint
	Status     *types.TaskStatus
}

// CommentFilter scans are always newest first.
type CommentFilter struct {
	ProjectID *uint
	UserID    *uint
	Page      Page
}

type Tx interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uint) error

	GetProject(ctx context.Context, id uint) (*models.Project, error)
	// LockProject loads the project and holds a row lock on it until the transaction ends.
	LockProject(ctx context.Context, id uint) (*models.Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	ListProjectsForMember(ctx context.Context, userID uint, status *types.ProjectStatus) ([]models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	SaveProject(ctx context.Context, project *models.Project) error
	// DeleteProject removes the project with its tasks, comments, files and memberships.
	DeleteProject(ctx context.Context, id uint) error

	GetMembership(ctx context.Context, id uint) (*models.Membership, error)
	// FindMembership returns nil, nil when the pair has no membership.
	FindMembership(ctx context.Context, userID, projectID uint) (*models.Membership, error)
	ListMemberships(ctx context.Context, filter MembershipFilter) ([]models.Membership, error)
	ListProjectMembers(ctx context.Context, projectID uint) ([]models.User, error)
	// CountOwners counts owner-role memberships of the project, active or not.
	CountOwners(ctx context.Context, projectID uint) (int64, error)
	CreateMembership(ctx context.Context, membership *models.Membership) error
	SaveMembership(ctx context.Context, membership *models.Membership) error
	DeleteMembership(ctx context.Context, id uint) error

	GetTask(ctx context.Context, id uint) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	SaveTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id uint) error

	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	SaveComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error

	GetFile(ctx context.Context, id uint) (*models.File, error)
	ListFiles(ctx context.Context, projectID uint) ([]models.File, error)
	CreateFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, id uint) error
}

type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
