// Package ownership keeps project ownership well formed: every project has at least one owner
// membership and a user holds at most one membership per project.
//
// The package-level functions run against a caller-supplied store.Tx; Engine wraps each of them
// in its own transaction.
package ownership

import (
	"context"
	"errors"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/logutils"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

type NewProject struct {
	Title       string
	Description string
	Status      types.ProjectStatus
	OwnerID     uint
}

type NewMembership struct {
	UserID    uint
	ProjectID uint
	Role      types.MembershipRole
	// IsActive defaults to true when nil.
	IsActive *bool
}

// MembershipPatch holds the fields to overwrite; nil fields are left alone.
type MembershipPatch struct {
	Role     *types.MembershipRole
	IsActive *bool
}

type Engine struct {
	store store.Store
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

func (e *Engine) CreateProject(ctx context.Context, in NewProject) (*models.Project, error) {
	var project *models.Project
	err := e.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		project, err = CreateProject(ctx, tx, in)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			logutils.Log.WithError(err).WithField("owner_id", in.OwnerID).Error("project creation rolled back")
		}
		return nil, err
	}
	return project, nil
}

func (e *Engine) CreateMembership(ctx context.Context, in NewMembership) (*models.Membership, error) {
	var membership *models.Membership
	err := e.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		membership, err = CreateMembership(ctx, tx, in)
		return err
	})
	return membership, err
}

func (e *Engine) AddProjectMember(ctx context.Context, projectID, userID uint, role types.MembershipRole) (*models.Membership, error) {
	return e.CreateMembership(ctx, NewMembership{UserID: userID, ProjectID: projectID, Role: role})
}

func (e *Engine) UpdateMembership(ctx context.Context, id uint, patch MembershipPatch) (*models.Membership, error) {
	var membership *models.Membership
	err := e.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		membership, err = UpdateMembership(ctx, tx, id, patch)
		return err
	})
	return membership, err
}

func (e *Engine) DeleteMembership(ctx context.Context, id uint) error {
	return e.store.Transaction(ctx, func(tx store.Tx) error {
		return DeleteMembership(ctx, tx, id)
	})
}

// CreateProject inserts the project and its owner membership. Any failure after the owner check is
// reported as internal; the caller's transaction must roll back both rows.
func CreateProject(ctx context.Context, tx store.Tx, in NewProject) (*models.Project, error) {
	if _, err := tx.GetUser(ctx, in.OwnerID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("owner not found")
		}
		return nil, apperr.Internal(err)
	}

	status := in.Status
	if status == "" {
		status = types.ProjectStatusActive
	}

	project := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		OwnerID:     in.OwnerID,
	}
	if err := tx.CreateProject(ctx, project); err != nil {
		return nil, internal(err)
	}

	owner := &models.Membership{
		UserID:    in.OwnerID,
		ProjectID: project.ID,
		Role:      types.MembershipRoleOwner,
		IsActive:  true,
	}
	if err := tx.CreateMembership(ctx, owner); err != nil {
		return nil, internal(err)
	}

	return project, nil
}

// CreateMembership checks that both ends exist and that the pair is not already linked.
func CreateMembership(ctx context.Context, tx store.Tx, in NewMembership) (*models.Membership, error) {
	if _, err := tx.GetUser(ctx, in.UserID); err != nil {
		return nil, err
	}
	if _, err := tx.LockProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	existing, err := tx.FindMembership(ctx, in.UserID, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := CheckDuplicate(existing); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = types.MembershipRoleMember
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	membership := &models.Membership{
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Role:      role,
		IsActive:  active,
	}
	if err := tx.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdateMembership applies the patch. An owner membership is guarded unless the patch keeps the
// owner role explicitly, so a patch without a role on the sole owner is rejected.
func UpdateMembership(ctx context.Context, tx store.Tx, id uint, patch MembershipPatch) (*models.Membership, error) {
	membership, err := lockedMembership(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := guardLastOwner(ctx, tx, *membership, patch.Role); err != nil {
		return nil, err
	}

	if patch.Role != nil {
		membership.Role = *patch.Role
	}
	if patch.IsActive != nil {
		membership.IsActive = *patch.IsActive
	}

	if err := tx.SaveMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func DeleteMembership(ctx context.Context, tx store.Tx, id uint) error {
	membership, err := lockedMembership(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := guardLastOwner(ctx, tx, *membership, nil); err != nil {
		return err
	}

	return tx.DeleteMembership(ctx, id)
}

// GuardUserRemoval rejects deleting a user who is the last owner of a project they do not own by
// owner_id. Projects they own by owner_id are deleted along with the user.
func GuardUserRemoval(ctx context.Context, tx store.Tx, userID uint) error {
	memberships, err := tx.ListMemberships(ctx, store.MembershipFilter{UserID: &userID, Page: store.Unpaged})
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if !m.IsOwner() {
			continue
		}
		project, err := tx.LockProject(ctx, m.ProjectID)
		if err != nil {
			return err
		}
		if project.OwnerID == userID {
			continue
		}
		if err := guardLastOwner(ctx, tx, m, nil); err != nil {
			return err
		}
	}
	return nil
}

// lockedMembership locks the parent project, then re-reads the membership under that lock.
func lockedMembership(ctx context.Context, tx store.Tx, id uint) (*models.Membership, error) {
	membership, err := tx.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.LockProject(ctx, membership.ProjectID); err != nil {
		return nil, err
	}
	return tx.GetMembership(ctx, id)
}

// guardLastOwner expects the project row to be locked already.
func guardLastOwner(ctx context.Context, tx store.Tx, membership models.Membership, newRole *types.MembershipRole) error {
	if !membership.IsOwner() {
		return nil
	}
	if newRole != nil && *newRole == types.MembershipRoleOwner {
		return nil
	}
	count, err := tx.CountOwners(ctx, membership.ProjectID)
	if err != nil {
		return err
	}
	return CheckOwnerRemoval(membership, newRole, count)
}

func internal(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindInternal {
		return err
	}
	return &apperr.Error{Kind: apperr.KindInternal, Err: err}
}
