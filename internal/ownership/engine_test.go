package ownership

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/store/memstore"
	"github.com/monocle-dev/taskhub/internal/types"
)

func rolePtr(r types.MembershipRole) *types.MembershipRole { return &r }

func boolPtr(b bool) *bool { return &b }

func seedUser(t *testing.T, s store.Store, email string) models.User {
	t.Helper()
	user := models.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: types.UserRoleUser}
	require.NoError(t, s.Transaction(context.Background(), func(tx store.Tx) error {
		return tx.CreateUser(context.Background(), &user)
	}))
	return user
}

func projectMemberships(t *testing.T, s store.Store, projectID uint) []models.Membership {
	t.Helper()
	var out []models.Membership
	require.NoError(t, s.Transaction(context.Background(), func(tx store.Tx) error {
		var err error
		out, err = tx.ListMemberships(context.Background(), store.MembershipFilter{ProjectID: &projectID})
		return err
	}))
	return out
}

func newProject(t *testing.T, e *Engine, ownerID uint) *models.Project {
	t.Helper()
	p, err := e.CreateProject(context.Background(), NewProject{
		Title:       "Apollo",
		Description: "Moon landing programme",
		OwnerID:     ownerID,
	})
	require.NoError(t, err)
	return p
}

func TestCheckOwnerRemoval(t *testing.T) {
	owner := models.Membership{Role: types.MembershipRoleOwner}
	member := models.Membership{Role: types.MembershipRoleMember}

	tests := []struct {
		name    string
		current models.Membership
		newRole *types.MembershipRole
		count   int64
		wantErr bool
	}{
		{"delete sole owner", owner, nil, 1, true},
		{"demote sole owner", owner, rolePtr(types.MembershipRoleViewer), 1, true},
		{"zero owners counted", owner, nil, 0, true},
		{"keep owner role", owner, rolePtr(types.MembershipRoleOwner), 1, false},
		{"delete one of two owners", owner, nil, 2, false},
		{"demote one of two owners", owner, rolePtr(types.MembershipRoleMember), 2, false},
		{"delete member", member, nil, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnerRemoval(tt.current, tt.newRole, tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvariant)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckDuplicate(t *testing.T) {
	assert.NoError(t, CheckDuplicate(nil))
	assert.ErrorIs(t, CheckDuplicate(&models.Membership{}), apperr.ErrConflict)
}

func TestCreateProjectCreatesSingleOwnerMembership(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	alice := seedUser(t, s, "alice@example.com")

	project := newProject(t, e, alice.ID)

	assert.Equal(t, types.ProjectStatusActive, project.Status)
	memberships := projectMemberships(t, s, project.ID)
	require.Len(t, memberships, 1)
	assert.Equal(t, alice.ID, memberships[0].UserID)
	assert.Equal(t, types.MembershipRoleOwner, memberships[0].Role)
	assert.True(t, memberships[0].IsActive)
}

func TestCreateProjectUnknownOwner(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)

	_, err := e.CreateProject(context.Background(), NewProject{Title: "Ghost", Description: "No owner here", OwnerID: 42})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, listProjects(t, s))
}

// failingStore breaks membership inserts to exercise the rollback path.
type failingStore struct{ inner store.Store }

type failingTx struct{ store.Tx }

func (f failingStore) Transaction(ctx context.Context, fn func(store.Tx) error) error {
	return f.inner.Transaction(ctx, func(tx store.Tx) error { return fn(failingTx{tx}) })
}

func (failingTx) CreateMembership(context.Context, *models.Membership) error {
	return errors.New("connection reset by peer")
}

func TestCreateProjectRollsBackOnMembershipFailure(t *testing.T) {
	s := memstore.New()
	alice := seedUser(t, s, "alice@example.com")
	e := NewEngine(failingStore{inner: s})

	_, err := e.CreateProject(context.Background(), NewProject{Title: "Apollo", Description: "Moon landing programme", OwnerID: alice.ID})

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Empty(t, listProjects(t, s))
}

func listProjects(t *testing.T, s store.Store) []models.Project {
	t.Helper()
	var out []models.Project
	require.NoError(t, s.Transaction(context.Background(), func(tx store.Tx) error {
		var err error
		out, err = tx.ListProjects(context.Background(), store.ProjectFilter{})
		return err
	}))
	return out
}

func TestCreateMembership(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)

	t.Run("defaults to active member", func(t *testing.T) {
		m, err := e.CreateMembership(ctx, NewMembership{UserID: bob.ID, ProjectID: project.ID})
		require.NoError(t, err)
		assert.Equal(t, types.MembershipRoleMember, m.Role)
		assert.True(t, m.IsActive)
	})

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		_, err := e.CreateMembership(ctx, NewMembership{UserID: bob.ID, ProjectID: project.ID, Role: types.MembershipRoleViewer})
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Len(t, projectMemberships(t, s, project.ID), 2)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := e.CreateMembership(ctx, NewMembership{UserID: 999, ProjectID: project.ID})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Len(t, projectMemberships(t, s, project.ID), 2)
	})

	t.Run("unknown project", func(t *testing.T) {
		missing := uint(999)
		_, err := e.CreateMembership(ctx, NewMembership{UserID: bob.ID, ProjectID: missing})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Empty(t, projectMemberships(t, s, missing))
	})

	t.Run("inactive on request", func(t *testing.T) {
		carol := seedUser(t, s, "carol@example.com")
		m, err := e.CreateMembership(ctx, NewMembership{UserID: carol.ID, ProjectID: project.ID, IsActive: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, m.IsActive)
	})
}

func TestAddProjectMember(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)

	m, err := e.AddProjectMember(context.Background(), project.ID, bob.ID, types.MembershipRoleViewer)
	require.NoError(t, err)
	assert.Equal(t, project.ID, m.ProjectID)
	assert.Equal(t, types.MembershipRoleViewer, m.Role)

	_, err = e.AddProjectMember(context.Background(), project.ID, alice.ID, types.MembershipRoleMember)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSoleOwnerCannotBeRemoved(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	_, err := e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleMember)
	require.NoError(t, err)

	before := projectMemberships(t, s, project.ID)
	ownerID := before[0].ID

	err = e.DeleteMembership(ctx, ownerID)
	assert.ErrorIs(t, err, apperr.ErrInvariant)
	assert.EqualError(t, err, "cannot remove the last owner of the project")

	_, err = e.UpdateMembership(ctx, ownerID, MembershipPatch{Role: rolePtr(types.MembershipRoleMember)})
	assert.ErrorIs(t, err, apperr.ErrInvariant)

	assert.Equal(t, before, projectMemberships(t, s, project.ID))
}

func TestSecondOwnerAllowsRemovingOne(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	bobMembership, err := e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleOwner)
	require.NoError(t, err)

	aliceMembership := projectMemberships(t, s, project.ID)[0]
	require.NoError(t, e.DeleteMembership(ctx, aliceMembership.ID))

	remaining := projectMemberships(t, s, project.ID)
	require.Len(t, remaining, 1)
	assert.Equal(t, bob.ID, remaining[0].UserID)
	assert.Equal(t, types.MembershipRoleOwner, remaining[0].Role)

	err = e.DeleteMembership(ctx, bobMembership.ID)
	assert.ErrorIs(t, err, apperr.ErrInvariant)
}

func TestDemoteOneOfTwoOwners(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	_, err := e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleOwner)
	require.NoError(t, err)

	aliceMembership := projectMemberships(t, s, project.ID)[0]
	updated, err := e.UpdateMembership(ctx, aliceMembership.ID, MembershipPatch{Role: rolePtr(types.MembershipRoleViewer)})
	require.NoError(t, err)
	assert.Equal(t, types.MembershipRoleViewer, updated.Role)

	var owners int64
	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		owners, err = tx.CountOwners(ctx, project.ID)
		return err
	}))
	assert.Equal(t, int64(1), owners)
}

func TestInactiveOwnerCountsTowardQuorum(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	_, err := e.CreateMembership(ctx, NewMembership{
		UserID: bob.ID, ProjectID: project.ID, Role: types.MembershipRoleOwner, IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	aliceMembership := projectMemberships(t, s, project.ID)[0]
	assert.NoError(t, e.DeleteMembership(ctx, aliceMembership.ID))
}

func TestUpdateWithoutRoleGuardsSoleOwner(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	aliceMembership := projectMemberships(t, s, project.ID)[0]

	_, err := e.UpdateMembership(ctx, aliceMembership.ID, MembershipPatch{IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, apperr.ErrInvariant)
	assert.True(t, projectMemberships(t, s, project.ID)[0].IsActive)

	updated, err := e.UpdateMembership(ctx, aliceMembership.ID, MembershipPatch{Role: rolePtr(types.MembershipRoleOwner), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, types.MembershipRoleOwner, updated.Role)
	assert.False(t, updated.IsActive)

	_, err = e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleOwner)
	require.NoError(t, err)

	updated, err = e.UpdateMembership(ctx, aliceMembership.ID, MembershipPatch{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, types.MembershipRoleOwner, updated.Role)
}

// recordingTx logs the calls the guards make.
type recordingTx struct {
	store.Tx
	calls *[]string
}

func (r recordingTx) GetMembership(ctx context.Context, id uint) (*models.Membership, error) {
	*r.calls = append(*r.calls, "GetMembership")
	return r.Tx.GetMembership(ctx, id)
}

func (r recordingTx) LockProject(ctx context.Context, id uint) (*models.Project, error) {
	*r.calls = append(*r.calls, "LockProject")
	return r.Tx.LockProject(ctx, id)
}

func (r recordingTx) CountOwners(ctx context.Context, projectID uint) (int64, error) {
	*r.calls = append(*r.calls, "CountOwners")
	return r.Tx.CountOwners(ctx, projectID)
}

func TestGuardReadsMembershipUnderProjectLock(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	project := newProject(t, e, alice.ID)
	ownerMembership := projectMemberships(t, s, project.ID)[0]

	var calls []string
	err := s.Transaction(ctx, func(tx store.Tx) error {
		return DeleteMembership(ctx, recordingTx{Tx: tx, calls: &calls}, ownerMembership.ID)
	})
	assert.ErrorIs(t, err, apperr.ErrInvariant)
	assert.Equal(t, []string{"GetMembership", "LockProject", "GetMembership", "CountOwners"}, calls)
}

func TestGuardUserRemoval(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	carol := seedUser(t, s, "carol@example.com")
	project := newProject(t, e, alice.ID)
	_, err := e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleOwner)
	require.NoError(t, err)
	_, err = e.AddProjectMember(ctx, project.ID, carol.ID, types.MembershipRoleMember)
	require.NoError(t, err)

	guard := func(userID uint) error {
		return s.Transaction(ctx, func(tx store.Tx) error { return GuardUserRemoval(ctx, tx, userID) })
	}

	assert.NoError(t, guard(alice.ID))
	assert.NoError(t, guard(bob.ID))
	assert.NoError(t, guard(carol.ID))

	aliceMembership := projectMemberships(t, s, project.ID)[0]
	require.NoError(t, e.DeleteMembership(ctx, aliceMembership.ID))

	err = guard(bob.ID)
	assert.ErrorIs(t, err, apperr.ErrInvariant)
	assert.NoError(t, guard(alice.ID))
	assert.NoError(t, guard(carol.ID))
}

func TestMissingMembership(t *testing.T) {
	e := NewEngine(memstore.New())

	_, err := e.UpdateMembership(context.Background(), 7, MembershipPatch{IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, e.DeleteMembership(context.Background(), 7), apperr.ErrNotFound)
}

func TestConcurrentDemotionsKeepAnOwner(t *testing.T) {
	s := memstore.New()
	e := NewEngine(s)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	project := newProject(t, e, alice.ID)
	_, err := e.AddProjectMember(ctx, project.ID, bob.ID, types.MembershipRoleOwner)
	require.NoError(t, err)

	memberships := projectMemberships(t, s, project.ID)
	require.Len(t, memberships, 2)

	var wg sync.WaitGroup
	errs := make([]error, len(memberships))
	for i, m := range memberships {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = e.UpdateMembership(ctx, id, MembershipPatch{Role: rolePtr(types.MembershipRoleMember)})
		}(i, m.ID)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, apperr.ErrInvariant)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	var owners int64
	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		owners, err = tx.CountOwners(ctx, project.ID)
		return err
	}))
	assert.Equal(t, int64(1), owners)
}
