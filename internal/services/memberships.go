package services

import (
	"context"

	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/store"
)

// MembershipService reads memberships directly; every write goes through the ownership engine.
type MembershipService struct {
	store  store.Store
	engine *ownership.Engine
}

func NewMembershipService(s store.Store, engine *ownership.Engine) *MembershipService {
	return &MembershipService{store: s, engine: engine}
}

func (s *MembershipService) Create(ctx context.Context, in ownership.NewMembership) (*models.Membership, error) {
	return s.engine.CreateMembership(ctx, in)
}

func (s *MembershipService) Update(ctx context.Context, id uint, patch ownership.MembershipPatch) (*models.Membership, error) {
	return s.engine.UpdateMembership(ctx, id, patch)
}

func (s *MembershipService) Delete(ctx context.Context, id uint) error {
	return s.engine.DeleteMembership(ctx, id)
}

func (s *MembershipService) Get(ctx context.Context, id uint) (*models.Membership, error) {
	var membership *models.Membership
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		membership, err = tx.GetMembership(ctx, id)
		return err
	})
	return membership, err
}

func (s *MembershipService) List(ctx context.Context, filter store.MembershipFilter) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		memberships, err = tx.ListMemberships(ctx, filter)
		return err
	})
	return memberships, err
}

func (s *MembershipService) ListForUser(ctx context.Context, userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		var err error
		memberships, err = tx.ListMemberships(ctx, store.MembershipFilter{UserID: &userID, Page: store.Unpaged})
		return err
	})
	return memberships, err
}

func (s *MembershipService) ListForProject(ctx context.Context, projectID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		memberships, err = tx.ListMemberships(ctx, store.MembershipFilter{ProjectID: &projectID, Page: store.Unpaged})
		return err
	})
	return memberships, err
}
