package services

import (
	"context"
	"strings"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/auth"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/ownership"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     types.UserRole
}

type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *types.UserRole
}

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in NewUser) (*models.User, error) {
	if err := auth.CheckPasswordStrength(in.Password); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	role := in.Role
	if role == "" {
		role = types.UserRoleUser
	}

	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: passwordHash,
		Role:         role,
	}

	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		if err := ensureEmailFree(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ensureEmailFree fails with Conflict when another user already holds email.
func ensureEmailFree(ctx context.Context, tx store.Tx, email string, self uint) error {
	existing, err := tx.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return apperr.Conflict("Email already registered")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, page store.Page) ([]models.User, error) {
	var users []models.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		users, err = tx.ListUsers(ctx, page)
		return err
	})
	return users, err
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		return err
	})
	return user, err
}

func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	var passwordHash string
	if patch.Password != nil {
		if err := auth.CheckPasswordStrength(*patch.Password); err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		passwordHash = hash
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil {
			email := normalizeEmail(*patch.Email)
			if email != user.Email {
				if err := ensureEmailFree(ctx, tx, email, user.ID); err != nil {
					return err
				}
			}
			user.Email = email
		}
		if passwordHash != "" {
			user.PasswordHash = passwordHash
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}

		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
		if err := ownership.GuardUserRemoval(ctx, tx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
}
