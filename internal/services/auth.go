package services

import (
	"context"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/auth"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
)

const TokenTypeBearer = "bearer"

type LoginResult struct {
	AccessToken string
	TokenType   string
	User        models.User
}

type AuthService struct {
	store  store.Store
	tokens *auth.TokenManager
}

func NewAuthService(s store.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: s, tokens: tokens}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, normalizeEmail(email))
		return err
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("Incorrect email or password")
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer, User: *user}, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.VerifyJWT(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	var user *models.User
	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, claims.UserID)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, err
	}
	return user, nil
}
