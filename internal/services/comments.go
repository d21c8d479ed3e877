package services

import (
	"context"
	"strings"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
)

type NewComment struct {
	Content   string
	ProjectID uint
	UserID    uint
}

type CommentService struct {
	store store.Store
}

func NewCommentService(s store.Store) *CommentService {
	return &CommentService{store: s}
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Invariant("comment content cannot be empty")
	}
	return content, nil
}

// Create only accepts comments from members of the project.
func (s *CommentService) Create(ctx context.Context, in NewComment) (*models.Comment, error) {
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, ProjectID: in.ProjectID, UserID: in.UserID}
	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, in.ProjectID); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return err
		}
		membership, err := tx.FindMembership(ctx, in.UserID, in.ProjectID)
		if err != nil {
			return err
		}
		if membership == nil {
			return apperr.Forbidden("user is not a member of this project")
		}
		return tx.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		comment, err = tx.GetComment(ctx, id)
		return err
	})
	return comment, err
}

func (s *CommentService) List(ctx context.Context, filter store.CommentFilter) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		comments, err = tx.ListComments(ctx, filter)
		return err
	})
	return comments, err
}

func (s *CommentService) ListForProject(ctx context.Context, projectID uint, page store.Page) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		comments, err = tx.ListComments(ctx, store.CommentFilter{ProjectID: &projectID, Page: page})
		return err
	})
	return comments, err
}

func (s *CommentService) ListForUser(ctx context.Context, userID uint, page store.Page) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		var err error
		comments, err = tx.ListComments(ctx, store.CommentFilter{UserID: &userID, Page: page})
		return err
	})
	return comments, err
}

// Update leaves the comment untouched when content is nil.
func (s *CommentService) Update(ctx context.Context, id uint, content *string) (*models.Comment, error) {
	var cleaned string
	if content != nil {
		var err error
		if cleaned, err = cleanContent(*content); err != nil {
			return nil, err
		}
	}

	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		comment, err = tx.GetComment(ctx, id)
		if err != nil {
			return err
		}
		if content == nil {
			return nil
		}
		comment.Content = cleaned
		return tx.SaveComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.DeleteComment(ctx, id)
	})
}
