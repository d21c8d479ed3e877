package services

import (
	"context"

	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
)

type NewFile struct {
	FileName  string
	FileURL   string
	ProjectID uint
	UserID    uint
}

// FileService records file metadata. Storing the bytes is left to whatever serves FileURL.
type FileService struct {
	store store.Store
}

func NewFileService(s store.Store) *FileService {
	return &FileService{store: s}
}

func (s *FileService) Create(ctx context.Context, in NewFile) (*models.File, error) {
	file := &models.File{FileName: in.FileName, FileURL: in.FileURL, ProjectID: in.ProjectID, UserID: in.UserID}
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, in.ProjectID); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return err
		}
		return tx.CreateFile(ctx, file)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *FileService) Get(ctx context.Context, id uint) (*models.File, error) {
	var file *models.File
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		file, err = tx.GetFile(ctx, id)
		return err
	})
	return file, err
}

func (s *FileService) ListForProject(ctx context.Context, projectID uint) ([]models.File, error) {
	var files []models.File
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		var err error
		files, err = tx.ListFiles(ctx, projectID)
		return err
	})
	return files, err
}

func (s *FileService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx store.Tx) error {
		return tx.DeleteFile(ctx, id)
	})
}
