package service

import (
	"context"

	"github.com/victorivanov/parley/internal/storage"
)

// FileStorage abstracts object storage operations for testability.
type FileStorage interface {
	GenerateUploadURL(ctx context.Context, key string) (string, error)
	GetURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// UploadTicket tells the client where to PUT a file and which key to attach
// to the message afterwards.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	StorageID string `json:"storage_id"`
}

type UploadService struct {
	guard   *MembershipGuard
	storage FileStorage
}

func NewUploadService(guard *MembershipGuard, storage FileStorage) *UploadService {
	return &UploadService{guard: guard, storage: storage}
}

// GenerateUploadURL issues a presigned upload for a member of the workspace.
func (s *UploadService) GenerateUploadURL(ctx context.Context, userID, workspaceID int64) (*UploadTicket, error) {
	if _, err := s.guard.RequireMember(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	key := storage.NewUploadKey(workspaceID)
	url, err := s.storage.GenerateUploadURL(ctx, key)
	if err != nil {
		return nil, internalError("presign upload", err)
	}
	return &UploadTicket{UploadURL: url, StorageID: key}, nil
}
