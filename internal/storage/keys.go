package storage

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const uploadPrefix = "uploads/"

// NewUploadKey returns a fresh object key scoped to a workspace.
func NewUploadKey(workspaceID int64) string {
	return workspacePrefix(workspaceID) + uuid.NewString()
}

// KeyInWorkspace reports whether key was issued for workspaceID.
func KeyInWorkspace(key string, workspaceID int64) bool {
	rest, ok := strings.CutPrefix(key, workspacePrefix(workspaceID))
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

func workspacePrefix(workspaceID int64) string {
	return uploadPrefix + strconv.FormatInt(workspaceID, 10) + "/"
}
