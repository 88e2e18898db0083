package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/victorivanov/parley/internal/models"
)

// A workspace with one admin, one plain member and one outsider.
const (
	wsID       int64 = 10
	adminUser  int64 = 1
	plainUser  int64 = 2
	outsider   int64 = 3
	adminMemID int64 = 101
	plainMemID int64 = 102
	generalID  int64 = 201
)

var (
	fixtureTime    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixtureWS      = models.Workspace{ID: wsID, Name: "Test", OwnerID: adminUser, JoinCode: "abc123", CreatedAt: fixtureTime}
	fixtureAdmin   = models.Member{ID: adminMemID, WorkspaceID: wsID, UserID: adminUser, Role: models.RoleAdmin, CreatedAt: fixtureTime}
	fixtureMem     = models.Member{ID: plainMemID, WorkspaceID: wsID, UserID: plainUser, Role: models.RoleMember, CreatedAt: fixtureTime}
	fixtureGeneral = models.Channel{ID: generalID, WorkspaceID: wsID, Name: "general", CreatedAt: fixtureTime}
)

func fixtureMembers() *mockMemberRepo {
	return &mockMemberRepo{
		GetByWorkspaceAndUserFn: memberLookup(fixtureAdmin, fixtureMem),
		GetByIDFn:               memberByID(fixtureAdmin, fixtureMem),
		GetByWorkspaceIDFn: func(_ context.Context, id int64) ([]models.Member, error) {
			if id == wsID {
				return []models.Member{fixtureAdmin, fixtureMem}, nil
			}
			return nil, nil
		},
	}
}

func fixtureUsers() *mockUserRepo {
	return &mockUserRepo{GetByIDFn: userByID(
		models.User{ID: adminUser, Name: "ada", Image: ptr("https://img.test/ada.png")},
		models.User{ID: plainUser, Name: "bob"},
	)}
}

func fixtureWorkspaces() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{
		GetByIDFn: func(_ context.Context, id int64) (*models.Workspace, error) {
			if id == wsID {
				ws := fixtureWS
				return &ws, nil
			}
			return nil, nil
		},
	}
}

func fixtureChannels() *mockChannelRepo {
	return &mockChannelRepo{
		GetByIDFn: func(_ context.Context, id int64) (*models.Channel, error) {
			if id == generalID {
				ch := fixtureGeneral
				return &ch, nil
			}
			return nil, nil
		},
		GetByWorkspaceIDFn: func(_ context.Context, id int64) ([]models.Channel, error) {
			if id == wsID {
				return []models.Channel{fixtureGeneral}, nil
			}
			return nil, nil
		},
	}
}

// decodeData unmarshals a {"data": ...} envelope.
func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// expectStatus fails the test unless rec has the given status.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

// expectError fails the test unless rec carries the given status and error code.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := decodeError(t, rec).Code; got != code {
		t.Errorf("expected error code %q, got %q", code, got)
	}
}
