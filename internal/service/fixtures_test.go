package service

import (
	"context"
	"errors"
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
	fixtureTime  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixtureWS    = models.Workspace{ID: wsID, Name: "Test", OwnerID: adminUser, JoinCode: "abc123", CreatedAt: fixtureTime}
	fixtureAdmin = models.Member{ID: adminMemID, WorkspaceID: wsID, UserID: adminUser, Role: models.RoleAdmin, CreatedAt: fixtureTime}
	fixtureMem   = models.Member{ID: plainMemID, WorkspaceID: wsID, UserID: plainUser, Role: models.RoleMember, CreatedAt: fixtureTime}
)

func fixtureMembers() *mockMemberRepo {
	return &mockMemberRepo{
		GetByWorkspaceAndUserFn: memberLookup(fixtureAdmin, fixtureMem),
		GetByIDFn:               memberByID(fixtureAdmin, fixtureMem),
	}
}

func fixtureUsers() *mockUserRepo {
	return &mockUserRepo{GetByIDFn: userByID(
		models.User{ID: adminUser, Name: "ada", Image: ptr("https://img.test/ada.png")},
		models.User{ID: plainUser, Name: "bob"},
	)}
}

func conversationRepoWith(convs ...models.Conversation) *mockConversationRepo {
	return &mockConversationRepo{
		GetByIDFn: func(_ context.Context, id int64) (*models.Conversation, error) {
			for i := range convs {
				if convs[i].ID == id {
					c := convs[i]
					return &c, nil
				}
			}
			return nil, nil
		},
	}
}

// assertServiceError fails unless err is a *ServiceError wrapping sentinel
// with the given code.
func assertServiceError(t *testing.T, err, sentinel error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is(%v), got %v", sentinel, err)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T", err)
	}
	if svcErr.Code != code {
		t.Errorf("expected code %q, got %q", code, svcErr.Code)
	}
}
