package api

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/database"
	"github.com/victorivanov/parley/internal/models"
	redisclient "github.com/victorivanov/parley/internal/redis"
	"github.com/victorivanov/parley/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64) {
	c.Set("user_id", userID)
}

func setParams(c echo.Context, kv ...string) {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

func newTestRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redisclient.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("creating test redis client: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

func ptr[T any](v T) *T { return &v }

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	WorkspaceID int64
	UserID      int64
	Event       string
	Data        any
}

type mockGateway struct {
	mu         sync.Mutex
	events     []dispatchedEvent
	subscribed map[int64][]int64
	dropped    []int64
}

func (m *mockGateway) DispatchToWorkspace(workspaceID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{WorkspaceID: workspaceID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToUser(userID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockGateway) SubscribeToWorkspace(userID, workspaceID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribed == nil {
		m.subscribed = make(map[int64][]int64)
	}
	m.subscribed[workspaceID] = append(m.subscribed[workspaceID], userID)
}

func (m *mockGateway) UnsubscribeFromWorkspace(userID, workspaceID int64) {}

func (m *mockGateway) DropWorkspace(workspaceID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = append(m.dropped, workspaceID)
}

func (m *mockGateway) eventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.events))
	for i, e := range m.events {
		names[i] = e.Event
	}
	return names
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockUserRepo implements database.UserRepository.
type mockUserRepo struct {
	CreateFn             func(ctx context.Context, user *models.User) error
	CreateWithAccountFn  func(ctx context.Context, user *models.User, account *models.AuthAccount) error
	GetByIDFn            func(ctx context.Context, id int64) (*models.User, error)
	GetByEmailFn         func(ctx context.Context, email string) (*models.User, error)
	UpdateFn             func(ctx context.Context, user *models.User) error
	UpdatePasswordHashFn func(ctx context.Context, userID int64, hash string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) CreateWithAccount(ctx context.Context, user *models.User, account *models.AuthAccount) error {
	if m.CreateWithAccountFn != nil {
		return m.CreateWithAccountFn(ctx, user, account)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	if m.UpdatePasswordHashFn != nil {
		return m.UpdatePasswordHashFn(ctx, userID, hash)
	}
	return nil
}

// mockAccountRepo implements database.AccountRepository.
type mockAccountRepo struct {
	CreateFn func(ctx context.Context, account *models.AuthAccount) error
	GetFn    func(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.AuthAccount) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) Get(ctx context.Context, provider, providerAccountID string) (*models.AuthAccount, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, provider, providerAccountID)
	}
	return nil, nil
}

// mockWorkspaceRepo implements database.WorkspaceRepository.
type mockWorkspaceRepo struct {
	CreateWithOwnerFn func(ctx context.Context, ws *models.Workspace, owner *models.Member, general *models.Channel) error
	GetByIDFn         func(ctx context.Context, id int64) (*models.Workspace, error)
	GetByUserIDFn     func(ctx context.Context, userID int64) ([]models.Workspace, error)
	UpdateFn          func(ctx context.Context, ws *models.Workspace) error
	DeleteFn          func(ctx context.Context, id int64) error
}

func (m *mockWorkspaceRepo) CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.Member, general *models.Channel) error {
	if m.CreateWithOwnerFn != nil {
		return m.CreateWithOwnerFn(ctx, ws, owner, general)
	}
	return nil
}

func (m *mockWorkspaceRepo) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Workspace, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWorkspaceRepo) Update(ctx context.Context, ws *models.Workspace) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ws)
	}
	return nil
}

func (m *mockWorkspaceRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockMemberRepo implements database.MemberRepository.
type mockMemberRepo struct {
	CreateFn                func(ctx context.Context, member *models.Member) error
	GetByIDFn               func(ctx context.Context, id int64) (*models.Member, error)
	GetByWorkspaceAndUserFn func(ctx context.Context, workspaceID, userID int64) (*models.Member, error)
	GetByWorkspaceIDFn      func(ctx context.Context, workspaceID int64) ([]models.Member, error)
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	if m.GetByWorkspaceAndUserFn != nil {
		return m.GetByWorkspaceAndUserFn(ctx, workspaceID, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Member, error) {
	if m.GetByWorkspaceIDFn != nil {
		return m.GetByWorkspaceIDFn(ctx, workspaceID)
	}
	return nil, nil
}

// mockChannelRepo implements database.ChannelRepository.
type mockChannelRepo struct {
	CreateFn           func(ctx context.Context, channel *models.Channel) error
	GetByIDFn          func(ctx context.Context, id int64) (*models.Channel, error)
	GetByWorkspaceIDFn func(ctx context.Context, workspaceID int64) ([]models.Channel, error)
	UpdateFn           func(ctx context.Context, channel *models.Channel) error
	DeleteFn           func(ctx context.Context, id int64) error
}

func (m *mockChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByWorkspaceID(ctx context.Context, workspaceID int64) ([]models.Channel, error) {
	if m.GetByWorkspaceIDFn != nil {
		return m.GetByWorkspaceIDFn(ctx, workspaceID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockConversationRepo implements database.ConversationRepository.
type mockConversationRepo struct {
	CreateFn       func(ctx context.Context, conv *models.Conversation) error
	GetByIDFn      func(ctx context.Context, id int64) (*models.Conversation, error)
	GetByMembersFn func(ctx context.Context, workspaceID, memberA, memberB int64) (*models.Conversation, error)
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, conv)
	}
	return nil
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockConversationRepo) GetByMembers(ctx context.Context, workspaceID, memberA, memberB int64) (*models.Conversation, error) {
	if m.GetByMembersFn != nil {
		return m.GetByMembersFn(ctx, workspaceID, memberA, memberB)
	}
	return nil, nil
}

// mockMessageRepo implements database.MessageRepository.
type mockMessageRepo struct {
	CreateFn     func(ctx context.Context, msg *models.Message) error
	GetByIDFn    func(ctx context.Context, id int64) (*models.Message, error)
	PaginateFn   func(ctx context.Context, filter database.MessageFilter, page database.PageRequest) (*database.MessagePage, error)
	GetRepliesFn func(ctx context.Context, parentID int64) ([]models.Message, error)
	UpdateBodyFn func(ctx context.Context, msg *models.Message) error
	DeleteFn     func(ctx context.Context, id int64) error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMessageRepo) Paginate(ctx context.Context, filter database.MessageFilter, page database.PageRequest) (*database.MessagePage, error) {
	if m.PaginateFn != nil {
		return m.PaginateFn(ctx, filter, page)
	}
	return &database.MessagePage{IsDone: true}, nil
}

func (m *mockMessageRepo) GetReplies(ctx context.Context, parentID int64) ([]models.Message, error) {
	if m.GetRepliesFn != nil {
		return m.GetRepliesFn(ctx, parentID)
	}
	return nil, nil
}

func (m *mockMessageRepo) UpdateBody(ctx context.Context, msg *models.Message) error {
	if m.UpdateBodyFn != nil {
		return m.UpdateBodyFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockReactionRepo implements database.ReactionRepository.
type mockReactionRepo struct {
	ToggleFn       func(ctx context.Context, r *models.Reaction) (bool, error)
	GetByMessageFn func(ctx context.Context, messageID int64) ([]models.Reaction, error)
}

func (m *mockReactionRepo) Toggle(ctx context.Context, r *models.Reaction) (bool, error) {
	if m.ToggleFn != nil {
		return m.ToggleFn(ctx, r)
	}
	return true, nil
}

func (m *mockReactionRepo) GetByMessage(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	if m.GetByMessageFn != nil {
		return m.GetByMessageFn(ctx, messageID)
	}
	return nil, nil
}

// mockStorage implements FileStorage.
type mockStorage struct {
	GenerateUploadURLFn func(ctx context.Context, key string) (string, error)
	GetURLFn            func(ctx context.Context, key string) (string, error)
	DeleteFn            func(ctx context.Context, key string) error

	mu      sync.Mutex
	deleted []string
}

func (m *mockStorage) GenerateUploadURL(ctx context.Context, key string) (string, error) {
	if m.GenerateUploadURLFn != nil {
		return m.GenerateUploadURLFn(ctx, key)
	}
	return "https://storage.test/put/" + key, nil
}

func (m *mockStorage) GetURL(ctx context.Context, key string) (string, error) {
	if m.GetURLFn != nil {
		return m.GetURLFn(ctx, key)
	}
	return "https://storage.test/get/" + key, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// memberLookup builds a GetByWorkspaceAndUserFn over a fixed set of members.
func memberLookup(members ...models.Member) func(ctx context.Context, workspaceID, userID int64) (*models.Member, error) {
	return func(_ context.Context, workspaceID, userID int64) (*models.Member, error) {
		for i := range members {
			if members[i].WorkspaceID == workspaceID && members[i].UserID == userID {
				m := members[i]
				return &m, nil
			}
		}
		return nil, nil
	}
}

// memberByID builds a GetByIDFn over a fixed set of members.
func memberByID(members ...models.Member) func(ctx context.Context, id int64) (*models.Member, error) {
	return func(_ context.Context, id int64) (*models.Member, error) {
		for i := range members {
			if members[i].ID == id {
				m := members[i]
				return &m, nil
			}
		}
		return nil, nil
	}
}

func userByID(users ...models.User) func(ctx context.Context, id int64) (*models.User, error) {
	return func(_ context.Context, id int64) (*models.User, error) {
		for i := range users {
			if users[i].ID == id {
				u := users[i]
				return &u, nil
			}
		}
		return nil, nil
	}
}
