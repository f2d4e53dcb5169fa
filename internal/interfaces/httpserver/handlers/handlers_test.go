package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/domain/account"
	"socialplus/services/auth-api/internal/infrastructure/identity"
	"socialplus/services/auth-api/internal/infrastructure/sessiontoken"
	"socialplus/services/auth-api/internal/interfaces/httpserver/middlewares"
	"socialplus/services/auth-api/internal/interfaces/httpserver/responses"
)

type fakeAccountRepo struct {
	handles map[string]string
	created []*account.LinkedAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{handles: make(map[string]string)}
}

func (r *fakeAccountRepo) FindAppByKey(context.Context, string) (*account.AppRegistration, error) {
	return nil, nil
}

func (r *fakeAccountRepo) FindUserHandle(_ context.Context, provider domain.IdentityProvider, accountID string) (string, error) {
	return r.handles[string(provider)+"/"+accountID], nil
}

func (r *fakeAccountRepo) CreateLinkedAccount(_ context.Context, linked *account.LinkedAccount) error {
	r.created = append(r.created, linked)
	r.handles[string(linked.IdentityProvider)+"/"+linked.AccountID] = linked.UserHandle
	return nil
}

func newTestSessions(t *testing.T) *sessiontoken.Service {
	t.Helper()
	svc, err := sessiontoken.NewService([]byte("test-secret"), "auth-test", time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

// serveWithResult runs one request through a handler with a canned
// authentication outcome installed, the way the gatekeeper would.
func serveWithResult(method string, handler gin.HandlerFunc, result *identity.Result) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Handle(method, "/probe", func(c *gin.Context) {
		if result != nil {
			c.Set(middlewares.AuthResultKey, result)
		}
		handler(c)
	})

	req := httptest.NewRequest(method, "/probe", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func appResult() *identity.Result {
	return &identity.Result{
		App:         &domain.AppPrincipal{AppHandle: "app-1", AppKey: "app-key-1"},
		Credentials: map[string]string{},
	}
}

func verifiedResult(userHandle string) *identity.Result {
	result := appResult()
	result.User = &domain.UserPrincipal{
		UserHandle:       userHandle,
		IdentityProvider: domain.IdentityProviderFacebook,
		AccountID:        "fb-user-1",
	}
	return result
}

func TestCreateSession(t *testing.T) {
	sessions := newTestSessions(t)
	handler := NewSessionHandler(sessions, zerolog.Nop())

	resp := serveWithResult(http.MethodPost, handler.CreateSession, verifiedResult("user-1"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out responses.SessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.UserHandle != "user-1" || out.AppHandle != "app-1" {
		t.Errorf("unexpected response: %+v", out)
	}

	session, err := sessions.Validate(out.SessionToken)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if session.AppHandle != "app-1" || session.UserHandle != "user-1" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestCreateSessionUnregisteredUser(t *testing.T) {
	handler := NewSessionHandler(newTestSessions(t), zerolog.Nop())

	resp := serveWithResult(http.MethodPost, handler.CreateSession, verifiedResult(""))
	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusNotFound)
	}
}

func TestCreateSessionWithoutUser(t *testing.T) {
	handler := NewSessionHandler(newTestSessions(t), zerolog.Nop())

	resp := serveWithResult(http.MethodPost, handler.CreateSession, appResult())
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestMe(t *testing.T) {
	handler := NewUserHandler(newFakeAccountRepo(), newTestSessions(t), nil, zerolog.Nop())

	resp := serveWithResult(http.MethodGet, handler.Me, verifiedResult("user-1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out responses.PrincipalResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.AppHandle != "app-1" || out.UserHandle != "user-1" || !out.Registered {
		t.Errorf("unexpected response: %+v", out)
	}
	if out.IdentityProvider != "Facebook" || out.AccountID != "fb-user-1" {
		t.Errorf("unexpected identity: %+v", out)
	}
}

func TestMeAnonymous(t *testing.T) {
	handler := NewUserHandler(newFakeAccountRepo(), newTestSessions(t), nil, zerolog.Nop())

	resp := serveWithResult(http.MethodGet, handler.Me, appResult())
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out responses.PrincipalResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.UserHandle != "" || out.Registered {
		t.Errorf("anonymous caller got a user principal: %+v", out)
	}
}

func TestRegister(t *testing.T) {
	accounts := newFakeAccountRepo()
	sessions := newTestSessions(t)
	handler := NewUserHandler(accounts, sessions, nil, zerolog.Nop())

	resp := serveWithResult(http.MethodPost, handler.Register, verifiedResult(""))
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out responses.SessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.UserHandle == "" {
		t.Fatal("no user handle assigned")
	}

	if len(accounts.created) != 1 {
		t.Fatalf("linked accounts created = %d, want 1", len(accounts.created))
	}
	linked := accounts.created[0]
	if linked.IdentityProvider != domain.IdentityProviderFacebook || linked.AccountID != "fb-user-1" || linked.UserHandle != out.UserHandle {
		t.Errorf("unexpected linked account: %+v", linked)
	}

	if _, err := sessions.Validate(out.SessionToken); err != nil {
		t.Errorf("issued token does not validate: %v", err)
	}
}

func TestRegisterAlreadyRegistered(t *testing.T) {
	handler := NewUserHandler(newFakeAccountRepo(), newTestSessions(t), nil, zerolog.Nop())

	resp := serveWithResult(http.MethodPost, handler.Register, verifiedResult("user-1"))
	if resp.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusConflict)
	}
}

func TestRegisterRejectsInternalPrincipal(t *testing.T) {
	handler := NewUserHandler(newFakeAccountRepo(), newTestSessions(t), nil, zerolog.Nop())

	result := appResult()
	result.User = &domain.UserPrincipal{
		UserHandle:       "user-1",
		IdentityProvider: domain.IdentityProviderInternal,
		AccountID:        "user-1",
	}
	resp := serveWithResult(http.MethodPost, handler.Register, result)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestFriendsRequiresFacebookCredential(t *testing.T) {
	handler := NewUserHandler(newFakeAccountRepo(), newTestSessions(t), nil, zerolog.Nop())

	result := appResult()
	result.User = &domain.UserPrincipal{
		UserHandle:       "user-1",
		IdentityProvider: domain.IdentityProviderGoogle,
		AccountID:        "sub-123",
	}
	resp := serveWithResult(http.MethodGet, handler.Friends, result)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}
