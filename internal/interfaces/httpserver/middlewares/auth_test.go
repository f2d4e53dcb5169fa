package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/infrastructure/identity"
)

type fakeAuthenticator struct {
	result    *identity.Result
	err       error
	anonCalls int
	schemes   []string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, schemeName, _ string) (*identity.Result, error) {
	f.schemes = append(f.schemes, schemeName)
	return f.result, f.err
}

func (f *fakeAuthenticator) AuthenticateAnonymous(_ context.Context, _ string) (*identity.Result, error) {
	f.anonCalls++
	return f.result, f.err
}

func newAuthTestRouter(auth Authenticator, allowAnonymous bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/:version")
	group.Use(Authentication(auth, allowAnonymous, zerolog.Nop()))
	group.GET("/probe", func(c *gin.Context) {
		result := GetAuthResult(c)
		if result == nil || result.App == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no auth result"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"app": result.App.AppHandle})
	})
	return engine
}

func probe(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func okResult() *identity.Result {
	return &identity.Result{App: &domain.AppPrincipal{AppHandle: "app-1", AppKey: "app-key-1"}}
}

func TestAuthenticationRejectsBadVersion(t *testing.T) {
	router := newAuthTestRouter(&fakeAuthenticator{result: okResult()}, false)

	for _, version := range []string{"v1", "1.0", "v1.0.0", "vx.y", "latest"} {
		resp := probe(router, "/"+version+"/probe", "SocialPlus AK=k|TK=t")
		if resp.Code != http.StatusBadRequest {
			t.Errorf("version %q: status = %d, want %d", version, resp.Code, http.StatusBadRequest)
		}
	}

	resp := probe(router, "/v1.0/probe", "SocialPlus AK=k|TK=t")
	if resp.Code != http.StatusOK {
		t.Errorf("version v1.0: status = %d, want %d", resp.Code, http.StatusOK)
	}
}

func TestAuthenticationRequiresHeader(t *testing.T) {
	router := newAuthTestRouter(&fakeAuthenticator{result: okResult()}, false)

	resp := probe(router, "/v1.0/probe", "")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticationUnknownScheme(t *testing.T) {
	auth := &fakeAuthenticator{result: okResult()}
	router := newAuthTestRouter(auth, false)

	resp := probe(router, "/v1.0/probe", "Basic dXNlcjpwYXNz")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
	if len(auth.schemes) != 0 {
		t.Errorf("dispatch ran for unknown scheme: %v", auth.schemes)
	}
}

func TestAuthenticationAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{result: okResult()}

	// Route that does not admit anonymous callers.
	router := newAuthTestRouter(auth, false)
	resp := probe(router, "/v1.0/probe", "Anon AK=app-key-1")
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
	if auth.anonCalls != 0 {
		t.Errorf("anonymous dispatch ran %d times on a protected route", auth.anonCalls)
	}

	// Route that does.
	router = newAuthTestRouter(auth, true)
	resp = probe(router, "/v1.0/probe", "anon AK=app-key-1")
	if resp.Code != http.StatusOK {
		t.Errorf("status = %d, want %d, body %s", resp.Code, http.StatusOK, resp.Body.String())
	}
	if auth.anonCalls != 1 {
		t.Errorf("anonymous dispatch ran %d times, want 1", auth.anonCalls)
	}
}

func TestAuthenticationInstallsResult(t *testing.T) {
	auth := &fakeAuthenticator{result: okResult()}
	router := newAuthTestRouter(auth, false)

	resp := probe(router, "/v1.0/probe", "SocialPlus AK=app-key-1|TK=token")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if resp.Body.String() != `{"app":"app-1"}` {
		t.Errorf("unexpected body: %s", resp.Body.String())
	}
	if len(auth.schemes) != 1 || auth.schemes[0] != "SocialPlus" {
		t.Errorf("unexpected dispatched schemes: %v", auth.schemes)
	}
}

func TestAuthenticationFailuresAreUniform(t *testing.T) {
	// Different failure causes must produce byte-identical responses so
	// callers cannot probe which check rejected them.
	failing := &fakeAuthenticator{err: errors.New("token expired three days ago")}
	router := newAuthTestRouter(failing, false)

	bodies := map[string]bool{}
	for _, header := range []string{
		"Basic dXNlcjpwYXNz",
		"SocialPlus AK=unknown-app|TK=token",
		"Facebook AK=app-key-1|TK=expired-token",
		"Anon AK=app-key-1",
	} {
		resp := probe(router, "/v1.0/probe", header)
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, resp.Code, http.StatusUnauthorized)
		}
		bodies[resp.Body.String()] = true
	}
	if len(bodies) != 1 {
		t.Errorf("failure responses differ: %v", bodies)
	}
}
