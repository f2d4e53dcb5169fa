package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

// googleStubProvider serves a discovery document plus the endpoints it
// advertises.
type googleStubProvider struct {
	server         *httptest.Server
	discoveryHits  atomic.Int64
	failDiscovery  atomic.Bool
	tokenExchanges atomic.Int64
}

func newGoogleStubProvider(t *testing.T, subject string) *googleStubProvider {
	t.Helper()
	p := &googleStubProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		p.discoveryHits.Add(1)
		if p.failDiscovery.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DiscoveryDocument{
			Issuer:           "https://accounts.example.com",
			TokenEndpoint:    p.server.URL + "/token",
			UserinfoEndpoint: p.server.URL + "/userinfo",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("userinfo authorization = %q, want bearer access token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GoogleProfile{
			Subject:    subject,
			GivenName:  "Grace",
			FamilyName: "Hopper",
			Email:      "grace@example.com",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenExchanges.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q, want authorization_code", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "auth-code" {
			t.Errorf("code = %q, want auth-code", r.PostForm.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(googleTokenResponse{AccessToken: "access-token", TokenType: "Bearer", ExpiresIn: 3600})
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func newGoogleTestVerifier(t *testing.T, p *googleStubProvider) *GoogleVerifier {
	t.Helper()
	client := resty.New()
	t.Cleanup(func() { client.Close() })
	return NewGoogleVerifier(
		p.server.URL+"/.well-known/openid-configuration",
		"client-id", "client-secret", "https://app.example.com/callback",
		client, zerolog.Nop(),
	)
}

func TestGoogleVerifyToken(t *testing.T) {
	p := newGoogleStubProvider(t, "sub-123")
	v := newGoogleTestVerifier(t, p)

	profile, err := v.VerifyToken(context.Background(), "access-token")
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if profile.AccountID != "sub-123" || profile.FirstName != "Grace" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestGoogleDiscoveryFetchedOnce(t *testing.T) {
	p := newGoogleStubProvider(t, "sub-123")
	v := newGoogleTestVerifier(t, p)

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.VerifyToken(context.Background(), "access-token"); err != nil {
				t.Errorf("VerifyToken failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if hits := p.discoveryHits.Load(); hits != 1 {
		t.Errorf("discovery fetched %d times, want 1", hits)
	}
}

func TestGoogleDiscoveryFailureDoesNotWedge(t *testing.T) {
	p := newGoogleStubProvider(t, "sub-123")
	p.failDiscovery.Store(true)
	v := newGoogleTestVerifier(t, p)

	_, err := v.VerifyToken(context.Background(), "access-token")
	var oauthErr *OAuthError
	if !errors.As(err, &oauthErr) {
		t.Fatalf("expected OAuthError, got %v", err)
	}
	if oauthErr.Code != CodeGoogleUnavailable {
		t.Errorf("code = %s, want %s", oauthErr.Code, CodeGoogleUnavailable)
	}

	// The failed bootstrap must not stick: once the provider recovers
	// the next call retries the fetch and succeeds.
	p.failDiscovery.Store(false)
	if _, err := v.VerifyToken(context.Background(), "access-token"); err != nil {
		t.Fatalf("VerifyToken after recovery failed: %v", err)
	}
	if hits := p.discoveryHits.Load(); hits != 2 {
		t.Errorf("discovery fetched %d times, want 2", hits)
	}
}

func TestGoogleExchangeCode(t *testing.T) {
	p := newGoogleStubProvider(t, "sub-123")
	v := newGoogleTestVerifier(t, p)

	profile, err := v.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}
	if profile.AccountID != "sub-123" {
		t.Errorf("account id = %q, want sub-123", profile.AccountID)
	}
	if p.tokenExchanges.Load() != 1 {
		t.Errorf("token endpoint hit %d times, want 1", p.tokenExchanges.Load())
	}
}

func TestGoogleMissingSubject(t *testing.T) {
	p := newGoogleStubProvider(t, "")
	v := newGoogleTestVerifier(t, p)

	_, err := v.VerifyToken(context.Background(), "access-token")
	var oauthErr *OAuthError
	if !errors.As(err, &oauthErr) {
		t.Fatalf("expected OAuthError, got %v", err)
	}
	if oauthErr.Code != CodeMissingAccountID {
		t.Errorf("code = %s, want %s", oauthErr.Code, CodeMissingAccountID)
	}
}
