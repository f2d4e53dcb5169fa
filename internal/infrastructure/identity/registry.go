package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/domain/account"
	"socialplus/services/auth-api/internal/infrastructure/sessiontoken"
)

// SessionValidator validates internal session tokens. Satisfied by
// sessiontoken.Service.
type SessionValidator interface {
	Validate(rawToken string) (*sessiontoken.Session, error)
}

// Registry routes a parsed credential to the verifier matching its
// scheme and aggregates the outcome into principals. The scheme set is
// closed; dispatch is an exhaustive switch.
type Registry struct {
	facebook  *FacebookVerifier
	google    *GoogleVerifier
	microsoft *MicrosoftVerifier
	twitter   *TwitterVerifier
	aad       *AADVerifier
	sessions  SessionValidator
	accounts  account.Repository
	log       zerolog.Logger
}

// NewRegistry constructs the dispatch registry. aad may be nil when the
// AADS2S scheme is not configured for this deployment.
func NewRegistry(
	facebook *FacebookVerifier,
	google *GoogleVerifier,
	microsoft *MicrosoftVerifier,
	twitter *TwitterVerifier,
	aad *AADVerifier,
	sessions SessionValidator,
	accounts account.Repository,
	log zerolog.Logger,
) *Registry {
	return &Registry{
		facebook:  facebook,
		google:    google,
		microsoft: microsoft,
		twitter:   twitter,
		aad:       aad,
		sessions:  sessions,
		accounts:  accounts,
		log:       log,
	}
}

// Authenticate verifies the credential list under the named scheme and
// returns the principals it proves. Every failure path returns an error;
// the gatekeeper converts all of them into one uniform unauthorized
// response.
func (r *Registry) Authenticate(ctx context.Context, schemeName, credentialList string) (*Result, error) {
	scheme, err := ParseScheme(schemeName)
	if err != nil {
		return nil, err
	}
	if scheme == SchemeAnonymous {
		return nil, fmt.Errorf("anonymous scheme carries no credential to dispatch")
	}

	credentials, err := ParseCredentialList(credentialList)
	if err != nil {
		return nil, err
	}

	app, err := r.resolveApp(ctx, credentials)
	if err != nil {
		return nil, err
	}

	result := &Result{App: app, Credentials: credentials}

	switch scheme {
	case SchemeSocialPlus:
		token := credentials[credentialKeyToken]
		if token == "" {
			return nil, fmt.Errorf("socialplus scheme requires a session token")
		}
		session, err := r.sessions.Validate(token)
		if err != nil {
			return nil, fmt.Errorf("validate session token: %w", err)
		}
		if session.AppHandle != app.AppHandle {
			return nil, fmt.Errorf("session token issued for app %q, presented by app %q", session.AppHandle, app.AppHandle)
		}
		result.User = &domain.UserPrincipal{
			UserHandle:       session.UserHandle,
			IdentityProvider: domain.IdentityProviderInternal,
			AccountID:        session.UserHandle,
		}

	case SchemeFacebook:
		profile, err := r.facebook.VerifyToken(ctx, credentials[credentialKeyToken])
		if err != nil {
			return nil, err
		}
		if err := r.attachUser(ctx, result, domain.IdentityProviderFacebook, profile); err != nil {
			return nil, err
		}

	case SchemeGoogle:
		profile, err := r.google.VerifyToken(ctx, credentials[credentialKeyToken])
		if err != nil {
			return nil, err
		}
		if err := r.attachUser(ctx, result, domain.IdentityProviderGoogle, profile); err != nil {
			return nil, err
		}

	case SchemeMicrosoft:
		profile, err := r.microsoft.VerifyToken(ctx, credentials[credentialKeyToken])
		if err != nil {
			return nil, err
		}
		if err := r.attachUser(ctx, result, domain.IdentityProviderMicrosoft, profile); err != nil {
			return nil, err
		}

	case SchemeTwitter:
		requestToken := credentials[credentialKeyRequestToken]
		verifier := credentials[credentialKeyToken]
		if requestToken == "" || verifier == "" {
			return nil, fmt.Errorf("twitter scheme requires a request token and verifier")
		}
		profile, err := r.twitter.Verify(ctx, requestToken, verifier)
		if err != nil {
			return nil, err
		}
		if err := r.attachUser(ctx, result, domain.IdentityProviderTwitter, profile); err != nil {
			return nil, err
		}

	case SchemeAADS2S:
		if r.aad == nil {
			return nil, fmt.Errorf("aads2s scheme is not configured")
		}
		if _, err := r.aad.VerifyToken(ctx, credentials[credentialKeyToken]); err != nil {
			return nil, err
		}
		// A verified S2S caller may act on behalf of a user it names.
		if userHandle := credentials[credentialKeyUserHandle]; userHandle != "" {
			result.User = &domain.UserPrincipal{
				UserHandle:       userHandle,
				IdentityProvider: domain.IdentityProviderAADS2S,
				AccountID:        userHandle,
			}
		}
	}

	return result, nil
}

// AuthenticateAnonymous resolves the app principal for an anonymous
// caller. The credential list still has to name a registered app key;
// no user principal is produced.
func (r *Registry) AuthenticateAnonymous(ctx context.Context, credentialList string) (*Result, error) {
	credentials, err := ParseCredentialList(credentialList)
	if err != nil {
		return nil, err
	}
	app, err := r.resolveApp(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return &Result{App: app, Credentials: credentials}, nil
}

// resolveApp maps the presented app key onto its registration. Every
// scheme requires a known app key.
func (r *Registry) resolveApp(ctx context.Context, credentials map[string]string) (*domain.AppPrincipal, error) {
	appKey := credentials[credentialKeyAppKey]
	if appKey == "" {
		return nil, fmt.Errorf("credential list missing app key")
	}
	registration, err := r.accounts.FindAppByKey(ctx, appKey)
	if err != nil {
		return nil, fmt.Errorf("resolve app key: %w", err)
	}
	if registration == nil {
		return nil, fmt.Errorf("unknown app key")
	}
	return &domain.AppPrincipal{AppHandle: registration.AppHandle, AppKey: registration.AppKey}, nil
}

// attachUser resolves the verified profile to an internal user handle
// and installs the user principal. A missing mapping is not a failure:
// it yields a principal with an empty handle, marking the caller as
// mid-registration.
func (r *Registry) attachUser(ctx context.Context, result *Result, provider domain.IdentityProvider, profile *domain.GenericUserProfile) error {
	userHandle, err := r.accounts.FindUserHandle(ctx, provider, profile.AccountID)
	if err != nil {
		return fmt.Errorf("resolve user handle: %w", err)
	}
	result.Profile = profile
	result.User = &domain.UserPrincipal{
		UserHandle:       userHandle,
		IdentityProvider: provider,
		AccountID:        profile.AccountID,
	}
	return nil
}
