// Package account provides the storage-facing models the authentication
// core consults: registered applications and the linked accounts that map
// a verified provider identity onto an internal user handle.
package account

import (
	"context"
	"time"

	"socialplus/services/auth-api/internal/domain"
)

// AppRegistration models a registered application and its issued key.
type AppRegistration struct {
	ID        uint
	AppHandle string
	AppKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LinkedAccount maps a verified external account onto an internal user.
type LinkedAccount struct {
	ID               uint
	IdentityProvider domain.IdentityProvider
	AccountID        string
	UserHandle       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository defines storage operations for apps and linked accounts.
type Repository interface {
	// FindAppByKey resolves an app key to its registration, or nil when
	// the key is unknown.
	FindAppByKey(ctx context.Context, appKey string) (*AppRegistration, error)

	// FindUserHandle maps a verified (provider, account id) pair to an
	// internal user handle. Returns "" when no mapping exists, which
	// marks the caller as mid-registration rather than failing.
	FindUserHandle(ctx context.Context, provider domain.IdentityProvider, accountID string) (string, error)

	// CreateLinkedAccount records a new provider-to-handle mapping.
	CreateLinkedAccount(ctx context.Context, linked *LinkedAccount) error
}
