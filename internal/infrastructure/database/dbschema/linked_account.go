package dbschema

import (
	"time"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/domain/account"
)

// BaseModel carries the columns shared by every table.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppRegistration is the persisted shape of a registered application.
type AppRegistration struct {
	BaseModel
	AppHandle string `gorm:"type:varchar(64);not null;index:ix_app_registrations_app_handle"`
	AppKey    string `gorm:"type:varchar(128);not null;uniqueIndex:ux_app_registrations_app_key"`
}

// EtoD converts a schema registration back to the domain representation.
func (a *AppRegistration) EtoD() *account.AppRegistration {
	if a == nil {
		return nil
	}
	return &account.AppRegistration{
		ID:        a.ID,
		AppHandle: a.AppHandle,
		AppKey:    a.AppKey,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// LinkedAccount persists the mapping from a verified provider account to
// an internal user handle.
type LinkedAccount struct {
	BaseModel
	IdentityProvider string `gorm:"type:varchar(32);not null;uniqueIndex:ux_linked_accounts_provider_account"`
	AccountID        string `gorm:"type:varchar(255);not null;uniqueIndex:ux_linked_accounts_provider_account"`
	UserHandle       string `gorm:"type:varchar(64);not null;index:ix_linked_accounts_user_handle"`
}

// NewSchemaLinkedAccount converts a domain linked account into a schema
// instance.
func NewSchemaLinkedAccount(linked *account.LinkedAccount) *LinkedAccount {
	if linked == nil {
		return nil
	}
	return &LinkedAccount{
		BaseModel: BaseModel{
			ID:        linked.ID,
			CreatedAt: linked.CreatedAt,
			UpdatedAt: linked.UpdatedAt,
		},
		IdentityProvider: string(linked.IdentityProvider),
		AccountID:        linked.AccountID,
		UserHandle:       linked.UserHandle,
	}
}

// EtoD converts a schema linked account back to the domain representation.
func (l *LinkedAccount) EtoD() *account.LinkedAccount {
	if l == nil {
		return nil
	}
	return &account.LinkedAccount{
		ID:               l.ID,
		IdentityProvider: domain.IdentityProvider(l.IdentityProvider),
		AccountID:        l.AccountID,
		UserHandle:       l.UserHandle,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}
