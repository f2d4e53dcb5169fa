package accountrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"socialplus/services/auth-api/internal/domain"
	"socialplus/services/auth-api/internal/domain/account"
	"socialplus/services/auth-api/internal/infrastructure/database/dbschema"
	"socialplus/services/auth-api/internal/utils/platformerrors"
)

// AccountGormRepository persists app registrations and linked accounts.
type AccountGormRepository struct {
	db *gorm.DB
}

var _ account.Repository = (*AccountGormRepository)(nil)

func NewAccountGormRepository(db *gorm.DB) account.Repository {
	return &AccountGormRepository{db: db}
}

func (repo *AccountGormRepository) FindAppByKey(ctx context.Context, appKey string) (*account.AppRegistration, error) {
	var entity dbschema.AppRegistration
	err := repo.db.WithContext(ctx).
		Where("app_key = ?", appKey).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find app registration by key",
			err,
			"6f6e1f0a-8c5b-4f6b-9a53-2f14c4bbf3cf",
		)
	}
	return entity.EtoD(), nil
}

func (repo *AccountGormRepository) FindUserHandle(ctx context.Context, provider domain.IdentityProvider, accountID string) (string, error) {
	var entity dbschema.LinkedAccount
	err := repo.db.WithContext(ctx).
		Where("identity_provider = ? AND account_id = ?", string(provider), accountID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find linked account",
			err,
			"9e0cf5a1-2a44-47ab-8a2a-6cf3c71f0893",
		)
	}
	return entity.UserHandle, nil
}

func (repo *AccountGormRepository) CreateLinkedAccount(ctx context.Context, linked *account.LinkedAccount) error {
	entity := dbschema.NewSchemaLinkedAccount(linked)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create linked account",
			err,
			"c1be41e2-07bb-4f7e-bd3e-1f8f3a3d3a52",
		)
	}
	linked.ID = entity.ID
	return nil
}
