package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, tokens []*domain.UserToken) ([]*domain.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*domain.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*domain.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*domain.UserToken, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Create(dbc dbctx.Context, tokens []*domain.UserToken) ([]*domain.UserToken, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(tokens) == 0 {
		return []*domain.UserToken{}, nil
	}
	if err := tx.WithContext(dbc.Ctx).Create(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*domain.UserToken, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := tx.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*domain.UserToken, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.UserToken
	if len(accessTokens) == 0 {
		return results, nil
	}
	if err := tx.WithContext(dbc.Ctx).
		Where("access_token IN ?", accessTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*domain.UserToken, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var results []*domain.UserToken
	if len(refreshTokens) == 0 {
		return results, nil
	}
	if err := tx.WithContext(dbc.Ctx).
		Where("refresh_token IN ?", refreshTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userTokenRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&domain.UserToken{}).Error
}
