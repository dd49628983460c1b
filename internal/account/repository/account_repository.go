package repository

import (
	"errors"
	"time"

	accountdomain "email-sorter-backend/internal/account/domain"

	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(id string) (*accountdomain.ConnectedAccount, error) {
	var account accountdomain.ConnectedAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAll() ([]accountdomain.ConnectedAccount, error) {
	var accounts []accountdomain.ConnectedAccount
	if err := r.db.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) UpdateHistoryID(id, historyID string) error {
	return r.db.Model(&accountdomain.ConnectedAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"history_id": historyID,
			"updated_at": time.Now(),
		}).Error
}

func (r *accountRepository) UpdateTokens(id, accessTokenEnc, refreshTokenEnc string) error {
	return r.db.Model(&accountdomain.ConnectedAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token_enc":  accessTokenEnc,
			"refresh_token_enc": refreshTokenEnc,
			"updated_at":        time.Now(),
		}).Error
}

// categoryRepository implements CategoryRepository interface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new instance of categoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByUserID(userID string) ([]accountdomain.Category, error) {
	var categories []accountdomain.Category
	if err := r.db.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
