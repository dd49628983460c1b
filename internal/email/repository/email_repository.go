package repository

import (
	"errors"
	"time"

	emaildomain "email-sorter-backend/internal/email/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// emailRepository implements EmailRepository interface
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new instance of emailRepository
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) FindByID(id string) (*emaildomain.Email, error) {
	var email emaildomain.Email
	err := r.db.Where("id = ?", id).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) FindByGmailID(gmailID string) (*emaildomain.Email, error) {
	var email emaildomain.Email
	err := r.db.Where("gmail_id = ?", gmailID).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) Create(email *emaildomain.Email) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	if email.CreatedAt.IsZero() {
		email.CreatedAt = time.Now()
	}
	return r.db.Create(email).Error
}

// unsubscribeAttemptRepository implements UnsubscribeAttemptRepository interface
type unsubscribeAttemptRepository struct {
	db *gorm.DB
}

// NewUnsubscribeAttemptRepository creates a new instance of unsubscribeAttemptRepository
func NewUnsubscribeAttemptRepository(db *gorm.DB) UnsubscribeAttemptRepository {
	return &unsubscribeAttemptRepository{db: db}
}

func (r *unsubscribeAttemptRepository) Create(attempt *emaildomain.UnsubscribeAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	return r.db.Create(attempt).Error
}

func (r *unsubscribeAttemptRepository) FindByEmailID(emailID string) ([]emaildomain.UnsubscribeAttempt, error) {
	var attempts []emaildomain.UnsubscribeAttempt
	err := r.db.Where("email_id = ?", emailID).Order("created_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
