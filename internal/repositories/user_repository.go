package repositories

import (
	"errors"
	"time"

	"favr_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByVerificationToken(token string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error

	// RefreshToken operations
	CreateRefreshToken(token *models.RefreshToken) error
	FindRefreshToken(token string) (*models.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteUserRefreshTokens(userID string) error
	CleanExpiredRefreshTokens() error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByVerificationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, wrapStoreError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return wrapStoreError(r.db.Create(user).Error)
}

func (r *UserRepositoryImpl) Update(user *models.User) error {
	return wrapStoreError(r.db.Save(user).Error)
}

func (r *UserRepositoryImpl) CreateRefreshToken(token *models.RefreshToken) error {
	return wrapStoreError(r.db.Create(token).Error)
}

func (r *UserRepositoryImpl) FindRefreshToken(token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.db.Where("token = ?", token).First(&rt).Error
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return &rt, nil
}

func (r *UserRepositoryImpl) DeleteRefreshToken(token string) error {
	return wrapStoreError(r.db.Where("token = ?", token).Delete(&models.RefreshToken{}).Error)
}

func (r *UserRepositoryImpl) DeleteUserRefreshTokens(userID string) error {
	return wrapStoreError(r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error)
}

func (r *UserRepositoryImpl) CleanExpiredRefreshTokens() error {
	return wrapStoreError(
		r.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{}).Error,
	)
}
