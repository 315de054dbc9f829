package services

import (
	"time"

	"mosaic/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return &user, err
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

// Create 创建用户
func (s *UserService) Create(username, email, name, password string, tenantID uint, isPlatformAdmin, isTenantAdmin bool) (*models.User, error) {
	user := &models.User{
		Username:        username,
		Email:           email,
		Name:            name,
		TenantID:        tenantID,
		Status:          models.UserStatusActive,
		IsPlatformAdmin: isPlatformAdmin,
		IsTenantAdmin:   isTenantAdmin,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	err := s.db.Create(user).Error
	return user, err
}

// IsActive 检查用户是否激活
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", &now).Error
}
