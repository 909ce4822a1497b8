package service

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminAuthService handles sales rep authentication for the admin API.
type AdminAuthService struct {
	adminRepo *repository.AdminUserRepository
}

func NewAdminAuthService(adminRepo *repository.AdminUserRepository) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo}
}

// Login verifies credentials and returns a signed JWT on success.
func (s *AdminAuthService) Login(email, password string) (string, *models.AdminUser, error) {
	user, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Admin login failed: password mismatch")
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Admin login successful")
	return token, user, nil
}

// Register creates a new sales rep account with a bcrypt-hashed password.
func (s *AdminAuthService) Register(email, password, name string) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
