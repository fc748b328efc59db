// Package auth handles staff credential login and bearer-token validation
// for the admin upload API. Client OAuth sign-in lives in the site frontend
// and never reaches this service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/halcyonweb/mediakit/internal/catalog"
	"github.com/halcyonweb/mediakit/internal/common"
	"github.com/halcyonweb/mediakit/pkg/config"
	"github.com/halcyonweb/mediakit/pkg/types"
	"github.com/halcyonweb/mediakit/pkg/utils"
)

// ErrInvalidCredentials is returned for a bad email/password pair or a
// non-staff account
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles authentication operations
type Service struct {
	db     *common.Database
	users  *catalog.Users
	config *config.AuthConfig
}

// NewService creates a new authentication service. Token validation reads
// users through the shared user cache.
func NewService(db *common.Database, users *catalog.Users, cfg *config.AuthConfig) *Service {
	return &Service{
		db:     db,
		users:  users,
		config: cfg,
	}
}

// Login authenticates a staff member and returns a JWT token
func (s *Service) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthToken, error) {
	var user types.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Role != "admin" && user.Role != "team" {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}
	s.users.Invalidate(user.ID)

	token, err := utils.GenerateJWT(user.ID, s.config.JWTSecret, s.config.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	log.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("staff login")

	return &types.AuthToken{
		Token:     token,
		ExpiresAt: now.Add(s.config.JWTExpiration),
		User:      &user,
	}, nil
}

// ValidateToken parses a bearer token and loads its user through the cache
func (s *Service) ValidateToken(ctx context.Context, token string) (*types.User, error) {
	userID, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user account is disabled")
	}

	return user, nil
}
