package service

import (
	"context"
	"errors"

	adminserrors "campusgate/internal/admins/errors"
	"campusgate/internal/admins/repository"
	"campusgate/pkg/config"
	"campusgate/pkg/credentials"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/token"
)

type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type adminService struct {
	repo   repository.AdminRepository
	tokens *token.Manager
	cfg    *config.Config
}

func NewAdminService(repo repository.AdminRepository, tokens *token.Manager, cfg *config.Config) AdminService {
	return &adminService{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
	}
}

// Login verifies the admin's password and issues an admin token.
// Unknown username and wrong password are indistinguishable.
func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.InvalidInput("Username and password are required")
	}

	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, adminserrors.ErrNotFound) {
			return "", apperrors.Unauthorized("Invalid credentials")
		}
		return "", apperrors.Internal("Failed to retrieve admin", err)
	}

	if err := credentials.Compare(admin.PasswordHash, password); err != nil {
		if errors.Is(err, credentials.ErrMismatch) {
			s.cfg.Log.Warn("Admin login rejected", "username", username)
			return "", apperrors.Unauthorized("Invalid credentials")
		}
		return "", apperrors.Internal("Failed to verify credentials", err)
	}

	signed, err := s.tokens.SignAdmin(admin.Username)
	if err != nil {
		return "", apperrors.Internal("Failed to sign admin token", err)
	}

	s.cfg.Log.Info("Admin logged in", "username", username)
	return signed, nil
}
