package services

import (
	"context"
	"strings"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
)

// OperatorService manages named admin accounts.
type OperatorService struct {
	store store.OperatorStore
	now   clock
}

func NewOperatorService(s store.OperatorStore) *OperatorService {
	return &OperatorService{store: s, now: utcNow}
}

func (s *OperatorService) List(ctx context.Context) ([]*types.Operator, error) {
	ops, err := s.store.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, "Operator", "")
	}
	if ops == nil {
		ops = []*types.Operator{}
	}
	return ops, nil
}

func (s *OperatorService) Create(ctx context.Context, in types.OperatorCreate) (*types.Operator, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return nil, apperrors.ValidationFailed("Missing required fields", "username is required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.ValidationFailed("Password too short", "password must have at least 8 characters")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to hash password")
	}

	op := &types.Operator{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, op); err != nil {
		return nil, translateStoreError(err, "Operator", username)
	}
	logger.GetLogger().Infow("Operator created", "username", username)
	return op, nil
}

func (s *OperatorService) Delete(ctx context.Context, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := s.store.Delete(ctx, username); err != nil {
		return translateStoreError(err, "Operator", username)
	}
	logger.GetLogger().Infow("Operator deleted", "username", username)
	return nil
}
