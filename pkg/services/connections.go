package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/repositories"
)

// ConnectionService manages stored connection profiles.
type ConnectionService interface {
	List(ctx context.Context) ([]*models.ConnectionProfile, error)

	// Get returns apperrors.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.ConnectionProfile, error)

	// Create requires a non-empty name and dbType.
	Create(ctx context.Context, c *models.ConnectionProfile) (*models.ConnectionProfile, error)

	// Update applies the fields present in patch.
	Update(ctx context.Context, id string, patch models.ConnectionPatch) (*models.ConnectionProfile, error)

	Delete(ctx context.Context, id string) error
}

type connectionService struct {
	repo   repositories.ConnectionRepository
	logger *zap.Logger
}

// NewConnectionService creates a connection service.
func NewConnectionService(repo repositories.ConnectionRepository, logger *zap.Logger) ConnectionService {
	return &connectionService{repo: repo, logger: logger}
}

func (s *connectionService) List(ctx context.Context) ([]*models.ConnectionProfile, error) {
	return s.repo.List(ctx)
}

func (s *connectionService) Get(ctx context.Context, id string) (*models.ConnectionProfile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *connectionService) Create(ctx context.Context, c *models.ConnectionProfile) (*models.ConnectionProfile, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.DBType = strings.TrimSpace(c.DBType)
	if c.Name == "" || c.DBType == "" {
		return nil, fmt.Errorf("name and dbType are required: %w", apperrors.ErrInvalidInput)
	}

	c.ID = models.NewConnectionID()
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Created connection",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
		zap.String("db_type", c.DBType))
	return c, nil
}

func (s *connectionService) Update(ctx context.Context, id string, patch models.ConnectionPatch) (*models.ConnectionProfile, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name.HasValue() {
		trimmed := strings.TrimSpace(*patch.Name.Value)
		if trimmed == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", apperrors.ErrInvalidInput)
		}
		patch.Name.Value = &trimmed
	}
	if patch.DBType.HasValue() {
		trimmed := strings.TrimSpace(*patch.DBType.Value)
		if trimmed == "" {
			return nil, fmt.Errorf("dbType cannot be empty: %w", apperrors.ErrInvalidInput)
		}
		patch.DBType.Value = &trimmed
	}

	patch.Apply(c)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Updated connection", zap.String("id", id))
	return s.repo.GetByID(ctx, id)
}

func (s *connectionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted connection", zap.String("id", id))
	return nil
}

var _ ConnectionService = (*connectionService)(nil)
