package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

// ConnectionRepository defines data access for stored connection profiles.
type ConnectionRepository interface {
	// List returns every profile, oldest first.
	List(ctx context.Context) ([]*models.ConnectionProfile, error)

	// GetByID returns apperrors.ErrNotFound when id is unknown.
	GetByID(ctx context.Context, id string) (*models.ConnectionProfile, error)

	Create(ctx context.Context, c *models.ConnectionProfile) error

	// Update writes every column of c, including cleared optional fields.
	Update(ctx context.Context, c *models.ConnectionProfile) error

	// Delete returns apperrors.ErrNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a connection repository over db.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) List(ctx context.Context) ([]*models.ConnectionProfile, error) {
	var out []*models.ConnectionProfile
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, translate(err, "list connections")
	}
	return out, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*models.ConnectionProfile, error) {
	var c models.ConnectionProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "get connection")
	}
	return &c, nil
}

func (r *connectionRepository) Create(ctx context.Context, c *models.ConnectionProfile) error {
	if c.ID == "" {
		c.ID = models.NewConnectionID()
	}
	return translate(r.db.WithContext(ctx).Create(c).Error, "create connection")
}

func (r *connectionRepository) Update(ctx context.Context, c *models.ConnectionProfile) error {
	res := r.db.WithContext(ctx).Model(c).Select("*").Omit("id", "created_at").Updates(c)
	if res.Error != nil {
		return translate(res.Error, "update connection")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ConnectionProfile{})
	if res.Error != nil {
		return translate(res.Error, "delete connection")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
