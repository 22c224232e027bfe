package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

// DirectoryRepository defines data access for editor directories.
type DirectoryRepository interface {
	List(ctx context.Context) ([]*models.Directory, error)
	GetByID(ctx context.Context, id string) (*models.Directory, error)
	Create(ctx context.Context, d *models.Directory) error
}

// ProjectRepository defines data access for editor projects.
type ProjectRepository interface {
	List(ctx context.Context) ([]*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a directory repository over db.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) List(ctx context.Context) ([]*models.Directory, error) {
	var out []*models.Directory
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, translate(err, "list directories")
	}
	return out, nil
}

func (r *directoryRepository) GetByID(ctx context.Context, id string) (*models.Directory, error) {
	var d models.Directory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate(err, "get directory")
	}
	return &d, nil
}

func (r *directoryRepository) Create(ctx context.Context, d *models.Directory) error {
	if d.ID == "" {
		d.ID = models.NewDirectoryID()
	}
	return translate(r.db.WithContext(ctx).Create(d).Error, "create directory")
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a project repository over db.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) List(ctx context.Context) ([]*models.Project, error) {
	var out []*models.Project
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, translate(err, "list projects")
	}
	return out, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, "get project")
	}
	return &p, nil
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = models.NewProjectID()
	}
	return translate(r.db.WithContext(ctx).Create(p).Error, "create project")
}
