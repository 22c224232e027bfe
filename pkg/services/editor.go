package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/repositories"
)

// rootKey groups items without a parent directory.
const rootKey = "root"

// CreateDirectoryRequest describes a new directory. A nil or empty ParentID
// places it at the root.
type CreateDirectoryRequest struct {
	Name     string
	ParentID *string
}

// CreateProjectRequest describes a new project. An absent Creator defaults to
// models.DefaultCreator.
type CreateProjectRequest struct {
	Name     string
	ParentID *string
	Creator  models.Field[string]
}

// EditorService manages the directory and project tree of the editor.
type EditorService interface {
	// Tree returns the root-level nodes with directories nested.
	Tree(ctx context.Context) ([]*models.TreeNode, error)

	// CreateDirectory returns apperrors.ErrParentNotFound for an unknown parent.
	CreateDirectory(ctx context.Context, req CreateDirectoryRequest) (*models.Directory, error)

	// CreateProject returns apperrors.ErrParentNotFound for an unknown parent.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error)
}

type editorService struct {
	dirs     repositories.DirectoryRepository
	projects repositories.ProjectRepository
	logger   *zap.Logger
}

// NewEditorService creates an editor service.
func NewEditorService(dirs repositories.DirectoryRepository, projects repositories.ProjectRepository, logger *zap.Logger) EditorService {
	return &editorService{dirs: dirs, projects: projects, logger: logger}
}

func (s *editorService) Tree(ctx context.Context) ([]*models.TreeNode, error) {
	dirs, err := s.dirs.List(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(dirs, projects), nil
}

// BuildTree nests directories and projects by parent id. Within a parent,
// directories come first, then projects, each in input order. Directories get
// Children only when they have any. Items whose parent is unknown are dropped.
func BuildTree(dirs []*models.Directory, projects []*models.Project) []*models.TreeNode {
	byParent := make(map[string][]*models.TreeNode)
	for _, d := range dirs {
		key := parentKey(d.ParentID)
		byParent[key] = append(byParent[key], d.ToNode())
	}
	for _, p := range projects {
		key := parentKey(p.DirectoryID)
		byParent[key] = append(byParent[key], p.ToNode())
	}

	var build func(parent string, seen map[string]bool) []*models.TreeNode
	build = func(parent string, seen map[string]bool) []*models.TreeNode {
		items := byParent[parent]
		out := make([]*models.TreeNode, 0, len(items))
		for _, item := range items {
			if item.Type == models.NodeTypeDirectory && !seen[item.ID] {
				seen[item.ID] = true
				if children := build(item.ID, seen); len(children) > 0 {
					item.Children = children
				}
			}
			out = append(out, item)
		}
		return out
	}
	return build(rootKey, make(map[string]bool))
}

func parentKey(id *string) string {
	if id == nil || *id == "" {
		return rootKey
	}
	return *id
}

func (s *editorService) CreateDirectory(ctx context.Context, req CreateDirectoryRequest) (*models.Directory, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("directory name is required: %w", apperrors.ErrInvalidInput)
	}
	parentID, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	d := &models.Directory{ID: models.NewDirectoryID(), Name: name, ParentID: parentID}
	if err := s.dirs.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Created directory", zap.String("id", d.ID), zap.String("name", name))
	return d, nil
}

func (s *editorService) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("project name is required: %w", apperrors.ErrInvalidInput)
	}
	parentID, err := s.resolveParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}

	creator := req.Creator.Value
	if !req.Creator.Set {
		def := models.DefaultCreator
		creator = &def
	}

	p := &models.Project{
		ID:              models.NewProjectID(),
		Name:            name,
		DirectoryID:     parentID,
		RequirementName: &name,
		Creator:         creator,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Created project", zap.String("id", p.ID), zap.String("name", name))
	return p, nil
}

// resolveParent checks that a non-empty parent id names an existing directory.
func (s *editorService) resolveParent(ctx context.Context, parentID *string) (*string, error) {
	if parentID == nil || *parentID == "" {
		return nil, nil
	}
	if _, err := s.dirs.GetByID(ctx, *parentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrParentNotFound
		}
		return nil, err
	}
	return parentID, nil
}

var _ EditorService = (*editorService)(nil)
