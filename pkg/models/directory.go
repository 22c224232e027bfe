package models

import (
	"time"

	"github.com/google/uuid"
)

// Node types in the editor tree.
const (
	NodeTypeDirectory = "directory"
	NodeTypeFile      = "file"
)

// Directory groups projects and other directories. A nil ParentID places it at the root.
type Directory struct {
	ID        string  `gorm:"primaryKey;size:64"`
	Name      string  `gorm:"size:255;not null"`
	ParentID  *string `gorm:"size:64;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName implements gorm's Tabler.
func (Directory) TableName() string { return "directories" }

// NewDirectoryID returns a fresh "dir_"-prefixed identifier.
func NewDirectoryID() string { return "dir_" + uuid.NewString() }

// TreeNode is one entry of the editor file tree. Directories may carry
// Children; projects carry ProjectDetails.
type TreeNode struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	ParentID       *string         `json:"parentId"`
	CreatedAt      *string         `json:"createdAt"`
	UpdatedAt      *string         `json:"updatedAt"`
	Children       []*TreeNode     `json:"children,omitempty"`
	ProjectDetails *ProjectDetails `json:"projectDetails,omitempty"`
}

// ToNode converts the directory without children.
func (d *Directory) ToNode() *TreeNode {
	return &TreeNode{
		ID:        d.ID,
		Name:      d.Name,
		Type:      NodeTypeDirectory,
		ParentID:  d.ParentID,
		CreatedAt: isoTime(d.CreatedAt),
		UpdatedAt: isoTime(d.UpdatedAt),
	}
}
