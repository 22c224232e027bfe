package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCreator is recorded when a project is created without a creator.
const DefaultCreator = "current user"

// Project is a SQL document in the editor tree.
type Project struct {
	ID                     string  `gorm:"primaryKey;size:64"`
	Name                   string  `gorm:"size:255;not null"`
	DirectoryID            *string `gorm:"size:64;index"`
	RequirementName        *string `gorm:"size:255"`
	RequirementDescription *string `gorm:"type:text"`
	Requester              *string `gorm:"size:255"`
	Creator                *string `gorm:"size:255"`
	SQLContent             *string `gorm:"column:sql_content;type:text"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName implements gorm's Tabler.
func (Project) TableName() string { return "projects" }

// NewProjectID returns a fresh "file_"-prefixed identifier.
func NewProjectID() string { return "file_" + uuid.NewString() }

// ProjectDetails is the requirement metadata and SQL of a project.
type ProjectDetails struct {
	RequirementName        *string `json:"requirementName"`
	RequirementDescription *string `json:"requirementDescription"`
	Requester              *string `json:"requester"`
	Creator                *string `json:"creator"`
	SQL                    *string `json:"sql"`
}

// ToNode converts the project to a tree leaf.
func (p *Project) ToNode() *TreeNode {
	return &TreeNode{
		ID:        p.ID,
		Name:      p.Name,
		Type:      NodeTypeFile,
		ParentID:  p.DirectoryID,
		CreatedAt: isoTime(p.CreatedAt),
		UpdatedAt: isoTime(p.UpdatedAt),
		ProjectDetails: &ProjectDetails{
			RequirementName:        p.RequirementName,
			RequirementDescription: p.RequirementDescription,
			Requester:              p.Requester,
			Creator:                p.Creator,
			SQL:                    p.SQLContent,
		},
	}
}
