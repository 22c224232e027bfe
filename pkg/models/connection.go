// Package models contains domain types for the project editor backend.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// ConnectionProfile is a stored set of parameters for one external database.
// The password is kept in clear text; it is never returned by list or detail responses.
type ConnectionProfile struct {
	ID               string  `gorm:"primaryKey;size:64"`
	Name             string  `gorm:"size:255;not null"`
	DBType           string  `gorm:"column:db_type;size:50;not null"`
	Host             *string `gorm:"size:255"`
	Port             *int
	Database         *string `gorm:"column:database;size:1024"`
	Username         *string `gorm:"size:255"`
	Password         *string `gorm:"size:255"`
	ConnectionString *string `gorm:"type:text"`
	Description      *string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName implements gorm's Tabler.
func (ConnectionProfile) TableName() string { return "database_connections" }

// NewConnectionID returns a fresh "db_"-prefixed identifier.
func NewConnectionID() string { return "db_" + uuid.NewString() }

// Params returns the connection inputs of the profile.
func (c *ConnectionProfile) Params() datasource.ConnectionParams {
	return datasource.ConnectionParams{
		DBType:           c.DBType,
		Host:             deref(c.Host),
		Port:             c.Port,
		Database:         deref(c.Database),
		Username:         deref(c.Username),
		Password:         c.Password,
		ConnectionString: deref(c.ConnectionString),
	}
}

// ConnectionResponse is the JSON form of a ConnectionProfile.
type ConnectionResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	DBType           string  `json:"dbType"`
	Host             *string `json:"host"`
	Port             *int    `json:"port"`
	Database         *string `json:"database"`
	Username         *string `json:"username"`
	Password         *string `json:"password,omitempty"`
	ConnectionString *string `json:"connectionString"`
	Description      *string `json:"description"`
	CreatedAt        *string `json:"createdAt"`
	UpdatedAt        *string `json:"updatedAt"`
}

// ToResponse converts the profile for the API. The password is included only
// when includePassword is set.
func (c *ConnectionProfile) ToResponse(includePassword bool) ConnectionResponse {
	resp := ConnectionResponse{
		ID:               c.ID,
		Name:             c.Name,
		DBType:           c.DBType,
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.Database,
		Username:         c.Username,
		ConnectionString: c.ConnectionString,
		Description:      c.Description,
		CreatedAt:        isoTime(c.CreatedAt),
		UpdatedAt:        isoTime(c.UpdatedAt),
	}
	if includePassword {
		pw := deref(c.Password)
		resp.Password = &pw
	}
	return resp
}

// ConnectionPatch carries a partial update. Only fields present in the request
// body are applied; an explicit null clears an optional field.
type ConnectionPatch struct {
	Name             Field[string] `json:"name"`
	DBType           Field[string] `json:"dbType"`
	Host             Field[string] `json:"host"`
	Port             Field[int]    `json:"port"`
	Database         Field[string] `json:"database"`
	Username         Field[string] `json:"username"`
	Password         Field[string] `json:"password"`
	ConnectionString Field[string] `json:"connectionString"`
	Description      Field[string] `json:"description"`
}

// Apply writes the present fields of p onto c.
func (p ConnectionPatch) Apply(c *ConnectionProfile) {
	if p.Name.Set && p.Name.Value != nil {
		c.Name = *p.Name.Value
	}
	if p.DBType.Set && p.DBType.Value != nil {
		c.DBType = *p.DBType.Value
	}
	p.Host.ApplyTo(&c.Host)
	p.Port.ApplyTo(&c.Port)
	p.Database.ApplyTo(&c.Database)
	p.Username.ApplyTo(&c.Username)
	p.Password.ApplyTo(&c.Password)
	p.ConnectionString.ApplyTo(&c.ConnectionString)
	p.Description.ApplyTo(&c.Description)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const isoLayout = "2006-01-02T15:04:05.999999"

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoLayout)
	return &s
}
