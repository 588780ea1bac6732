package models

import (
	"time"

	"github.com/coursehub/backend/internal/domain/organization"
	"github.com/google/uuid"
)

// OrganizationModel is the persistence model for organizations
type OrganizationModel struct {
	AggregateModel
	Name    string    `gorm:"type:varchar(255);not null"`
	AdminID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName specifies the table name
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the model to a domain organization
func (m *OrganizationModel) ToDomain() *organization.Organization {
	return &organization.Organization{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		AdminID:           m.AdminID,
	}
}

// OrganizationModelFromDomain converts a domain organization to a model
func OrganizationModelFromDomain(o *organization.Organization) *OrganizationModel {
	m := &OrganizationModel{
		Name:    o.Name,
		AdminID: o.AdminID,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// OrganizationMemberModel records organization membership
type OrganizationMemberModel struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name
func (OrganizationMemberModel) TableName() string {
	return "organization_members"
}
