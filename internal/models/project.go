package models

import "github.com/monocle-dev/taskhub/internal/types"

type Project struct {
	BaseModel

	Title       string              `gorm:"type:varchar(100);not null"`
	Description string              `gorm:"type:text;not null"`
	Status      types.ProjectStatus `gorm:"type:varchar(16);not null;default:active;index"`
	OwnerID     uint                `gorm:"not null;index"`

	// Relationships
	Owner       User         `gorm:"foreignKey:OwnerID"`
	Tasks       []Task       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Comments    []Comment    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Files       []File       `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Memberships []Membership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
