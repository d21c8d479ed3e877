package models

import "github.com/monocle-dev/taskhub/internal/types"

type User struct {
	BaseModel

	Name         string         `gorm:"type:varchar(50);not null"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	Role         types.UserRole `gorm:"type:varchar(16);not null;default:user"`

	// Relationships
	OwnedProjects []Project    `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Memberships   []Membership `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
