package models

import (
	"time"

	"github.com/monocle-dev/taskhub/internal/types"
)

type Task struct {
	BaseModel

	Title       string           `gorm:"type:varchar(100);not null"`
	Description string           `gorm:"type:text;not null"`
	Status      types.TaskStatus `gorm:"type:varchar(16);not null;default:todo;index"`
	DueDate     time.Time        `gorm:"not null"`
	ProjectID   uint             `gorm:"not null;index"`
	AssignedTo  *uint            `gorm:"index"`

	// Relationships
	Project      Project `gorm:"foreignKey:ProjectID"`
	AssignedUser *User   `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
