package models

import "github.com/monocle-dev/taskhub/internal/types"

// Membership links a user to a project. JoinedAt is the embedded CreatedAt.
type Membership struct {
	BaseModel

	UserID    uint                 `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint                 `gorm:"not null;uniqueIndex:idx_user_project;index"`
	Role      types.MembershipRole `gorm:"type:varchar(16);not null;default:member"`
	IsActive  bool                 `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID"`
	Project Project `gorm:"foreignKey:ProjectID"`
}

func (m Membership) IsOwner() bool {
	return m.Role == types.MembershipRoleOwner
}
