package ownership

import (
	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/types"
)

const lastOwnerMessage = "cannot remove the last owner of the project"

// CheckOwnerRemoval rejects taking away the owner role from the project's only owner.
// newRole nil means the membership is being deleted or patched without a role. ownerCount includes inactive owners.
func CheckOwnerRemoval(current models.Membership, newRole *types.MembershipRole, ownerCount int64) error {
	if !current.IsOwner() {
		return nil
	}
	if newRole != nil && *newRole == types.MembershipRoleOwner {
		return nil
	}
	if ownerCount <= 1 {
		return apperr.Invariant(lastOwnerMessage)
	}
	return nil
}

// CheckDuplicate rejects a second membership for the same (user, project) pair.
func CheckDuplicate(existing *models.Membership) error {
	if existing != nil {
		return apperr.Conflict("membership already exists")
	}
	return nil
}
