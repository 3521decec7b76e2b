// Package visibility decides which profiles, posts and albums a viewer may
// see. Content is public, followers-only or private; only accepted follows
// count, and staff bypass profile rules.
package visibility

import (
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/models"
)

const followedBySQL = "SELECT followed_id FROM follows WHERE follower_id = ? AND status = ?"

// IsFollower reports whether viewer follows targetID with an accepted
// request. Users always follow themselves.
func IsFollower(db *gorm.DB, viewer *models.User, targetID uint) bool {
	if viewer == nil || viewer.ID == 0 {
		return false
	}
	if viewer.ID == targetID {
		return true
	}
	var count int64
	db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ? AND status = ?", viewer.ID, targetID, models.FollowAccepted).
		Count(&count)
	return count > 0
}

// CanViewProfile applies the target's profile privacy to viewer.
func CanViewProfile(db *gorm.DB, viewer, target *models.User) bool {
	if target == nil || viewer == nil || viewer.ID == 0 {
		return false
	}
	if viewer.IsAdmin() || viewer.ID == target.ID {
		return true
	}
	if target.IsPrivate {
		return false
	}

	switch target.ProfilePrivacy {
	case models.PrivacyPublic, "":
		return true
	case models.PrivacyFriends, "followers":
		return IsFollower(db, viewer, target.ID)
	default:
		return false
	}
}

// FilterByVisibility limits rows to those whose owner (ownerColumn) is the
// viewer, a public profile, or someone the viewer follows. Anonymous viewers
// see nothing and staff see everything.
func FilterByVisibility(viewer *models.User, ownerColumn string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if viewer == nil || viewer.ID == 0 {
			return tx.Where("1 = 0")
		}
		if viewer.IsAdmin() {
			return tx
		}
		return tx.Where(
			"("+ownerColumn+" = ? OR "+ownerColumn+" IN (SELECT id FROM users WHERE profile_privacy = ? AND is_private = ?) OR "+ownerColumn+" IN ("+followedBySQL+"))",
			viewer.ID, models.PrivacyPublic, false, viewer.ID, models.FollowAccepted,
		)
	}
}

// VisibleContent is the default listing rule for a table with user_id and
// visibility columns: public rows, the viewer's own rows, and followers-only
// rows of users the viewer follows.
func VisibleContent(viewer *models.User, table string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if viewer == nil || viewer.ID == 0 {
			return tx.Where(table+".visibility = ?", models.VisibilityPublic)
		}
		return tx.Where(
			"("+table+".visibility = ? OR "+table+".user_id = ? OR ("+table+".visibility = ? AND "+table+".user_id IN ("+followedBySQL+")))",
			models.VisibilityPublic, viewer.ID, models.VisibilityFollowers, viewer.ID, models.FollowAccepted,
		)
	}
}

// OwnerContent lists one owner's rows as the viewer may see them: everything
// for the owner, public and followers-only rows for accepted followers, and
// public rows for everyone else.
func OwnerContent(db *gorm.DB, viewer *models.User, ownerID uint, table string) func(*gorm.DB) *gorm.DB {
	var levels []string
	switch {
	case viewer != nil && viewer.ID == ownerID:
		levels = nil
	case IsFollower(db, viewer, ownerID):
		levels = []string{models.VisibilityPublic, models.VisibilityFollowers}
	default:
		levels = []string{models.VisibilityPublic}
	}

	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where(table+".user_id = ?", ownerID)
		if levels != nil {
			tx = tx.Where(table+".visibility IN ?", levels)
		}
		return tx
	}
}

// FollowedFeed selects public and followers-only rows from users the viewer
// follows with an accepted request.
func FollowedFeed(viewer *models.User, table string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(table+".user_id IN ("+followedBySQL+")", viewer.ID, models.FollowAccepted).
			Where(table+".visibility IN ?", []string{models.VisibilityPublic, models.VisibilityFollowers})
	}
}
