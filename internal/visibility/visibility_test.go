package visibility

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/models"
)

type VisibilitySuite struct {
	suite.Suite
	db *gorm.DB

	alice *models.User // author
	bob   *models.User // accepted follower of alice
	carol *models.User // pending follower of alice
	dave  *models.User // stranger
	staff *models.User
}

func TestVisibilitySuite(t *testing.T) {
	suite.Run(t, new(VisibilitySuite))
}

func (s *VisibilitySuite) SetupTest() {
	db, err := database.OpenInMemory(s.T().Name())
	s.Require().NoError(err)
	s.db = db

	mk := func(name string, mutate func(u *models.User)) *models.User {
		u := &models.User{Username: name, Password: "x", IsActive: true, ProfilePrivacy: models.PrivacyPublic}
		if mutate != nil {
			mutate(u)
		}
		s.Require().NoError(db.Create(u).Error)
		return u
	}
	s.alice = mk("alice", func(u *models.User) { u.ProfilePrivacy = models.PrivacyFriends })
	s.bob = mk("bob", nil)
	s.carol = mk("carol", func(u *models.User) { u.ProfilePrivacy = models.PrivacyPrivate })
	s.dave = mk("dave", func(u *models.User) { u.IsPrivate = true })
	s.staff = mk("ranger", func(u *models.User) { u.IsStaff = true })

	s.Require().NoError(db.Create(&models.Follow{FollowerID: s.bob.ID, FollowedID: s.alice.ID, Status: models.FollowAccepted}).Error)
	s.Require().NoError(db.Create(&models.Follow{FollowerID: s.carol.ID, FollowedID: s.alice.ID, Status: models.FollowPending}).Error)

	for _, vis := range []string{models.VisibilityPublic, models.VisibilityFollowers, models.VisibilityPrivate} {
		s.Require().NoError(db.Create(&models.Post{UserID: s.alice.ID, Title: "alice " + vis, Visibility: vis, IsPublished: true}).Error)
	}
	s.Require().NoError(db.Create(&models.Post{UserID: s.dave.ID, Title: "dave private", Visibility: models.VisibilityPrivate}).Error)
}

func (s *VisibilitySuite) titles(scope func(*gorm.DB) *gorm.DB) []string {
	var titles []string
	s.Require().NoError(s.db.Model(&models.Post{}).Scopes(scope).Order("id").Pluck("title", &titles).Error)
	return titles
}

func (s *VisibilitySuite) TestIsFollower() {
	s.True(IsFollower(s.db, s.bob, s.alice.ID))
	s.False(IsFollower(s.db, s.carol, s.alice.ID))
	s.True(IsFollower(s.db, s.alice, s.alice.ID))
	s.False(IsFollower(s.db, nil, s.alice.ID))
}

func (s *VisibilitySuite) TestCanViewProfile() {
	s.True(CanViewProfile(s.db, s.bob, s.alice), "accepted follower sees friends profile")
	s.False(CanViewProfile(s.db, s.carol, s.alice), "pending follower does not")
	s.True(CanViewProfile(s.db, s.alice, s.bob), "public profile")
	s.False(CanViewProfile(s.db, s.alice, s.carol), "private profile")
	s.False(CanViewProfile(s.db, s.alice, s.dave), "is_private wins")
	s.True(CanViewProfile(s.db, s.staff, s.dave), "staff bypass")
	s.True(CanViewProfile(s.db, s.dave, s.dave), "self")
	s.False(CanViewProfile(s.db, nil, s.bob), "anonymous")
}

func (s *VisibilitySuite) TestVisibleContent() {
	s.Equal([]string{"alice public", "alice followers"}, s.titles(VisibleContent(s.bob, "posts")))
	s.Equal([]string{"alice public"}, s.titles(VisibleContent(s.carol, "posts")))
	s.Equal([]string{"alice public", "alice followers", "alice private"}, s.titles(VisibleContent(s.alice, "posts")))
	s.Equal([]string{"alice public", "dave private"}, s.titles(VisibleContent(s.dave, "posts")))
}

func (s *VisibilitySuite) TestOwnerContent() {
	s.Equal([]string{"alice public", "alice followers", "alice private"}, s.titles(OwnerContent(s.db, s.alice, s.alice.ID, "posts")))
	s.Equal([]string{"alice public", "alice followers"}, s.titles(OwnerContent(s.db, s.bob, s.alice.ID, "posts")))
	s.Equal([]string{"alice public"}, s.titles(OwnerContent(s.db, s.carol, s.alice.ID, "posts")))
	s.Empty(s.titles(OwnerContent(s.db, s.bob, s.dave.ID, "posts")))
}

func (s *VisibilitySuite) TestFollowedFeed() {
	s.Equal([]string{"alice public", "alice followers"}, s.titles(FollowedFeed(s.bob, "posts")))
	s.Empty(s.titles(FollowedFeed(s.carol, "posts")))
}

func (s *VisibilitySuite) TestFilterByVisibility() {
	var names []string
	query := func(viewer *models.User) []string {
		names = nil
		s.Require().NoError(s.db.Model(&models.User{}).Scopes(FilterByVisibility(viewer, "users.id")).Order("id").Pluck("username", &names).Error)
		return names
	}

	s.Equal([]string{"alice", "bob", "ranger"}, query(s.bob))
	s.Equal([]string{"bob", "carol", "ranger"}, query(s.carol))
	s.Equal([]string{"alice", "bob", "carol", "dave", "ranger"}, query(s.staff))
	s.Empty(query(nil))
}
