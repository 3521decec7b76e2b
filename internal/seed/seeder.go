package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/auth"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/models"
)

const (
	// DemoSeed makes every seed-demo run produce the same data
	DemoSeed = 20250823

	DemoUserCount   = 25
	DemoPassword    = "Demo1234!"
	DemoEmailDomain = "@example.test"
)

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder creates a new seeder instance with the deterministic demo seed
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, faker: gofakeit.New(DemoSeed)}
}

// DemoStats counts what SeedDemo created
type DemoStats struct {
	CreatedUsers int
	UpdatedUsers int
	Posts        int
	Comments     int
	Likes        int
	TodoLists    int
	TodoItems    int
	TodoSubItems int
	Albums       int
	Photos       int
	Follows      int
}

func (s DemoStats) String() string {
	return fmt.Sprintf("users: %d created, %d updated; posts=%d comments=%d likes=%d; todos: lists=%d items=%d subitems=%d; albums=%d photos=%d follows=%d",
		s.CreatedUsers, s.UpdatedUsers, s.Posts, s.Comments, s.Likes,
		s.TodoLists, s.TodoItems, s.TodoSubItems, s.Albums, s.Photos, s.Follows)
}

// SeedDemo creates or refreshes demo01..demo25 with a follow ring and a small
// amount of content each, all in one transaction.
func (s *Seeder) SeedDemo(ctx context.Context) (*DemoStats, error) {
	hashed, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}

	stats := &DemoStats{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.seedDemoUsers(tx, hashed, stats)
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		if err := s.seedFollowRing(tx, users, stats); err != nil {
			return fmt.Errorf("failed to seed follows: %w", err)
		}
		for i := range users {
			if err := s.seedContent(tx, &users[i], stats); err != nil {
				return fmt.Errorf("failed to seed content for %s: %w", users[i].Username, err)
			}
		}
		if err := s.seedEngagement(tx, users, stats); err != nil {
			return fmt.Errorf("failed to seed comments and likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Demo data seeded", zap.Stringer("stats", stats))
	return stats, nil
}

func (s *Seeder) seedDemoUsers(tx *gorm.DB, hashed string, stats *DemoStats) ([]models.User, error) {
	for i := 1; i <= DemoUserCount; i++ {
		username := fmt.Sprintf("demo%02d", i)

		var user models.User
		err := tx.Where("username = ?", username).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Username: username, Password: hashed, IsActive: true}
			stats.CreatedUsers++
		case err != nil:
			return nil, err
		default:
			stats.UpdatedUsers++
		}

		user.Email = username + DemoEmailDomain
		user.FullName = s.faker.Name()

		r := s.faker.Float64()
		switch {
		case r < 0.60:
			user.ProfilePrivacy, user.IsPrivate = models.PrivacyPublic, false
		case r < 0.85:
			user.ProfilePrivacy, user.IsPrivate = models.PrivacyFriends, false
		default:
			user.ProfilePrivacy, user.IsPrivate = models.PrivacyPrivate, true
		}
		user.IsPremium = s.faker.Float64() < 0.15

		if err := tx.Save(&user).Error; err != nil {
			return nil, err
		}
	}

	var users []models.User
	err := tx.Where("email LIKE ?", "%"+DemoEmailDomain).Order("id").Find(&users).Error
	return users, err
}

// seedFollowRing makes every demo user follow the next one
func (s *Seeder) seedFollowRing(tx *gorm.DB, users []models.User, stats *DemoStats) error {
	for i := range users {
		target := users[(i+1)%len(users)]
		if target.ID == users[i].ID {
			continue
		}
		created, err := createMissing(tx, &models.Follow{
			FollowerID: users[i].ID,
			FollowedID: target.ID,
			Status:     models.FollowAccepted,
		}, "follower_id = ? AND followed_id = ?", users[i].ID, target.ID)
		if err != nil {
			return err
		}
		if created {
			stats.Follows++
		}
	}
	return nil
}

func (s *Seeder) seedContent(tx *gorm.DB, user *models.User, stats *DemoStats) error {
	f := s.faker

	for n := f.IntRange(1, 3); n > 0; n-- {
		post := models.Post{
			UserID:      user.ID,
			Title:       truncate(f.Sentence(5), 60),
			Body:        truncate(f.Paragraph(1, 3, 12, " "), 400),
			IsPublished: true,
			Visibility:  f.RandomString([]string{models.VisibilityPublic, models.VisibilityFollowers, models.VisibilityPublic}),
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		stats.Posts++
	}

	for n := f.IntRange(0, 2); n > 0; n-- {
		list := models.TodoList{
			UserID: user.ID,
			Name:   f.Word(),
			Kind:   f.RandomString(models.TodoKindChoices),
		}
		if err := tx.Create(&list).Error; err != nil {
			return err
		}
		stats.TodoLists++

		for m := f.IntRange(1, 3); m > 0; m-- {
			item := models.TodoItem{
				ListID:      list.ID,
				Title:       truncate(f.Sentence(3), 40),
				Description: truncate(f.Sentence(6), 120),
				IsDone:      f.Float64() < 0.3,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			stats.TodoItems++

			for k := f.IntRange(0, 2); k > 0; k-- {
				sub := models.TodoSubItem{ParentID: item.ID, Title: f.Word(), IsDone: f.Float64() < 0.4}
				if err := tx.Create(&sub).Error; err != nil {
					return err
				}
				stats.TodoSubItems++
			}
		}
	}

	if f.Float64() < 0.5 {
		album := models.Album{
			UserID:      user.ID,
			Title:       f.Word() + " Album",
			IsPublished: true,
			Visibility:  models.VisibilityPublic,
		}
		if err := tx.Create(&album).Error; err != nil {
			return err
		}
		stats.Albums++

		for n := f.IntRange(1, 3); n > 0; n-- {
			url := fmt.Sprintf("https://picsum.photos/seed/%s/320/240", f.UUID())
			photo := models.Photo{AlbumID: album.ID, Title: f.Word(), URL: url, ThumbnailURL: url, Metadata: models.JSONMap{}}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
			stats.Photos++
		}
	}
	return nil
}

func (s *Seeder) seedEngagement(tx *gorm.DB, users []models.User, stats *DemoStats) error {
	var posts []models.Post
	if err := tx.Select("id", "user_id").Order("id").Find(&posts).Error; err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}
	f := s.faker

	for _, u := range users {
		for n := f.IntRange(0, 2); n > 0; n-- {
			post := posts[f.IntRange(0, len(posts)-1)]
			if post.UserID == u.ID && f.Float64() >= 0.5 {
				continue
			}
			comment := models.Comment{PostID: post.ID, UserID: u.ID, Body: truncate(f.Sentence(10), 120)}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
			stats.Comments++
		}

		for n := f.IntRange(0, 3); n > 0; n-- {
			post := posts[f.IntRange(0, len(posts)-1)]
			created, err := createMissing(tx, &models.Like{PostID: post.ID, UserID: u.ID},
				"post_id = ? AND user_id = ?", post.ID, u.ID)
			if err != nil {
				return err
			}
			if created {
				stats.Likes++
			}
		}
	}
	return nil
}

// ResetStats counts what ResetDemo deleted
type ResetStats struct {
	Photos       int64
	Albums       int64
	Comments     int64
	Likes        int64
	TodoSubItems int64
	TodoItems    int64
	TodoLists    int64
	Posts        int64
	Follows      int64
	Users        int64
}

func (s ResetStats) String() string {
	return fmt.Sprintf("photos=%d albums=%d comments=%d likes=%d subitems=%d items=%d lists=%d posts=%d follows=%d users=%d",
		s.Photos, s.Albums, s.Comments, s.Likes, s.TodoSubItems, s.TodoItems, s.TodoLists, s.Posts, s.Follows, s.Users)
}

// ResetDemo deletes every @example.test account and the content attached to it
func (s *Seeder) ResetDemo(ctx context.Context) (*ResetStats, error) {
	stats := &ResetStats{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.User{}).Where("email LIKE ?", "%"+DemoEmailDomain).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		tx = tx.Session(&gorm.Session{SkipHooks: true})
		sub := tx.Session(&gorm.Session{NewDB: true})
		albums := sub.Model(&models.Album{}).Select("id").Where("user_id IN ?", ids)
		posts := sub.Model(&models.Post{}).Select("id").Where("user_id IN ?", ids)
		lists := sub.Model(&models.TodoList{}).Select("id").Where("user_id IN ?", ids)
		items := sub.Model(&models.TodoItem{}).Select("id").Where("list_id IN (?)", lists)

		steps := []struct {
			dst   *int64
			model interface{}
			where string
			args  []interface{}
		}{
			{&stats.Photos, &models.Photo{}, "album_id IN (?)", []interface{}{albums}},
			{&stats.Albums, &models.Album{}, "user_id IN ?", []interface{}{ids}},
			{&stats.Comments, &models.Comment{}, "post_id IN (?) OR user_id IN ?", []interface{}{posts, ids}},
			{&stats.Likes, &models.Like{}, "post_id IN (?) OR user_id IN ?", []interface{}{posts, ids}},
			{&stats.TodoSubItems, &models.TodoSubItem{}, "parent_id IN (?)", []interface{}{items}},
			{&stats.TodoItems, &models.TodoItem{}, "list_id IN (?)", []interface{}{lists}},
			{&stats.TodoLists, &models.TodoList{}, "user_id IN ?", []interface{}{ids}},
			{&stats.Posts, &models.Post{}, "user_id IN ?", []interface{}{ids}},
			{&stats.Follows, &models.Follow{}, "follower_id IN ? OR followed_id IN ?", []interface{}{ids, ids}},
			{nil, &models.RevokedToken{}, "user_id IN ?", []interface{}{ids}},
			{&stats.Users, &models.User{}, "id IN ?", []interface{}{ids}},
		}
		for _, step := range steps {
			result := tx.Where(step.where, step.args...).Delete(step.model)
			if result.Error != nil {
				return result.Error
			}
			if step.dst != nil {
				*step.dst = result.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Demo data removed", zap.Stringer("stats", stats))
	return stats, nil
}

// DevUser is an account ensured by CreateDevUsers
type DevUser struct {
	Username  string
	Password  string
	Email     string
	FullName  string
	Avatar    string
	About     string
	Phone     string
	Gender    string
	Superuser bool
}

// DevUsers are the fixed local development accounts
var DevUsers = []DevUser{
	{
		Username: "admin", Password: "admin", Email: "admin@example.com", FullName: "Admin User",
		Avatar:    "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
		About:     "System Administrator",
		Superuser: true,
	},
	{
		Username: "emre", Password: "emre", Email: "emre@example.com", FullName: "Emre Almaoğlu",
		Avatar: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150&h=150&fit=crop&crop=face",
		About:  "Full Stack Developer",
	},
	{
		Username: "ayse", Password: "ayse123", Email: "ayse@demo.trailium.com", FullName: "Ayşe Kara",
		Avatar: "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face",
		About:  "Marketing Specialist at N2Mobil", Phone: "+90 533 245 7812", Gender: "F",
	},
	{
		Username: "mehmet", Password: "mehmet123", Email: "mehmet@demo.trailium.com", FullName: "Mehmet Yılmaz",
		Avatar: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=150&h=150&fit=crop&crop=face",
		About:  "Software Engineer", Phone: "+90 555 123 4567", Gender: "M",
	},
}

// CreateDevUsers ensures every DevUsers account exists with its password and
// role flags reset. Profile fields are only filled on creation.
func (s *Seeder) CreateDevUsers(ctx context.Context) ([]string, error) {
	var created []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dev := range DevUsers {
			hashed, err := auth.HashPassword(dev.Password)
			if err != nil {
				return err
			}

			user := &models.User{
				Username:       dev.Username,
				Email:          dev.Email,
				FullName:       dev.FullName,
				Avatar:         dev.Avatar,
				About:          dev.About,
				Phone:          dev.Phone,
				Gender:         dev.Gender,
				ProfilePrivacy: models.PrivacyPublic,
				IsActive:       true,
			}
			user.Password = hashed
			isNew, err := createMissing(tx, user, "username = ?", dev.Username)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, dev.Username)
			}

			if err := tx.Model(&models.User{}).Where("username = ?", dev.Username).Updates(map[string]interface{}{
				"password":     hashed,
				"is_staff":     dev.Superuser,
				"is_superuser": dev.Superuser,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Dev users ensured", zap.Strings("created", created))
	return created, nil
}

// createMissing inserts row unless a row of the same model matches where.
func createMissing(tx *gorm.DB, row interface{}, where string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(row).Where(where, args...).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, tx.Create(row).Error
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
