// Package purge removes every account that is neither a superuser nor on an
// explicit keep list, together with the content those accounts own.
package purge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/metrics"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/telemetry"
)

// ConfirmPhrase must be supplied verbatim before a purge runs.
const ConfirmPhrase = "PURGE_NON_ADMIN_USERS"

// Summary counts what a purge removes. Counts are taken before deletion.
type Summary struct {
	Users         int64    `json:"users"`
	Posts         int64    `json:"posts"`
	Comments      int64    `json:"comments"`
	Likes         int64    `json:"likes"`
	Albums        int64    `json:"albums"`
	Photos        int64    `json:"photos"`
	Follows       int64    `json:"follows"`
	TodoLists     int64    `json:"todo_lists"`
	TodoItems     int64    `json:"todo_items"`
	TodoSubItems  int64    `json:"todo_sub_items"`
	KeptUsers     int64    `json:"kept_users"`
	KeptUsernames []string `json:"kept_usernames"`
	TotalRelated  int64    `json:"total_related"`
}

// Purger runs purges against one database
type Purger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Purger {
	return &Purger{db: db}
}

// Run summarizes, and unless dryRun is set, deletes. It records the run in
// metrics and traces.
func (p *Purger) Run(ctx context.Context, keep []string, dryRun bool) (*Summary, error) {
	ctx, span := telemetry.GetBusinessEvents().TracePurge(ctx, dryRun, len(keep))
	defer span.End()

	mode := "executed"
	run := p.Execute
	if dryRun {
		mode = "dry_run"
		run = p.Summarize
	}

	summary, err := run(ctx, keep)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		metrics.Get().PurgeRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("purge.users", summary.Users),
		attribute.Int64("purge.total_related", summary.TotalRelated),
	)
	metrics.Get().PurgeRuns.WithLabelValues(mode).Inc()
	return summary, nil
}

// Summarize reports what Execute would delete without touching any row.
func (p *Purger) Summarize(ctx context.Context, keep []string) (*Summary, error) {
	tx := p.db.WithContext(ctx)
	targets, err := selectTargets(tx, keep)
	if err != nil {
		return nil, err
	}
	return summarize(tx, targets)
}

// Execute deletes the target users and their content in one transaction and
// returns the summary taken just before deletion.
func (p *Purger) Execute(ctx context.Context, keep []string) (*Summary, error) {
	var summary *Summary
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets, err := selectTargets(tx, keep)
		if err != nil {
			return err
		}
		if summary, err = summarize(tx, targets); err != nil {
			return err
		}
		if len(targets.ids) == 0 {
			return nil
		}
		return deleteAll(tx.Session(&gorm.Session{SkipHooks: true}), targets.ids)
	})
	if err != nil {
		return nil, fmt.Errorf("purge failed: %w", err)
	}

	logger.Log.Warn("Purged non-admin users",
		zap.Int64("users", summary.Users),
		zap.Int64("total_related", summary.TotalRelated),
		zap.Int64("kept", summary.KeptUsers),
	)
	return summary, nil
}

type targetSet struct {
	ids       []uint
	keptNames []string
}

// selectTargets splits users into preserved (superusers plus keep matches on
// username or email) and everyone else.
func selectTargets(tx *gorm.DB, keep []string) (*targetSet, error) {
	preserved := tx.Model(&models.User{}).Where("is_superuser = ?", true)
	if len(keep) > 0 {
		preserved = preserved.Or("username IN ?", keep).Or("email IN ?", keep)
	}

	var kept []models.User
	if err := preserved.Select("id", "username").Order("id").Find(&kept).Error; err != nil {
		return nil, err
	}

	keptIDs := make([]uint, len(kept))
	set := &targetSet{keptNames: make([]string, len(kept))}
	for i, u := range kept {
		keptIDs[i] = u.ID
		set.keptNames[i] = u.Username
	}

	query := tx.Model(&models.User{})
	if len(keptIDs) > 0 {
		query = query.Where("id NOT IN ?", keptIDs)
	}
	if err := query.Order("id").Pluck("id", &set.ids).Error; err != nil {
		return nil, err
	}
	return set, nil
}

func summarize(tx *gorm.DB, targets *targetSet) (*Summary, error) {
	s := &Summary{
		Users:         int64(len(targets.ids)),
		KeptUsers:     int64(len(targets.keptNames)),
		KeptUsernames: targets.keptNames,
	}
	if len(targets.ids) == 0 {
		return s, nil
	}
	ids := targets.ids

	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&s.Posts, &models.Post{}, "user_id IN ?", []interface{}{ids}},
		{&s.Comments, &models.Comment{}, "user_id IN ?", []interface{}{ids}},
		{&s.Likes, &models.Like{}, "user_id IN ?", []interface{}{ids}},
		{&s.Albums, &models.Album{}, "user_id IN ?", []interface{}{ids}},
		{&s.Photos, &models.Photo{}, "album_id IN (?)", []interface{}{albumsOf(tx, ids)}},
		{&s.Follows, &models.Follow{}, "follower_id IN ? OR followed_id IN ?", []interface{}{ids, ids}},
		{&s.TodoLists, &models.TodoList{}, "user_id IN ?", []interface{}{ids}},
		{&s.TodoItems, &models.TodoItem{}, "list_id IN (?)", []interface{}{listsOf(tx, ids)}},
		{&s.TodoSubItems, &models.TodoSubItem{}, "parent_id IN (?)", []interface{}{itemsOf(tx, ids)}},
	}
	for _, c := range counts {
		if err := tx.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	s.TotalRelated = s.Posts + s.Comments + s.Likes + s.Albums + s.Photos +
		s.Follows + s.TodoLists + s.TodoItems + s.TodoSubItems
	return s, nil
}

// deleteAll removes rows children first. Rows of other users that hang off
// doomed posts and albums go too.
func deleteAll(tx *gorm.DB, ids []uint) error {
	posts := tx.Session(&gorm.Session{NewDB: true}).Model(&models.Post{}).Select("id").Where("user_id IN ?", ids)

	steps := []struct {
		model interface{}
		where string
		args  []interface{}
	}{
		{&models.Follow{}, "follower_id IN ? OR followed_id IN ?", []interface{}{ids, ids}},
		{&models.Like{}, "user_id IN ? OR post_id IN (?)", []interface{}{ids, posts}},
		{&models.Comment{}, "user_id IN ? OR post_id IN (?)", []interface{}{ids, posts}},
		{&models.Photo{}, "album_id IN (?)", []interface{}{albumsOf(tx, ids)}},
		{&models.Album{}, "user_id IN ?", []interface{}{ids}},
		{&models.TodoSubItem{}, "parent_id IN (?)", []interface{}{itemsOf(tx, ids)}},
		{&models.TodoItem{}, "list_id IN (?)", []interface{}{listsOf(tx, ids)}},
		{&models.TodoList{}, "user_id IN ?", []interface{}{ids}},
		{&models.Post{}, "user_id IN ?", []interface{}{ids}},
		{&models.RevokedToken{}, "user_id IN ?", []interface{}{ids}},
		{&models.User{}, "id IN ?", []interface{}{ids}},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return nil
}

func albumsOf(tx *gorm.DB, ids []uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).Model(&models.Album{}).Select("id").Where("user_id IN ?", ids)
}

func listsOf(tx *gorm.DB, ids []uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).Model(&models.TodoList{}).Select("id").Where("user_id IN ?", ids)
}

func itemsOf(tx *gorm.DB, ids []uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).Model(&models.TodoItem{}).Select("id").Where("list_id IN (?)", listsOf(tx, ids))
}
