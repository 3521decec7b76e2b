package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/models"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize opens the configured database and stores it in DB.
func Initialize(cfg config.DatabaseConfig, development bool) error {
	gormLog := gormlogger.Default
	if development {
		gormLog = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := open(dialector, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	DB = db
	logger.Log.Info("Database connected", zap.String("driver", cfg.Driver))
	return nil
}

// OpenInMemory returns an isolated in-memory SQLite database with the schema
// migrated. name keeps concurrently open databases apart.
func OpenInMemory(name string) (*gorm.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := open(sqlite.Open(dsn), gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func open(dialector gorm.Dialector, gormLog gormlogger.Interface) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Album{},
		&models.Photo{},
		&models.Follow{},
		&models.TodoPriority{},
		&models.TodoList{},
		&models.TodoItem{},
		&models.TodoSubItem{},
	)
}

// Migrate runs auto-migration, extra indexes and default lookup rows on DB.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := createIndexes(DB); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := EnsureDefaultPriorities(DB); err != nil {
		return fmt.Errorf("failed to create default priorities: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))",
		"CREATE INDEX IF NOT EXISTS idx_comments_post_id_id ON comments (post_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_albums_user_created ON albums (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_todo_lists_user_created ON todo_lists (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires ON revoked_tokens (expires_at)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// DefaultPriorities are installed by migrations when missing.
var DefaultPriorities = []models.TodoPriority{
	{Key: "low", Name: "Low", Color: "#10b981", SortOrder: 10},
	{Key: "medium", Name: "Medium", Color: models.DefaultPriorityColor, SortOrder: 20, IsDefault: true},
	{Key: "high", Name: "High", Color: "#f59e0b", SortOrder: 30},
	{Key: "urgent", Name: "Urgent", Color: "#ef4444", SortOrder: 40},
}

// EnsureDefaultPriorities creates any missing default priority by key.
func EnsureDefaultPriorities(db *gorm.DB) error {
	for _, p := range DefaultPriorities {
		priority := p
		if err := db.Where(models.TodoPriority{Key: priority.Key}).FirstOrCreate(&priority).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
