package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONMap is a free-form JSON object column.
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDBDataType stores JSONMap as jsonb on postgres and text elsewhere.
func (JSONMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// Album groups photos. Its visibility follows the same rules as posts.
type Album struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	Visibility  string    `gorm:"size:10;not null;default:public" json:"visibility"`
	Photos      []Photo   `gorm:"foreignKey:AlbumID" json:"photos,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Album) TableName() string {
	return "albums"
}

// Photo is a single image inside an album.
type Photo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AlbumID      uint      `gorm:"not null;index" json:"album_id"`
	Album        *Album    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"-"`
	Title        string    `gorm:"size:200" json:"title"`
	URL          string    `gorm:"column:url;size:500" json:"url"`
	ThumbnailURL string    `gorm:"column:thumbnail_url;size:500" json:"thumbnail_url"`
	Metadata     JSONMap   `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Photo) TableName() string {
	return "photos"
}
