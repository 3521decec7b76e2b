package models

import (
	"time"

	"gorm.io/gorm"
)

// Todo list kinds.
const (
	TodoKindPersonal = "personal"
	TodoKindWork     = "work"
	TodoKindOther    = "other"
)

var TodoKindChoices = []string{TodoKindPersonal, TodoKindWork, TodoKindOther}

// DefaultPriorityColor is used when a priority has no explicit color.
const DefaultPriorityColor = "#6b7280"

// TodoPriority is a shared lookup row referenced by todo items.
type TodoPriority struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Key       string `gorm:"size:32;uniqueIndex;not null" json:"key"`
	Name      string `gorm:"size:64;not null" json:"name"`
	Color     string `gorm:"size:16;not null;default:'#6b7280'" json:"color"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
	IsDefault bool   `gorm:"not null" json:"is_default"`
}

func (TodoPriority) TableName() string {
	return "todo_priorities"
}

// TodoList is a named collection of todo items owned by one user.
type TodoList struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user"`
	User           User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Name           string     `gorm:"size:200;not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	Kind           string     `gorm:"size:20;not null;default:personal" json:"kind"`
	ProgressCached int        `gorm:"not null;default:0" json:"progress_cached"`
	Items          []TodoItem `gorm:"foreignKey:ListID" json:"items,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (TodoList) TableName() string {
	return "todo_lists"
}

// TodoItem is a task inside a list. Its progress is derived from its sub-items.
type TodoItem struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ListID         uint          `gorm:"not null;index" json:"list"`
	List           *TodoList     `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
	Title          string        `gorm:"size:200;not null" json:"title"`
	Description    string        `gorm:"type:text" json:"description"`
	IsDone         bool          `gorm:"not null" json:"is_done"`
	DueDate        *time.Time    `gorm:"type:date" json:"due_date"`
	PriorityID     *uint         `gorm:"index" json:"priority_id"`
	Priority       *TodoPriority `gorm:"foreignKey:PriorityID;constraint:OnDelete:RESTRICT" json:"priority"`
	ProgressCached int           `gorm:"not null;default:0" json:"progress_cached"`
	SubItems       []TodoSubItem `gorm:"foreignKey:ParentID" json:"subitems,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (TodoItem) TableName() string {
	return "todo_items"
}

// AfterSave refreshes this item's progress and then its list's.
func (i *TodoItem) AfterSave(tx *gorm.DB) error {
	if err := RecalculateItemProgress(tx, i.ID); err != nil {
		return err
	}
	return RecalculateListProgress(tx, i.ListID)
}

// BeforeDelete removes the item's sub-items without firing their hooks.
func (i *TodoItem) BeforeDelete(tx *gorm.DB) error {
	if i.ID == 0 {
		return nil
	}
	return tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
		Where("parent_id = ?", i.ID).
		Delete(&TodoSubItem{}).Error
}

// AfterDelete refreshes the owning list's progress.
func (i *TodoItem) AfterDelete(tx *gorm.DB) error {
	return RecalculateListProgress(tx, i.ListID)
}

// TodoSubItem is a checklist entry under a TodoItem.
type TodoSubItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ParentID    uint      `gorm:"not null;index" json:"parent"`
	Parent      *TodoItem `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	IsDone      bool      `gorm:"not null" json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TodoSubItem) TableName() string {
	return "todo_sub_items"
}

// AfterSave refreshes the parent item and its list.
func (s *TodoSubItem) AfterSave(tx *gorm.DB) error {
	return recalculateFromSubItem(tx, s.ParentID)
}

// AfterDelete refreshes the parent item and its list.
func (s *TodoSubItem) AfterDelete(tx *gorm.DB) error {
	return recalculateFromSubItem(tx, s.ParentID)
}

func recalculateFromSubItem(tx *gorm.DB, parentID uint) error {
	if parentID == 0 {
		return nil
	}
	if err := RecalculateItemProgress(tx, parentID); err != nil {
		return err
	}
	var listID uint
	if err := tx.Model(&TodoItem{}).Where("id = ?", parentID).Pluck("list_id", &listID).Error; err != nil {
		return err
	}
	return RecalculateListProgress(tx, listID)
}
