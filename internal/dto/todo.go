package dto

import (
	"encoding/json"
	"time"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// PriorityResponse is the priority serializer
type PriorityResponse struct {
	ID        uint   `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
	IsDefault bool   `json:"is_default"`
}

// TodoListResponse is the list serializer with nested items
type TodoListResponse struct {
	ID             uint                `json:"id"`
	User           uint                `json:"user"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Kind           string              `json:"kind"`
	ProgressCached int                 `json:"progress_cached"`
	ItemsCount     int                 `json:"items_count"`
	Progress       int                 `json:"progress"`
	Items          []*TodoItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TodoItemResponse is the item serializer with nested sub-items
type TodoItemResponse struct {
	ID             uint                   `json:"id"`
	List           uint                   `json:"list"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	IsDone         bool                   `json:"is_done"`
	DueDate        *string                `json:"due_date"`
	Priority       *PriorityResponse      `json:"priority"`
	ProgressCached int                    `json:"progress_cached"`
	SubItems       []*TodoSubItemResponse `json:"subitems"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// TodoSubItemResponse is the sub-item serializer
type TodoSubItemResponse struct {
	ID          uint      `json:"id"`
	Parent      uint      `json:"parent"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsDone      bool      `json:"is_done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoListRequest is used for list create and updates
type TodoListRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Kind        *string `json:"kind" binding:"omitempty,oneof=personal work other"`
}

// TodoItemRequest is used for item create and updates. DueDate and
// PriorityID distinguish an explicit null from an absent key.
type TodoItemRequest struct {
	List        *uint           `json:"list"`
	Title       *string         `json:"title" binding:"omitempty,max=200"`
	Description *string         `json:"description" binding:"omitempty,max=2000"`
	IsDone      *bool           `json:"is_done"`
	DueDate     json.RawMessage `json:"due_date"`
	PriorityID  json.RawMessage `json:"priority_id"`
}

// TodoSubItemRequest is used for sub-item create and updates
type TodoSubItemRequest struct {
	Parent      *uint   `json:"parent"`
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsDone      *bool   `json:"is_done"`
}

func ToPriorityResponse(p *models.TodoPriority) *PriorityResponse {
	if p == nil {
		return nil
	}
	color := p.Color
	if color == "" {
		color = models.DefaultPriorityColor
	}
	return &PriorityResponse{
		ID:        p.ID,
		Key:       p.Key,
		Name:      p.Name,
		Color:     color,
		SortOrder: p.SortOrder,
		IsDefault: p.IsDefault,
	}
}

func ToPriorityResponses(priorities []models.TodoPriority) []*PriorityResponse {
	responses := make([]*PriorityResponse, len(priorities))
	for i := range priorities {
		responses[i] = ToPriorityResponse(&priorities[i])
	}
	return responses
}

// ToTodoListResponse converts a list with items and sub-items preloaded.
// progress is recomputed from the loaded items.
func ToTodoListResponse(list *models.TodoList) *TodoListResponse {
	items := make([]*TodoItemResponse, len(list.Items))
	progress := make([]int, len(list.Items))
	for i := range list.Items {
		items[i] = ToTodoItemResponse(&list.Items[i])
		progress[i] = list.Items[i].ProgressCached
	}

	return &TodoListResponse{
		ID:             list.ID,
		User:           list.UserID,
		Name:           list.Name,
		Description:    list.Description,
		Kind:           list.Kind,
		ProgressCached: list.ProgressCached,
		ItemsCount:     len(list.Items),
		Progress:       models.ListProgress(progress),
		Items:          items,
		CreatedAt:      list.CreatedAt,
		UpdatedAt:      list.UpdatedAt,
	}
}

func ToTodoListResponses(lists []models.TodoList) []*TodoListResponse {
	responses := make([]*TodoListResponse, len(lists))
	for i := range lists {
		responses[i] = ToTodoListResponse(&lists[i])
	}
	return responses
}

// ToTodoItemResponse converts an item with priority and sub-items preloaded
func ToTodoItemResponse(item *models.TodoItem) *TodoItemResponse {
	var due *string
	if item.DueDate != nil {
		formatted := item.DueDate.Format(DateLayout)
		due = &formatted
	}

	subitems := make([]*TodoSubItemResponse, len(item.SubItems))
	for i := range item.SubItems {
		subitems[i] = ToTodoSubItemResponse(&item.SubItems[i])
	}

	return &TodoItemResponse{
		ID:             item.ID,
		List:           item.ListID,
		Title:          item.Title,
		Description:    item.Description,
		IsDone:         item.IsDone,
		DueDate:        due,
		Priority:       ToPriorityResponse(item.Priority),
		ProgressCached: item.ProgressCached,
		SubItems:       subitems,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func ToTodoItemResponses(items []models.TodoItem) []*TodoItemResponse {
	responses := make([]*TodoItemResponse, len(items))
	for i := range items {
		responses[i] = ToTodoItemResponse(&items[i])
	}
	return responses
}

func ToTodoSubItemResponse(sub *models.TodoSubItem) *TodoSubItemResponse {
	return &TodoSubItemResponse{
		ID:          sub.ID,
		Parent:      sub.ParentID,
		Title:       sub.Title,
		Description: sub.Description,
		IsDone:      sub.IsDone,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
}

func ToTodoSubItemResponses(subs []models.TodoSubItem) []*TodoSubItemResponse {
	responses := make([]*TodoSubItemResponse, len(subs))
	for i := range subs {
		responses[i] = ToTodoSubItemResponse(&subs[i])
	}
	return responses
}
