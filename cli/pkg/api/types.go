package api

import "time"

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// TokenPair is returned by login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse is returned by POST /api/auth/refresh
type RefreshResponse struct {
	Access string `json:"access"`
}

// User is the full profile returned by /api/users/me
type User struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	About       string `json:"about"`
	IsPremium   bool   `json:"is_premium"`
	IsPrivate   bool   `json:"is_private"`
	Visibility  string `json:"visibility"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

// UserBrief is the nested {id, username} form
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Page is the paginated list envelope
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Post is a post with its author and counters
type Post struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	User          UserBrief `json:"user"`
	IsPublished   bool      `json:"is_published"`
	Visibility    string    `json:"visibility"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostRequest creates a post. Empty visibility leaves the server default.
type PostRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Visibility string `json:"visibility,omitempty"`
}

// Comment is a comment on a post
type Comment struct {
	ID        uint      `json:"id"`
	User      UserBrief `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a follow relation between two users
type Follow struct {
	ID        uint      `json:"id"`
	Follower  UserBrief `json:"follower"`
	Followed  UserBrief `json:"followed"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageResponse is the {"message": ...} body of follow actions
type MessageResponse struct {
	Message string `json:"message"`
}

// Priority is a todo priority level
type Priority struct {
	ID        uint   `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
	IsDefault bool   `json:"is_default"`
}

// TodoList is a todo list with nested items
type TodoList struct {
	ID          uint        `json:"id"`
	User        uint        `json:"user"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Kind        string      `json:"kind"`
	ItemsCount  int         `json:"items_count"`
	Progress    int         `json:"progress"`
	Items       []*TodoItem `json:"items"`
}

// TodoListRequest creates a list. Empty kind leaves the server default.
type TodoListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// TodoItem is an item with its sub-items
type TodoItem struct {
	ID             uint           `json:"id"`
	List           uint           `json:"list"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	IsDone         bool           `json:"is_done"`
	DueDate        *string        `json:"due_date"`
	Priority       *Priority      `json:"priority"`
	ProgressCached int            `json:"progress_cached"`
	SubItems       []*TodoSubItem `json:"subitems"`
}

// TodoItemRequest creates an item. DueDate is YYYY-MM-DD.
type TodoItemRequest struct {
	List       uint    `json:"list"`
	Title      string  `json:"title"`
	DueDate    *string `json:"due_date,omitempty"`
	PriorityID *uint   `json:"priority_id,omitempty"`
}

// TodoSubItem is a checklist entry under an item
type TodoSubItem struct {
	ID     uint   `json:"id"`
	Parent uint   `json:"parent"`
	Title  string `json:"title"`
	IsDone bool   `json:"is_done"`
}

// PurgeRequest is the body of the purge endpoint
type PurgeRequest struct {
	Confirm string   `json:"confirm"`
	Keep    []string `json:"keep,omitempty"`
	DryRun  bool     `json:"dry_run"`
}

// PurgeSummary counts rows affected by a purge
type PurgeSummary struct {
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

// PurgeResponse wraps the summary. WouldDelete is set for dry runs and
// Deleted for executed purges.
type PurgeResponse struct {
	Mode        string        `json:"mode"`
	Message     string        `json:"message"`
	WouldDelete *PurgeSummary `json:"would_delete,omitempty"`
	Deleted     *PurgeSummary `json:"deleted,omitempty"`
}

// Summary returns whichever summary the response carries
func (r *PurgeResponse) Summary() *PurgeSummary {
	if r.Deleted != nil {
		return r.Deleted
	}
	return r.WouldDelete
}

// errorBody covers the error shapes the server produces
type errorBody struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Field          string `json:"field"`
	Details        string `json:"details"`
	Error          string `json:"error"`
	Detail         string `json:"detail"`
	RequiredPhrase string `json:"required_phrase"`
}
