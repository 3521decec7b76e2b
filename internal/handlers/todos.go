package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/dto"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/util"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

const (
	todoNameMaxLength        = 200
	todoDescriptionMaxLength = 2000
)

var jsonNull = []byte("null")

// Querysets. Every caller, staff included, only sees what hangs off their own
// lists. Staff may still attach items to other users' lists on write.

func todoListScope(viewer *models.User) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("todo_lists.user_id = ?", viewer.ID)
	}
}

func ownedListIDs(viewer *models.User) *gorm.DB {
	return database.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.TodoList{}).
		Select("id").
		Where("user_id = ?", viewer.ID)
}

func todoItemScope(viewer *models.User) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("todo_items.list_id IN (?)", ownedListIDs(viewer))
	}
}

func todoSubItemScope(viewer *models.User) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		ownedItems := database.DB.Session(&gorm.Session{NewDB: true}).
			Model(&models.TodoItem{}).
			Select("id").
			Where("list_id IN (?)", ownedListIDs(viewer))
		return tx.Where("todo_sub_items.parent_id IN (?)", ownedItems)
	}
}

func orderByID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id")
}

func preloadItemTree(prefix string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Preload(prefix+"Priority").Preload(prefix+"SubItems", orderByID)
	}
}

func preloadListTree(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Items", orderByID).Scopes(preloadItemTree("Items."))
}

func loadTodoList(viewer *models.User, id uint) (*models.TodoList, error) {
	var list models.TodoList
	err := database.DB.Model(&models.TodoList{}).
		Scopes(todoListScope(viewer), preloadListTree).
		Where("todo_lists.id = ?", id).
		Take(&list).Error
	return &list, err
}

func loadTodoItem(viewer *models.User, id uint) (*models.TodoItem, error) {
	var item models.TodoItem
	err := database.DB.Model(&models.TodoItem{}).
		Scopes(todoItemScope(viewer), preloadItemTree("")).
		Where("todo_items.id = ?", id).
		Take(&item).Error
	return &item, err
}

func loadTodoSubItem(viewer *models.User, id uint) (*models.TodoSubItem, error) {
	var sub models.TodoSubItem
	err := database.DB.Model(&models.TodoSubItem{}).
		Scopes(todoSubItemScope(viewer)).
		Where("todo_sub_items.id = ?", id).
		Take(&sub).Error
	return &sub, err
}

// ListTodoLists pages through the caller's lists
// GET /api/todo-lists
func (h *Handlers) ListTodoLists(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	base := database.DB.Model(&models.TodoList{}).Scopes(todoListScope(currentUser))

	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var lists []models.TodoList
		err := q.Scopes(preloadListTree).
			Order("todo_lists.created_at DESC").
			Order("todo_lists.id DESC").
			Find(&lists).Error
		if err != nil {
			return nil, err
		}
		return dto.ToTodoListResponses(lists), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTodoList returns one list with items and sub-items
// GET /api/todo-lists/:id
func (h *Handlers) GetTodoList(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo list")
	if !ok {
		return
	}

	list, err := loadTodoList(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	c.JSON(http.StatusOK, dto.ToTodoListResponse(list))
}

// CreateTodoList creates a list owned by the caller
// POST /api/todo-lists
func (h *Handlers) CreateTodoList(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.TodoListRequest
	if !util.BindJSON(c, &req) {
		return
	}

	list := models.TodoList{UserID: currentUser.ID, Kind: models.TodoKindPersonal}
	if err := applyTodoListRequest(&list, &req, false); err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	if err := database.DB.Create(&list).Error; err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}

	h.respondTodoList(c, currentUser, list.ID, http.StatusCreated)
}

// UpdateTodoList edits a list
// PUT|PATCH /api/todo-lists/:id
func (h *Handlers) UpdateTodoList(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo list")
	if !ok {
		return
	}

	list, err := loadTodoList(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}

	var req dto.TodoListRequest
	if !util.BindJSON(c, &req) {
		return
	}
	if err := applyTodoListRequest(list, &req, c.Request.Method == http.MethodPatch); err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	if err := database.DB.Omit(clause.Associations).Save(list).Error; err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}

	h.respondTodoList(c, currentUser, list.ID, http.StatusOK)
}

// DeleteTodoList removes a list with its items and sub-items
// DELETE /api/todo-lists/:id
func (h *Handlers) DeleteTodoList(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo list")
	if !ok {
		return
	}

	var list models.TodoList
	if err := database.DB.Scopes(todoListScope(currentUser)).Where("todo_lists.id = ?", id).Take(&list).Error; err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		bulk := tx.Session(&gorm.Session{SkipHooks: true})
		itemIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&models.TodoItem{}).Select("id").Where("list_id = ?", list.ID)
		if err := bulk.Where("parent_id IN (?)", itemIDs).Delete(&models.TodoSubItem{}).Error; err != nil {
			return err
		}
		if err := bulk.Where("list_id = ?", list.ID).Delete(&models.TodoItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TodoList{}, list.ID).Error
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) respondTodoList(c *gin.Context, viewer *models.User, id uint, status int) {
	list, err := loadTodoList(viewer, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo list")
		return
	}
	c.JSON(status, dto.ToTodoListResponse(list))
}

func applyTodoListRequest(list *models.TodoList, req *dto.TodoListRequest, partial bool) error {
	if req.Name != nil || !partial {
		name, err := validation.ValidateText(deref(req.Name), "name", todoNameMaxLength)
		if err != nil {
			return err
		}
		if name == "" {
			return requiredField("name")
		}
		list.Name = name
	}
	if req.Description != nil {
		description, err := validation.ValidateBody(*req.Description, "description", todoDescriptionMaxLength)
		if err != nil {
			return err
		}
		list.Description = description
	}
	if req.Kind != nil {
		list.Kind = *req.Kind
	}
	return nil
}

// ListTodoItems pages through the caller's items
// GET /api/todo-items?list=
func (h *Handlers) ListTodoItems(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	base := database.DB.Model(&models.TodoItem{}).Scopes(todoItemScope(currentUser))
	if listID, ok := util.QueryUint(c, "list"); ok {
		base = base.Where("todo_items.list_id = ?", listID)
	}

	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var items []models.TodoItem
		if err := q.Scopes(preloadItemTree("")).Order("todo_items.id").Find(&items).Error; err != nil {
			return nil, err
		}
		return dto.ToTodoItemResponses(items), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTodoItem returns one item with its priority and sub-items
// GET /api/todo-items/:id
func (h *Handlers) GetTodoItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo item")
	if !ok {
		return
	}

	item, err := loadTodoItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	c.JSON(http.StatusOK, dto.ToTodoItemResponse(item))
}

// CreateTodoItem adds an item to one of the caller's lists
// POST /api/todo-items
func (h *Handlers) CreateTodoItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.TodoItemRequest
	if !util.BindJSON(c, &req) {
		return
	}

	var item models.TodoItem
	if err := applyTodoItemRequest(currentUser, &item, &req, false); err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	if err := database.DB.Omit(clause.Associations).Create(&item).Error; err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	h.respondTodoItem(c, item.ID, http.StatusCreated)
}

// UpdateTodoItem edits an item. Moving it to another list refreshes both lists.
// PUT|PATCH /api/todo-items/:id
func (h *Handlers) UpdateTodoItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo item")
	if !ok {
		return
	}

	item, err := loadTodoItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	var req dto.TodoItemRequest
	if !util.BindJSON(c, &req) {
		return
	}

	previousList := item.ListID
	if err := applyTodoItemRequest(currentUser, item, &req, c.Request.Method == http.MethodPatch); err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if previousList != item.ListID {
			return models.RecalculateListProgress(tx, previousList)
		}
		return nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	h.respondTodoItem(c, item.ID, http.StatusOK)
}

// DeleteTodoItem removes an item and its sub-items
// DELETE /api/todo-items/:id
func (h *Handlers) DeleteTodoItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo item")
	if !ok {
		return
	}

	var item models.TodoItem
	if err := database.DB.Scopes(todoItemScope(currentUser)).Where("todo_items.id = ?", id).Take(&item).Error; err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	if err := database.DB.Delete(&item).Error; err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleTodoItem flips is_done and returns the refreshed item
// POST /api/todo-items/:id/toggle-done
func (h *Handlers) ToggleTodoItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo item")
	if !ok {
		return
	}

	item, err := loadTodoItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	item.IsDone = !item.IsDone
	if err := database.DB.Omit(clause.Associations).Save(item).Error; err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}

	h.respondTodoItem(c, item.ID, http.StatusOK)
}

// respondTodoItem renders an item the caller has just written. The row is
// reloaded without the queryset scope since staff may write to other lists.
func (h *Handlers) respondTodoItem(c *gin.Context, id uint, status int) {
	var item models.TodoItem
	err := database.DB.Scopes(preloadItemTree("")).Where("todo_items.id = ?", id).Take(&item).Error
	if err != nil {
		util.RespondWithError(c, err, "Todo item")
		return
	}
	c.JSON(status, dto.ToTodoItemResponse(&item))
}

func applyTodoItemRequest(viewer *models.User, item *models.TodoItem, req *dto.TodoItemRequest, partial bool) error {
	if req.List != nil {
		if err := checkListAccess(viewer, *req.List); err != nil {
			return err
		}
		item.ListID = *req.List
	} else if !partial && item.ListID == 0 {
		return requiredField("list")
	}

	if req.Title != nil || !partial {
		title, err := validation.ValidateText(deref(req.Title), "title", todoNameMaxLength)
		if err != nil {
			return err
		}
		if title == "" {
			return requiredField("title")
		}
		item.Title = title
	}
	if req.Description != nil {
		description, err := validation.ValidateBody(*req.Description, "description", todoDescriptionMaxLength)
		if err != nil {
			return err
		}
		item.Description = description
	}
	if req.IsDone != nil {
		item.IsDone = *req.IsDone
	}

	if len(req.DueDate) > 0 {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return err
		}
		item.DueDate = due
	}
	if len(req.PriorityID) > 0 {
		priorityID, err := parsePriorityID(req.PriorityID)
		if err != nil {
			return err
		}
		item.PriorityID = priorityID
		item.Priority = nil
	}
	return nil
}

func checkListAccess(viewer *models.User, listID uint) error {
	var list models.TodoList
	if err := database.DB.Select("id", "user_id").Take(&list, listID).Error; err != nil {
		return &validation.Error{Field: "list", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", listID)}
	}
	if !viewer.IsStaff && list.UserID != viewer.ID {
		return &validation.Error{Field: "list", Message: "You do not have access to this list."}
	}
	return nil
}

// parseDueDate accepts null or a YYYY-MM-DD string.
func parseDueDate(raw json.RawMessage) (*time.Time, error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, dueDateError()
	}
	if value == "" {
		return nil, nil
	}
	due, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return nil, dueDateError()
	}
	return &due, nil
}

func dueDateError() error {
	return &validation.Error{Field: "due_date", Message: "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
}

// parsePriorityID accepts null or the id of an existing priority.
func parsePriorityID(raw json.RawMessage) (*uint, error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, nil
	}

	var id uint
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return nil, &validation.Error{Field: "priority_id", Message: "Incorrect type. Expected pk value."}
	}

	var count int64
	if err := database.DB.Model(&models.TodoPriority{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &validation.Error{Field: "priority_id", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)}
	}
	return &id, nil
}

// ListTodoSubItems pages through the caller's sub-items
// GET /api/todo-subitems?parent=
func (h *Handlers) ListTodoSubItems(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	base := database.DB.Model(&models.TodoSubItem{}).Scopes(todoSubItemScope(currentUser))
	if parentID, ok := util.QueryUint(c, "parent"); ok {
		base = base.Where("todo_sub_items.parent_id = ?", parentID)
	}

	page, err := util.Paginate(c, base, util.DefaultPageSize, func(q *gorm.DB) (interface{}, error) {
		var subs []models.TodoSubItem
		if err := q.Order("todo_sub_items.id").Find(&subs).Error; err != nil {
			return nil, err
		}
		return dto.ToTodoSubItemResponses(subs), nil
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTodoSubItem
// GET /api/todo-subitems/:id
func (h *Handlers) GetTodoSubItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo sub-item")
	if !ok {
		return
	}

	sub, err := loadTodoSubItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	c.JSON(http.StatusOK, dto.ToTodoSubItemResponse(sub))
}

// CreateTodoSubItem adds a sub-item under one of the caller's items
// POST /api/todo-subitems
func (h *Handlers) CreateTodoSubItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req dto.TodoSubItemRequest
	if !util.BindJSON(c, &req) {
		return
	}

	var sub models.TodoSubItem
	if err := applyTodoSubItemRequest(currentUser, &sub, &req, false); err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	if err := database.DB.Omit(clause.Associations).Create(&sub).Error; err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTodoSubItemResponse(&sub))
}

// UpdateTodoSubItem edits a sub-item. Moving it refreshes the previous parent.
// PUT|PATCH /api/todo-subitems/:id
func (h *Handlers) UpdateTodoSubItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo sub-item")
	if !ok {
		return
	}

	sub, err := loadTodoSubItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}

	var req dto.TodoSubItemRequest
	if !util.BindJSON(c, &req) {
		return
	}

	previousParent := sub.ParentID
	if err := applyTodoSubItemRequest(currentUser, sub, &req, c.Request.Method == http.MethodPatch); err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(sub).Error; err != nil {
			return err
		}
		if previousParent == sub.ParentID {
			return nil
		}
		if err := models.RecalculateItemProgress(tx, previousParent); err != nil {
			return err
		}
		var listID uint
		if err := tx.Model(&models.TodoItem{}).Where("id = ?", previousParent).Pluck("list_id", &listID).Error; err != nil {
			return err
		}
		return models.RecalculateListProgress(tx, listID)
	})
	if err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	c.JSON(http.StatusOK, dto.ToTodoSubItemResponse(sub))
}

// DeleteTodoSubItem
// DELETE /api/todo-subitems/:id
func (h *Handlers) DeleteTodoSubItem(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	id, ok := util.ParseIDParam(c, "id", "Todo sub-item")
	if !ok {
		return
	}

	sub, err := loadTodoSubItem(currentUser, id)
	if err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	if err := database.DB.Delete(sub).Error; err != nil {
		util.RespondWithError(c, err, "Todo sub-item")
		return
	}
	c.Status(http.StatusNoContent)
}

func applyTodoSubItemRequest(viewer *models.User, sub *models.TodoSubItem, req *dto.TodoSubItemRequest, partial bool) error {
	if req.Parent != nil {
		if err := checkParentAccess(viewer, *req.Parent); err != nil {
			return err
		}
		sub.ParentID = *req.Parent
	} else if !partial && sub.ParentID == 0 {
		return requiredField("parent")
	}

	if req.Title != nil || !partial {
		title, err := validation.ValidateText(deref(req.Title), "title", todoNameMaxLength)
		if err != nil {
			return err
		}
		if title == "" {
			return requiredField("title")
		}
		sub.Title = title
	}
	if req.Description != nil {
		description, err := validation.ValidateBody(*req.Description, "description", todoDescriptionMaxLength)
		if err != nil {
			return err
		}
		sub.Description = description
	}
	if req.IsDone != nil {
		sub.IsDone = *req.IsDone
	}
	return nil
}

func checkParentAccess(viewer *models.User, parentID uint) error {
	var owner struct{ UserID uint }
	err := database.DB.Model(&models.TodoItem{}).
		Select("todo_lists.user_id").
		Joins("JOIN todo_lists ON todo_lists.id = todo_items.list_id").
		Where("todo_items.id = ?", parentID).
		Take(&owner).Error
	if err != nil {
		return &validation.Error{Field: "parent", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", parentID)}
	}
	if !viewer.IsStaff && owner.UserID != viewer.ID {
		return &validation.Error{Field: "parent", Message: "This item does not belong to you."}
	}
	return nil
}

// ListPriorities returns every priority ordered by sort_order
// GET /api/todos/priorities
func (h *Handlers) ListPriorities(c *gin.Context) {
	var priorities []models.TodoPriority
	if err := database.DB.Order("sort_order").Order("id").Find(&priorities).Error; err != nil {
		util.RespondWithError(c, err, "Priority")
		return
	}
	c.JSON(http.StatusOK, dto.ToPriorityResponses(priorities))
}

// GetPriority
// GET /api/todos/priorities/:id
func (h *Handlers) GetPriority(c *gin.Context) {
	id, ok := util.ParseIDParam(c, "id", "Priority")
	if !ok {
		return
	}

	var priority models.TodoPriority
	if err := database.DB.First(&priority, id).Error; err != nil {
		util.RespondWithError(c, err, "Priority")
		return
	}
	c.JSON(http.StatusOK, dto.ToPriorityResponse(&priority))
}
