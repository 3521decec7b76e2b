package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// ListTodoLists lists the caller's todo lists
func ListTodoLists(page, pageSize int) (*Page[TodoList], error) {
	var out Page[TodoList]
	if err := getJSON("/api/todo-lists", pageQuery(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTodoList fetches a list with its items
func GetTodoList(id uint) (*TodoList, error) {
	var out TodoList
	if err := getJSON(fmt.Sprintf("/api/todo-lists/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTodoList creates a list
func CreateTodoList(req TodoListRequest) (*TodoList, error) {
	var out TodoList
	if err := sendJSON(http.MethodPost, "/api/todo-lists", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTodoList deletes a list with its items
func DeleteTodoList(id uint) error {
	return sendJSON(http.MethodDelete, fmt.Sprintf("/api/todo-lists/%d", id), nil, nil)
}

// ListTodoItems lists items, optionally restricted to one list
func ListTodoItems(listID uint, page, pageSize int) (*Page[TodoItem], error) {
	q := pageQuery(page, pageSize)
	if listID != 0 {
		q["list"] = strconv.FormatUint(uint64(listID), 10)
	}

	var out Page[TodoItem]
	if err := getJSON("/api/todo-items", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTodoItem adds an item to a list
func CreateTodoItem(req TodoItemRequest) (*TodoItem, error) {
	var out TodoItem
	if err := sendJSON(http.MethodPost, "/api/todo-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleTodoItem flips is_done on an item
func ToggleTodoItem(id uint) (*TodoItem, error) {
	var out TodoItem
	if err := sendJSON(http.MethodPost, fmt.Sprintf("/api/todo-items/%d/toggle-done", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddSubItem adds a checklist entry under an item
func AddSubItem(parentID uint, title string) (*TodoSubItem, error) {
	var out TodoSubItem
	body := map[string]interface{}{"parent": parentID, "title": title}
	if err := sendJSON(http.MethodPost, "/api/todo-subitems", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPriorities returns the priority levels in sort order
func ListPriorities() ([]Priority, error) {
	var out []Priority
	if err := getJSON("/api/todos/priorities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
