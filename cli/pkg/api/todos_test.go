package api

import (
	"strings"
	"testing"
)

func TestListTodoLists(t *testing.T) {
	newTestServer(t, respond(200, `{"count":1,"next":null,"previous":null,"results":[
		{"id":1,"user":3,"name":"Groceries","kind":"personal","items_count":2,"progress":50,"items":[]}]}`))

	page, err := ListTodoLists(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Results) != 1 || page.Results[0].Progress != 50 || page.Results[0].Kind != "personal" {
		t.Errorf("page = %+v", page)
	}
}

func TestCreateTodoItem(t *testing.T) {
	last := newTestServer(t, respond(201, `{"id":4,"list":1,"title":"Milk","is_done":false,"due_date":"2026-11-01","priority":{"id":3,"key":"high"},"progress_cached":0,"subitems":[]}`))

	due := "2026-11-01"
	prio := uint(3)
	item, err := CreateTodoItem(TodoItemRequest{List: 1, Title: "Milk", DueDate: &due, PriorityID: &prio})
	if err != nil {
		t.Fatal(err)
	}
	if item.Priority == nil || item.Priority.Key != "high" || *item.DueDate != due {
		t.Errorf("item = %+v", item)
	}
	if last.Body["list"] != float64(1) || last.Body["priority_id"] != float64(3) {
		t.Errorf("body = %v", last.Body)
	}
}

func TestCreateTodoItemOmitsOptional(t *testing.T) {
	last := newTestServer(t, respond(201, `{"id":5,"list":1,"title":"Eggs"}`))

	if _, err := CreateTodoItem(TodoItemRequest{List: 1, Title: "Eggs"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := last.Body["due_date"]; ok {
		t.Errorf("due_date should be omitted: %v", last.Body)
	}
	if _, ok := last.Body["priority_id"]; ok {
		t.Errorf("priority_id should be omitted: %v", last.Body)
	}
}

func TestListTodoItemsFilter(t *testing.T) {
	last := newTestServer(t, respond(200, `{"count":0,"next":null,"previous":null,"results":[]}`))

	if _, err := ListTodoItems(8, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(last.Query, "list=8") {
		t.Errorf("query = %q", last.Query)
	}
}

func TestToggleTodoItem(t *testing.T) {
	last := newTestServer(t, respond(200, `{"id":4,"list":1,"title":"Milk","is_done":true,"progress_cached":100}`))

	item, err := ToggleTodoItem(4)
	if err != nil {
		t.Fatal(err)
	}
	if !item.IsDone || item.ProgressCached != 100 {
		t.Errorf("item = %+v", item)
	}
	if last.Path != "/api/todo-items/4/toggle-done" {
		t.Errorf("path = %s", last.Path)
	}
}

func TestAddSubItemAndPriorities(t *testing.T) {
	last := newTestServer(t, respond(201, `{"id":1,"parent":4,"title":"Oat milk","is_done":false}`))
	sub, err := AddSubItem(4, "Oat milk")
	if err != nil {
		t.Fatal(err)
	}
	if sub.Parent != 4 || last.Body["parent"] != float64(4) {
		t.Errorf("sub = %+v body = %v", sub, last.Body)
	}

	newTestServer(t, respond(200, `[{"id":1,"key":"low","sort_order":10},{"id":2,"key":"medium","sort_order":20,"is_default":true}]`))
	prios, err := ListPriorities()
	if err != nil {
		t.Fatal(err)
	}
	if len(prios) != 2 || !prios[1].IsDefault {
		t.Errorf("priorities = %+v", prios)
	}
}
