package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
)

// =============================================================================
// TODO TESTS
// =============================================================================

func (suite *HandlersTestSuite) createTodoList(owner *models.User, name string) *models.TodoList {
	list := &models.TodoList{UserID: owner.ID, Name: name, Kind: models.TodoKindPersonal}
	require.NoError(suite.T(), suite.db.Create(list).Error)
	return list
}

func (suite *HandlersTestSuite) createTodoItem(list *models.TodoList, title string, done bool) *models.TodoItem {
	item := &models.TodoItem{ListID: list.ID, Title: title, IsDone: done}
	require.NoError(suite.T(), suite.db.Create(item).Error)
	return item
}

func (suite *HandlersTestSuite) createSubItem(item *models.TodoItem, title string, done bool) *models.TodoSubItem {
	sub := &models.TodoSubItem{ParentID: item.ID, Title: title, IsDone: done}
	require.NoError(suite.T(), suite.db.Create(sub).Error)
	return sub
}

func (suite *HandlersTestSuite) progressOf(model interface{}, id uint) int {
	var progress int
	require.NoError(suite.T(), suite.db.Model(model).Where("id = ?", id).Pluck("progress_cached", &progress).Error)
	return progress
}

func (suite *HandlersTestSuite) TestTodoListCRUD() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/todo-lists", map[string]string{"name": "Gear", "description": "pack list"}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.Equal(t, "Gear", body["name"])
	assert.Equal(t, models.TodoKindPersonal, body["kind"])
	assert.Equal(t, float64(suite.testUser.ID), body["user"])
	assert.Equal(t, []interface{}{}, body["items"])
	id := uint(body["id"].(float64))

	w = suite.request(http.MethodPatch, "/api/todo-lists/"+idStr(id), map[string]string{"kind": "bogus"}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "kind", suite.decode(w)["field"])

	w = suite.request(http.MethodPatch, "/api/todo-lists/"+idStr(id), map[string]string{"name": "Gear v2"}, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pack list", suite.decode(w)["description"])

	w = suite.request(http.MethodPost, "/api/todo-lists", map[string]string{"description": "no name"}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", suite.decode(w)["field"])

	w = suite.request(http.MethodDelete, "/api/todo-lists/"+idStr(id), nil, suite.testUser)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = suite.request(http.MethodGet, "/api/todo-lists/"+idStr(id), nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestTodoScopes() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	staff := suite.createUser("ranger", func(u *models.User) { u.IsStaff = true })

	suite.createTodoList(suite.testUser, "alice list")
	bobList := suite.createTodoList(bob, "bob list")
	bobItem := suite.createTodoItem(bobList, "bob item", false)
	bobSub := suite.createSubItem(bobItem, "bob sub", false)

	w := suite.request(http.MethodGet, "/api/todo-lists", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, suite.results(w), 1)

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todo-lists/"+idStr(bobList.ID), nil, suite.testUser).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todo-items/"+idStr(bobItem.ID), nil, suite.testUser).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todo-subitems/"+idStr(bobSub.ID), nil, suite.testUser).Code)

	w = suite.request(http.MethodGet, "/api/todo-lists", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, suite.results(w))

	w = suite.request(http.MethodGet, "/api/todo-items", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, suite.results(w))

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todo-lists/"+idStr(bobList.ID), nil, staff).Code)
	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todo-subitems/"+idStr(bobSub.ID), nil, staff).Code)

	w = suite.request(http.MethodPost, "/api/todo-items", map[string]interface{}{"list": bobList.ID, "title": "ranger note"}, staff)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (suite *HandlersTestSuite) TestCreateTodoItemValidation() {
	bob := suite.createUser("bob", nil)
	mine := suite.createTodoList(suite.testUser, "mine")
	theirs := suite.createTodoList(bob, "theirs")

	tests := []struct {
		name    string
		body    map[string]interface{}
		field   string
		message string
	}{
		{"missing list", map[string]interface{}{"title": "x"}, "list", "This field is required."},
		{"unknown list", map[string]interface{}{"list": 9999, "title": "x"}, "list", `Invalid pk "9999" - object does not exist.`},
		{"foreign list", map[string]interface{}{"list": theirs.ID, "title": "x"}, "list", "You do not have access to this list."},
		{"missing title", map[string]interface{}{"list": mine.ID}, "title", "This field is required."},
		{"bad due date", map[string]interface{}{"list": mine.ID, "title": "x", "due_date": "12/01/2026"}, "due_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."},
		{"bad priority type", map[string]interface{}{"list": mine.ID, "title": "x", "priority_id": "high"}, "priority_id", "Incorrect type. Expected pk value."},
		{"unknown priority", map[string]interface{}{"list": mine.ID, "title": "x", "priority_id": 9999}, "priority_id", `Invalid pk "9999" - object does not exist.`},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/api/todo-items", tt.body, suite.testUser)
			require.Equal(suite.T(), http.StatusBadRequest, w.Code, w.Body.String())
			body := suite.decode(w)
			assert.Equal(suite.T(), tt.field, body["field"])
			assert.Equal(suite.T(), tt.message, body["message"])
		})
	}
}

func (suite *HandlersTestSuite) TestCreateTodoItemWithDueDateAndPriority() {
	t := suite.T()
	list := suite.createTodoList(suite.testUser, "trip")

	var high models.TodoPriority
	require.NoError(t, suite.db.Where(&models.TodoPriority{Key: "high"}).Take(&high).Error)

	w := suite.request(http.MethodPost, "/api/todo-items", map[string]interface{}{
		"list":        list.ID,
		"title":       "Book campsite",
		"due_date":    "2026-07-04",
		"priority_id": high.ID,
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := suite.decode(w)
	assert.Equal(t, "2026-07-04", body["due_date"])
	assert.Equal(t, "high", body["priority"].(map[string]interface{})["key"])
	assert.Equal(t, []interface{}{}, body["subitems"])
	id := uint(body["id"].(float64))

	w = suite.request(http.MethodPatch, "/api/todo-items/"+idStr(id), map[string]interface{}{"due_date": nil, "priority_id": nil}, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = suite.decode(w)
	assert.Nil(t, body["due_date"])
	assert.Nil(t, body["priority"])
	assert.Equal(t, "Book campsite", body["title"])
}

func (suite *HandlersTestSuite) TestTodoProgress() {
	t := suite.T()
	list := suite.createTodoList(suite.testUser, "trip")
	item := suite.createTodoItem(list, "pack", false)
	suite.createTodoItem(list, "drive", true)

	assert.Equal(t, 0, suite.progressOf(&models.TodoItem{}, item.ID))
	assert.Equal(t, 50, suite.progressOf(&models.TodoList{}, list.ID))

	w := suite.request(http.MethodPost, "/api/todo-subitems", map[string]interface{}{"parent": item.ID, "title": "tent", "is_done": true}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	for _, title := range []string{"stove", "boots"} {
		w = suite.request(http.MethodPost, "/api/todo-subitems", map[string]interface{}{"parent": item.ID, "title": title}, suite.testUser)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Equal(t, 33, suite.progressOf(&models.TodoItem{}, item.ID))
	assert.Equal(t, 66, suite.progressOf(&models.TodoList{}, list.ID))

	w = suite.request(http.MethodGet, "/api/todo-lists/"+idStr(list.ID), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.Equal(t, float64(66), body["progress"])
	assert.Equal(t, float64(2), body["items_count"])

	lastID := uint(body["items"].([]interface{})[0].(map[string]interface{})["subitems"].([]interface{})[2].(map[string]interface{})["id"].(float64))
	w = suite.request(http.MethodDelete, "/api/todo-subitems/"+idStr(lastID), nil, suite.testUser)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 50, suite.progressOf(&models.TodoItem{}, item.ID))
	assert.Equal(t, 75, suite.progressOf(&models.TodoList{}, list.ID))

	w = suite.request(http.MethodDelete, "/api/todo-items/"+idStr(item.ID), nil, suite.testUser)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 100, suite.progressOf(&models.TodoList{}, list.ID))

	var subs int64
	suite.db.Model(&models.TodoSubItem{}).Count(&subs)
	assert.Zero(t, subs)
}

func (suite *HandlersTestSuite) TestToggleTodoItem() {
	t := suite.T()
	list := suite.createTodoList(suite.testUser, "chores")
	item := suite.createTodoItem(list, "water plants", false)

	w := suite.request(http.MethodPost, "/api/todo-items/"+idStr(item.ID)+"/toggle-done", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	body := suite.decode(w)
	assert.Equal(t, true, body["is_done"])
	assert.Equal(t, float64(100), body["progress_cached"])
	assert.Equal(t, 100, suite.progressOf(&models.TodoList{}, list.ID))

	w = suite.request(http.MethodPost, "/api/todo-items/"+idStr(item.ID)+"/toggle-done", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, suite.decode(w)["is_done"])
	assert.Equal(t, 0, suite.progressOf(&models.TodoList{}, list.ID))
}

func (suite *HandlersTestSuite) TestMoveTodoItemRefreshesBothLists() {
	t := suite.T()
	from := suite.createTodoList(suite.testUser, "from")
	to := suite.createTodoList(suite.testUser, "to")
	item := suite.createTodoItem(from, "done thing", true)
	assert.Equal(t, 100, suite.progressOf(&models.TodoList{}, from.ID))

	w := suite.request(http.MethodPatch, "/api/todo-items/"+idStr(item.ID), map[string]interface{}{"list": to.ID}, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 0, suite.progressOf(&models.TodoList{}, from.ID))
	assert.Equal(t, 100, suite.progressOf(&models.TodoList{}, to.ID))
}

func (suite *HandlersTestSuite) TestSubItemParentAccess() {
	t := suite.T()
	bob := suite.createUser("bob", nil)
	bobItem := suite.createTodoItem(suite.createTodoList(bob, "bob"), "bob item", false)

	w := suite.request(http.MethodPost, "/api/todo-subitems", map[string]interface{}{"parent": bobItem.ID, "title": "sneaky"}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parent", suite.decode(w)["field"])

	w = suite.request(http.MethodPost, "/api/todo-subitems", map[string]interface{}{"title": "orphan"}, suite.testUser)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parent", suite.decode(w)["field"])
}

func (suite *HandlersTestSuite) TestDeleteTodoListCascades() {
	t := suite.T()
	list := suite.createTodoList(suite.testUser, "doomed")
	item := suite.createTodoItem(list, "a", false)
	suite.createSubItem(item, "a.1", true)

	w := suite.request(http.MethodDelete, "/api/todo-lists/"+idStr(list.ID), nil, suite.testUser)
	require.Equal(t, http.StatusNoContent, w.Code)

	var items, subs int64
	suite.db.Model(&models.TodoItem{}).Count(&items)
	suite.db.Model(&models.TodoSubItem{}).Count(&subs)
	assert.Zero(t, items)
	assert.Zero(t, subs)
}

func (suite *HandlersTestSuite) TestPriorities() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/api/todos/priorities", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	priorities := suite.decodeList(w)
	require.Len(t, priorities, 4)
	assert.Equal(t, "low", priorities[0]["key"])
	assert.Equal(t, true, priorities[1]["is_default"])

	id := uint(priorities[2]["id"].(float64))
	w = suite.request(http.MethodGet, "/api/todos/priorities/"+idStr(id), nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "high", suite.decode(w)["key"])

	assert.Equal(t, http.StatusNotFound, suite.request(http.MethodGet, "/api/todos/priorities/9999", nil, suite.testUser).Code)
	assert.Equal(t, http.StatusUnauthorized, suite.request(http.MethodGet, "/api/todos/priorities", nil, nil).Code)
}
