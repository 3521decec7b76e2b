package dto

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/models"
)

func TestToUserResponse_MapsPrivacyToVisibility(t *testing.T) {
	user := &models.User{ID: 3, Username: "ayse", Password: "hash", ProfilePrivacy: models.PrivacyFriends, IsStaff: true}

	resp := ToUserResponse(user)
	require.NotNil(t, resp)
	assert.Equal(t, "friends", resp.Visibility)
	assert.True(t, resp.IsStaff)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "password")

	assert.Nil(t, ToUserResponse(nil))
}

func TestToTodoListResponse_ComputesLiveProgress(t *testing.T) {
	due := time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)
	list := &models.TodoList{
		ID:             7,
		UserID:         2,
		Name:           "Trip",
		Kind:           models.TodoKindPersonal,
		ProgressCached: 0,
		Items: []models.TodoItem{
			{ID: 1, ListID: 7, ProgressCached: 100, DueDate: &due},
			{ID: 2, ListID: 7, ProgressCached: 33, Priority: &models.TodoPriority{ID: 4, Key: "high", Color: ""}},
		},
	}

	resp := ToTodoListResponse(list)
	assert.Equal(t, 2, resp.ItemsCount)
	assert.Equal(t, 66, resp.Progress)
	assert.Equal(t, 0, resp.ProgressCached)
	require.Len(t, resp.Items, 2)
	require.NotNil(t, resp.Items[0].DueDate)
	assert.Equal(t, "2025-08-23", *resp.Items[0].DueDate)
	assert.Nil(t, resp.Items[1].DueDate)
	assert.Equal(t, models.DefaultPriorityColor, resp.Items[1].Priority.Color)
	assert.NotNil(t, resp.Items[0].SubItems)
}

func TestToTodoListResponse_EmptyListSerializesArrays(t *testing.T) {
	raw, err := json.Marshal(ToTodoListResponse(&models.TodoList{ID: 1}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
	assert.Contains(t, string(raw), `"progress":0`)
}

func TestToPhotoResponse_DefaultsMetadata(t *testing.T) {
	resp := ToPhotoResponse(&models.Photo{ID: 1, URL: "/media/a.jpg"})
	assert.Equal(t, models.JSONMap{}, resp.Metadata)
}

func TestToAlbumResponse_Photos(t *testing.T) {
	album := &models.Album{ID: 1, Title: "Summer", Photos: []models.Photo{{ID: 9}}}
	assert.Len(t, ToAlbumResponse(album).Photos, 1)

	raw, err := json.Marshal(ToAlbumResponse(&models.Album{ID: 2, Title: "Empty"}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"photos":[]`)
	assert.Contains(t, string(raw), `"title":"Empty"`)

	raw, err = json.Marshal(ToAlbumSummary(album))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "photos")
}

func oneofChoices(t *testing.T, v interface{}, field string) []string {
	f, ok := reflect.TypeOf(v).FieldByName(field)
	require.True(t, ok, field)
	for _, rule := range strings.Split(f.Tag.Get("binding"), ",") {
		if choices, ok := strings.CutPrefix(rule, "oneof="); ok {
			return strings.Fields(choices)
		}
	}
	return nil
}

func TestChoiceTagsMatchModels(t *testing.T) {
	assert.Equal(t, models.VisibilityChoices, oneofChoices(t, PostRequest{}, "Visibility"))
	assert.Equal(t, models.VisibilityChoices, oneofChoices(t, AlbumRequest{}, "Visibility"))
	assert.Equal(t, models.ProfilePrivacyChoices, oneofChoices(t, UpdateUserRequest{}, "Visibility"))
	assert.Equal(t, models.TodoKindChoices, oneofChoices(t, TodoListRequest{}, "Kind"))
}
