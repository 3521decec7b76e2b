package api

import (
	"strings"
	"testing"
)

const postPage = `{"count":2,"next":null,"previous":null,"results":[
	{"id":2,"title":"second","body":"b","user":{"id":1,"username":"alice"},"likes_count":1,"comments_count":0},
	{"id":1,"title":"first","body":"a","user":{"id":1,"username":"alice"},"likes_count":0,"comments_count":3}]}`

func TestListPosts(t *testing.T) {
	last := newTestServer(t, respond(200, postPage))

	page, err := ListPosts(7, 2, 10)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if page.Count != 2 || len(page.Results) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Results[1].CommentsCount != 3 || page.Results[0].User.Username != "alice" {
		t.Errorf("results = %+v", page.Results)
	}
	for _, want := range []string{"user_id=7", "page=2", "page_size=10"} {
		if !strings.Contains(last.Query, want) {
			t.Errorf("query %q missing %q", last.Query, want)
		}
	}
}

func TestGetFeedDefaultsOmitQuery(t *testing.T) {
	last := newTestServer(t, respond(200, `{"count":0,"next":null,"previous":null,"results":[]}`))

	page, err := GetFeed(0, 0)
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(page.Results) != 0 {
		t.Errorf("expected empty feed")
	}
	if last.Path != "/api/feed/posts" || last.Query != "" {
		t.Errorf("request = %s?%s", last.Path, last.Query)
	}
}

func TestCreatePost(t *testing.T) {
	last := newTestServer(t, respond(201, `{"id":9,"title":"hello","body":"world","visibility":"public","is_published":true}`))

	post, err := CreatePost(PostRequest{Title: "hello", Body: "world"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID != 9 || !post.IsPublished {
		t.Errorf("post = %+v", post)
	}
	if _, ok := last.Body["visibility"]; ok {
		t.Errorf("empty visibility should be omitted: %v", last.Body)
	}
}

func TestCreatePostValidation(t *testing.T) {
	newTestServer(t, respond(400, `{"code":"VALIDATION_ERROR","message":"Title is required","field":"title"}`))

	_, err := CreatePost(PostRequest{Body: "x"})
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Errorf("expected title validation error, got %v", err)
	}
}

func TestLikeUnlikeAndComments(t *testing.T) {
	last := newTestServer(t, respond(200, `{"status":"liked"}`))
	if err := LikePost(4); err != nil {
		t.Fatal(err)
	}
	if last.Method != "POST" || last.Path != "/api/posts/4/like" {
		t.Errorf("like request = %s %s", last.Method, last.Path)
	}

	if err := UnlikePost(4); err != nil {
		t.Fatal(err)
	}
	if last.Method != "DELETE" || last.Path != "/api/posts/4/like" {
		t.Errorf("unlike request = %s %s", last.Method, last.Path)
	}

	last = newTestServer(t, respond(201, `{"id":1,"body":"nice","user":{"id":2,"username":"bob"}}`))
	comment, err := CreateComment(4, "nice")
	if err != nil {
		t.Fatal(err)
	}
	if comment.User.Username != "bob" || last.Body["body"] != "nice" {
		t.Errorf("comment = %+v body = %v", comment, last.Body)
	}
}
