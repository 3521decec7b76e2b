package api

import (
	"fmt"
	"net/http"
)

func followAction(userID uint, action string) (string, error) {
	var out MessageResponse
	path := fmt.Sprintf("/api/follows/users/%d/%s", userID, action)
	if err := sendJSON(http.MethodPost, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SendFollowRequest sends a follow request and returns the server message
func SendFollowRequest(userID uint) (string, error) {
	return followAction(userID, "follow")
}

// Unfollow removes a follow relation in either state
func Unfollow(userID uint) (string, error) {
	return followAction(userID, "unfollow")
}

// AcceptFollow accepts a pending request from userID
func AcceptFollow(userID uint) (string, error) {
	return followAction(userID, "accept")
}

// RejectFollow rejects a pending request from userID
func RejectFollow(userID uint) (string, error) {
	return followAction(userID, "reject")
}

// FollowStatus returns none, pending, accepted or rejected
func FollowStatus(userID uint) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := getJSON(fmt.Sprintf("/api/follows/users/%d/status", userID), nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func followList(path string) ([]Follow, error) {
	var out []Follow
	if err := getJSON(path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Followers lists accepted followers of the caller
func Followers() ([]Follow, error) {
	return followList("/api/follows/followers")
}

// Following lists users the caller follows
func Following() ([]Follow, error) {
	return followList("/api/follows/following")
}

// FollowRequests lists pending requests addressed to the caller
func FollowRequests() ([]Follow, error) {
	return followList("/api/follows/requests")
}
