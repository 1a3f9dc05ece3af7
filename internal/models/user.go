package models

// User represents a user account in the system.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"-"` // Never expose this to the client
}

// UserResponse is the wire projection of a User: every relation collapses
// to the identifiers of its members. Password is never included.
type UserResponse struct {
	Username           string   `json:"username"`
	Name               string   `json:"name"`
	FollowersUsername  []string `json:"followersUsername"`
	FollowingsUsername []string `json:"followingsUsername"`
	Tweets             []string `json:"tweets"`
	ReTweets           []string `json:"reTweets"`
	LikedTweets        []string `json:"likedTweets"`
	Timeline           []string `json:"timeline"`
}

// UserPage wraps a list of user projections.
type UserPage struct {
	Users []UserResponse `json:"users"`
}

// UserSaveRequest is the payload for creating a user.
type UserSaveRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UserUpdateRequest carries the optional fields of a partial update.
// Username itself is immutable; nil fields are left untouched.
type UserUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserListRequest asks for a batch of users by username.
type UserListRequest struct {
	Usernames []string `json:"usernames"`
}

// FollowRequest names both endpoints of a follow edge.
type FollowRequest struct {
	FollowedUsername string `json:"followedUsername"`
	FollowerUsername string `json:"followerUsername"`
}

// UserSearchParams are the user search predicates; empty fields are skipped.
type UserSearchParams struct {
	Name     string
	Username string
}
