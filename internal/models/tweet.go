package models

import "time"

// TimeLayout is the wire format for tweet timestamps. Stored verbatim in
// the tweets table, where it also compares correctly as text.
const TimeLayout = "2006-01-02 15:04:05"

// Tweet represents a single short post.
type Tweet struct {
	UUID          string
	Body          string
	Time          time.Time
	OwnerUsername string
	Hashtags      []string
	Mentions      []string
}

// TweetResponse is the wire projection of a Tweet; engagement sets collapse
// to the usernames of their members.
type TweetResponse struct {
	UUID          string   `json:"uuid"`
	Body          string   `json:"body"`
	Time          string   `json:"time,omitempty"`
	OwnerUsername string   `json:"ownerUsername"`
	Hashtags      []string `json:"hashtags"`
	Mentions      []string `json:"mentions"`
	LikedBy       []string `json:"likedBy"`
	RetweetedBy   []string `json:"retweetedBy"`
}

// TweetPage wraps a list of tweet projections.
type TweetPage struct {
	Tweets []TweetResponse `json:"tweets"`
}

// TweetSaveRequest is the payload for publishing a tweet. UUID may be left
// empty to have the server assign one. Hashtags and mentions fall back to
// extraction from the body when absent.
type TweetSaveRequest struct {
	UUID          string   `json:"uuid"`
	Body          string   `json:"body"`
	OwnerUsername string   `json:"ownerUsername"`
	Hashtags      []string `json:"hashtags"`
	Mentions      []string `json:"mentions"`
}

// TweetSearchParams are the tweet search predicates; zero values are
// skipped. Date bounds are inclusive.
type TweetSearchParams struct {
	OwnerUsername string
	Hashtag       string
	StartDate     *time.Time
	FinishDate    *time.Time
}
