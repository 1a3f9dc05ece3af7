package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/api"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/auth"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/database"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/models"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db, err := database.New("file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	userService := services.NewUserService(db)
	tweetService := services.NewTweetService(db)
	issuer := auth.NewTokenIssuer("test-secret")
	return api.NewRouter(userService, tweetService, issuer, "http://localhost:3000")
}

func do(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createUser(t *testing.T, router http.Handler, username, name, password string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/user", models.UserSaveRequest{
		Username: username, Name: name, Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndAuthenticateScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")

	rec := do(t, router, http.MethodGet, "/user/authenticate?username=ada&password=p", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[models.UserResponse](t, rec)
	require.Equal(t, "ada", user.Username)
	require.NotEmpty(t, rec.Result().Cookies(), "expected a token cookie")

	rec = do(t, router, http.MethodGet, "/user/authenticate?username=ada&password=q", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateUsernameScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	rec := do(t, router, http.MethodPost, "/user", models.UserSaveRequest{
		Username: "ada", Name: "Ada", Password: "p",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestFollowFanoutScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	createUser(t, router, "bob", "Bob", "p")

	rec := do(t, router, http.MethodPut, "/user/follow", models.FollowRequest{
		FollowedUsername: "bob", FollowerUsername: "ada",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi #x", OwnerUsername: "bob",
		Hashtags: []string{"#x"}, Mentions: []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tweet := decode[models.TweetResponse](t, rec)
	require.Equal(t, "t1", tweet.UUID)

	rec = do(t, router, http.MethodPost, "/user/users", models.UserListRequest{Usernames: []string{"ada"}})
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.UserPage](t, rec)
	require.Len(t, page.Users, 1)
	require.Contains(t, page.Users[0].Timeline, "t1")
}

func TestLikeScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	createUser(t, router, "bob", "Bob", "p")
	rec := do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi", OwnerUsername: "bob",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Like twice: both succeed, one edge.
	for i := 0; i < 2; i++ {
		rec = do(t, router, http.MethodGet, "/tweet/like?uuid=t1&username=ada", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/tweet/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tweet := decode[models.TweetResponse](t, rec)
	require.Equal(t, []string{"ada"}, tweet.LikedBy)

	rec = do(t, router, http.MethodPost, "/user/users", models.UserListRequest{Usernames: []string{"ada"}})
	page := decode[models.UserPage](t, rec)
	require.Equal(t, []string{"t1"}, page.Users[0].LikedTweets)

	rec = do(t, router, http.MethodGet, "/tweet/like?uuid=nope&username=ada", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnfollowPurgeScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	createUser(t, router, "bob", "Bob", "p")
	do(t, router, http.MethodPut, "/user/follow", models.FollowRequest{
		FollowedUsername: "bob", FollowerUsername: "ada",
	})
	do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi", OwnerUsername: "bob",
	})

	rec := do(t, router, http.MethodPut, "/user/unFollow", models.FollowRequest{
		FollowedUsername: "bob", FollowerUsername: "ada",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/user/users", models.UserListRequest{Usernames: []string{"ada"}})
	page := decode[models.UserPage](t, rec)
	require.NotContains(t, page.Users[0].Timeline, "t1")
}

func TestSearchByHashtagAndDateScenario(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "bob", "Bob", "p")
	rec := do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi #x", OwnerUsername: "bob", Hashtags: []string{"#x"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tweet := decode[models.TweetResponse](t, rec)

	created, err := time.ParseInLocation(models.TimeLayout, tweet.Time, time.Local)
	require.NoError(t, err)

	query := url.Values{}
	query.Set("hashtag", "#x")
	query.Set("startDate", created.Add(-time.Second).Format(models.TimeLayout))
	query.Set("finishDate", created.Add(time.Second).Format(models.TimeLayout))
	rec = do(t, router, http.MethodGet, "/tweet?"+query.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.TweetPage](t, rec)
	require.Len(t, page.Tweets, 1)
	require.Equal(t, "t1", page.Tweets[0].UUID)

	// Shift the window past the creation time.
	query.Set("startDate", created.Add(time.Second).Format(models.TimeLayout))
	query.Set("finishDate", created.Add(2*time.Second).Format(models.TimeLayout))
	rec = do(t, router, http.MethodGet, "/tweet?"+query.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[models.TweetPage](t, rec)
	require.Empty(t, page.Tweets)
}

func TestSearchBadDate(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/tweet?startDate=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	createUser(t, router, "bob", "Bob", "p")

	rec := do(t, router, http.MethodGet, "/user?name=Ada", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.UserPage](t, rec)
	require.Len(t, page.Users, 1)
	require.Equal(t, "ada", page.Users[0].Username)
}

func TestUpdateAndDeleteUserEndpoints(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")

	rec := do(t, router, http.MethodPut, "/user/ada", map[string]string{"name": "Ada L"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/user/ghost", map[string]string{"name": "X"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/user/ada", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/user/ada", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTweetEndpoint(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "bob", "Bob", "p")
	do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi", OwnerUsername: "bob",
	})

	rec := do(t, router, http.MethodDelete, "/tweet/t1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/tweet/t1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRetweetEndpoints(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "ada", "Ada", "p")
	createUser(t, router, "bob", "Bob", "p")
	do(t, router, http.MethodPost, "/tweet", models.TweetSaveRequest{
		UUID: "t1", Body: "hi", OwnerUsername: "bob",
	})

	rec := do(t, router, http.MethodGet, "/tweet/retweet?uuid=t1&username=ada", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/tweet/t1", nil)
	tweet := decode[models.TweetResponse](t, rec)
	require.Equal(t, []string{"ada"}, tweet.RetweetedBy)

	rec = do(t, router, http.MethodGet, "/tweet/unretweet?uuid=t1&username=ada", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/tweet/t1", nil)
	tweet = decode[models.TweetResponse](t, rec)
	require.Empty(t, tweet.RetweetedBy)
}

func TestInvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/user", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
