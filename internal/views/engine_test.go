package views

import (
	"context"
	"errors"
	"testing"

	"github.com/cliphub/backend/internal/apperr"
	"github.com/cliphub/backend/internal/models"
	"github.com/cliphub/backend/internal/repositories"
)

// The fakes embed the repository interfaces so each test only fills in the
// methods its path exercises; an unexpected call panics on the nil embed.

type fakeVideoRepo struct {
	repositories.VideoRepository

	listParams repositories.VideoListParams
	listResult []models.VideoWithOwner
	listTotal  int64

	video       models.VideoWithOwner
	videoErr    error
	viewsBumped []string
	watches     [][2]string
	history     []models.VideoWithOwner
}

func (f *fakeVideoRepo) List(_ context.Context, params repositories.VideoListParams) ([]models.VideoWithOwner, int64, error) {
	f.listParams = params
	return f.listResult, f.listTotal, nil
}

func (f *fakeVideoRepo) FindWithOwner(context.Context, string) (models.VideoWithOwner, error) {
	return f.video, f.videoErr
}

func (f *fakeVideoRepo) IncrementViews(_ context.Context, id string) error {
	f.viewsBumped = append(f.viewsBumped, id)
	return nil
}

func (f *fakeVideoRepo) RecordWatch(_ context.Context, userID, videoID string) error {
	f.watches = append(f.watches, [2]string{userID, videoID})
	return nil
}

func (f *fakeVideoRepo) WatchHistory(context.Context, string) ([]models.VideoWithOwner, error) {
	return f.history, nil
}

type fakeUserRepo struct {
	repositories.UserRepository

	byUsername map[string]models.User
	byID       map[string]models.User
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (models.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

type fakeSubscriptionRepo struct {
	repositories.SubscriptionRepository

	edges     map[string]models.Subscription
	createErr error
	stats     repositories.ChannelStats

	subscribers []models.SubscriberEntry
	channels    []models.SubscribedChannelEntry
}

func edgeKey(subscriberID, channelID string) string { return subscriberID + "/" + channelID }

func (f *fakeSubscriptionRepo) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	edge, ok := f.edges[edgeKey(subscriberID, channelID)]
	if !ok {
		return models.Subscription{}, repositories.ErrNotFound
	}
	return edge, nil
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub models.Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.edges == nil {
		f.edges = map[string]models.Subscription{}
	}
	f.edges[edgeKey(sub.SubscriberID, sub.ChannelID)] = sub
	return nil
}

func (f *fakeSubscriptionRepo) Delete(_ context.Context, subscriberID, channelID string) error {
	key := edgeKey(subscriberID, channelID)
	if _, ok := f.edges[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeSubscriptionRepo) StatsForChannel(context.Context, string, string) (repositories.ChannelStats, error) {
	return f.stats, nil
}

func (f *fakeSubscriptionRepo) ListSubscribers(context.Context, string) ([]models.SubscriberEntry, error) {
	return f.subscribers, nil
}

func (f *fakeSubscriptionRepo) ListSubscribedChannels(context.Context, string) ([]models.SubscribedChannelEntry, error) {
	return f.channels, nil
}

type fakeCommentRepo struct {
	repositories.CommentRepository

	comments []models.CommentWithOwner
	total    int64
}

func (f *fakeCommentRepo) ListForVideo(context.Context, string, int, int) ([]models.CommentWithOwner, int64, error) {
	return f.comments, f.total, nil
}

type fakePlaylistRepo struct {
	repositories.PlaylistRepository

	playlists []models.PlaylistWithVideos
}

func (f *fakePlaylistRepo) ListByOwner(context.Context, string) ([]models.PlaylistWithVideos, error) {
	return f.playlists, nil
}

type fakeTweetRepo struct {
	repositories.TweetRepository

	tweets []models.TweetWithOwner
}

func (f *fakeTweetRepo) ListByOwner(context.Context, string) ([]models.TweetWithOwner, error) {
	return f.tweets, nil
}

func TestEngineListVideos_MapsRequestAndEmptyIsNotFound(t *testing.T) {
	videos := &fakeVideoRepo{}
	engine := &Engine{Videos: videos}

	_, err := engine.ListVideos(context.Background(), VideoListRequest{
		Query:         "go",
		OwnerID:       "owner-1",
		SortBy:        "views",
		SortDirection: "descending",
		Page:          PageRequest{Page: 2, Limit: 5},
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for empty listing, got %v", err)
	}

	if videos.listParams.Query != "go" || videos.listParams.OwnerID != "owner-1" {
		t.Fatalf("unexpected filter params: %+v", videos.listParams)
	}
	if !videos.listParams.Descending {
		t.Fatal("expected 'descending' direction to set Descending")
	}
	if videos.listParams.Offset != 5 || videos.listParams.Limit != 5 {
		t.Fatalf("unexpected pagination: offset=%d limit=%d", videos.listParams.Offset, videos.listParams.Limit)
	}

	videos.listResult = []models.VideoWithOwner{{Video: models.Video{ID: "v1"}}}
	videos.listTotal = 11

	page, err := engine.ListVideos(context.Background(), VideoListRequest{Page: PageRequest{Page: 2, Limit: 5}, SortDirection: "ascending"})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if page.Total != 11 || page.Page != 2 || page.Limit != 5 || len(page.Videos) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if videos.listParams.Descending {
		t.Fatal("expected non-'descending' direction to sort ascending")
	}
}

func TestEngineListVideos_PastTheEndPageKeepsTotal(t *testing.T) {
	videos := &fakeVideoRepo{listTotal: 11}
	engine := &Engine{Videos: videos}

	page, err := engine.ListVideos(context.Background(), VideoListRequest{Page: PageRequest{Page: 9, Limit: 5}})
	if err != nil {
		t.Fatalf("list videos past the end: %v", err)
	}
	if page.Total != 11 || len(page.Videos) != 0 {
		t.Fatalf("expected empty page with total 11, got %+v", page)
	}
}

func TestEngineGetVideo_BumpsViewsAndRecordsWatch(t *testing.T) {
	videos := &fakeVideoRepo{video: models.VideoWithOwner{Video: models.Video{ID: "v1", Views: 4}}}
	engine := &Engine{Videos: videos}

	got, err := engine.GetVideo(context.Background(), "v1", "viewer-1")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if got.Views != 5 {
		t.Fatalf("expected reported views to include the bump, got %d", got.Views)
	}
	if len(videos.viewsBumped) != 1 || videos.viewsBumped[0] != "v1" {
		t.Fatalf("expected view increment for v1, got %v", videos.viewsBumped)
	}
	if len(videos.watches) != 1 || videos.watches[0] != [2]string{"viewer-1", "v1"} {
		t.Fatalf("expected watch record for viewer-1, got %v", videos.watches)
	}
}

func TestEngineGetVideo_AnonymousViewerSkipsHistory(t *testing.T) {
	videos := &fakeVideoRepo{video: models.VideoWithOwner{Video: models.Video{ID: "v1"}}}
	engine := &Engine{Videos: videos}

	if _, err := engine.GetVideo(context.Background(), "v1", ""); err != nil {
		t.Fatalf("get video: %v", err)
	}
	if len(videos.watches) != 0 {
		t.Fatalf("expected no watch record for anonymous viewer, got %v", videos.watches)
	}
}

func TestEngineGetVideo_MissingIsNotFound(t *testing.T) {
	videos := &fakeVideoRepo{videoErr: repositories.ErrNotFound}
	engine := &Engine{Videos: videos}

	if _, err := engine.GetVideo(context.Background(), "nope", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestEngineChannelProfile(t *testing.T) {
	users := &fakeUserRepo{byUsername: map[string]models.User{
		"alice": {ID: "u1", Username: "alice", FullName: "Alice", Email: "alice@example.com", AvatarURL: "a.png", CoverURL: "c.png"},
	}}
	subs := &fakeSubscriptionRepo{stats: repositories.ChannelStats{SubscriberCount: 7, SubscribedToCount: 3, IsSubscribed: true}}
	engine := &Engine{Users: users, Subscriptions: subs}

	profile, err := engine.ChannelProfile(context.Background(), "alice", "viewer-1")
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscriberCount != 7 || profile.SubscribedToCount != 3 || !profile.IsSubscribed {
		t.Fatalf("unexpected aggregates: %+v", profile)
	}
	if profile.Email != "alice@example.com" || profile.CoverURL != "c.png" {
		t.Fatalf("unexpected projection: %+v", profile)
	}

	if _, err := engine.ChannelProfile(context.Background(), "ghost", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for unknown channel, got %v", err)
	}
}

func TestEngineToggleSubscription_RoundTrip(t *testing.T) {
	users := &fakeUserRepo{byID: map[string]models.User{"channel-1": {ID: "channel-1"}}}
	subs := &fakeSubscriptionRepo{}
	engine := &Engine{Users: users, Subscriptions: subs}

	subscribed, err := engine.ToggleSubscription(context.Background(), "caller-1", "channel-1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !subscribed {
		t.Fatal("expected first toggle to subscribe")
	}

	subscribed, err = engine.ToggleSubscription(context.Background(), "caller-1", "channel-1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if subscribed {
		t.Fatal("expected second toggle to unsubscribe")
	}
	if len(subs.edges) != 0 {
		t.Fatalf("expected no edges after round trip, got %d", len(subs.edges))
	}
}

func TestEngineToggleSubscription_ConflictMeansSubscribed(t *testing.T) {
	users := &fakeUserRepo{byID: map[string]models.User{"channel-1": {ID: "channel-1"}}}
	subs := &fakeSubscriptionRepo{createErr: repositories.ErrConflict}
	engine := &Engine{Users: users, Subscriptions: subs}

	// A concurrent toggle won the insert race; the outcome is still
	// "subscribed".
	subscribed, err := engine.ToggleSubscription(context.Background(), "caller-1", "channel-1")
	if err != nil {
		t.Fatalf("toggle with losing insert: %v", err)
	}
	if !subscribed {
		t.Fatal("expected conflict to read as subscribed")
	}
}

func TestEngineToggleSubscription_UnknownChannel(t *testing.T) {
	engine := &Engine{Users: &fakeUserRepo{}, Subscriptions: &fakeSubscriptionRepo{}}

	if _, err := engine.ToggleSubscription(context.Background(), "caller-1", "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for unknown channel, got %v", err)
	}
}

func TestEngineVideoComments_PastTheEndPageKeepsTotal(t *testing.T) {
	engine := &Engine{Comments: &fakeCommentRepo{total: 3}}

	page, err := engine.VideoComments(context.Background(), "v1", PageRequest{Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("list comments past the end: %v", err)
	}
	if page.Total != 3 || len(page.Comments) != 0 {
		t.Fatalf("expected empty page with total 3, got %+v", page)
	}
}

func TestEngineEmptyCollections(t *testing.T) {
	engine := &Engine{
		Videos:        &fakeVideoRepo{},
		Subscriptions: &fakeSubscriptionRepo{},
		Comments:      &fakeCommentRepo{},
		Playlists:     &fakePlaylistRepo{},
		Tweets:        &fakeTweetRepo{},
	}

	if _, err := engine.Subscribers(context.Background(), "c1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for zero subscribers, got %v", err)
	}
	if _, err := engine.SubscribedChannels(context.Background(), "s1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for zero subscribed channels, got %v", err)
	}
	if _, err := engine.VideoComments(context.Background(), "v1", PageRequest{Page: 1, Limit: 10}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for zero comments, got %v", err)
	}
	if _, err := engine.UserPlaylists(context.Background(), "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not-found for zero playlists, got %v", err)
	}

	// Tweets and watch history treat empty as a normal state.
	tweets, err := engine.UserTweets(context.Background(), "u1")
	if err != nil {
		t.Fatalf("user tweets: %v", err)
	}
	if len(tweets) != 0 {
		t.Fatalf("expected empty tweet list, got %d", len(tweets))
	}
	history, err := engine.WatchHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d", len(history))
	}
}
