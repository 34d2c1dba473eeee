package repositories

import (
	"context"

	"github.com/cliphub/backend/internal/models"
)

// VideoListParams filters and orders the paginated video listing.
type VideoListParams struct {
	// Query is matched case-insensitively against title or description.
	Query string
	// OwnerID restricts the listing to a single channel when set.
	OwnerID string
	// SortBy must be one of the allow-listed sortable columns; anything else
	// falls back to creation time.
	SortBy string
	// Descending reverses the sort order.
	Descending bool
	Offset     int
	Limit      int
}

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindWithOwner(ctx context.Context, id string) (models.VideoWithOwner, error)
	List(ctx context.Context, params VideoListParams) ([]models.VideoWithOwner, int64, error)
	UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error)
	UpdateThumbnail(ctx context.Context, id, url, key string) (models.Video, error)
	TogglePublished(ctx context.Context, id string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	RecordWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}
