package repositories

import (
	"context"

	"github.com/cliphub/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their membership
// set. AddVideo and RemoveVideo are atomic set operations: adding an existing
// member is a no-op, as is removing an absent one.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindWithVideos(ctx context.Context, id string) (models.PlaylistWithVideos, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistWithVideos, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
