package services

import (
	"context"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/smart"
)

// SavedTracksSource feeds the user's saved-track library into the
// generation pipeline one offset-addressed page at a time.
type SavedTracksSource struct {
	Catalog Catalog
}

func (s *SavedTracksSource) FetchPage(ctx context.Context, req smart.PageRequest) (*smart.Page[models.Track], error) {
	return s.Catalog.SavedTracks(ctx, req.Limit, req.Offset)
}

func (s *SavedTracksSource) Cursored() bool { return false }

// TopTracksSource feeds the user's most-listened tracks into the
// generation pipeline. TimeRange defaults to long_term when empty.
type TopTracksSource struct {
	Catalog   Catalog
	TimeRange string
}

func (s *TopTracksSource) FetchPage(ctx context.Context, req smart.PageRequest) (*smart.Page[models.Track], error) {
	return s.Catalog.TopTracks(ctx, s.TimeRange, req.Limit, req.Offset)
}

func (s *TopTracksSource) Cursored() bool { return false }
