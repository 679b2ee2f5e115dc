package smart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

// fakeSource serves a fixed track list as an offset- or cursor-paged
// collection and records how many fetches happened.
type fakeSource struct {
	mu       sync.Mutex
	tracks   []models.Track
	cursored bool
	fetches  int
	failAt   int // offset whose fetch fails, -1 for never
}

func newFakeSource(count int, cursored bool) *fakeSource {
	tracks := make([]models.Track, count)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:         fmt.Sprintf("track-%03d", i),
			Title:      fmt.Sprintf("Track %03d", i),
			DurationMS: 60000,
		}
	}
	return &fakeSource{tracks: tracks, cursored: cursored, failAt: -1}
}

func (s *fakeSource) FetchPage(ctx context.Context, req PageRequest) (*Page[models.Track], error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	offset := req.Offset
	if s.cursored {
		offset = 0
		if req.After != "" {
			n, err := strconv.Atoi(req.After)
			if err != nil {
				return nil, fmt.Errorf("bad cursor %q", req.After)
			}
			offset = n
		}
	}

	if s.failAt >= 0 && offset == s.failAt {
		return nil, errors.New("upstream unavailable")
	}

	end := offset + req.Limit
	if end > len(s.tracks) {
		end = len(s.tracks)
	}
	if offset > len(s.tracks) {
		offset = len(s.tracks)
	}

	page := &Page[models.Track]{
		Items:  s.tracks[offset:end],
		Total:  len(s.tracks),
		Limit:  req.Limit,
		Offset: offset,
	}
	if s.cursored && end < len(s.tracks) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

func (s *fakeSource) Cursored() bool { return s.cursored }

func (s *fakeSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func collectIDs(t *testing.T, stream func(context.Context, FoldFunc) error) []string {
	t.Helper()

	var ids []string
	err := stream(context.Background(), func(tracks []models.Track) bool {
		for _, track := range tracks {
			ids = append(ids, track.ID)
		}
		return true
	})
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	return ids
}

func TestPipelineStream(t *testing.T) {
	t.Run("Pages Through Offset Source", func(t *testing.T) {
		source := newFakeSource(120, false)
		pipeline := &Pipeline{Source: source, PageSize: 50}

		ids := collectIDs(t, pipeline.Stream)
		if len(ids) != 120 {
			t.Fatalf("got %d tracks, want 120", len(ids))
		}
		if ids[0] != "track-000" || ids[119] != "track-119" {
			t.Errorf("tracks out of order: first %s last %s", ids[0], ids[119])
		}
		if source.fetchCount() != 3 {
			t.Errorf("fetched %d pages, want 3", source.fetchCount())
		}
	})

	t.Run("Pages Through Cursor Source", func(t *testing.T) {
		source := newFakeSource(75, true)
		pipeline := &Pipeline{Source: source, PageSize: 50}

		ids := collectIDs(t, pipeline.Stream)
		if len(ids) != 75 {
			t.Fatalf("got %d tracks, want 75", len(ids))
		}
		if ids[74] != "track-074" {
			t.Errorf("last track %s, want track-074", ids[74])
		}
	})

	t.Run("Fold False Stops Early", func(t *testing.T) {
		source := newFakeSource(500, false)
		pipeline := &Pipeline{Source: source, PageSize: 50}

		pages := 0
		err := pipeline.Stream(context.Background(), func(tracks []models.Track) bool {
			pages++
			return pages < 2
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if source.fetchCount() != 2 {
			t.Errorf("early stop should fetch 2 pages, fetched %d", source.fetchCount())
		}
	})

	t.Run("Fetch Error Aborts", func(t *testing.T) {
		source := newFakeSource(120, false)
		source.failAt = 50
		logs := &bytes.Buffer{}
		pipeline := &Pipeline{Source: source, PageSize: 50, Logger: shared.NewLogger(logs)}

		err := pipeline.Stream(context.Background(), func(tracks []models.Track) bool { return true })
		if !errors.Is(err, shared.ErrRetrievalFailed) {
			t.Errorf("got %v, want ErrRetrievalFailed", err)
		}
		if !strings.Contains(logs.String(), "page fetch failed") {
			t.Errorf("expected abort to be logged, got %q", logs.String())
		}
	})

	t.Run("Empty Collection", func(t *testing.T) {
		source := newFakeSource(0, false)
		pipeline := &Pipeline{Source: source, PageSize: 50}

		ids := collectIDs(t, pipeline.Stream)
		if len(ids) != 0 {
			t.Errorf("empty source yielded %d tracks", len(ids))
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		source := newFakeSource(120, false)
		pipeline := &Pipeline{Source: source, PageSize: 50}
		err := pipeline.Stream(ctx, func(tracks []models.Track) bool { return true })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	})
}

func TestPipelineStreamAll(t *testing.T) {
	t.Run("Folds Pages In Offset Order", func(t *testing.T) {
		source := newFakeSource(230, false)
		pipeline := &Pipeline{Source: source, PageSize: 50, Workers: 4}

		ids := collectIDs(t, pipeline.StreamAll)
		if len(ids) != 230 {
			t.Fatalf("got %d tracks, want 230", len(ids))
		}
		for i, id := range ids {
			want := fmt.Sprintf("track-%03d", i)
			if id != want {
				t.Fatalf("position %d has %s, want %s", i, id, want)
			}
		}
	})

	t.Run("Single Page Collection", func(t *testing.T) {
		source := newFakeSource(30, false)
		pipeline := &Pipeline{Source: source, PageSize: 50, Workers: 4}

		ids := collectIDs(t, pipeline.StreamAll)
		if len(ids) != 30 {
			t.Fatalf("got %d tracks, want 30", len(ids))
		}
		if source.fetchCount() != 1 {
			t.Errorf("single page should fetch once, fetched %d", source.fetchCount())
		}
	})

	t.Run("Cursor Source Falls Back To Sequential", func(t *testing.T) {
		source := newFakeSource(120, true)
		pipeline := &Pipeline{Source: source, PageSize: 50, Workers: 4}

		ids := collectIDs(t, pipeline.StreamAll)
		if len(ids) != 120 {
			t.Fatalf("got %d tracks, want 120", len(ids))
		}
		for i, id := range ids {
			want := fmt.Sprintf("track-%03d", i)
			if id != want {
				t.Fatalf("position %d has %s, want %s", i, id, want)
			}
		}
	})

	t.Run("Worker Fetch Error Aborts", func(t *testing.T) {
		source := newFakeSource(230, false)
		source.failAt = 150
		pipeline := &Pipeline{Source: source, PageSize: 50, Workers: 4}

		err := pipeline.StreamAll(context.Background(), func(tracks []models.Track) bool { return true })
		if !errors.Is(err, shared.ErrRetrievalFailed) {
			t.Errorf("got %v, want ErrRetrievalFailed", err)
		}
	})

	t.Run("Empty Collection", func(t *testing.T) {
		source := newFakeSource(0, false)
		pipeline := &Pipeline{Source: source, PageSize: 50, Workers: 4}

		ids := collectIDs(t, pipeline.StreamAll)
		if len(ids) != 0 {
			t.Errorf("empty source yielded %d tracks", len(ids))
		}
	})
}
