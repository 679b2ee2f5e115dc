package smart

import (
	"testing"
	"time"

	"github.com/jamm-labs/jamm/internal/models"
)

func orderedTitles(pool []models.Track, indices []int) []string {
	titles := make([]string, len(indices))
	for i, idx := range indices {
		titles[i] = pool[idx].Title
	}
	return titles
}

func assertSorted(t *testing.T, pool []models.Track, indices []int, compare CompareFunc) {
	t.Helper()
	for i := 1; i < len(indices); i++ {
		if compare(pool[indices[i-1]], pool[indices[i]]) > 0 {
			t.Fatalf("sequence out of order at %d: %v", i, orderedTitles(pool, indices))
		}
	}
}

func TestParseOrderSpec(t *testing.T) {
	t.Run("Enabled With Valid Fields", func(t *testing.T) {
		spec := ParseOrderSpec(true, "song", "descending")
		if !spec.Enabled() {
			t.Fatal("expected enabled spec")
		}
		if spec.Field() != OrderBySong || spec.Direction() != Descending {
			t.Errorf("unexpected field/direction: %v %v", spec.Field(), spec.Direction())
		}
		if spec.Comparator() == nil {
			t.Error("enabled spec must carry a comparator")
		}
	})

	t.Run("Disabled Flag", func(t *testing.T) {
		spec := ParseOrderSpec(false, "song", "ascending")
		if spec.Enabled() || spec.Comparator() != nil {
			t.Error("disabled flag should resolve to the disabled variant")
		}
	})

	t.Run("Unknown Field Disables", func(t *testing.T) {
		spec := ParseOrderSpec(true, "unknown", "ascending")
		if spec.Enabled() || spec.Comparator() != nil {
			t.Error("unknown field should resolve to the disabled variant")
		}
	})

	t.Run("Unknown Direction Disables", func(t *testing.T) {
		spec := ParseOrderSpec(true, "song", "sideways")
		if spec.Enabled() {
			t.Error("unknown direction should resolve to the disabled variant")
		}
	})

	t.Run("All Orderable Fields", func(t *testing.T) {
		for _, field := range []string{"artist", "album", "song", "release date", "library add date", "duration", "popularity"} {
			if !ParseOrderSpec(true, field, "ascending").Enabled() {
				t.Errorf("field %q should be orderable", field)
			}
		}
	})
}

func TestSortedIndexSeq(t *testing.T) {
	t.Run("Sorted At Every Step", func(t *testing.T) {
		pool := []models.Track{
			{Title: "Delta"}, {Title: "Alpha"}, {Title: "Echo"}, {Title: "Bravo"}, {Title: "Charlie"},
		}
		compare := ComparatorFor(OrderBySong, Ascending)
		seq := NewSortedIndexSeq(compare)

		for i := range pool {
			seq.Insert(pool, i)
			assertSorted(t, pool, seq.Indices(), compare)
		}

		want := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
		got := orderedTitles(pool, seq.Indices())
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("final order = %v, want %v", got, want)
			}
		}
	})

	t.Run("Descending Song Order", func(t *testing.T) {
		pool := []models.Track{{Title: "Alpha"}, {Title: "Charlie"}, {Title: "Bravo"}}
		seq := NewSortedIndexSeq(ComparatorFor(OrderBySong, Descending))
		for i := range pool {
			seq.Insert(pool, i)
		}

		want := []string{"Charlie", "Bravo", "Alpha"}
		got := orderedTitles(pool, seq.Indices())
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
	})

	t.Run("Equal Tracks Keep Retrieval Order", func(t *testing.T) {
		// Same duration everywhere: insertion order must be preserved.
		pool := []models.Track{
			{ID: "first", DurationMS: 200000},
			{ID: "second", DurationMS: 200000},
			{ID: "third", DurationMS: 200000},
		}
		seq := NewSortedIndexSeq(ComparatorFor(OrderByDuration, Ascending))
		for i := range pool {
			seq.Insert(pool, i)
		}

		indices := seq.Indices()
		for i, want := range []int{0, 1, 2} {
			if indices[i] != want {
				t.Fatalf("stability violated: indices = %v", indices)
			}
		}
	})

	t.Run("Ties Within A Mixed Pool Stay Stable", func(t *testing.T) {
		pool := []models.Track{
			{ID: "a", DurationMS: 100000},
			{ID: "b", DurationMS: 200000},
			{ID: "c", DurationMS: 200000},
			{ID: "d", DurationMS: 150000},
			{ID: "e", DurationMS: 200000},
		}
		seq := NewSortedIndexSeq(ComparatorFor(OrderByDuration, Ascending))
		for i := range pool {
			seq.Insert(pool, i)
		}

		want := []string{"a", "d", "b", "c", "e"}
		indices := seq.Indices()
		for i := range want {
			if pool[indices[i]].ID != want[i] {
				t.Fatalf("equal run reordered: indices = %v", indices)
			}
		}
	})

	t.Run("Defensive Guards", func(t *testing.T) {
		pool := []models.Track{{Title: "Alpha"}}
		compare := ComparatorFor(OrderBySong, Ascending)

		seq := NewSortedIndexSeq(compare)
		seq.Insert(nil, 0)
		if seq.Len() != 0 {
			t.Error("empty pool should leave sequence unchanged")
		}

		seq.Insert(pool, -1)
		seq.Insert(pool, 5)
		if seq.Len() != 0 {
			t.Error("out-of-range index should leave sequence unchanged")
		}

		nilCompare := NewSortedIndexSeq(nil)
		nilCompare.Insert(pool, 0)
		if nilCompare.Len() != 0 {
			t.Error("nil comparator should leave sequence unchanged")
		}
	})
}

func TestComparators(t *testing.T) {
	older := models.Track{
		Title: "Old", Artists: []string{"Abba"}, Album: "Arrival",
		ReleaseDate: "1976-10-11", DurationMS: 100, Popularity: 40,
		AddedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := models.Track{
		Title: "New", Artists: []string{"Zappa"}, Album: "Zoot",
		ReleaseDate: "1988", DurationMS: 200, Popularity: 80,
		AddedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name  string
		field OrderField
	}{
		{"artist", OrderByArtist},
		{"album", OrderByAlbum},
		{"release date", OrderByRelease},
		{"duration", OrderByDuration},
		{"popularity", OrderByPopularity},
		{"library add date", OrderByLibraryAdd},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ascending := ComparatorFor(tt.field, Ascending)
			descending := ComparatorFor(tt.field, Descending)

			if ascending(older, newer) >= 0 {
				t.Errorf("ascending %s should sort older/lower first", tt.name)
			}
			if descending(older, newer) <= 0 {
				t.Errorf("descending %s should be the negation", tt.name)
			}
		})
	}

	t.Run("case-insensitive song comparison", func(t *testing.T) {
		a := models.Track{Title: "alpha"}
		b := models.Track{Title: "ALPHA"}
		if ComparatorFor(OrderBySong, Ascending)(a, b) != 0 {
			t.Error("song comparison should ignore case")
		}
	})

	t.Run("unknown field has no comparator", func(t *testing.T) {
		if ComparatorFor(OrderByNone, Ascending) != nil {
			t.Error("expected nil comparator for unknown field")
		}
	})
}
