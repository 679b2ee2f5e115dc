package smart

import (
	"strings"

	"github.com/jamm-labs/jamm/internal/models"
)

// CompareFunc orders two tracks: negative when a sorts before b,
// positive when after, zero when equivalent.
type CompareFunc func(a, b models.Track) int

// comparatorsByField holds the ascending comparator for every orderable
// field. Descending comparators are derived by negation in ComparatorFor.
var comparatorsByField = map[OrderField]CompareFunc{
	OrderByArtist:     compareByArtist,
	OrderByAlbum:      compareByAlbum,
	OrderBySong:       compareBySong,
	OrderByRelease:    compareByRelease,
	OrderByLibraryAdd: compareByLibraryAdd,
	OrderByDuration:   compareByDuration,
	OrderByPopularity: compareByPopularity,
}

// ComparatorFor resolves the comparator for a field and direction.
// Returns nil for an unknown field.
func ComparatorFor(field OrderField, direction OrderDirection) CompareFunc {
	ascending, ok := comparatorsByField[field]
	if !ok {
		return nil
	}
	if direction == Descending {
		return func(a, b models.Track) int { return -ascending(a, b) }
	}
	return ascending
}

// compareFold compares two strings case-insensitively.
func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareByArtist(a, b models.Track) int {
	return compareFold(a.PrimaryArtist(), b.PrimaryArtist())
}

func compareByAlbum(a, b models.Track) int {
	return compareFold(a.Album, b.Album)
}

func compareBySong(a, b models.Track) int {
	return compareFold(a.Title, b.Title)
}

// compareByRelease orders chronologically. Release dates are ISO-style
// strings of varying precision (YYYY, YYYY-MM, YYYY-MM-DD), which compare
// chronologically as plain strings.
func compareByRelease(a, b models.Track) int {
	return strings.Compare(a.ReleaseDate, b.ReleaseDate)
}

func compareByLibraryAdd(a, b models.Track) int {
	return a.AddedAt.Compare(b.AddedAt)
}

func compareByDuration(a, b models.Track) int {
	return a.DurationMS - b.DurationMS
}

func compareByPopularity(a, b models.Track) int {
	return a.Popularity - b.Popularity
}
