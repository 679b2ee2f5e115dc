package smart

import (
	"strings"

	"github.com/jamm-labs/jamm/internal/models"
)

// OrderField identifies the track attribute an ordering sorts by.
type OrderField int

const (
	OrderByNone OrderField = iota
	OrderByArtist
	OrderByAlbum
	OrderBySong
	OrderByRelease
	OrderByLibraryAdd
	OrderByDuration
	OrderByPopularity
)

func (f OrderField) String() string {
	switch f {
	case OrderByArtist:
		return "artist"
	case OrderByAlbum:
		return "album"
	case OrderBySong:
		return "song"
	case OrderByRelease:
		return "release date"
	case OrderByLibraryAdd:
		return "library add date"
	case OrderByDuration:
		return "duration"
	case OrderByPopularity:
		return "popularity"
	default:
		return "none"
	}
}

// ParseOrderField maps a form value to an OrderField.
func ParseOrderField(s string) OrderField {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "artist":
		return OrderByArtist
	case "album":
		return OrderByAlbum
	case "song":
		return OrderBySong
	case "release date":
		return OrderByRelease
	case "library add date":
		return OrderByLibraryAdd
	case "duration":
		return OrderByDuration
	case "popularity":
		return OrderByPopularity
	default:
		return OrderByNone
	}
}

// OrderDirection is the sort direction for an enabled ordering.
type OrderDirection int

const (
	directionUnknown OrderDirection = iota
	Ascending
	Descending
)

func (d OrderDirection) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unknown"
	}
}

// ParseOrderDirection maps a form value to an OrderDirection.
func ParseOrderDirection(s string) OrderDirection {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "ascending":
		return Ascending
	case "descending":
		return Descending
	default:
		return directionUnknown
	}
}

// OrderSpec is a tagged variant: either disabled (the zero value) or an
// enabled ordering carrying its field, direction, and resolved comparator.
// Callers never see a half-built spec with a nil comparator; any
// unrecognized input resolves to the disabled variant, which preserves
// stable input order.
type OrderSpec struct {
	enabled   bool
	field     OrderField
	direction OrderDirection
	compare   CompareFunc
}

// DisabledOrder returns the no-op ordering.
func DisabledOrder() OrderSpec {
	return OrderSpec{}
}

// NewOrderSpec builds an enabled ordering for a known field and direction.
// Returns the disabled variant when no comparator exists for the field.
func NewOrderSpec(field OrderField, direction OrderDirection) OrderSpec {
	compare := ComparatorFor(field, direction)
	if compare == nil {
		return DisabledOrder()
	}
	return OrderSpec{enabled: true, field: field, direction: direction, compare: compare}
}

// ParseOrderSpec resolves raw form values into an OrderSpec.
// Disabled, an unknown field, or an unknown direction all yield the
// disabled variant; malformed ordering input is never an error.
func ParseOrderSpec(enabled bool, field, direction string) OrderSpec {
	if !enabled {
		return DisabledOrder()
	}

	orderField := ParseOrderField(field)
	if orderField == OrderByNone {
		return DisabledOrder()
	}

	orderDirection := ParseOrderDirection(direction)
	if orderDirection == directionUnknown {
		return DisabledOrder()
	}

	return NewOrderSpec(orderField, orderDirection)
}

// Enabled reports whether the spec carries an active comparator.
func (s OrderSpec) Enabled() bool { return s.enabled }

// Field returns the order field; OrderByNone when disabled.
func (s OrderSpec) Field() OrderField { return s.field }

// Direction returns the sort direction of an enabled spec.
func (s OrderSpec) Direction() OrderDirection { return s.direction }

// Comparator returns the active comparator, nil when disabled.
func (s OrderSpec) Comparator() CompareFunc { return s.compare }

// SortedIndexSeq maintains a sequence of candidate pool indices sorted by
// a comparator. Insert is the sole mutator, so the sortedness invariant
// holds at every intermediate step rather than relying on caller
// discipline. Indices are unique and always reference tracks already
// present in the pool handed to Insert.
type SortedIndexSeq struct {
	compare CompareFunc
	indices []int
}

// NewSortedIndexSeq creates an empty sequence ordered by compare.
func NewSortedIndexSeq(compare CompareFunc) *SortedIndexSeq {
	return &SortedIndexSeq{compare: compare}
}

// Insert places poolIdx into the sequence at its sorted position using a
// binary search over the current indices, costing O(log k) comparisons.
//
// The search finds the upper bound of any equal run: a tie narrows the
// search upward like a greater comparison, so a newly arrived track lands
// after the tracks it compares equal to and two equal tracks keep their
// relative retrieval order (stable).
//
// Guards are defensive and non-throwing: a pool without the target index,
// an empty pool, or a nil comparator leaves the sequence unchanged; the
// disabled-ordering path appends to a plain slice and never reaches here.
func (s *SortedIndexSeq) Insert(pool []models.Track, poolIdx int) {
	if len(pool) == 0 || poolIdx < 0 || poolIdx >= len(pool) {
		return
	}
	if s.compare == nil {
		return
	}

	candidate := pool[poolIdx]
	lower := 0
	upper := len(s.indices)

	for lower < upper {
		mid := lower + (upper-lower)/2
		target := pool[s.indices[mid]]

		if s.compare(candidate, target) < 0 {
			upper = mid
		} else {
			lower = mid + 1
		}
	}

	s.indices = append(s.indices, 0)
	copy(s.indices[lower+1:], s.indices[lower:])
	s.indices[lower] = poolIdx
}

// Len returns the number of indices in the sequence.
func (s *SortedIndexSeq) Len() int { return len(s.indices) }

// Indices returns the ordered pool indices. The returned slice is the
// sequence's backing store; callers must not mutate it.
func (s *SortedIndexSeq) Indices() []int { return s.indices }
