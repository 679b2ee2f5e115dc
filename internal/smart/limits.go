package smart

import (
	"strconv"
	"strings"

	"github.com/jamm-labs/jamm/internal/models"
)

// LimitKind identifies how a limit truncates the ordered result.
type LimitKind int

const (
	limitUnknown LimitKind = iota
	LimitByCount
	LimitByDuration
)

func (k LimitKind) String() string {
	switch k {
	case LimitByCount:
		return "count"
	case LimitByDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// ParseLimitKind maps a form value to a LimitKind.
func ParseLimitKind(s string) LimitKind {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "count":
		return LimitByCount
	case "duration":
		return LimitByDuration
	default:
		return limitUnknown
	}
}

// LimitSpec is a tagged variant: either disabled (the zero value) or an
// enabled truncation policy by track count or cumulative duration in
// milliseconds. Unrecognized kind or a non-positive value resolves to
// disabled, never an error.
type LimitSpec struct {
	enabled bool
	kind    LimitKind
	value   int
}

// DisabledLimit returns the no-op limit.
func DisabledLimit() LimitSpec {
	return LimitSpec{}
}

// NewLimitSpec builds an enabled limit. Non-positive values disable it.
func NewLimitSpec(kind LimitKind, value int) LimitSpec {
	if kind == limitUnknown || value <= 0 {
		return DisabledLimit()
	}
	return LimitSpec{enabled: true, kind: kind, value: value}
}

// ParseLimitSpec resolves raw form values into a LimitSpec.
func ParseLimitSpec(enabled bool, kind, value string) LimitSpec {
	if !enabled {
		return DisabledLimit()
	}

	limitKind := ParseLimitKind(kind)
	if limitKind == limitUnknown {
		return DisabledLimit()
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return DisabledLimit()
	}

	return NewLimitSpec(limitKind, n)
}

// Enabled reports whether the limit truncates at all.
func (l LimitSpec) Enabled() bool { return l.enabled }

// Kind returns the truncation policy of an enabled limit.
func (l LimitSpec) Kind() LimitKind { return l.kind }

// Value returns the count or duration budget of an enabled limit.
func (l LimitSpec) Value() int { return l.value }

// Apply truncates the ordered index sequence per the limit.
//
// Count keeps the first N entries. Duration keeps entries from the start
// until adding the next track would exceed the budget; the first track
// that would exceed it is excluded, not included then trimmed.
func (l LimitSpec) Apply(pool []models.Track, ordered []int) []int {
	if !l.enabled {
		return ordered
	}

	switch l.kind {
	case LimitByCount:
		if len(ordered) <= l.value {
			return ordered
		}
		return ordered[:l.value]

	case LimitByDuration:
		total := 0
		for i, poolIdx := range ordered {
			if poolIdx < 0 || poolIdx >= len(pool) {
				continue
			}
			total += pool[poolIdx].DurationMS
			if total > l.value {
				return ordered[:i]
			}
		}
		return ordered

	default:
		return ordered
	}
}

// Satisfied reports whether the matched set is already large enough that
// further retrieval cannot change the truncated result size. Used by the
// retrieval pipeline to stop paging early.
func (l LimitSpec) Satisfied(matchedCount, matchedDurationMS int) bool {
	if !l.enabled {
		return false
	}

	switch l.kind {
	case LimitByCount:
		return matchedCount >= l.value
	case LimitByDuration:
		return matchedDurationMS > l.value
	default:
		return false
	}
}
