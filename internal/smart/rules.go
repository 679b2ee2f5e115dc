package smart

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jamm-labs/jamm/internal/models"
)

// RuleField identifies the track attribute a rule tests.
type RuleField int

const (
	FieldUnknown RuleField = iota
	FieldAlbum
	FieldArtist
	FieldSong
	FieldYear
)

func (f RuleField) String() string {
	switch f {
	case FieldAlbum:
		return "album"
	case FieldArtist:
		return "artist"
	case FieldSong:
		return "song"
	case FieldYear:
		return "year"
	default:
		return "unknown"
	}
}

// ParseRuleField maps a form value to a RuleField.
func ParseRuleField(s string) RuleField {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "album":
		return FieldAlbum
	case "artist":
		return FieldArtist
	case "song":
		return FieldSong
	case "year":
		return FieldYear
	default:
		return FieldUnknown
	}
}

// RuleOperator identifies the predicate a rule applies to a field value.
type RuleOperator int

const (
	OpUnknown RuleOperator = iota
	OpEqual
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpContains
)

func (o RuleOperator) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpNotEqual:
		return "notEqual"
	case OpGreaterThan:
		return "greaterThan"
	case OpGreaterThanOrEqual:
		return "greaterThanOrEqual"
	case OpLessThan:
		return "lessThan"
	case OpLessThanOrEqual:
		return "lessThanOrEqual"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// ParseRuleOperator maps a form value to a RuleOperator.
func ParseRuleOperator(s string) RuleOperator {
	switch strings.TrimSpace(s) {
	case "equal":
		return OpEqual
	case "notEqual":
		return OpNotEqual
	case "greaterThan":
		return OpGreaterThan
	case "greaterThanOrEqual":
		return OpGreaterThanOrEqual
	case "lessThan":
		return OpLessThan
	case "lessThanOrEqual":
		return OpLessThanOrEqual
	case "contains":
		return OpContains
	default:
		return OpUnknown
	}
}

// Rule is a single user-authored predicate over one track field.
//
// A malformed rule (unknown field or operator, or an operand the operator
// cannot interpret) fails closed: the track is excluded rather than an
// error raised, so a bad rule yields an empty result instead of corrupting
// the request.
type Rule struct {
	Field    RuleField
	Operator RuleOperator
	Operand  string
}

// String renders the rule for logs and the run history.
func (r Rule) String() string {
	return fmt.Sprintf("%s %s %q", r.Field, r.Operator, r.Operand)
}

// Matches reports whether a track satisfies this rule.
func (r Rule) Matches(t models.Track) bool {
	switch r.Field {
	case FieldAlbum:
		return matchString(t.Album, r.Operator, r.Operand)
	case FieldSong:
		return matchString(t.Title, r.Operator, r.Operand)
	case FieldArtist:
		return matchArtists(t.Artists, r.Operator, r.Operand)
	case FieldYear:
		return matchYear(t.ReleaseYear(), r.Operator, r.Operand)
	default:
		return false
	}
}

// MatchesAll reports whether a track satisfies every rule in the list.
// An empty rule list matches every track.
func MatchesAll(t models.Track, rules []Rule) bool {
	for _, rule := range rules {
		if !rule.Matches(t) {
			return false
		}
	}
	return true
}

// matchString applies an operator to a single string field value.
// Ordering operators are undefined for strings and fail closed.
func matchString(value string, op RuleOperator, operand string) bool {
	switch op {
	case OpEqual:
		return strings.EqualFold(value, operand)
	case OpNotEqual:
		return !strings.EqualFold(value, operand)
	case OpContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(operand))
	default:
		return false
	}
}

// matchArtists applies an operator across a track's artist list.
// A track matches when any one of its artists satisfies the predicate;
// notEqual requires that none do.
func matchArtists(artists []string, op RuleOperator, operand string) bool {
	switch op {
	case OpNotEqual:
		for _, artist := range artists {
			if strings.EqualFold(artist, operand) {
				return false
			}
		}
		return true
	case OpEqual, OpContains:
		for _, artist := range artists {
			if matchString(artist, op, operand) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// matchYear applies a numeric operator to the track's release year.
// A zero year (missing or malformed release date) and non-numeric
// operands both fail closed.
func matchYear(year int, op RuleOperator, operand string) bool {
	if year == 0 {
		return false
	}

	target, err := strconv.Atoi(strings.TrimSpace(operand))
	if err != nil {
		return false
	}

	switch op {
	case OpEqual:
		return year == target
	case OpNotEqual:
		return year != target
	case OpGreaterThan:
		return year > target
	case OpGreaterThanOrEqual:
		return year >= target
	case OpLessThan:
		return year < target
	case OpLessThanOrEqual:
		return year <= target
	default:
		return false
	}
}

// Form field prefixes used by the smart playlist creation form.
// Rules are submitted as indexed triples: playlistRuleType-N,
// playlistRuleOperator-N, playlistRuleData-N.
const (
	ruleTypePrefix     = "playlistRuleType-"
	ruleOperatorPrefix = "playlistRuleOperator-"
	ruleDataPrefix     = "playlistRuleData-"
)

// ParseRules assembles rules from submitted form values.
//
// Rule rows are collected in index order so rule evaluation is
// reproducible. Rows with an unknown field or operator are kept as
// fail-closed rules rather than dropped; silently removing them would
// widen the result instead of narrowing it.
func ParseRules(form url.Values) []Rule {
	var indices []int
	for key := range form {
		if !strings.HasPrefix(key, ruleTypePrefix) {
			continue
		}
		idx, err := strconv.Atoi(key[len(ruleTypePrefix):])
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	rules := make([]Rule, 0, len(indices))
	for _, idx := range indices {
		suffix := strconv.Itoa(idx)
		rules = append(rules, Rule{
			Field:    ParseRuleField(form.Get(ruleTypePrefix + suffix)),
			Operator: ParseRuleOperator(form.Get(ruleOperatorPrefix + suffix)),
			Operand:  form.Get(ruleDataPrefix + suffix),
		})
	}

	return rules
}

// SummarizeRules renders a rule list for the run history log.
func SummarizeRules(rules []Rule) string {
	if len(rules) == 0 {
		return "all tracks"
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, " AND ")
}
