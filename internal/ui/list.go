package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	return fmt.Sprintf("%s [%s]", i.track.Title, shared.FormatDuration(i.track.DurationMS))
}
func (i trackItem) Description() string {
	desc := shared.JoinArtists(i.track.Artists)
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}
