package smart

import "fmt"

// ProgressUpdate represents a progress event during a generation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Generation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
}

// Generation phase enumeration. The pipeline is linear with no back
// edges: Retrieve → Filter → Order → Limit → Enrich → Create → Done,
// with Failed terminal on any stage error.
type Phase int

const (
	PhaseRetrieve Phase = iota
	PhaseFilter
	PhaseOrder
	PhaseLimit
	PhaseEnrich
	PhaseCreate
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseRetrieve:
		return "retrieve"
	case PhaseFilter:
		return "filter"
	case PhaseOrder:
		return "order"
	case PhaseLimit:
		return "limit"
	case PhaseEnrich:
		return "enrich"
	case PhaseCreate:
		return "create"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return ""
	}
}

func retrieveUpdate(retrieved, matched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseRetrieve,
		Step:    retrieved,
		Message: fmt.Sprintf("Retrieved %d tracks (%d matched)...", retrieved, matched),
	}
}

func limitUpdate(kept, matched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseLimit,
		Step:    kept,
		Total:   matched,
		Message: fmt.Sprintf("Keeping %d of %d matched tracks", kept, matched),
	}
}

func enrichUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseEnrich,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Probing artwork for %d tracks...", count),
	}
}

func createUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseCreate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func doneUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist %q ready (%d tracks)", name, count),
	}
}
