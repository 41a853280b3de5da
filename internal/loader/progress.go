package loader

// Phase identifies where in a load cycle the orchestrator currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePaginating Phase = "paginating"
	PhaseFetching   Phase = "fetching"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

// Progress is the externally visible state of the current load cycle.
// Current/Total count dispatches whose details have been processed. Fatal
// failures surface through Message on a terminal progress value; there is no
// separate error channel.
type Progress struct {
	Phase   Phase  `json:"phase"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
	CycleID string `json:"cycle_id,omitempty"`
}
