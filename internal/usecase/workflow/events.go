// usecase/workflow/events.go
package workflow

// StageEvent is pushed to the user's event stream on every observable
// transition.
type StageEvent struct {
	Type     string    `json:"type"`
	FlowID   string    `json:"flow_id"`
	Stage    string    `json:"stage"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Notifier delivers stage events. Delivery is best-effort; the state machine
// never waits on it.
type Notifier interface {
	NotifyStage(userID string, event StageEvent)
}

// NopNotifier satisfies Notifier when no event stream is attached.
type NopNotifier struct{}

func (NopNotifier) NotifyStage(string, StageEvent) {}
