package listing

// LoadState is the lifecycle of the result slot.
type LoadState int

const (
	// StateIdle means nothing was requested yet
	StateIdle LoadState = iota
	// StateLoading means the latest request has not resolved
	StateLoading
	// StateReady means the latest request succeeded
	StateReady
	// StateFailed means the latest request failed; the previous result is kept
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}
