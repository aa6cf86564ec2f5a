// Package screen holds the per-session view state of the dashboard screens:
// fetched data with its loading/error/empty phase, open forms and polling
// tasks bound to a view's lifetime.
package screen

// Phase is the single thing a screen shows
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseEmpty   Phase = "empty"
	PhaseData    Phase = "data"
)

// State is the three-way state of a data-fetch screen
type State[T any] struct {
	Loading bool
	Err     string
	Data    T
	Empty   bool
}

// Phase resolves the state to exactly one of loading, error, empty or data
func (s State[T]) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != "":
		return PhaseError
	case s.Empty:
		return PhaseEmpty
	default:
		return PhaseData
	}
}

// Loading returns the state shown before the first response arrives
func Loading[T any]() State[T] {
	return State[T]{Loading: true}
}

// Failed returns an error state carrying the user-visible message
func Failed[T any](msg string) State[T] {
	return State[T]{Err: msg}
}

// Loaded returns a data state; empty marks a successful but empty result
func Loaded[T any](data T, empty bool) State[T] {
	return State[T]{Data: data, Empty: empty}
}

// List builds the state of a list screen from a fetch result
func List[E any](items []E, msg string) State[[]E] {
	if msg != "" {
		return Failed[[]E](msg)
	}
	return Loaded(items, len(items) == 0)
}
