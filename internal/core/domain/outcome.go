package domain

// OutcomeKind classifies the result of a retrieval stage.
type OutcomeKind int

// Outcome kinds.
const (
	// OutcomeOk means the stage produced at least one result.
	OutcomeOk OutcomeKind = iota

	// OutcomeEmpty means the stage ran and found nothing.
	OutcomeEmpty

	// OutcomeErr means the stage failed.
	OutcomeErr
)

// String returns the string representation.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOk:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeErr:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the explicit result value of one retrieval stage.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Results []T
	Err     error
}

// OutcomeOf builds an Outcome from a call's return values.
func OutcomeOf[T any](results []T, err error) Outcome[T] {
	switch {
	case err != nil:
		return Outcome[T]{Kind: OutcomeErr, Err: err}
	case len(results) == 0:
		return Outcome[T]{Kind: OutcomeEmpty}
	default:
		return Outcome[T]{Kind: OutcomeOk, Results: results}
	}
}

// Ok reports whether the stage produced results.
func (o Outcome[T]) Ok() bool {
	return o.Kind == OutcomeOk
}
