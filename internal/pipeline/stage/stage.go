// internal/pipeline/stage/stage.go
package stage

import "fmt"

// Stage is one step of the hiring pipeline.
type Stage string

const (
	Applied   Stage = "Applied"
	Screening Stage = "Screening"
	Interview Stage = "Interview"
	Offer     Stage = "Offer"
	Hired     Stage = "Hired"
	Rejected  Stage = "Rejected"
)

// All lists every stage in pipeline order, terminals last.
var All = []Stage{Applied, Screening, Interview, Offer, Hired, Rejected}

// allowedTransitions is the authoritative rule set: the happy path moves
// exactly one step forward, Rejected is reachable from every non-terminal
// stage, and terminal stages have no outgoing edges. A plain next-index check
// is not equivalent because it would forbid rejecting from non-adjacent
// stages.
var allowedTransitions = map[Stage][]Stage{
	Applied:   {Screening, Rejected},
	Screening: {Interview, Rejected},
	Interview: {Offer, Rejected},
	Offer:     {Hired, Rejected},
	Hired:     {},
	Rejected:  {},
}

// Parse validates a stage name.
func Parse(s string) (Stage, error) {
	st := Stage(s)
	if _, ok := allowedTransitions[st]; !ok {
		return "", fmt.Errorf("unknown stage: %q", s)
	}
	return st, nil
}

// IsTerminal reports whether a stage has no outgoing transitions.
func (s Stage) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0 && s.IsValid()
}

// IsValid reports whether the value is a member of the stage enumeration.
func (s Stage) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Stage) String() string {
	return string(s)
}

// AllowedTargets returns the stages reachable from s. The result is a copy
// and is empty for terminal or unknown stages.
func AllowedTargets(s Stage) []Stage {
	targets := allowedTransitions[s]
	out := make([]Stage, len(targets))
	copy(out, targets)
	return out
}

// IsLegal reports whether the move from one stage to another is allowed.
func IsLegal(from, to Stage) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
