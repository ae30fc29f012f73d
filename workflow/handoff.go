package workflow

import (
	"strings"
	"time"
)

// HandoffTarget names the downstream team currently working a deal.
type HandoffTarget string

const (
	HandoffLegal          HandoffTarget = "legal"
	HandoffFundingPartner HandoffTarget = "optma"
)

// ParseHandoffTarget accepts "legal" or "optma". Only a nil value clears the
// handoff; an empty string is rejected like any other unknown target.
func ParseHandoffTarget(raw *string) (*HandoffTarget, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.ToLower(strings.TrimSpace(*raw))
	switch HandoffTarget(v) {
	case HandoffLegal, HandoffFundingPartner:
		t := HandoffTarget(v)
		return &t, nil
	}
	return nil, Validation("Invalid handoff target %q. Must be 'legal', 'optma' or null", *raw)
}

// HandoffState is the routing field-set of a deal. HandedOffAt and HandedOffBy
// are either both set or both nil.
type HandoffState struct {
	Target      *HandoffTarget
	HandedOffAt *time.Time
	HandedOffBy *int
}

// ApplyHandoff computes the next handoff state. The deal stage is not
// consulted; any stage may be handed off.
func ApplyHandoff(target *HandoffTarget, actorID int, now time.Time) HandoffState {
	if target == nil {
		return HandoffState{}
	}
	t := *target
	at := now
	by := actorID
	return HandoffState{Target: &t, HandedOffAt: &at, HandedOffBy: &by}
}

// String renders a nullable target for audit details.
func (t *HandoffTarget) String() string {
	if t == nil {
		return "none"
	}
	return string(*t)
}
