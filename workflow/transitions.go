package workflow

// CanTransitionTo reports whether a deal may move from current to target.
//
// The pipeline is a graph, not a chain: from any non-terminal stage a deal may
// move forward, move back (documents are often re-requested late) or escape to
// declined or withdrawn. Terminal stages accept nothing and a move to the
// current stage is rejected.
func CanTransitionTo(current, target Stage) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	if current == target {
		return false
	}
	return !IsTerminalStage(current)
}

// ValidateTransition returns an InvalidTransition error naming both stages
// when the move is not allowed.
func ValidateTransition(current, target Stage) error {
	if !target.Valid() {
		return Validation("Invalid stage %q", target)
	}
	if CanTransitionTo(current, target) {
		return nil
	}
	if IsTerminalStage(current) {
		return InvalidTransition("Cannot move deal from %s to %s: %s is a final stage", current, target, Label(current))
	}
	if current == target {
		return InvalidTransition("Deal is already in %s", current)
	}
	return InvalidTransition("Cannot move deal from %s to %s", current, target)
}
