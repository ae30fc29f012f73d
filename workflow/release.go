package workflow

import (
	"strings"
	"time"
)

// ReleaseStatus is the state of one partner's release of a deal.
type ReleaseStatus string

const (
	ReleasePending      ReleaseStatus = "pending"
	ReleaseInterested   ReleaseStatus = "interested"
	ReleaseReviewing    ReleaseStatus = "reviewing"
	ReleaseDueDiligence ReleaseStatus = "due_diligence"
	ReleaseTermSheet    ReleaseStatus = "term_sheet"
	ReleasePassed       ReleaseStatus = "passed"
)

// AccessLevel is how much of a deal's material a partner may view.
type AccessLevel string

const (
	AccessSummary   AccessLevel = "summary"
	AccessDocuments AccessLevel = "documents"
	AccessFull      AccessLevel = "full"
)

// PartnerAction is a partner-side move on a release.
type PartnerAction string

const (
	ActionExpressInterest   PartnerAction = "express_interest"
	ActionPass              PartnerAction = "pass"
	ActionStartDueDiligence PartnerAction = "start_due_diligence"
	ActionAddNote           PartnerAction = "add_note"
)

// ParsePartnerAction validates a raw action value.
func ParsePartnerAction(raw string) (PartnerAction, error) {
	a := PartnerAction(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionExpressInterest, ActionPass, ActionStartDueDiligence, ActionAddNote:
		return a, nil
	}
	return "", Validation("Invalid action. Must be one of: express_interest, pass, start_due_diligence, add_note")
}

// ReleaseState is the mutable field-set of a deal release.
type ReleaseState struct {
	Status                ReleaseStatus
	AccessLevel           AccessLevel
	InterestExpressedAt   *time.Time
	PassedAt              *time.Time
	DueDiligenceStartedAt *time.Time
	PartnerNotes          *string
	PassReason            *string
}

// ReleaseInput carries the optional free text submitted with an action.
type ReleaseInput struct {
	Notes      string
	PassReason string
}

// ApplyPartnerAction returns the release state after action. The input state
// is not modified. Errors carry the user-facing message for the rejection.
func ApplyPartnerAction(state ReleaseState, action PartnerAction, in ReleaseInput, now time.Time) (ReleaseState, error) {
	next := state
	notes := strings.TrimSpace(in.Notes)

	switch action {
	case ActionExpressInterest:
		switch state.Status {
		case ReleasePending, ReleaseReviewing, ReleaseInterested:
		case ReleasePassed:
			return state, InvalidTransition("Cannot express interest in a deal you have passed on (status %s -> %s)", state.Status, ReleaseInterested)
		default:
			return state, InvalidTransition("Cannot express interest once the release is in %s (requested %s)", state.Status, ReleaseInterested)
		}
		next.Status = ReleaseInterested
		next.AccessLevel = AccessFull
		next.InterestExpressedAt = &now
	case ActionPass:
		if state.Status == ReleasePassed {
			return state, InvalidTransition("You have already passed on this deal (status %s -> %s)", state.Status, ReleasePassed)
		}
		next.Status = ReleasePassed
		next.PassedAt = &now
		if reason := strings.TrimSpace(in.PassReason); reason != "" {
			next.PassReason = &reason
		}
	case ActionStartDueDiligence:
		if state.Status != ReleaseInterested && state.Status != ReleaseReviewing {
			return state, InvalidTransition("Must express interest before starting due diligence (status %s -> %s)", state.Status, ReleaseDueDiligence)
		}
		next.Status = ReleaseDueDiligence
		next.AccessLevel = AccessDocuments
		next.DueDiligenceStartedAt = &now
	case ActionAddNote:
		if notes == "" {
			return state, Validation("Note text is required")
		}
	default:
		return state, Validation("Invalid action %q", action)
	}

	if notes != "" {
		next.PartnerNotes = &notes
	}
	return next, nil
}

// ConfirmationMessage is the text returned to the partner after action.
func ConfirmationMessage(action PartnerAction) string {
	switch action {
	case ActionExpressInterest:
		return "Interest expressed. You now have full access to the deal package."
	case ActionPass:
		return "You have passed on this deal."
	case ActionStartDueDiligence:
		return "Due diligence started."
	case ActionAddNote:
		return "Note saved."
	}
	return "Action recorded."
}

// CanRelease reports whether a deal may still be offered to partners. Closed
// deals and deals whose release an admin rejected may not.
func CanRelease(stage Stage, release DealReleaseStatus) bool {
	return !IsTerminalStage(stage) && release != DealRejected
}

// AdvancesRelease reports whether action moves a partner further into the
// deal. Only pass and add_note remain open once the deal is not releasable.
func AdvancesRelease(action PartnerAction) bool {
	return action == ActionExpressInterest || action == ActionStartDueDiligence
}

// CanViewPackage reports whether a partner may download the deal package.
func CanViewPackage(status ReleaseStatus, level AccessLevel) bool {
	if level != "" && level != AccessSummary {
		return true
	}
	return status != "" && status != ReleasePending
}

// DealReleaseStatus is the admin-controlled release flag on the deal itself.
type DealReleaseStatus string

const (
	DealNotReady        DealReleaseStatus = "not_ready"
	DealReadyForRelease DealReleaseStatus = "ready_for_release"
	DealReleased        DealReleaseStatus = "released"
	DealRejected        DealReleaseStatus = "rejected"
)

// ParseReleaseDecision validates an AuthorizeRelease action.
func ParseReleaseDecision(raw string) (DealReleaseStatus, error) {
	s := DealReleaseStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case DealReadyForRelease, DealReleased, DealRejected:
		return s, nil
	}
	return "", Validation("Invalid action. Must be 'ready_for_release', 'released', or 'rejected'")
}
