package workflow

import (
	"fmt"
	"strings"
)

// Message is a notification title/body pair.
type Message struct {
	Title string
	Body  string
	Type  string // info|success|warning|error
}

var stageMessages = map[Stage]Message{
	StageQualified:          {Title: "Your deal has been qualified", Body: "Deal %s meets our initial criteria. We will be in touch about next steps.", Type: "success"},
	StageDocumentsRequested: {Title: "Documents requested", Body: "Please upload the supporting documents for deal %s from your dashboard.", Type: "info"},
	StageDocumentsInReview:  {Title: "Documents in review", Body: "Our team is reviewing the documents submitted for deal %s.", Type: "info"},
	StageDueDiligence:       {Title: "Due diligence started", Body: "Deal %s has entered due diligence.", Type: "info"},
	StageTermSheet:          {Title: "Term sheet stage", Body: "Deal %s has reached the term sheet stage.", Type: "success"},
	StageNegotiation:        {Title: "Negotiation underway", Body: "Terms for deal %s are being negotiated.", Type: "info"},
	StageClosing:            {Title: "Closing", Body: "Deal %s is moving to closing.", Type: "success"},
	StageFunded:             {Title: "Deal funded", Body: "Congratulations, deal %s has been funded.", Type: "success"},
	StageDeclined:           {Title: "Deal declined", Body: "Deal %s will not proceed. Contact us if you have questions.", Type: "warning"},
	StageWithdrawn:          {Title: "Deal withdrawn", Body: "Deal %s has been withdrawn.", Type: "warning"},
	StageDraft:              {Title: "Deal returned to draft", Body: "Deal %s has been returned to draft for updates.", Type: "info"},
}

// StageMessage is the owner notification sent after a deal moves to stage.
func StageMessage(stage Stage, dealCode string) Message {
	tmpl, ok := stageMessages[stage]
	if !ok {
		return Message{
			Title: "Deal status updated",
			Body:  fmt.Sprintf("Deal %s moved to %s.", dealCode, Label(stage)),
			Type:  "info",
		}
	}
	return Message{Title: tmpl.Title, Body: fmt.Sprintf(tmpl.Body, dealCode), Type: tmpl.Type}
}

// ReleaseDecisionMessage is the owner notification for an AuthorizeRelease call.
func ReleaseDecisionMessage(decision DealReleaseStatus, dealCode, reason string) Message {
	switch decision {
	case DealReadyForRelease:
		return Message{
			Title: "Deal approved for release",
			Body:  fmt.Sprintf("Deal %s has been approved and is ready to be released to funding partners.", dealCode),
			Type:  "success",
		}
	case DealReleased:
		return Message{
			Title: "Deal released to funding partners",
			Body:  fmt.Sprintf("Deal %s has been released to funding partners for review.", dealCode),
			Type:  "success",
		}
	}
	body := fmt.Sprintf("Deal %s was not approved for release.", dealCode)
	if r := strings.TrimSpace(reason); r != "" {
		body += " Reason: " + r
	}
	return Message{Title: "Deal release not approved", Body: body, Type: "error"}
}

// DocumentRejectedMessage is the owner notification for a rejected document.
func DocumentRejectedMessage(fileName, dealCode, reason string) Message {
	return Message{
		Title: "Document rejected",
		Body:  fmt.Sprintf("%q for deal %s was rejected: %s. Please upload a replacement.", fileName, dealCode, reason),
		Type:  "warning",
	}
}

// PartnerAlertMessage is the partner notification sent by the alert fan-out.
func PartnerAlertMessage(dealCode string, match MatchResult) Message {
	if match.Matches {
		body := fmt.Sprintf("Deal %s matches your investment preferences.", dealCode)
		if len(match.MatchReasons) > 0 {
			body += " " + strings.Join(match.MatchReasons, "; ") + "."
		}
		return Message{Title: "New deal matching your criteria", Body: body, Type: "success"}
	}
	return Message{
		Title: "New deal available",
		Body:  fmt.Sprintf("Deal %s is available for review.", dealCode),
		Type:  "info",
	}
}
