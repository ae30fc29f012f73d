// Package workflow holds the deal pipeline rules: the stage catalog, legal
// stage moves, handoff routing, the partner release state machine and
// preference matching. Nothing in here touches the database.
package workflow

import "strings"

// Stage is a deal's position in the capital-raising pipeline.
type Stage string

const (
	StageDraft              Stage = "draft"
	StageQualified          Stage = "qualified"
	StageDocumentsRequested Stage = "documents_requested"
	StageDocumentsInReview  Stage = "documents_in_review"
	StageDueDiligence       Stage = "due_diligence"
	StageTermSheet          Stage = "term_sheet"
	StageNegotiation        Stage = "negotiation"
	StageClosing            Stage = "closing"
	StageFunded             Stage = "funded"
	StageDeclined           Stage = "declined"
	StageWithdrawn          Stage = "withdrawn"
)

// StageInfo describes one stage for display and for the per-actor checklist.
type StageInfo struct {
	Stage       Stage    `json:"stage"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Terminal    bool     `json:"terminal"`
	OwnerItems  []string `json:"owner_action_items"`
	AdminItems  []string `json:"admin_action_items"`
}

var stageCatalog = []StageInfo{
	{
		Stage:       StageDraft,
		Label:       "Draft",
		Description: "Offering details are being prepared.",
		Order:       1,
		OwnerItems: []string{
			"Complete the company profile",
			"Describe the offering and capital requested",
		},
		AdminItems: []string{
			"Review the intake details",
			"Qualify or decline the deal",
		},
	},
	{
		Stage:       StageQualified,
		Label:       "Qualified",
		Description: "The deal meets the initial criteria.",
		Order:       2,
		OwnerItems: []string{
			"Confirm the offering terms",
		},
		AdminItems: []string{
			"Assign a team member",
			"Request supporting documents",
		},
	},
	{
		Stage:       StageDocumentsRequested,
		Label:       "Documents Requested",
		Description: "Supporting documents have been requested from the company.",
		Order:       3,
		OwnerItems: []string{
			"Upload the requested documents",
			"Complete the document checklist",
		},
		AdminItems: []string{
			"Follow up on missing documents",
		},
	},
	{
		Stage:       StageDocumentsInReview,
		Label:       "Documents In Review",
		Description: "Submitted documents are under review.",
		Order:       4,
		OwnerItems: []string{
			"Respond to reviewer questions",
			"Replace any rejected documents",
		},
		AdminItems: []string{
			"Approve or reject each document",
			"Move to due diligence when the checklist is complete",
		},
	},
	{
		Stage:       StageDueDiligence,
		Label:       "Due Diligence",
		Description: "Detailed diligence is underway with legal and funding partners.",
		Order:       5,
		OwnerItems: []string{
			"Answer diligence requests promptly",
		},
		AdminItems: []string{
			"Coordinate the legal handoff",
			"Release the deal to matching partners",
		},
	},
	{
		Stage:       StageTermSheet,
		Label:       "Term Sheet",
		Description: "A term sheet has been issued or is being prepared.",
		Order:       6,
		OwnerItems: []string{
			"Review the term sheet",
		},
		AdminItems: []string{
			"Circulate the term sheet to the owner",
			"Track partner feedback",
		},
	},
	{
		Stage:       StageNegotiation,
		Label:       "Negotiation",
		Description: "Terms are being negotiated between the parties.",
		Order:       7,
		OwnerItems: []string{
			"Confirm or counter the proposed terms",
		},
		AdminItems: []string{
			"Record agreed terms",
		},
	},
	{
		Stage:       StageClosing,
		Label:       "Closing",
		Description: "Closing documents are being executed.",
		Order:       8,
		OwnerItems: []string{
			"Sign the closing documents",
		},
		AdminItems: []string{
			"Confirm the closing checklist",
			"Confirm receipt of funds",
		},
	},
	{
		Stage:       StageFunded,
		Label:       "Funded",
		Description: "Capital has been delivered.",
		Order:       9,
		Terminal:    true,
	},
	{
		Stage:       StageDeclined,
		Label:       "Declined",
		Description: "The deal will not proceed.",
		Order:       10,
		Terminal:    true,
	},
	{
		Stage:       StageWithdrawn,
		Label:       "Withdrawn",
		Description: "The company withdrew the deal.",
		Order:       11,
		Terminal:    true,
	},
}

var stagesByName = func() map[Stage]StageInfo {
	m := make(map[Stage]StageInfo, len(stageCatalog))
	for _, info := range stageCatalog {
		m[info.Stage] = info
	}
	return m
}()

// Stages returns the catalog in pipeline order.
func Stages() []StageInfo {
	out := make([]StageInfo, len(stageCatalog))
	copy(out, stageCatalog)
	return out
}

// ParseStage validates a raw stage value.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := stagesByName[s]; !ok {
		return "", Validation("Invalid stage %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the catalog stages.
func (s Stage) Valid() bool {
	_, ok := stagesByName[s]
	return ok
}

// IsTerminalStage reports whether no further moves are allowed from s.
func IsTerminalStage(s Stage) bool {
	return stagesByName[s].Terminal
}

// Label returns the display label, falling back to the raw value.
func Label(s Stage) string {
	if info, ok := stagesByName[s]; ok {
		return info.Label
	}
	return string(s)
}

// ActionItems lists what the given actor is expected to do while the deal
// sits in s. Terminal stages have none.
func ActionItems(s Stage, isAdmin bool) []string {
	info, ok := stagesByName[s]
	if !ok || info.Terminal {
		return []string{}
	}
	src := info.OwnerItems
	if isAdmin {
		src = info.AdminItems
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func order(s Stage) int {
	return stagesByName[s].Order
}
