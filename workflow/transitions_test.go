package workflow

import (
	"strings"
	"testing"
)

func TestTerminalStagesRejectEveryTarget(t *testing.T) {
	for _, from := range []Stage{StageFunded, StageDeclined, StageWithdrawn} {
		if !IsTerminalStage(from) {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range Stages() {
			if CanTransitionTo(from, to.Stage) {
				t.Fatalf("expected %s -> %s to be rejected", from, to.Stage)
			}
		}
	}
}

func TestEscapeTransitionsFromEveryOpenStage(t *testing.T) {
	for _, info := range Stages() {
		if info.Terminal {
			continue
		}
		if !CanTransitionTo(info.Stage, StageDeclined) {
			t.Fatalf("expected %s -> declined to be allowed", info.Stage)
		}
		if !CanTransitionTo(info.Stage, StageWithdrawn) {
			t.Fatalf("expected %s -> withdrawn to be allowed", info.Stage)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Stage
		want     bool
	}{
		{StageDraft, StageQualified, true},
		{StageQualified, StageDocumentsRequested, true},
		{StageClosing, StageFunded, true},
		{StageTermSheet, StageDocumentsInReview, true},
		{StageNegotiation, StageDraft, true},
		{StageDraft, StageDraft, false},
		{StageFunded, StageQualified, false},
		{StageDeclined, StageDraft, false},
		{Stage("archived"), StageDraft, false},
		{StageDraft, Stage("archived"), false},
	}
	for _, tc := range cases {
		if got := CanTransitionTo(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransitionTo(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionToIsDeterministic(t *testing.T) {
	for _, a := range Stages() {
		for _, b := range Stages() {
			first := CanTransitionTo(a.Stage, b.Stage)
			for i := 0; i < 3; i++ {
				if CanTransitionTo(a.Stage, b.Stage) != first {
					t.Fatalf("non-deterministic result for %s -> %s", a.Stage, b.Stage)
				}
			}
		}
	}
}

func TestValidateTransitionNamesBothStages(t *testing.T) {
	err := ValidateTransition(StageFunded, StageQualified)
	if !IsKind(err, KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"funded", "qualified"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in message %q", want, msg)
		}
	}

	if err := ValidateTransition(StageDraft, Stage("bogus")); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error for unknown stage, got %v", err)
	}
	if err := ValidateTransition(StageDraft, StageQualified); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
