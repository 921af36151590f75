package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

func TestDraftPosting(t *testing.T) {
	stub := &stubGenerator{response: `{
		"description": " We are looking for a Go developer. ",
		"requiredConditions": ["Go", "SQL", "", "Docker", "Kubernetes", "gRPC", "Linux"],
		"preferredConditions": ["Redis", "Kafka"]
	}`}
	drafter := NewDrafter(stub, "English", 0, zap.NewNop())

	draft, err := drafter.DraftPosting(context.Background(), "Go developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Description != "We are looking for a Go developer." {
		t.Fatalf("unexpected description %q", draft.Description)
	}
	if len(draft.RequiredConditions) != maxDraftRequired {
		t.Fatalf("expected required conditions to be capped, got %v", draft.RequiredConditions)
	}
	if len(draft.PreferredConditions) != 2 {
		t.Fatalf("unexpected preferred conditions %v", draft.PreferredConditions)
	}
	if !strings.Contains(stub.lastPrompt, `"""`+"\nGo developer\n"+`"""`) {
		t.Fatalf("expected title in prompt")
	}
}

func TestDraftPostingRequiresTitle(t *testing.T) {
	stub := &stubGenerator{}
	drafter := NewDrafter(stub, "", 0, zap.NewNop())

	_, err := drafter.DraftPosting(context.Background(), "  ")

	var validation *recruiting.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no AI call")
	}
}
