package services_test

import (
	"context"
	"testing"

	"mediasorter/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithSource(ctx, "/downloads/Show.S01E02.mkv")
	ctx = services.WithStage(ctx, "parse")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if src, ok := services.SourceFromContext(ctx); !ok || src != "/downloads/Show.S01E02.mkv" {
		t.Fatalf("unexpected source: %v %v", src, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "parse" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
