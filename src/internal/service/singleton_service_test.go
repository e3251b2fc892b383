package service

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/storage"
)

var review = &config.ResourceConfig{Route: "review", File: "review.json", Kind: config.KindSingleton}

func TestSingleton_GetMissingIsEmpty(t *testing.T) {
	svc := NewSingletonService(storage.NewStore(t.TempDir()))

	if diff := cmp.Diff(storage.Document(storage.Singleton{}), svc.Get(review)); diff != "" {
		t.Errorf("Expected empty mapping (-want +got):\n%s", diff)
	}
}

func TestSingleton_PutReplacesWithoutMerge(t *testing.T) {
	svc := NewSingletonService(storage.NewStore(t.TempDir()))

	first := storage.Singleton{"weekOf": "2026-10-12", "score": json.Number("7"), "accomplished": []any{"ship"}}
	if _, err := svc.Put(review, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second := storage.Singleton{"momentum": "rising"}
	echoed, err := svc.Put(review, second)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if diff := cmp.Diff(storage.Document(second), echoed); diff != "" {
		t.Errorf("Put must echo the body (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(storage.Document(second), svc.Get(review)); diff != "" {
		t.Errorf("Stored document mismatch (-want +got):\n%s", diff)
	}
}

func TestSingleton_PutArray(t *testing.T) {
	svc := NewSingletonService(storage.NewStore(t.TempDir()))

	body := storage.List{"phase-1", "phase-2"}
	echoed, err := svc.Put(review, body)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if diff := cmp.Diff(storage.Document(body), echoed); diff != "" {
		t.Errorf("Put must echo the body (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(storage.Document(body), svc.Get(review)); diff != "" {
		t.Errorf("Stored array mismatch (-want +got):\n%s", diff)
	}
}
