package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendFirestore {
		t.Errorf("expected firestore backend by default, got %q", cfg.Backend)
	}
	if cfg.ProjectID == "" {
		t.Error("ProjectID should not be empty")
	}
	if !cfg.EnableMetrics {
		t.Error("metrics should be enabled by default")
	}
}

func TestNewDependencies_MemoryBackend(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{Backend: BackendMemory}, nil)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if deps.Store == nil {
		t.Error("Store should not be nil")
	}
	if deps.Catalog == nil {
		t.Error("Catalog service should not be nil")
	}
	if deps.Cart == nil {
		t.Error("Cart service should not be nil")
	}
	if deps.Order == nil {
		t.Error("Order service should not be nil")
	}
	if deps.Coupon == nil {
		t.Error("Coupon service should not be nil")
	}
	if deps.Review == nil {
		t.Error("Review service should not be nil")
	}
	if deps.User == nil {
		t.Error("User service should not be nil")
	}
	if deps.Stats == nil {
		t.Error("Stats service should not be nil")
	}
	if deps.Logger == nil {
		t.Error("Logger should be initialized even when nil is passed")
	}
}

func TestNewDependencies_UnknownBackend(t *testing.T) {
	_, err := NewDependencies(context.Background(), Config{Backend: "etcd"}, log.WithField("component", "test"))
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
