package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/memory"
)

func TestStore_CreateAndRead(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "products", "prod-1", docstore.Document{
		"name":  "Mug",
		"stock": int64(10),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != "prod-1" {
		t.Fatalf("expected id prod-1, got %s", id)
	}

	doc, err := store.Read(ctx, "products", "prod-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["name"] != "Mug" {
		t.Fatalf("expected name Mug, got %v", doc["name"])
	}
	if doc["stock"] != int64(10) {
		t.Fatalf("expected stock 10, got %v", doc["stock"])
	}
}

func TestStore_CreateGeneratesID(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "products", "", docstore.Document{"name": "Lamp"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id, got empty string")
	}

	if _, err := store.Read(ctx, "products", id); err != nil {
		t.Fatalf("Read of generated id failed: %v", err)
	}
}

func TestStore_CreateExistingID(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{"name": "Mug"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{"name": "Mug"}); !errors.Is(err, docstore.ErrDocumentExists) {
		t.Fatalf("expected ErrDocumentExists, got %v", err)
	}
}

func TestStore_ReadMissing(t *testing.T) {
	store := memory.NewStore()

	if _, err := store.Read(context.Background(), "products", "nope"); !errors.Is(err, docstore.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestStore_PatchMergesFields(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{
		"name":  "Mug",
		"stock": int64(10),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Patch(ctx, "products", "prod-1", docstore.Document{"stock": int64(7)}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	doc, err := store.Read(ctx, "products", "prod-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["stock"] != int64(7) {
		t.Fatalf("expected stock 7, got %v", doc["stock"])
	}
	if doc["name"] != "Mug" {
		t.Fatalf("patch should not touch other fields, name = %v", doc["name"])
	}
}

func TestStore_PatchMissing(t *testing.T) {
	store := memory.NewStore()

	err := store.Patch(context.Background(), "products", "nope", docstore.Document{"stock": int64(1)})
	if !errors.Is(err, docstore.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store := memory.NewStore()

	if err := store.Delete(context.Background(), "products", "nope"); err != nil {
		t.Fatalf("Delete of missing document should succeed, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{"name": "Mug"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, "products", "prod-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Read(ctx, "products", "prod-1"); !errors.Is(err, docstore.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}

func TestStore_ServerTimestampResolved(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{
		"name":      "Mug",
		"createdAt": docstore.ServerTimestamp,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	doc, err := store.Read(ctx, "products", "prod-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	ts, ok := doc["createdAt"].(time.Time)
	if !ok {
		t.Fatalf("expected createdAt to be time.Time, got %T", doc["createdAt"])
	}
	if ts.Before(before) {
		t.Fatalf("server timestamp %s is before test start %s", ts, before)
	}
}

func TestStore_ServerTimestampsMonotonic(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var prev time.Time
	for i := 0; i < 50; i++ {
		id, err := store.Create(ctx, "events", "", docstore.Document{"at": docstore.ServerTimestamp})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		doc, err := store.Read(ctx, "events", id)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		ts := doc["at"].(time.Time)
		if !ts.After(prev) {
			t.Fatalf("timestamps must strictly increase: %s then %s", prev, ts)
		}
		prev = ts
	}
}

func TestStore_IncrementResolvedAgainstCurrentValue(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "prod-1", docstore.Document{"stock": int64(10)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Patch(ctx, "products", "prod-1", docstore.Document{"stock": docstore.Increment(-3)}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if err := store.Patch(ctx, "products", "prod-1", docstore.Document{"stock": docstore.Increment(5)}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	doc, err := store.Read(ctx, "products", "prod-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["stock"] != int64(12) {
		t.Fatalf("expected stock 12, got %v", doc["stock"])
	}
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "carts", "u1", docstore.Document{
		"items": []any{docstore.Document{"productId": "p1", "quantity": int64(2)}},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	doc, err := store.Read(ctx, "carts", "u1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	doc["items"].([]any)[0].(docstore.Document)["quantity"] = int64(99)

	again, err := store.Read(ctx, "carts", "u1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	qty := again["items"].([]any)[0].(docstore.Document)["quantity"]
	if qty != int64(2) {
		t.Fatalf("mutation of returned document leaked into the store: quantity = %v", qty)
	}
}

func TestStore_ContextCancelled(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Read(ctx, "products", "prod-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.Create(ctx, "products", "prod-1", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
