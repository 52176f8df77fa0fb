package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/memory"
)

func TestTransaction_CommitAppliesAllWrites(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "p1", docstore.Document{"stock": int64(10)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var orderID string
	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if _, err := tx.Read("products", "p1"); err != nil {
			return err
		}
		if err := tx.Patch("products", "p1", docstore.Document{"stock": docstore.Increment(-2)}); err != nil {
			return err
		}
		id, err := tx.Create("orders", "", docstore.Document{"userId": "u1"})
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		t.Fatalf("RunTransaction failed: %v", err)
	}

	product, err := store.Read(ctx, "products", "p1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if product["stock"] != int64(8) {
		t.Fatalf("expected stock 8, got %v", product["stock"])
	}
	if _, err := store.Read(ctx, "orders", orderID); err != nil {
		t.Fatalf("order document should exist after commit: %v", err)
	}
}

func TestTransaction_BusinessErrorDiscardsWrites(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "p1", docstore.Document{"stock": int64(10)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	boom := errors.New("insufficient stock")
	attempts := 0
	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		attempts++
		if err := tx.Patch("products", "p1", docstore.Document{"stock": docstore.Increment(-5)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected business error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("business error must not be retried, body ran %d times", attempts)
	}

	product, err := store.Read(ctx, "products", "p1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if product["stock"] != int64(10) {
		t.Fatalf("aborted transaction must not change state, stock = %v", product["stock"])
	}
}

func TestTransaction_FailedCommitLeavesNoPartialWrites(t *testing.T) {
	// Фиксация атомарна: отказ из-за записи в отсутствующий документ
	// не должен оставить в хранилище более ранние записи буфера.
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "a", docstore.Document{"stock": int64(10)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Patch("products", "a", docstore.Document{"stock": docstore.Increment(-1)}); err != nil {
			return err
		}
		return tx.Patch("products", "missing", docstore.Document{"stock": int64(1)})
	})
	if !errors.Is(err, docstore.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	doc, err := store.Read(ctx, "products", "a")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["stock"] != int64(10) {
		t.Fatalf("failed commit must not apply any write, stock = %v", doc["stock"])
	}

	err = store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if _, err := tx.Create("products", "a", docstore.Document{"stock": int64(1)}); err != nil {
			return err
		}
		return tx.Patch("products", "a", docstore.Document{"price": int64(5)})
	})
	if !errors.Is(err, docstore.ErrDocumentExists) {
		t.Fatalf("expected ErrDocumentExists, got %v", err)
	}
}

func TestTransaction_WritesInvisibleBeforeCommit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "products", "p1", docstore.Document{"stock": int64(10)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := tx.Patch("products", "p1", docstore.Document{"stock": int64(3)}); err != nil {
			return err
		}
		// Чтение видит снапшот фиксации, а не буфер собственных записей.
		doc, err := tx.Read("products", "p1")
		if err != nil {
			return err
		}
		if doc["stock"] != int64(10) {
			t.Errorf("transactional read must see the committed snapshot, got %v", doc["stock"])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTransaction failed: %v", err)
	}
}

func TestTransaction_ConflictRerunsBody(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "counters", "c1", docstore.Document{"n": int64(0)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	attempts := 0
	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		attempts++
		if _, err := tx.Read("counters", "c1"); err != nil {
			return err
		}
		if attempts == 1 {
			// Конкурентная запись между чтением и фиксацией.
			if err := store.Patch(ctx, "counters", "c1", docstore.Document{"n": int64(100)}); err != nil {
				return err
			}
		}
		return tx.Patch("counters", "c1", docstore.Document{"n": docstore.Increment(1)})
	})
	if err != nil {
		t.Fatalf("RunTransaction failed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected body to run twice, ran %d times", attempts)
	}

	doc, err := store.Read(ctx, "counters", "c1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["n"] != int64(101) {
		t.Fatalf("increment must apply to the committed value, got %v", doc["n"])
	}
}

func TestTransaction_ReadOfAbsentDocumentIsValidated(t *testing.T) {
	// Чтение отсутствующего документа тоже участвует в валидации:
	// если документ появился до фиксации, транзакция перезапускается.
	store := memory.NewStore()
	ctx := context.Background()

	attempts := 0
	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		attempts++
		_, readErr := tx.Read("carts", "u1")
		if attempts == 1 {
			if !errors.Is(readErr, docstore.ErrDocumentNotFound) {
				return readErr
			}
			if _, err := store.Create(ctx, "carts", "u1", docstore.Document{"items": []any{}}); err != nil {
				return err
			}
			_, createErr := tx.Create("carts", "u1", docstore.Document{"items": []any{}})
			return createErr
		}
		// Повтор видит появившийся документ и обновляет его.
		if readErr != nil {
			return readErr
		}
		return tx.Patch("carts", "u1", docstore.Document{"items": []any{"merged"}})
	})
	if err != nil {
		t.Fatalf("RunTransaction failed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected conflict on appeared document, body ran %d times", attempts)
	}
}

func TestTransaction_ConcurrentIncrements(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "counters", "c1", docstore.Document{"n": int64(0)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunTransaction(ctx, func(tx docstore.Tx) error {
				return tx.Patch("counters", "c1", docstore.Document{"n": docstore.Increment(1)})
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}

	doc, err := store.Read(ctx, "counters", "c1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if doc["n"] != int64(workers) {
		t.Fatalf("expected %d increments, got %v", workers, doc["n"])
	}
}

func TestTransaction_SharedCommitTimestamp(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.RunTransaction(ctx, func(tx docstore.Tx) error {
		if _, err := tx.Create("orders", "o1", docstore.Document{"at": docstore.ServerTimestamp}); err != nil {
			return err
		}
		_, err := tx.Create("orders", "o2", docstore.Document{"at": docstore.ServerTimestamp})
		return err
	})
	if err != nil {
		t.Fatalf("RunTransaction failed: %v", err)
	}

	first, err := store.Read(ctx, "orders", "o1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	second, err := store.Read(ctx, "orders", "o2")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if first["at"] != second["at"] {
		t.Fatalf("writes of one transaction must share the commit timestamp: %v vs %v", first["at"], second["at"])
	}
}
