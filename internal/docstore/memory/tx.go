package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

const (
	// txMaxAttempts ограничивает число повторов тела транзакции при конфликте.
	txMaxAttempts = 5
	// txBaseBackoff — базовая задержка перед повтором; растёт экспоненциально.
	txBaseBackoff = 2 * time.Millisecond
)

// writeKind перечисляет виды буферизованных записей транзакции.
type writeKind int

const (
	writeCreate writeKind = iota
	writePatch
	writeDelete
)

type bufferedWrite struct {
	kind       writeKind
	collection string
	id         string
	fields     docstore.Document
}

type readKey struct {
	collection string
	id         string
}

// transaction накапливает снапшотные чтения и буферизованные записи.
// Чтения видят состояние на момент последней фиксации; собственные
// записи транзакции до фиксации не видны — как в транзакциях Firestore.
type transaction struct {
	store *Store
	// reads запоминает версию каждого прочитанного документа,
	// чтобы фиксация могла обнаружить конкурентное изменение.
	reads  map[readKey]int64
	writes []bufferedWrite
}

// RunTransaction исполняет fn атомарно с оптимистичной валидацией чтений.
// При конфликте тело выполняется заново на свежем снапшоте с экспоненциальной
// задержкой, как это делает транзакционный механизм управляемых хранилищ.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx docstore.Tx) error) error {
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := &transaction{
			store: s,
			reads: make(map[readKey]int64),
		}

		if err := fn(tx); err != nil {
			// Ошибка бизнес-логики отменяет транзакцию целиком:
			// буфер записей отбрасывается, повторов не делается.
			return err
		}

		committed, err := s.commit(tx)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}

		backoff := txBaseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return docstore.ErrTxConflict
}

// commit валидирует версии прочитанных документов и применяет буфер записей.
// Возвращает false при конфликте (нужен повтор тела).
func (s *Store) commit(tx *transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		if s.versionLocked(key.collection, key.id) != version {
			return false, nil
		}
	}

	// Буфер валидируется целиком до первой записи: фиксация либо
	// применяет все записи, либо не меняет состояния вовсе.
	staged := make(map[readKey]bool, len(tx.writes))
	existsStaged := func(key readKey) bool {
		if present, ok := staged[key]; ok {
			return present
		}
		_, ok := s.collections[key.collection][key.id]
		return ok
	}
	for _, w := range tx.writes {
		key := readKey{collection: w.collection, id: w.id}
		switch w.kind {
		case writeCreate:
			if existsStaged(key) {
				return false, fmt.Errorf("create %s/%s: %w", w.collection, w.id, docstore.ErrDocumentExists)
			}
			staged[key] = true
		case writePatch:
			if !existsStaged(key) {
				return false, fmt.Errorf("patch %s/%s: %w", w.collection, w.id, docstore.ErrDocumentNotFound)
			}
		case writeDelete:
			staged[key] = false
		}
	}

	// Все записи транзакции получают одно серверное время фиксации.
	now := s.serverNowLocked()
	for _, w := range tx.writes {
		switch w.kind {
		case writeCreate:
			s.putLocked(w.collection, w.id, resolveFields(nil, w.fields, now))
		case writePatch:
			current := s.collections[w.collection][w.id]
			merged := copyDocument(current.data)
			for field, value := range resolveFields(current.data, w.fields, now) {
				merged[field] = value
			}
			s.putLocked(w.collection, w.id, merged)
		case writeDelete:
			if coll, ok := s.collections[w.collection]; ok {
				delete(coll, w.id)
			}
		}
	}

	return true, nil
}

// Read возвращает документ из снапшота и запоминает его версию.
func (t *transaction) Read(collection, id string) (docstore.Document, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	key := readKey{collection: collection, id: id}
	doc, ok := t.store.collections[collection][id]
	t.reads[key] = doc.version
	if !ok {
		return nil, docstore.ErrDocumentNotFound
	}
	return copyDocument(doc.data), nil
}

// Create буферизует создание документа до фиксации транзакции.
func (t *transaction) Create(collection, id string, fields docstore.Document) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	t.writes = append(t.writes, bufferedWrite{
		kind:       writeCreate,
		collection: collection,
		id:         id,
		fields:     copyDocument(fields),
	})
	return id, nil
}

// Patch буферизует частичное обновление документа.
func (t *transaction) Patch(collection, id string, fields docstore.Document) error {
	t.writes = append(t.writes, bufferedWrite{
		kind:       writePatch,
		collection: collection,
		id:         id,
		fields:     copyDocument(fields),
	})
	return nil
}

// Delete буферизует удаление документа.
func (t *transaction) Delete(collection, id string) error {
	t.writes = append(t.writes, bufferedWrite{
		kind:       writeDelete,
		collection: collection,
		id:         id,
	})
	return nil
}

var _ docstore.Tx = (*transaction)(nil)
