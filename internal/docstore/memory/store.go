// Пакет memory реализует контракт docstore поверх карт в памяти.
// Используется в тестах и локальной разработке вместо Firestore.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

// document хранит поля и версию для обнаружения конфликтов транзакций.
type document struct {
	data    docstore.Document
	version int64
}

// Store — in-memory реализация docstore.Store.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]document
	// lastTS — последнее выданное серверное время; монотонно не убывает.
	lastTS time.Time
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]document),
	}
}

// Read возвращает копию документа или docstore.ErrDocumentNotFound.
func (s *Store) Read(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, docstore.ErrDocumentNotFound
	}
	return copyDocument(doc.data), nil
}

// Create сохраняет новый документ; пустой id заменяется сгенерированным.
func (s *Store) Create(ctx context.Context, collection, id string, fields docstore.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.collections[collection][id]; exists {
		return "", fmt.Errorf("create %s/%s: %w", collection, id, docstore.ErrDocumentExists)
	}

	now := s.serverNowLocked()
	s.putLocked(collection, id, resolveFields(nil, fields, now))
	return id, nil
}

// Patch обновляет перечисленные поля существующего документа.
func (s *Store) Patch(ctx context.Context, collection, id string, fields docstore.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("patch %s/%s: %w", collection, id, docstore.ErrDocumentNotFound)
	}

	now := s.serverNowLocked()
	merged := copyDocument(current.data)
	for field, value := range resolveFields(current.data, fields, now) {
		merged[field] = value
	}
	s.putLocked(collection, id, merged)
	return nil
}

// Delete удаляет документ; отсутствие документа не считается ошибкой.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if coll, ok := s.collections[collection]; ok {
		delete(coll, id)
	}
	return nil
}

// Close реализует docstore.Store; освобождать нечего.
func (s *Store) Close() error {
	return nil
}

// putLocked записывает документ и инкрементирует его версию.
// Вызывается только под write-блокировкой.
func (s *Store) putLocked(collection, id string, data docstore.Document) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]document)
		s.collections[collection] = coll
	}
	coll[id] = document{
		data:    copyDocument(data),
		version: coll[id].version + 1,
	}
}

// versionLocked возвращает версию документа; 0 означает отсутствие.
func (s *Store) versionLocked(collection, id string) int64 {
	return s.collections[collection][id].version
}

// serverNowLocked выдаёт серверное время фиксации. Часы монотонны:
// два последовательных коммита никогда не получают убывающие метки,
// даже если системные часы шагнули назад.
func (s *Store) serverNowLocked() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastTS) {
		now = s.lastTS.Add(time.Microsecond)
	}
	s.lastTS = now
	return now
}

// resolveFields материализует специальные значения записи: серверные
// таймстампы и атомарные дельты. existing — текущее состояние документа
// (nil для создаваемого).
func resolveFields(existing docstore.Document, fields docstore.Document, now time.Time) docstore.Document {
	resolved := make(docstore.Document, len(fields))
	for field, value := range fields {
		if inc, ok := value.(docstore.IncrementValue); ok {
			resolved[field] = numericValue(existing[field]) + inc.Delta
			continue
		}
		if value == docstore.ServerTimestamp {
			resolved[field] = now
			continue
		}
		resolved[field] = copyValue(value)
	}
	return resolved
}

// numericValue приводит значение поля к int64 для атомарных дельт.
func numericValue(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// copyDocument делает глубокую копию документа, чтобы хранилище
// не делило изменяемое состояние с вызывающими.
func copyDocument(doc docstore.Document) docstore.Document {
	if doc == nil {
		return nil
	}
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case docstore.Document:
		return copyDocument(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

var _ docstore.Store = (*Store)(nil)
