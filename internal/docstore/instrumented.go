package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// instrumentedStore оборачивает Store и записывает метрики Prometheus
// для каждой операции и транзакции.
type instrumentedStore struct {
	next    Store
	metrics *metrics.StoreMetrics
}

// WithMetrics возвращает Store, публикующий метрики операций.
// При nil-метриках возвращается исходный Store без обёртки.
func WithMetrics(next Store, m *metrics.StoreMetrics) Store {
	if m == nil {
		return next
	}
	return &instrumentedStore{next: next, metrics: m}
}

func (s *instrumentedStore) Read(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	doc, err := s.next.Read(ctx, collection, id)
	// Отсутствие документа — ожидаемый исход чтения, не ошибка хранилища.
	if errors.Is(err, ErrDocumentNotFound) {
		s.metrics.RecordOp("read", time.Since(start), nil)
	} else {
		s.metrics.RecordOp("read", time.Since(start), err)
	}
	return doc, err
}

func (s *instrumentedStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	start := time.Now()
	snaps, err := s.next.Query(ctx, collection, q)
	s.metrics.RecordOp("query", time.Since(start), err)
	return snaps, err
}

func (s *instrumentedStore) Create(ctx context.Context, collection, id string, fields Document) (string, error) {
	start := time.Now()
	newID, err := s.next.Create(ctx, collection, id, fields)
	s.metrics.RecordOp("create", time.Since(start), err)
	return newID, err
}

func (s *instrumentedStore) Patch(ctx context.Context, collection, id string, fields Document) error {
	start := time.Now()
	err := s.next.Patch(ctx, collection, id, fields)
	s.metrics.RecordOp("patch", time.Since(start), err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.metrics.RecordOp("delete", time.Since(start), err)
	return err
}

func (s *instrumentedStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	start := time.Now()
	s.metrics.RecordTxStarted()

	attempts := 0
	err := s.next.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		if attempts > 1 {
			s.metrics.RecordTxRetried()
		}
		return fn(tx)
	})

	if err != nil {
		s.metrics.RecordTxFailed()
		return err
	}
	s.metrics.RecordTxCommitted(time.Since(start))
	return nil
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}

var _ Store = (*instrumentedStore)(nil)
