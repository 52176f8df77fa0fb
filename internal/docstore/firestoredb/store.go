// Пакет firestoredb адаптирует контракт docstore к клиенту Cloud Firestore.
// Вся долговечность, индексация и повтор транзакций при конфликте
// делегируются управляемому сервису.
package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

// Store — реализация docstore.Store поверх Cloud Firestore.
type Store struct {
	client *firestore.Client
}

// Open создаёт клиент Firestore для проекта projectID.
func Open(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("open firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Read возвращает документ или docstore.ErrDocumentNotFound.
func (s *Store) Read(ctx context.Context, collection, id string) (docstore.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, docstore.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

// Query выполняет фильтрованный запрос средствами Firestore.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	fq, err := s.buildQuery(ctx, collection, q)
	if err != nil {
		return nil, err
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	var result []docstore.Snapshot
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		result = append(result, docstore.Snapshot{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return result, nil
}

// buildQuery транслирует docstore.Query в запрос Firestore.
func (s *Store) buildQuery(ctx context.Context, collection string, q docstore.Query) (firestore.Query, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}
	for _, ord := range q.OrderBy {
		dir := firestore.Asc
		if ord.Dir == docstore.Descending {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(ord.Field, dir)
	}
	if len(q.OrderBy) == 0 {
		// Детерминированный порядок нужен и без явной сортировки,
		// иначе курсоры не дают стабильных страниц.
		fq = fq.OrderBy(firestore.DocumentID, firestore.Asc)
	}
	if q.StartAfter != "" {
		// Курсор — это «продолжить после документа»: достаём снапшот
		// последнего элемента предыдущей страницы и передаём его Firestore.
		cursor, err := s.client.Collection(collection).Doc(q.StartAfter).Get(ctx)
		if status.Code(err) == codes.NotFound {
			return firestore.Query{}, fmt.Errorf("cursor %q: %w", q.StartAfter, docstore.ErrInvalidCursor)
		}
		if err != nil {
			return firestore.Query{}, fmt.Errorf("resolve cursor %q: %w", q.StartAfter, err)
		}
		fq = fq.StartAfter(cursor)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq, nil
}

// Create записывает новый документ; пустой id генерируется Firestore.
func (s *Store) Create(ctx context.Context, collection, id string, fields docstore.Document) (string, error) {
	ref := s.docRef(collection, id)
	_, err := ref.Create(ctx, translateFields(fields))
	if status.Code(err) == codes.AlreadyExists {
		return "", fmt.Errorf("create %s/%s: %w", collection, ref.ID, docstore.ErrDocumentExists)
	}
	if err != nil {
		return "", fmt.Errorf("create %s/%s: %w", collection, ref.ID, err)
	}
	return ref.ID, nil
}

// Patch обновляет перечисленные поля; отсутствующий документ — NotFound.
func (s *Store) Patch(ctx context.Context, collection, id string, fields docstore.Document) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates(fields))
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("patch %s/%s: %w", collection, id, docstore.ErrDocumentNotFound)
	}
	if err != nil {
		return fmt.Errorf("patch %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete удаляет документ; удаление отсутствующего документа не ошибка.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// RunTransaction делегирует атомарность и повтор при конфликте Firestore.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx docstore.Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(&transaction{store: s, tx: ftx})
	})
}

// Close закрывает клиент Firestore.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) docRef(collection, id string) *firestore.DocumentRef {
	coll := s.client.Collection(collection)
	if id == "" {
		return coll.NewDoc()
	}
	return coll.Doc(id)
}

// transaction адаптирует firestore.Transaction к docstore.Tx.
type transaction struct {
	store *Store
	tx    *firestore.Transaction
}

func (t *transaction) Read(collection, id string) (docstore.Document, error) {
	snap, err := t.tx.Get(t.store.client.Collection(collection).Doc(id))
	if status.Code(err) == codes.NotFound {
		return nil, docstore.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tx read %s/%s: %w", collection, id, err)
	}
	return snap.Data(), nil
}

func (t *transaction) Create(collection, id string, fields docstore.Document) (string, error) {
	ref := t.store.docRef(collection, id)
	if err := t.tx.Create(ref, translateFields(fields)); err != nil {
		return "", fmt.Errorf("tx create %s/%s: %w", collection, ref.ID, err)
	}
	return ref.ID, nil
}

func (t *transaction) Patch(collection, id string, fields docstore.Document) error {
	ref := t.store.client.Collection(collection).Doc(id)
	if err := t.tx.Update(ref, updates(fields)); err != nil {
		return fmt.Errorf("tx patch %s/%s: %w", collection, id, err)
	}
	return nil
}

func (t *transaction) Delete(collection, id string) error {
	ref := t.store.client.Collection(collection).Doc(id)
	if err := t.tx.Delete(ref); err != nil {
		return fmt.Errorf("tx delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// translateFields заменяет сентинелы docstore на аналоги Firestore.
func translateFields(fields docstore.Document) docstore.Document {
	out := make(docstore.Document, len(fields))
	for field, value := range fields {
		out[field] = translateValue(value)
	}
	return out
}

// updates строит список обновлений полей для Update.
func updates(fields docstore.Document) []firestore.Update {
	out := make([]firestore.Update, 0, len(fields))
	for field, value := range fields {
		out = append(out, firestore.Update{Path: field, Value: translateValue(value)})
	}
	return out
}

func translateValue(value any) any {
	if inc, ok := value.(docstore.IncrementValue); ok {
		return firestore.Increment(inc.Delta)
	}
	if value == docstore.ServerTimestamp {
		return firestore.ServerTimestamp
	}
	return value
}

var _ docstore.Store = (*Store)(nil)
var _ docstore.Tx = (*transaction)(nil)
