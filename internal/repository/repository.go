// Пакет repository предоставляет обобщённый доступ к коллекциям
// документного хранилища: CRUD, подсчёт и курсорную пагинацию.
// Сырые поля документов декодируются в типизированные сущности на
// границе хранилища; неожиданные данные не просачиваются выше.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

// ErrMalformedDocument возвращается, если документ хранилища не удаётся
// декодировать в типизированную сущность.
var ErrMalformedDocument = errors.New("malformed document")

// Codec связывает типизированную сущность с её документным представлением.
type Codec[T any] struct {
	Encode func(entity T) docstore.Document
	Decode func(id string, data docstore.Document) (T, error)
}

// Page — страница курсорной пагинации.
type Page[T any] struct {
	Items []T
	// LastCursor — идентификатор последнего элемента страницы;
	// передаётся в следующий запрос для продолжения выборки.
	LastCursor string
	HasMore    bool
}

// Generic — репозиторий одной коллекции.
type Generic[T any] struct {
	store      docstore.Store
	collection string
	codec      Codec[T]
}

// New создаёт репозиторий коллекции collection с кодеком codec.
func New[T any](store docstore.Store, collection string, codec Codec[T]) *Generic[T] {
	return &Generic[T]{store: store, collection: collection, codec: codec}
}

// Collection возвращает имя коллекции репозитория.
func (g *Generic[T]) Collection() string {
	return g.collection
}

// GetByID возвращает сущность или nil, если документа нет.
// Отсутствие документа не считается ошибкой.
func (g *Generic[T]) GetByID(ctx context.Context, id string) (*T, error) {
	data, err := g.store.Read(ctx, g.collection, id)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entity, err := g.decode(id, data)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetAll возвращает все документы коллекции без фильтров.
func (g *Generic[T]) GetAll(ctx context.Context) ([]T, error) {
	return g.Query(ctx, docstore.Query{})
}

// Query возвращает сущности, удовлетворяющие запросу.
func (g *Generic[T]) Query(ctx context.Context, q docstore.Query) ([]T, error) {
	snaps, err := g.store.Query(ctx, g.collection, q)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		entity, err := g.decode(snap.ID, snap.Data)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// GetPaginated возвращает страницу размера pageSize, продолжая выборку
// после cursor (пустой cursor — первая страница). Запрашивается
// pageSize+1 документов: лишний документ сигнализирует о наличии
// следующей страницы без отдельного подсчёта.
func (g *Generic[T]) GetPaginated(ctx context.Context, pageSize int, cursor string, filters []docstore.Filter) (Page[T], error) {
	if pageSize <= 0 {
		return Page[T]{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	q := docstore.Query{
		Filters:    filters,
		OrderBy:    []docstore.Order{{Field: "createdAt", Dir: docstore.Descending}},
		Limit:      pageSize + 1,
		StartAfter: cursor,
	}
	snaps, err := g.store.Query(ctx, g.collection, q)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{HasMore: len(snaps) > pageSize}
	if page.HasMore {
		snaps = snaps[:pageSize]
	}

	page.Items = make([]T, 0, len(snaps))
	for _, snap := range snaps {
		entity, err := g.decode(snap.ID, snap.Data)
		if err != nil {
			return Page[T]{}, err
		}
		page.Items = append(page.Items, entity)
		page.LastCursor = snap.ID
	}
	return page, nil
}

// Add сохраняет сущность под сгенерированным идентификатором.
// Таймстампы создаются сервером при фиксации, а не клиентскими часами.
func (g *Generic[T]) Add(ctx context.Context, entity T) (string, error) {
	fields := g.codec.Encode(entity)
	fields["createdAt"] = docstore.ServerTimestamp
	fields["updatedAt"] = docstore.ServerTimestamp
	return g.store.Create(ctx, g.collection, "", fields)
}

// Create сохраняет сущность под явным идентификатором.
func (g *Generic[T]) Create(ctx context.Context, id string, entity T) error {
	fields := g.codec.Encode(entity)
	fields["createdAt"] = docstore.ServerTimestamp
	fields["updatedAt"] = docstore.ServerTimestamp
	_, err := g.store.Create(ctx, g.collection, id, fields)
	return err
}

// Update обновляет перечисленные поля документа и освежает updatedAt.
// Отсутствие документа — ошибка docstore.ErrDocumentNotFound.
func (g *Generic[T]) Update(ctx context.Context, id string, patch docstore.Document) error {
	fields := make(docstore.Document, len(patch)+1)
	for k, v := range patch {
		fields[k] = v
	}
	fields["updatedAt"] = docstore.ServerTimestamp
	return g.store.Patch(ctx, g.collection, id, fields)
}

// Delete удаляет документ, предварительно убедившись в его существовании.
// Проверка «прочитал — удалил» гоночна; для критичных путей используются
// транзакции, этот метод их не заменяет.
func (g *Generic[T]) Delete(ctx context.Context, id string) error {
	if _, err := g.store.Read(ctx, g.collection, id); err != nil {
		return err
	}
	return g.store.Delete(ctx, g.collection, id)
}

// Count возвращает число документов, удовлетворяющих фильтрам.
func (g *Generic[T]) Count(ctx context.Context, filters []docstore.Filter) (int, error) {
	snaps, err := g.store.Query(ctx, g.collection, docstore.Query{Filters: filters})
	if err != nil {
		return 0, err
	}
	return len(snaps), nil
}

func (g *Generic[T]) decode(id string, data docstore.Document) (T, error) {
	entity, err := g.codec.Decode(id, data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s/%s: %v", ErrMalformedDocument, g.collection, id, err)
	}
	return entity, nil
}
