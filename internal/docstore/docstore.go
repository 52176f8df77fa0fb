// Пакет docstore задаёт контракт документного хранилища: точечные
// чтения/записи по ключу, фильтрованные запросы с курсорами и атомарные
// транзакции с повтором при конфликте. Реализации живут в подпакетах
// memory (эталон для тестов) и firestoredb (продакшен-бэкенд).
package docstore

import (
	"context"
	"errors"
)

// Document — сырые поля документа, как их видит хранилище.
type Document = map[string]any

// Snapshot — документ вместе с его идентификатором.
type Snapshot struct {
	ID   string
	Data Document
}

var (
	// ErrDocumentNotFound возвращается точечным чтением отсутствующего документа.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentExists возвращается при создании документа с занятым id.
	ErrDocumentExists = errors.New("document already exists")
	// ErrTxConflict сигнализирует, что транзакция не смогла зафиксироваться
	// из-за конкурентных изменений даже после повторов.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrInvalidCursor возвращается, если курсор не ссылается на существующий документ.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// Store — клиент документного хранилища.
type Store interface {
	// Read возвращает документ или ErrDocumentNotFound.
	Read(ctx context.Context, collection, id string) (Document, error)
	// Query выполняет фильтрованный запрос и возвращает упорядоченный список снапшотов.
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	// Create записывает новый документ. Пустой id означает, что хранилище
	// генерирует идентификатор само; итоговый id возвращается вызывающему.
	Create(ctx context.Context, collection, id string, fields Document) (string, error)
	// Patch обновляет перечисленные поля существующего документа.
	Patch(ctx context.Context, collection, id string, fields Document) error
	// Delete удаляет документ. Удаление отсутствующего документа не ошибка.
	Delete(ctx context.Context, collection, id string) error
	// RunTransaction выполняет fn атомарно. Тело транзакции может быть
	// вызвано несколько раз при конфликте, поэтому оно обязано быть
	// чистой функцией своих чтений, без внешних побочных эффектов.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Close освобождает ресурсы клиента.
	Close() error
}

// Tx — транзакционный контекст: снапшотные чтения и буферизованные записи.
// Все записи применяются только при успешной фиксации транзакции.
type Tx interface {
	Read(collection, id string) (Document, error)
	Create(collection, id string, fields Document) (string, error)
	Patch(collection, id string, fields Document) error
	Delete(collection, id string) error
}
