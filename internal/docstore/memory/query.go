package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

// Query выполняет фильтрованный запрос по коллекции.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []docstore.Snapshot
	for id, doc := range s.collections[collection] {
		match, err := matchesFilters(doc.data, q.Filters)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, docstore.Snapshot{ID: id, Data: copyDocument(doc.data)})
		}
	}

	sortSnapshots(result, q.OrderBy)

	if q.StartAfter != "" {
		// Курсор разрешается по коллекции, а не по отфильтрованной
		// выборке: документ, переставший подходить под фильтры после
		// выдачи страницы, всё ещё задаёт позицию продолжения — так
		// ведёт себя StartAfter по снапшоту в Firestore.
		doc, ok := s.collections[collection][q.StartAfter]
		if !ok {
			return nil, fmt.Errorf("cursor %q: %w", q.StartAfter, docstore.ErrInvalidCursor)
		}
		cursor := docstore.Snapshot{ID: q.StartAfter, Data: doc.data}
		kept := result[:0]
		for _, snap := range result {
			if snapshotLess(cursor, snap, q.OrderBy) {
				kept = append(kept, snap)
			}
		}
		result = kept
	}

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}

	return result, nil
}

// matchesFilters проверяет документ на соответствие всем предикатам запроса.
func matchesFilters(doc docstore.Document, filters []docstore.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matchesFilter(doc, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchesFilter(doc docstore.Document, f docstore.Filter) (bool, error) {
	value, present := doc[f.Field]

	switch f.Op {
	case docstore.OpEqual:
		return present && compareValues(value, f.Value) == 0, nil
	case docstore.OpLessOrEqual:
		return present && compareValues(value, f.Value) <= 0, nil
	case docstore.OpGreaterOrEqual:
		return present && compareValues(value, f.Value) >= 0, nil
	case docstore.OpIn:
		if !present {
			return false, nil
		}
		candidates, ok := f.Value.([]any)
		if !ok {
			return false, fmt.Errorf("operator %q expects a slice of candidates", f.Op)
		}
		for _, candidate := range candidates {
			if compareValues(value, candidate) == 0 {
				return true, nil
			}
		}
		return false, nil
	case docstore.OpArrayContains:
		if !present {
			return false, nil
		}
		for _, element := range arrayElements(value) {
			if compareValues(element, f.Value) == 0 {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported query operator %q", f.Op)
	}
}

// arrayElements приводит значение поля-массива к []any.
func arrayElements(v any) []any {
	switch arr := v.(type) {
	case []any:
		return arr
	case []string:
		out := make([]any, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// sortSnapshots сортирует результат по заданным полям. Документы без
// поля сортировки идут первыми; идентификатор служит финальным
// tie-break'ом, чтобы порядок был детерминирован для курсоров.
func sortSnapshots(snaps []docstore.Snapshot, orderBy []docstore.Order) {
	sort.Slice(snaps, func(i, j int) bool {
		return snapshotLess(snaps[i], snaps[j], orderBy)
	})
}

// snapshotLess — порядок выдачи запроса; используется и для сортировки,
// и для позиционирования курсора по значениям полей сортировки.
func snapshotLess(a, b docstore.Snapshot, orderBy []docstore.Order) bool {
	for _, ord := range orderBy {
		c := compareValues(a.Data[ord.Field], b.Data[ord.Field])
		if c == 0 {
			continue
		}
		if ord.Dir == docstore.Descending {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

// compareValues сравнивает два значения документного поля.
// Отсутствующее значение (nil) меньше любого присутствующего.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, aok := asString(a); aok {
		if bs, bok := asString(b); bok {
			return strings.Compare(as, bs)
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}

	// Значения несравнимых типов считаются неравными.
	return -1
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	default:
		return "", false
	}
}
