package repository

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
)

// Помощники декодирования сырых полей документа. Отсутствующее поле
// даёт нулевое значение; поле неожиданного типа — ошибку, которая
// выше оборачивается в ErrMalformedDocument.

func fieldString(doc docstore.Document, field string) (string, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", field, value)
	}
	return s, nil
}

func fieldFloat(doc docstore.Document, field string) (float64, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return 0, nil
	}
	switch n := value.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected number, got %T", field, value)
	}
}

func fieldInt(doc docstore.Document, field string) (int64, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return 0, nil
	}
	switch n := value.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected integer, got %T", field, value)
	}
}

func fieldBool(doc docstore.Document, field string) (bool, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return false, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("field %q: expected bool, got %T", field, value)
	}
	return b, nil
}

// fieldTime конвертирует сохранённое серверное время в time.Time.
func fieldTime(doc docstore.Document, field string) (time.Time, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return time.Time{}, nil
	}
	t, ok := value.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %q: expected timestamp, got %T", field, value)
	}
	return t, nil
}

func fieldStringSlice(doc docstore.Document, field string) ([]string, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return nil, nil
	}
	switch arr := value.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out, nil
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %q: expected string element, got %T", field, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q: expected string array, got %T", field, value)
	}
}

func fieldDocSlice(doc docstore.Document, field string) ([]docstore.Document, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return nil, nil
	}
	arr, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected array, got %T", field, value)
	}
	out := make([]docstore.Document, 0, len(arr))
	for _, item := range arr {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: expected map element, got %T", field, item)
		}
		out = append(out, sub)
	}
	return out, nil
}

func fieldDoc(doc docstore.Document, field string) (docstore.Document, error) {
	value, ok := doc[field]
	if !ok || value == nil {
		return nil, nil
	}
	sub, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected map, got %T", field, value)
	}
	return sub, nil
}
