package docstore

// Operator — оператор фильтра запроса.
type Operator string

const (
	OpEqual          Operator = "=="
	OpLessOrEqual    Operator = "<="
	OpGreaterOrEqual Operator = ">="
	OpIn             Operator = "in"
	OpArrayContains  Operator = "array-contains"
)

// Direction — направление сортировки.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Filter — предикат по одному полю документа.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Order задаёт сортировку результата по полю.
type Order struct {
	Field string
	Dir   Direction
}

// Query описывает фильтрованный запрос к коллекции.
type Query struct {
	Filters []Filter
	OrderBy []Order
	// Limit ограничивает число документов; 0 — без ограничения.
	Limit int
	// StartAfter — идентификатор последнего документа предыдущей страницы.
	// Выборка возобновляется после него средствами хранилища, это не смещение.
	StartAfter string
}

// Where добавляет фильтр и возвращает копию запроса для цепочек вызовов.
func (q Query) Where(field string, op Operator, value any) Query {
	q.Filters = append(q.Filters[:len(q.Filters):len(q.Filters)], Filter{Field: field, Op: op, Value: value})
	return q
}

// SortBy задаёт сортировку результата.
func (q Query) SortBy(field string, dir Direction) Query {
	q.OrderBy = append(q.OrderBy[:len(q.OrderBy):len(q.OrderBy)], Order{Field: field, Dir: dir})
	return q
}
