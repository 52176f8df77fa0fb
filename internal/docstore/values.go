package docstore

// serverTimestamp — маркер «подставить серверное время при фиксации».
type serverTimestamp struct{}

// ServerTimestamp подставляется в поля createdAt/updatedAt вместо клиентского
// времени: при фиксации хранилище резолвит его в монотонное серверное время,
// так что конкурентные записи согласны в порядке таймстампов.
var ServerTimestamp = serverTimestamp{}

// IncrementValue — атомарное изменение числового поля на дельту,
// применяемое хранилищем без клиентского чтения.
type IncrementValue struct {
	Delta int64
}

// Increment возвращает значение-дельту для атомарного счётчика.
// Оно корректно компонуется с повтором транзакции: дельта применяется
// к состоянию на момент фиксации, а не к прочитанному ранее значению.
func Increment(delta int64) IncrementValue {
	return IncrementValue{Delta: delta}
}
