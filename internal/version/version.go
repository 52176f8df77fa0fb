// Пакет version отдаёт сведения о сборке, заполняемые через -ldflags.
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// String возвращает сведения о сборке одной строкой для логов.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
