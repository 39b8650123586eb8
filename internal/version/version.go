package version

import "fmt"

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/rahmet/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// UserAgent — значение заголовка User-Agent для запросов к удалённому API.
func UserAgent() string {
	return "rahmet/" + version
}

// String — однострочное описание сборки для логов.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
