package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// setupLogger настраивает формат и уровень логирования.
func setupLogger(level string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(parsed)
	return nil
}

// exitCode: 2 — запрошенный ресторан, блюдо или чек не найдены, 1 — прочие ошибки.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case domain.IsNotFound(err):
		return 2
	default:
		return 1
	}
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
