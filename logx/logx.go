// Package logx centralizes logger construction for the engine.
//
// Every package that needs diagnostics calls logx.Get("primalcut.<pkg>")
// once at package-init time and logs through the returned *logging.Logger.
// The backend (format, level, destination) is configured once by the CLI
// driver via Configure; library code never touches os.Stdout directly.
package logx

import (
	"os"

	"github.com/op/go-logging"
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.WARNING, "")
	logging.SetBackend(leveled)
}

// Configure sets the global minimum level shown across all loggers.
// Called once by cmd/primalcut based on a --verbose flag.
func Configure(level logging.Level) {
	logging.SetLevel(level, "")
}

// Get returns (and lazily registers) the named logger. name should be
// dotted, e.g. "primalcut.corelp".
func Get(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}
