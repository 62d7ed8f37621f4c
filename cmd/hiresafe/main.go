package main

import (
	"log/slog"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/cli"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/logging"
)

func main() {
	// The TUI owns the terminal; only errors go to stderr.
	logging.Init(slog.LevelError)
	cli.Execute()
}
