package main

import (
	"log/slog"
	"os"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
