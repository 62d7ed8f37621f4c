package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/config"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/logging"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/meeting"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/server"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

func main() {
	logging.Init(slog.LevelInfo)
	cfg := config.LoadServer()

	var store meeting.Store
	if cfg.MeetingTable != "" {
		ds, err := meeting.NewDynamoStore(context.Background(), cfg.MeetingTable)
		if err != nil {
			slog.Error("dynamodb store init failed", "table", cfg.MeetingTable, "err", err)
			os.Exit(1)
		}
		store = ds
		slog.Info("using dynamodb meeting store", "table", cfg.MeetingTable)
	} else {
		store = meeting.NewMemoryStore()
		slog.Info("using in-memory meeting store")
	}

	hub := signaling.NewHub()
	go hub.Run()

	mux := server.NewMux(hub, meeting.NewHandler(store))

	slog.Info("starting signaling server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
