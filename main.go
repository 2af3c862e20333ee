package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mosaic_wall/internal/config"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/handler/api"
	"mosaic_wall/internal/handler/middleware"
	"mosaic_wall/internal/handler/websocket"
	"mosaic_wall/internal/infrastructure/repository"
	"mosaic_wall/internal/usecase"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Log.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, closeLedger, err := openLedger(ctx, cfg.Ledger)
	if err != nil {
		slog.Error("open tile ledger", "error", err)
		os.Exit(1)
	}
	defer closeLedger()

	rooms := repository.NewInMemoryRoomRepo(
		model.NewIdentityAllocator(cfg.Room.Palette),
		model.RoomOptions{
			CanvasSize:   model.Size{Width: cfg.Room.CanvasWidth, Height: cfg.Room.CanvasHeight},
			IdentifyMode: cfg.Room.IdentifyMode,
		},
	)
	conns := repository.NewWsConnRepo()
	sessions := usecase.NewSessionUC(
		rooms,
		conns,
		usecase.NewBroadcastRouter(conns),
		ledger,
		usecase.SessionOptions{RoomID: cfg.Room.ID, LedgerTimeout: cfg.Ledger.Timeout},
	)

	wsHandler := websocket.NewWsHandler(sessions, websocket.Options{
		ReadBufferSize:   cfg.Server.ReadBufferSize,
		WriteBufferSize:  cfg.Server.WriteBufferSize,
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		PongTimeout:      cfg.Server.PongTimeout,
		MaxMessageSize:   cfg.Server.MaxMessageSize,
		OutboxSize:       cfg.Server.OutboxSize,
	})
	roomHandler := api.NewRoomHandler(sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+cfg.Server.WSPath, wsHandler.HandleWS)
	mux.HandleFunc("GET /api/room", roomHandler.Snapshot)
	mux.HandleFunc("GET /api/room/sessions", roomHandler.Sessions)
	mux.HandleFunc("GET /api/tiles/{id}/transform", roomHandler.Transform)
	mux.HandleFunc("GET /healthz", api.Health)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           middleware.RequestLogger(middleware.Recover(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown server", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "wsPath", cfg.Server.WSPath, "roomID", cfg.Room.ID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("listen", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openLedger — connect to PostgreSQL when a DSN is configured, otherwise use a no-op ledger
func openLedger(ctx context.Context, cfg config.LedgerConfig) (repository.TileLedgerRepository, func(), error) {
	if cfg.DSN == "" {
		return repository.NoopTileLedgerRepo{}, func() {}, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	ledger := repository.NewTileLedgerPostgresRepo(db)
	if err := ledger.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("tile ledger initialized")

	return ledger, func() { db.Close() }, nil
}
