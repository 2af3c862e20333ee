package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mosaic_wall/internal/constant"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/usecase"

	"github.com/gorilla/websocket"
)

type Options struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PongTimeout      time.Duration
	MaxMessageSize   int64
	OutboxSize       int
}

type WsHandler struct {
	upgrader websocket.Upgrader
	sessions usecase.SessionUsecase
	opts     Options
}

func NewWsHandler(sessions usecase.SessionUsecase, opts Options) *WsHandler {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 5 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = 60 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 * 1024
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 64
	}

	return &WsHandler{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.HandshakeTimeout,
			ReadBufferSize:   opts.ReadBufferSize,
			WriteBufferSize:  opts.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // тайлы открываются с любых устройств в локальной сети
			},
			EnableCompression: true,
		},
		sessions: sessions,
		opts:     opts,
	}
}

// HandleWS — handle WebSocket connections
func (wh *WsHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade to WebSocket", "error", err)
		return
	}
	defer ws.Close()

	// the request context is not cancelled by the peer once hijacked
	ctx := context.WithoutCancel(r.Context())

	conn := model.NewConnection(wh.opts.OutboxSize)
	requestID, _ := constant.GetRequestID(ctx)
	slog.Debug("websocket upgraded", "connID", conn.ID, "requestID", requestID, "remote", r.RemoteAddr)

	wh.sessions.Connect(conn)
	defer wh.sessions.Disconnect(ctx, conn)

	go wh.writeLoop(ws, conn)

	ws.SetReadLimit(wh.opts.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(wh.opts.PongTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wh.opts.PongTimeout))
	})

	// Main message loop
	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error("read message", "connID", conn.ID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := wh.sessions.HandleMessage(ctx, conn, data); err != nil {
			slog.Warn("message rejected", "connID", conn.ID, "role", conn.Role(), "error", err)
		}
	}
}

// writeLoop — the only writer of ws; drains the connection outbox and keeps the peer alive
func (wh *WsHandler) writeLoop(ws *websocket.Conn, conn *model.Connection) {
	ticker := time.NewTicker(wh.opts.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case data := <-conn.Outbox():
			_ = ws.SetWriteDeadline(time.Now().Add(wh.opts.WriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("write message", "connID", conn.ID, "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wh.opts.WriteTimeout)); err != nil {
				conn.Close()
				return
			}
		case <-conn.Done():
			_ = ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wh.opts.WriteTimeout),
			)
			return
		}
	}
}
