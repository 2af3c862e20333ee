package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mosaic_wall/internal/domain/message"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/infrastructure/repository"
	"mosaic_wall/internal/usecase"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	conns := repository.NewWsConnRepo()
	rooms := repository.NewInMemoryRoomRepo(nil, model.RoomOptions{CanvasSize: model.DefaultCanvasSize, IdentifyMode: true})
	uc := usecase.NewSessionUC(rooms, conns, usecase.NewBroadcastRouter(conns), nil, usecase.SessionOptions{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", NewWsHandler(uc, Options{}).HandleWS)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func write(t *testing.T, ws *websocket.Conn, raw string) {
	t.Helper()

	if err := ws.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, ws *websocket.Conn) message.Envelope {
	t.Helper()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var env message.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func expect(t *testing.T, ws *websocket.Conn, msgType string) message.Envelope {
	t.Helper()

	env := read(t, ws)
	if env.Type != msgType {
		t.Fatalf("Expected %s, got %s (%s)", msgType, env.Type, env.Payload)
	}
	return env
}

func TestTileAndDirectorOverWebSocket(t *testing.T) {
	url := newTestServer(t)

	director := dial(t, url)
	write(t, director, `{"type":"join-as-director"}`)
	expect(t, director, message.MsgTypeRoomSnapshot)

	tile := dial(t, url)
	write(t, tile, `{"type":"join-as-tile","payload":{"viewport":{"width":1280,"height":720}}}`)

	var snap message.TileSnapshot
	if err := json.Unmarshal(expect(t, tile, message.MsgTypeRoomSnapshot).Payload, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	expect(t, tile, message.MsgTypeRegionChanged)

	expect(t, director, message.MsgTypeTileJoined)
	expect(t, director, message.MsgTypeTilesChanged)

	write(t, director, `{"type":"set-region","payload":{"tileId":"`+snap.Self.ID.String()+`","x":10,"y":20,"width":300,"height":400,"rotationDegrees":0}}`)

	var region model.Region
	if err := json.Unmarshal(expect(t, tile, message.MsgTypeRegionChanged).Payload, &region); err != nil {
		t.Fatalf("decode region: %v", err)
	}
	if region != (model.Region{X: 10, Y: 20, Width: 300, Height: 400}) {
		t.Errorf("Unexpected region %+v", region)
	}
	expect(t, director, message.MsgTypeTilesChanged)

	tile.Close()
	expect(t, director, message.MsgTypeTileRemoved)
	expect(t, director, message.MsgTypeTilesChanged)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	url := newTestServer(t)

	ws := dial(t, url)
	write(t, ws, `{"type":"join-as-tile","payload":{}}`)

	var ack message.ErrorPayload
	if err := json.Unmarshal(expect(t, ws, message.MsgTypeError).Payload, &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Code != message.ErrCodeMalformedPayload {
		t.Errorf("Expected %s, got %s", message.ErrCodeMalformedPayload, ack.Code)
	}

	write(t, ws, `not json`)
	expect(t, ws, message.MsgTypeError)

	write(t, ws, `{"type":"join-as-director"}`)
	expect(t, ws, message.MsgTypeRoomSnapshot)
}
