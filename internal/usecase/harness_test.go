package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"mosaic_wall/internal/domain/message"
	"mosaic_wall/internal/domain/model"
	"mosaic_wall/internal/infrastructure/repository"

	"github.com/google/uuid"
)

type harness struct {
	t     *testing.T
	uc    *SessionUC
	rooms *repository.InMemoryRoomRepo
	conns *repository.WsConnRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conns := repository.NewWsConnRepo()
	rooms := repository.NewInMemoryRoomRepo(model.NewIdentityAllocator(nil), model.RoomOptions{
		CanvasSize:   model.DefaultCanvasSize,
		IdentifyMode: true,
	})
	uc := NewSessionUC(rooms, conns, NewBroadcastRouter(conns), nil, SessionOptions{RoomID: "default"})

	return &harness{t: t, uc: uc, rooms: rooms, conns: conns}
}

func (h *harness) connect(outboxSize int) *model.Connection {
	conn := model.NewConnection(outboxSize)
	h.uc.Connect(conn)
	return conn
}

func (h *harness) send(conn *model.Connection, msgType string, payload any) error {
	h.t.Helper()

	raw := fmt.Sprintf(`{"type":%q}`, msgType)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			h.t.Fatalf("marshal payload: %v", err)
		}
		raw = fmt.Sprintf(`{"type":%q,"payload":%s}`, msgType, data)
	}

	return h.uc.HandleMessage(context.Background(), conn, []byte(raw))
}

func (h *harness) tile(width, height float64) *model.Connection {
	h.t.Helper()

	conn := h.connect(256)
	if err := h.send(conn, message.MsgTypeJoinAsTile, map[string]any{
		"viewport": map[string]float64{"width": width, "height": height},
	}); err != nil {
		h.t.Fatalf("join as tile: %v", err)
	}

	return conn
}

func (h *harness) director() *model.Connection {
	h.t.Helper()

	conn := h.connect(256)
	if err := h.send(conn, message.MsgTypeJoinAsDirector, nil); err != nil {
		h.t.Fatalf("join as director: %v", err)
	}

	return conn
}

func (h *harness) region(director *model.Connection, tileID uuid.UUID, r model.Region) {
	h.t.Helper()

	if err := h.send(director, message.MsgTypeSetRegion, map[string]any{
		"tileId":          tileID.String(),
		"x":               r.X,
		"y":               r.Y,
		"width":           r.Width,
		"height":          r.Height,
		"rotationDegrees": r.RotationDegrees,
	}); err != nil {
		h.t.Fatalf("set region: %v", err)
	}
}

// drain returns every message queued for conn so far.
func drain(t *testing.T, conn *model.Connection) []message.Envelope {
	t.Helper()

	var out []message.Envelope
	for {
		select {
		case data := <-conn.Outbox():
			var env message.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				t.Fatalf("decode outbound: %v", err)
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

func types(envs []message.Envelope) []string {
	out := make([]string, len(envs))
	for i, env := range envs {
		out[i] = env.Type
	}
	return out
}

func last(envs []message.Envelope, msgType string) (message.Envelope, bool) {
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == msgType {
			return envs[i], true
		}
	}
	return message.Envelope{}, false
}

func count(envs []message.Envelope, msgType string) int {
	n := 0
	for _, env := range envs {
		if env.Type == msgType {
			n++
		}
	}
	return n
}

func decodePayload[T any](t *testing.T, env message.Envelope) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(env.Payload, &v); err != nil {
		t.Fatalf("decode %s payload: %v", env.Type, err)
	}
	return v
}

func equalTypes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
