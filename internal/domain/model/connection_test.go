package model

import (
	stderrors "errors"
	"testing"

	"mosaic_wall/internal/domain/errors"
)

func TestConnectionJoinOnce(t *testing.T) {
	c := NewConnection(1)
	if c.Role() != RoleUnjoined {
		t.Fatalf("Expected unjoined, got %s", c.Role())
	}

	if err := c.Join(RoleTile, "default"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := c.Join(RoleDirector, "default"); !stderrors.Is(err, errors.ErrAlreadyJoined) {
		t.Fatalf("Expected ErrAlreadyJoined, got %v", err)
	}
	if c.Role() != RoleTile || c.RoomID() != "default" {
		t.Errorf("Role switched: %s in %q", c.Role(), c.RoomID())
	}
}

// TestSendOverflowCloses verifies a full outbox closes instead of blocking.
func TestSendOverflowCloses(t *testing.T) {
	c := NewConnection(1)

	if !c.Send([]byte("1")) {
		t.Fatal("First send should succeed")
	}
	if c.Send([]byte("2")) {
		t.Fatal("Second send should fail on a full outbox")
	}

	select {
	case <-c.Done():
	default:
		t.Fatal("Connection should be closed after overflow")
	}

	if c.Send([]byte("3")) {
		t.Error("Send after close should fail")
	}
	c.Close()
}
