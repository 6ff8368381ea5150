package gormrepo

import (
	"context"
	"errors"
	"testing"

	"deceit/internal/app/ports"
)

func TestEventLogRepo_BlankRoomIDIsNotFound(t *testing.T) {
	repo := NewEventLogRepo(nil)
	for _, id := range []string{"", "   "} {
		if _, err := repo.GetByRoomID(context.Background(), id); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("GetByRoomID(%q) got=%v want=%v", id, err, ports.ErrNotFound)
		}
	}
}
