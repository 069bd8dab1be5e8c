package repo

import (
	"context"
	"testing"
	"time"
)

func TestContractsStats(t *testing.T) {
	db := fullSchemaDB(t)
	owner := seedUser(t, db, "Ana")

	count, maxTS, err := ContractsStats(context.Background(), db, owner.ID)
	if err != nil {
		t.Fatalf("ContractsStats empty: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("empty stats should be (0, nil), got (%d, %v)", count, maxTS)
	}

	seedContract(t, db, owner.ID, "fitness")
	seedContract(t, db, owner.ID, "learning")

	count, maxTS, err = ContractsStats(context.Background(), db, owner.ID)
	if err != nil {
		t.Fatalf("ContractsStats: %v", err)
	}
	if count != 2 || maxTS == nil {
		t.Fatalf("expected (2, non-nil), got (%d, %v)", count, maxTS)
	}
}

func TestMessagesStats(t *testing.T) {
	db := fullSchemaDB(t)
	owner := seedUser(t, db, "Ana")
	c := seedContract(t, db, owner.ID, "fitness")

	at := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	if _, err := CreateMessage(context.Background(), db, c.ID, owner.ID, "hi", at); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	count, maxTS, err := MessagesStats(context.Background(), db, c.ID)
	if err != nil {
		t.Fatalf("MessagesStats: %v", err)
	}
	if count != 1 || maxTS == nil {
		t.Fatalf("expected (1, non-nil), got (%d, %v)", count, maxTS)
	}
}
