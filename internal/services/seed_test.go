package services

import (
	"context"
	"testing"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

func TestSeedDemo_PopulatesEmptyStoreOnce(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	seeded, err := SeedDemo(ctx, db)
	if err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if !seeded {
		t.Fatalf("empty store must seed")
	}

	var users, contracts int64
	db.Model(&domain.User{}).Count(&users)
	db.Model(&domain.Contract{}).Count(&contracts)
	if users != 2 || contracts != 3 {
		t.Fatalf("expected 2 users and 3 contracts, got %d/%d", users, contracts)
	}

	// Seeded contracts are open and visible on the explore list.
	open, err := repo.ListOpenContracts(ctx, db, 50)
	if err != nil || len(open) != 3 {
		t.Fatalf("explore after seed: rows=%d err=%v", len(open), err)
	}

	// Second run is a no-op.
	seeded, err = SeedDemo(ctx, db)
	if err != nil || seeded {
		t.Fatalf("second run must be a no-op: seeded=%v err=%v", seeded, err)
	}
	db.Model(&domain.User{}).Count(&users)
	if users != 2 {
		t.Fatalf("no-op run must not add users, got %d", users)
	}
}

func TestSeedDemo_SkipsNonEmptyStore(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	mustUser(t, db, "Existing")

	seeded, err := SeedDemo(ctx, db)
	if err != nil || seeded {
		t.Fatalf("populated store must not seed: seeded=%v err=%v", seeded, err)
	}
}
