package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.User{}, &domain.Contract{}, &domain.Message{}, &domain.Checkin{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, name, nil, nil)
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return u
}

func mustOpenContract(t *testing.T, db *gorm.DB, ownerID, topic string) *domain.Contract {
	t.Helper()
	c, err := repo.CreateContract(context.Background(), db, &domain.Contract{
		OwnerID:          ownerID,
		Title:            "Goal in " + topic,
		TopicCategory:    topic,
		FrequencyPerWeek: 3,
		DurationDays:     30,
		StakesLevel:      "social",
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return c
}

func backdate(t *testing.T, db *gorm.DB, contractID string, at time.Time) {
	t.Helper()
	if err := db.Model(&domain.Contract{}).Where("id = ?", contractID).
		Update("created_at", at).Error; err != nil {
		t.Fatalf("backdate %s: %v", contractID, err)
	}
}

func TestTryMatchRandom_NoCandidateLeavesContractOpen(t *testing.T) {
	db := newServiceDB(t)
	svc := NewMatchService(db)
	me := mustUser(t, db, "Ana")
	mine := mustOpenContract(t, db, me.ID, "fitness")

	res, err := svc.TryMatchRandom(context.Background(), mine)
	if err != nil {
		t.Fatalf("TryMatchRandom: %v", err)
	}
	if res != nil {
		t.Fatalf("expected no match, got %+v", res)
	}

	got, err := repo.GetContract(context.Background(), db, mine.ID)
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if got.Status != domain.StatusOpen || got.PartnerID != nil {
		t.Fatalf("contract must remain open: %+v", got)
	}
	var msgs int64
	db.Model(&domain.Message{}).Count(&msgs)
	if msgs != 0 {
		t.Fatalf("no-candidate path must write nothing, found %d messages", msgs)
	}
}

func TestTryMatchRandom_PairsOldestCandidate(t *testing.T) {
	db := newServiceDB(t)
	svc := NewMatchService(db)
	a := mustUser(t, db, "Ana")
	b := mustUser(t, db, "Ben")
	me := mustUser(t, db, "Cy")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := mustOpenContract(t, db, a.ID, "fitness")
	backdate(t, db, oldest.ID, base)
	newer := mustOpenContract(t, db, b.ID, "fitness")
	backdate(t, db, newer.ID, base.Add(time.Hour))

	mine := mustOpenContract(t, db, me.ID, "fitness")
	res, err := svc.TryMatchRandom(context.Background(), mine)
	if err != nil {
		t.Fatalf("TryMatchRandom: %v", err)
	}
	if res == nil || res.Contract.ID != oldest.ID || res.Partner.ID != a.ID {
		t.Fatalf("expected oldest candidate, got %+v", res)
	}

	// Both rows transitioned; partner pointers cross-reference the owners.
	gotMine, _ := repo.GetContract(context.Background(), db, mine.ID)
	gotOld, _ := repo.GetContract(context.Background(), db, oldest.ID)
	if !gotMine.Matched() || !gotOld.Matched() {
		t.Fatalf("both contracts must be matched: %+v / %+v", gotMine, gotOld)
	}
	if *gotMine.PartnerID != a.ID || *gotOld.PartnerID != me.ID {
		t.Fatalf("partner pointers wrong: %v / %v", *gotMine.PartnerID, *gotOld.PartnerID)
	}

	// The newer candidate was left untouched.
	gotNewer, _ := repo.GetContract(context.Background(), db, newer.ID)
	if gotNewer.Status != domain.StatusOpen {
		t.Fatalf("newer candidate must stay open: %+v", gotNewer)
	}

	// The caller's in-memory copy reflects the transition too.
	if !mine.Matched() || *mine.PartnerID != a.ID {
		t.Fatalf("caller copy not updated: %+v", mine)
	}
}

func TestTryMatchRandom_WelcomeMessagesIdentical(t *testing.T) {
	db := newServiceDB(t)
	svc := NewMatchService(db)
	a := mustUser(t, db, "Ana")
	me := mustUser(t, db, "Cy")
	theirs := mustOpenContract(t, db, a.ID, "fitness")
	mine := mustOpenContract(t, db, me.ID, "fitness")

	if _, err := svc.TryMatchRandom(context.Background(), mine); err != nil {
		t.Fatalf("TryMatchRandom: %v", err)
	}

	mineMsgs, err := repo.ListMessages(context.Background(), db, mine.ID)
	if err != nil {
		t.Fatalf("ListMessages mine: %v", err)
	}
	theirMsgs, err := repo.ListMessages(context.Background(), db, theirs.ID)
	if err != nil {
		t.Fatalf("ListMessages theirs: %v", err)
	}
	if len(mineMsgs) != 1 || len(theirMsgs) != 1 {
		t.Fatalf("expected one welcome message per contract, got %d/%d", len(mineMsgs), len(theirMsgs))
	}
	if mineMsgs[0].Text != theirMsgs[0].Text {
		t.Fatalf("welcome texts differ: %q vs %q", mineMsgs[0].Text, theirMsgs[0].Text)
	}
	if !mineMsgs[0].CreatedAt.Equal(theirMsgs[0].CreatedAt) {
		t.Fatalf("welcome timestamps differ: %v vs %v", mineMsgs[0].CreatedAt, theirMsgs[0].CreatedAt)
	}
	// Each welcome is attributed to the other participant.
	if mineMsgs[0].SenderID != a.ID || theirMsgs[0].SenderID != me.ID {
		t.Fatalf("welcome attribution wrong: %s / %s", mineMsgs[0].SenderID, theirMsgs[0].SenderID)
	}
}

func TestTryMatchRandom_IgnoresMatchedAndOtherTopics(t *testing.T) {
	db := newServiceDB(t)
	svc := NewMatchService(db)
	a := mustUser(t, db, "Ana")
	b := mustUser(t, db, "Ben")
	me := mustUser(t, db, "Cy")

	taken := mustOpenContract(t, db, a.ID, "fitness")
	if err := repo.MarkMatched(context.Background(), db, taken.ID, b.ID); err != nil {
		t.Fatalf("MarkMatched: %v", err)
	}
	mustOpenContract(t, db, b.ID, "cooking")

	mine := mustOpenContract(t, db, me.ID, "fitness")
	res, err := svc.TryMatchRandom(context.Background(), mine)
	if err != nil {
		t.Fatalf("TryMatchRandom: %v", err)
	}
	if res != nil {
		t.Fatalf("matched/off-topic contracts must not be candidates: %+v", res)
	}
}
