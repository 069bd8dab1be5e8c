package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeStreak(t *testing.T) {
	mk := func(days ...string) []domain.Checkin {
		out := make([]domain.Checkin, 0, len(days))
		for _, d := range days {
			out = append(out, domain.Checkin{DateKey: d, Done: true})
		}
		return out
	}

	tests := []struct {
		name  string
		rows  []domain.Checkin
		today string
		want  int
	}{
		{"empty ledger", nil, "2026-09-04", 0},
		{"today missing", mk("2026-09-02", "2026-09-03"), "2026-09-05", 0},
		{"single day", mk("2026-09-04"), "2026-09-04", 1},
		{"consecutive run", mk("2026-09-02", "2026-09-03", "2026-09-04"), "2026-09-04", 3},
		{"gap stops the walk", mk("2026-09-01", "2026-09-03", "2026-09-04"), "2026-09-04", 2},
		{
			"not-done today yields zero",
			append(mk("2026-09-03"), domain.Checkin{DateKey: "2026-09-04", Done: false}),
			"2026-09-04",
			0,
		},
		{
			"not-done inside run stops the walk",
			append(mk("2026-09-02", "2026-09-04"), domain.Checkin{DateKey: "2026-09-03", Done: false}),
			"2026-09-04",
			1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeStreak(tc.rows, day(tc.today)); got != tc.want {
				t.Fatalf("ComputeStreak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestComputeStreak_MonthBoundary(t *testing.T) {
	rows := []domain.Checkin{
		{DateKey: "2026-08-30", Done: true},
		{DateKey: "2026-08-31", Done: true},
		{DateKey: "2026-09-01", Done: true},
	}
	if got := ComputeStreak(rows, day("2026-09-01")); got != 3 {
		t.Fatalf("streak across the month boundary = %d, want 3", got)
	}
}

func TestRecord_UpsertsAndValidatesContract(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCheckinService(db)
	owner := mustUser(t, db, "Ana")
	c := mustOpenContract(t, db, owner.ID, "fitness")

	if _, err := svc.Record(context.Background(), owner.ID, "missing", "2026-09-01", true); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("missing contract must be ErrContractNotFound, got %v", err)
	}

	ck, err := svc.Record(context.Background(), owner.ID, c.ID, "2026-09-01", true)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !ck.Done || ck.DateKey != "2026-09-01" {
		t.Fatalf("unexpected check-in: %+v", ck)
	}

	// Overwrite the same day.
	ck2, err := svc.Record(context.Background(), owner.ID, c.ID, "2026-09-01", false)
	if err != nil {
		t.Fatalf("Record overwrite: %v", err)
	}
	if ck2.Done || ck2.ID != ck.ID {
		t.Fatalf("overwrite must keep the row and flip the flag: %+v", ck2)
	}

	// Empty date defaults to today.
	today := time.Now().UTC().Format("2006-01-02")
	ck3, err := svc.Record(context.Background(), owner.ID, c.ID, "", true)
	if err != nil {
		t.Fatalf("Record default day: %v", err)
	}
	if ck3.DateKey != today {
		t.Fatalf("empty date must default to today %s, got %s", today, ck3.DateKey)
	}
}

func TestCheckins_ParticipantsOnly(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCheckinService(db)
	owner := mustUser(t, db, "Ana")
	stranger := mustUser(t, db, "Cy")
	c := mustOpenContract(t, db, owner.ID, "fitness")

	if _, err := svc.Record(context.Background(), stranger.ID, c.ID, "2026-09-01", true); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider write must be ErrNotParticipant, got %v", err)
	}
	if _, err := svc.List(context.Background(), stranger.ID, c.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider ledger read must be ErrNotParticipant, got %v", err)
	}
	if _, err := svc.Streak(context.Background(), stranger.ID, c.ID, day("2026-09-01")); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider streak must be ErrNotParticipant, got %v", err)
	}

	// Nothing landed in the ledger.
	items, err := svc.List(context.Background(), owner.ID, c.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected write must not persist: %+v", items)
	}
}

func TestStreak_PerUserOnSharedContract(t *testing.T) {
	db := newServiceDB(t)
	svc := NewCheckinService(db)
	owner := mustUser(t, db, "Ana")
	partner := mustUser(t, db, "Ben")
	c := mustOpenContract(t, db, owner.ID, "fitness")
	if err := repo.MarkMatched(context.Background(), db, c.ID, partner.ID); err != nil {
		t.Fatalf("MarkMatched: %v", err)
	}

	for _, d := range []string{"2026-09-02", "2026-09-03", "2026-09-04"} {
		if _, err := svc.Record(context.Background(), owner.ID, c.ID, d, true); err != nil {
			t.Fatalf("Record owner %s: %v", d, err)
		}
	}
	if _, err := svc.Record(context.Background(), partner.ID, c.ID, "2026-09-04", true); err != nil {
		t.Fatalf("Record partner: %v", err)
	}

	got, err := svc.Streak(context.Background(), owner.ID, c.ID, day("2026-09-04"))
	if err != nil || got != 3 {
		t.Fatalf("owner streak = %d err=%v, want 3", got, err)
	}
	got, err = svc.Streak(context.Background(), partner.ID, c.ID, day("2026-09-04"))
	if err != nil || got != 1 {
		t.Fatalf("partner streak = %d err=%v, want 1", got, err)
	}
}
