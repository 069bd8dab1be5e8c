package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pactly/go-pact-backend/internal/domain"
	"github.com/pactly/go-pact-backend/internal/repo"
)

var inviteCodeRe = regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`)

func TestCreate_ValidationAndDefaults(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")

	_, _, err := svc.Create(context.Background(), owner.ID, CreateContractInput{
		Title: "   ", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 3, DurationDays: 30,
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("blank title must be ErrMissingFields, got %v", err)
	}

	_, _, err = svc.Create(context.Background(), owner.ID, CreateContractInput{
		Title: "Run", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 0, DurationDays: 30,
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("zero frequency must be ErrMissingFields, got %v", err)
	}

	c, match, err := svc.Create(context.Background(), owner.ID, CreateContractInput{
		Title: "Run", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 3, DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if match != nil {
		t.Fatalf("open match type must not trigger pairing: %+v", match)
	}
	if c.Status != domain.StatusOpen || c.InviteCode != nil {
		t.Fatalf("unexpected contract: %+v", c)
	}
	today := time.Now().UTC().Format("2006-01-02")
	if c.StartDate == nil || *c.StartDate != today {
		t.Fatalf("start date must default to today, got %v", c.StartDate)
	}
}

func TestCreate_FriendMatchingIssuesInviteCode(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")

	c, _, err := svc.Create(context.Background(), owner.ID, CreateContractInput{
		Title: "Run", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 3, DurationDays: 30, MatchType: MatchFriend,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.InviteCode == nil || !inviteCodeRe.MatchString(*c.InviteCode) {
		t.Fatalf("invite code missing or malformed: %v", c.InviteCode)
	}

	got, err := svc.GetByInvite(context.Background(), *c.InviteCode)
	if err != nil || got.ID != c.ID {
		t.Fatalf("GetByInvite: got=%+v err=%v", got, err)
	}
}

func TestCreate_RandomMatchingPairsSynchronously(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	a := mustUser(t, db, "Ana")
	me := mustUser(t, db, "Cy")
	waiting := mustOpenContract(t, db, a.ID, "fitness")

	c, match, err := svc.Create(context.Background(), me.ID, CreateContractInput{
		Title: "Run", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 3, DurationDays: 30, MatchType: MatchRandom,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if match == nil || match.Contract.ID != waiting.ID || match.Partner.ID != a.ID {
		t.Fatalf("expected synchronous match against waiting contract, got %+v", match)
	}
	if !c.Matched() {
		t.Fatalf("created contract must be matched: %+v", c)
	}
}

func TestJoin_RulesAndWelcomeMessages(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")
	joiner := mustUser(t, db, "Ben")
	third := mustUser(t, db, "Cy")
	c := mustOpenContract(t, db, owner.ID, "fitness")

	if _, err := svc.Join(context.Background(), owner.ID, c.ID); !errors.Is(err, ErrSelfJoin) {
		t.Fatalf("owner joining own contract must be ErrSelfJoin, got %v", err)
	}

	got, err := svc.Join(context.Background(), joiner.ID, c.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !got.Matched() || *got.PartnerID != joiner.ID {
		t.Fatalf("join must match the contract: %+v", got)
	}

	if _, err := svc.Join(context.Background(), third.ID, c.ID); !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("second join must be ErrAlreadyMatched, got %v", err)
	}

	// Two distinct welcome messages, one attributed to each participant.
	msgs, err := repo.ListMessages(context.Background(), db, c.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 welcome messages, got %d", len(msgs))
	}
	if msgs[0].Text == msgs[1].Text {
		t.Fatalf("join welcome texts must differ, both %q", msgs[0].Text)
	}
	senders := map[string]bool{msgs[0].SenderID: true, msgs[1].SenderID: true}
	if !senders[owner.ID] || !senders[joiner.ID] {
		t.Fatalf("each participant must author one welcome: %+v", senders)
	}

	if _, err := svc.Join(context.Background(), joiner.ID, "missing"); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("missing contract must be ErrContractNotFound, got %v", err)
	}
}

func TestAcceptInvite_NoWelcomeMessages(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")
	friend := mustUser(t, db, "Ben")

	c, _, err := svc.Create(context.Background(), owner.ID, CreateContractInput{
		Title: "Run", TopicCategory: "fitness", StakesLevel: "social",
		FrequencyPerWeek: 3, DurationDays: 30, MatchType: MatchFriend,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.AcceptInvite(context.Background(), owner.ID, *c.InviteCode); !errors.Is(err, ErrSelfJoin) {
		t.Fatalf("accepting own invite must be ErrSelfJoin, got %v", err)
	}

	got, err := svc.AcceptInvite(context.Background(), friend.ID, *c.InviteCode)
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if !got.Matched() || *got.PartnerID != friend.ID {
		t.Fatalf("accept must match the contract: %+v", got)
	}

	// Unlike Join, this path inserts no chat messages.
	msgs, err := repo.ListMessages(context.Background(), db, c.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("invite acceptance must not write messages, got %d", len(msgs))
	}

	if _, err := svc.AcceptInvite(context.Background(), friend.ID, *c.InviteCode); !errors.Is(err, ErrAlreadyMatched) {
		t.Fatalf("second accept must be ErrAlreadyMatched, got %v", err)
	}
	if _, err := svc.AcceptInvite(context.Background(), friend.ID, "zzzz-zzzz-zzzz"); !errors.Is(err, ErrInviteNotFound) {
		t.Fatalf("unknown code must be ErrInviteNotFound, got %v", err)
	}
}

func TestDelete_ParticipantOnlyAndCascades(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")
	partner := mustUser(t, db, "Ben")
	stranger := mustUser(t, db, "Cy")
	c := mustOpenContract(t, db, owner.ID, "fitness")

	if _, err := svc.Join(context.Background(), partner.ID, c.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := repo.UpsertCheckin(context.Background(), db, c.ID, owner.ID, "2026-09-01", true); err != nil {
		t.Fatalf("UpsertCheckin: %v", err)
	}

	if err := svc.Delete(context.Background(), stranger.ID, c.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("stranger delete must be ErrNotParticipant, got %v", err)
	}

	// Partner may delete, not only the owner.
	if err := svc.Delete(context.Background(), partner.ID, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var msgs, checks, contracts int64
	db.Model(&domain.Message{}).Where("contract_id = ?", c.ID).Count(&msgs)
	db.Model(&domain.Checkin{}).Where("contract_id = ?", c.ID).Count(&checks)
	db.Model(&domain.Contract{}).Where("id = ?", c.ID).Count(&contracts)
	if msgs != 0 || checks != 0 || contracts != 0 {
		t.Fatalf("cascade incomplete: msgs=%d checks=%d contracts=%d", msgs, checks, contracts)
	}

	if err := svc.Delete(context.Background(), owner.ID, c.ID); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("deleting a deleted contract must be ErrContractNotFound, got %v", err)
	}
}

func TestExplore_CapsAtFifty(t *testing.T) {
	db := newServiceDB(t)
	svc := NewContractService(db)
	owner := mustUser(t, db, "Ana")

	for i := 0; i < exploreLimit+5; i++ {
		mustOpenContract(t, db, owner.ID, "fitness")
	}

	out, err := svc.Explore(context.Background())
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	if len(out) != exploreLimit {
		t.Fatalf("explore must cap at %d, got %d", exploreLimit, len(out))
	}
}
