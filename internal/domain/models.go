// Package domain defines the persistence models for users, contracts,
// messages, and check-ins. These types are mapped with GORM and form the
// core data layer of the accountability-partner application.
package domain

import (
	"time"
)

// Contract status values. A contract is "open" until a partner is attached,
// then "matched" for the rest of its life. There is no completed/expired
// state; the only exit is deletion by a participant.
const (
	StatusOpen    = "open"
	StatusMatched = "matched"
)

// User represents a registered account (or a seeded demo identity).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name shown to partners and in chat.
//   - Email: optional login identity; unique when present.
//   - PasswordHash: optional bcrypt hash; nil for seeded demo users.
//   - CreatedAt: timestamp managed by GORM.
type User struct {
	ID           string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"            gorm:"type:varchar(120);not null"`
	Email        *string   `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex:ux_users_email"`
	PasswordHash *string   `json:"-"               gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Contract represents a measurable habit goal agreed between an owner and,
// once matched, an accountability partner.
//
// Invariant: PartnerID is nil iff Status is "open". The matching transition,
// a direct join, and an invite acceptance are the only mutations that set
// PartnerID, and each flips Status to "matched" in the same write. A matched
// contract never reverts to open.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OwnerID: creator of the contract; indexed for per-user listings.
//   - PartnerID: the matched counterpart's user id, nil while open.
//   - Title / TopicCategory / Description: goal definition.
//   - FrequencyPerWeek / DurationDays: the measurable commitment.
//   - StakesLevel: enumerated stakes chosen by the owner.
//   - Status: "open" or "matched" (enforced by DB constraint).
//   - StartDate: "YYYY-MM-DD" day key, derived as today at creation.
//   - InviteCode: set only when the owner requested friend matching.
type Contract struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	OwnerID          string    `json:"owner_id"           gorm:"type:char(36);not null;index:idx_owner_contracts"`
	PartnerID        *string   `json:"partner_id"         gorm:"type:char(36);index:idx_partner_contracts"`
	Title            string    `json:"title"              gorm:"type:varchar(255);not null"`
	TopicCategory    string    `json:"topic_category"     gorm:"type:varchar(64);not null;index:idx_topic_status"`
	Description      string    `json:"description"        gorm:"type:text"`
	FrequencyPerWeek int       `json:"frequency_per_week" gorm:"not null"`
	DurationDays     int       `json:"duration_days"      gorm:"not null"`
	StakesLevel      string    `json:"stakes_level"       gorm:"type:varchar(32);not null"`
	Status           string    `json:"status"             gorm:"type:varchar(16);not null;default:'open';check:status IN ('open','matched')"`
	StartDate        *string   `json:"start_date"         gorm:"type:varchar(10)"`
	InviteCode       *string   `json:"invite_code,omitempty" gorm:"type:varchar(20);uniqueIndex:ux_contracts_invite"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Owner is the FK association to the creating user.
	Owner User `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Contract.
func (Contract) TableName() string { return "contracts" }

// Message is a single chat line inside one contract's room. Immutable once
// created; removed only when its contract is deleted.
type Message struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ContractID string    `json:"contract_id" gorm:"type:char(36);not null;index:idx_contract_msgs,priority:1"`
	SenderID   string    `json:"sender_id"   gorm:"type:char(36);not null"`
	Text       string    `json:"text"        gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_contract_msgs,priority:2"`

	// Contract is the parent room. Messages are cascade-deleted with it.
	Contract Contract `json:"-" gorm:"foreignKey:ContractID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Checkin is a per-(contract, user, day) completion flag. At most one row
// exists per triple (unique index); re-submitting the same day upserts the
// Done value rather than inserting a duplicate.
//
// DateKey is a caller-supplied "YYYY-MM-DD" string, trusted verbatim with no
// timezone normalization.
type Checkin struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ContractID string    `json:"contract_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_checkin_day,priority:1"`
	UserID     string    `json:"user_id"     gorm:"type:char(36);not null;uniqueIndex:ux_checkin_day,priority:2"`
	DateKey    string    `json:"date_key"    gorm:"type:varchar(10);not null;uniqueIndex:ux_checkin_day,priority:3"`
	Done       bool      `json:"done"        gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Contract is the parent goal. Check-ins are cascade-deleted with it.
	Contract Contract `json:"-" gorm:"foreignKey:ContractID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Checkin.
func (Checkin) TableName() string { return "checkins" }

// Matched reports whether the contract is in the matched state. Both the
// status column and the partner pointer must agree for a well-formed row.
func (c *Contract) Matched() bool { return c.Status == StatusMatched && c.PartnerID != nil }

// IsParticipant reports whether userID is the owner or the matched partner.
func (c *Contract) IsParticipant(userID string) bool {
	if c.OwnerID == userID {
		return true
	}
	return c.PartnerID != nil && *c.PartnerID == userID
}
