// Package services defines the business logic for auth, contracts, matching,
// check-ins, and messaging. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrContractNotFound indicates that the requested contract does not exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingFields is returned when a contract creation request omits one
	// of the required goal fields.
	ErrMissingFields = errors.New("title, topic, frequency, duration and stakes are required")

	// ErrAlreadyMatched is returned when a join or invite acceptance targets a
	// contract that already has a partner.
	ErrAlreadyMatched = errors.New("contract already matched")

	// ErrSelfJoin is returned when a user attempts to join or accept an invite
	// for their own contract.
	ErrSelfJoin = errors.New("cannot join your own contract")

	// ErrNotParticipant is returned when a user acts on a contract they
	// neither own nor partner on.
	ErrNotParticipant = errors.New("not a participant of this contract")

	// ErrEmptyMessage is returned when a chat message has no text after
	// trimming whitespace.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrEmailTaken is returned on registration with an address that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login email/password do not match
	// a stored account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInviteNotFound indicates that no contract carries the given invite code.
	ErrInviteNotFound = errors.New("invite code not found")
)
