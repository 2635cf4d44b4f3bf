package repository

import "errors"

// Sentinel errors surfaced by transactional membership writes. Services map
// them onto API error codes.
var (
	// ErrCapacityFull means the target session, group or club has reached
	// its participant limit.
	ErrCapacityFull = errors.New("capacity reached")

	// ErrDuplicateMember means the user already holds a registration or
	// membership in the target.
	ErrDuplicateMember = errors.New("already a member")

	// ErrNotJoinable means the target is not accepting members in its
	// current state.
	ErrNotJoinable = errors.New("not open for joining")
)
