// Package repository defines error values that are reused across
// multiple repositories. These sentinels allow higher layers such as
// services and handlers to distinguish between failure scenarios
// without matching message text. Conflict errors (ErrSeatOccupied,
// ErrAlreadySeated, ErrClockExists) are derived from the storage
// layer's uniqueness constraints so that concurrent writers fail
// loudly instead of corrupting state, while the NotFound family stays
// distinct from workflow-state errors such as ErrAlreadyAtFirstLevel.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrSeatOccupied is returned when another current seat assignment
// already exists at the target (table, seat). Callers should re-read
// occupancy and retry with a different seat.
var ErrSeatOccupied = errors.New("seat is already occupied")

// ErrAlreadySeated is returned when the user already holds a current
// seat in the tournament. The player must be moved rather than seated
// a second time.
var ErrAlreadySeated = errors.New("player already has a current seat in this tournament")

// ErrNotCurrent is returned when unassigning a seat assignment that
// has already been superseded. Unassign is deliberately not
// idempotent: racing callers are told they lost.
var ErrNotCurrent = errors.New("seat assignment is no longer current")

// ErrClockExists is returned when creating a clock for a tournament
// that already has one. The existing clock is left untouched.
var ErrClockExists = errors.New("tournament clock already exists")

// ErrAlreadyAtFirstLevel is returned by level reverts when the clock
// sits at level 1. This is a workflow-state error, distinct from
// ErrClockNotFound.
var ErrAlreadyAtFirstLevel = errors.New("tournament is already at level 1")

// ErrLevelChanged is returned when a level advance or revert loses the
// race against a concurrent transition from the same level. Exactly
// one of the racing operations wins.
var ErrLevelChanged = errors.New("clock level changed concurrently")

// ErrTableHasSeatedPlayers is returned when deactivating a table
// assignment while current seat assignments remain on the table.
var ErrTableHasSeatedPlayers = errors.New("table still has seated players")

// ErrAlreadyRegistered is returned when registering a (tournament,
// user) pair that already has a registration.
var ErrAlreadyRegistered = errors.New("player is already registered for this tournament")

// ErrEmailTaken is returned when creating a user whose email is
// already in use.
var ErrEmailTaken = errors.New("email is already in use")

// ErrRefreshInvalid is returned for refresh tokens that are unknown,
// expired or revoked. Callers cannot distinguish the three cases.
var ErrRefreshInvalid = errors.New("refresh token is invalid")

// Per-entity NotFound sentinels. Handlers translate these into HTTP
// 404 responses with precise messages.
var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrAssignmentNotFound   = errors.New("seat assignment not found")
	ErrClockNotFound        = errors.New("tournament clock not found")
	ErrStructureNotFound    = errors.New("no blind structure defined for this level")
	ErrTemplateNotFound     = errors.New("payout template not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrPayoutNotFound       = errors.New("no payout snapshot for this tournament")
)

// StatusTransitionError reports a workflow operation attempted from a
// registration status that does not permit it. The offending current
// status is carried so operator-facing clients can render it.
type StatusTransitionError struct {
	Current   string
	Attempted string
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from status %q", e.Attempted, e.Current)
}

// mysqlDuplicateEntry is the MySQL error number for a unique key
// violation on INSERT or UPDATE.
const mysqlDuplicateEntry = 1062

// duplicateKey returns the violated key name when err is a MySQL
// duplicate-entry error, or an empty string otherwise. The key name
// tells apart the two seat invariants: one seat per (table, seat
// number) versus one current seat per player.
func duplicateKey(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return ""
	}
	// Message shape: Duplicate entry '...' for key 'table.key_name'
	i := strings.LastIndex(me.Message, "for key '")
	if i < 0 {
		return ""
	}
	key := strings.TrimSuffix(me.Message[i+len("for key '"):], "'")
	if j := strings.LastIndex(key, "."); j >= 0 {
		key = key[j+1:]
	}
	return key
}

// isDuplicateEntry reports whether err is any MySQL duplicate-entry
// error.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
