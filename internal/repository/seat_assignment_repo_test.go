package repository

import (
	"strings"
	"testing"
	"time"
)

func TestHistoryQueryDefaults(t *testing.T) {
	q, args := historyQuery("t1", HistoryFilter{})
	if !strings.Contains(q, "WHERE tournament_id = ?") {
		t.Fatalf("missing tournament filter:\n%s", q)
	}
	if !strings.Contains(q, "LIMIT ?") {
		t.Fatalf("history select must be bounded:\n%s", q)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want tournament id and limit", args)
	}
	if args[0] != "t1" || args[1] != historyMaxRows {
		t.Fatalf("args = %v, want [t1 %d]", args, historyMaxRows)
	}
}

func TestHistoryQueryFilters(t *testing.T) {
	user := "u1"
	table := "tbl1"
	current := true
	from := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	q, args := historyQuery("t1", HistoryFilter{
		UserID:      &user,
		ClubTableID: &table,
		Current:     &current,
		From:        &from,
		To:          &to,
		Limit:       50,
	})
	for _, clause := range []string{
		"AND user_id = ?",
		"AND club_table_id = ?",
		"AND is_current = 1",
		"AND assigned_at >= ?",
		"AND assigned_at < ?",
	} {
		if !strings.Contains(q, clause) {
			t.Fatalf("missing %q:\n%s", clause, q)
		}
	}
	want := []interface{}{"t1", "u1", "tbl1", from, to, 50}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestHistoryQuerySupersededMatchesNull(t *testing.T) {
	current := false
	q, _ := historyQuery("t1", HistoryFilter{Current: &current})
	if !strings.Contains(q, "AND is_current IS NULL") {
		t.Fatalf("superseded rows carry NULL, filter must match on it:\n%s", q)
	}
	if strings.Contains(q, "is_current = 0") {
		t.Fatalf("no row ever stores is_current = 0:\n%s", q)
	}
}

func TestHistoryQueryClampsLimit(t *testing.T) {
	for _, limit := range []int{0, -5, historyMaxRows + 1, 1 << 20} {
		_, args := historyQuery("t1", HistoryFilter{Limit: limit})
		got := args[len(args)-1]
		if limit > 0 && limit <= historyMaxRows {
			t.Fatalf("test bug: %d is within bounds", limit)
		}
		if got != historyMaxRows {
			t.Fatalf("limit %d clamped to %v, want %d", limit, got, historyMaxRows)
		}
	}
	_, args := historyQuery("t1", HistoryFilter{Limit: 25})
	if got := args[len(args)-1]; got != 25 {
		t.Fatalf("in-range limit rewritten to %v", got)
	}
}

func TestUnassignedPlayersIncludeSeated(t *testing.T) {
	// Unassigning a seat supersedes the assignment row without touching
	// the registration, so a player pulled from a closing table is still
	// 'seated' and must show up as waiting for a seat.
	if !strings.Contains(unassignedPlayersQuery, "'seated'") {
		t.Fatalf("seated players without a current seat must be listed:\n%s", unassignedPlayersQuery)
	}
	for _, status := range []string{"'registered'", "'checked_in'"} {
		if !strings.Contains(unassignedPlayersQuery, status) {
			t.Fatalf("missing %s in status list:\n%s", status, unassignedPlayersQuery)
		}
	}
}
