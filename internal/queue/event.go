// Package queue defines message payloads exchanged over the message
// broker, the fire-and-forget publisher and the background consumer
// that feeds the floor operations log.
package queue

// Queue names. The default exchange is used throughout, so the routing
// key is always the queue name.
const (
	CheckInQueue  = "tournament.checkin"
	SeatingQueue  = "tournament.seating"
	ClockQueue    = "tournament.clock"
	ResultsQueue  = "tournament.results"
	FinishedQueue = "tournament.finished"
)

// PlayerCheckedInEvent is published when a player completes check-in.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type PlayerCheckedInEvent struct {
	TournamentID   string `json:"tournament_id"`
	TournamentName string `json:"tournament_name"`
	RegistrationID string `json:"registration_id"`
	UserID         string `json:"user_id"`
	PlayerName     string `json:"player_name"`
	TableNumber    *int   `json:"table_number,omitempty"`
	SeatNumber     *int   `json:"seat_number,omitempty"`
	Strategy       string `json:"strategy"`
	BonusChips     int    `json:"bonus_chips,omitempty"`
	CheckedInAt    string `json:"checked_in_at"`
}

// SeatingRebalancedEvent is published after a rebalance commits. Moves
// are summarized as "table/seat -> table/seat" strings for the floor
// feed.
type SeatingRebalancedEvent struct {
	TournamentID string   `json:"tournament_id"`
	MoveCount    int      `json:"move_count"`
	Moves        []string `json:"moves"`
	TriggeredBy  string   `json:"triggered_by"`
	RebalancedAt string   `json:"rebalanced_at"`
}

// ClockChangedEvent is published on every successful clock state
// change, including automatic level advances.
type ClockChangedEvent struct {
	TournamentID string `json:"tournament_id"`
	EventType    string `json:"event_type"`
	Level        int    `json:"level"`
	SmallBlind   int    `json:"small_blind,omitempty"`
	BigBlind     int    `json:"big_blind,omitempty"`
	Ante         int    `json:"ante,omitempty"`
	ChangedAt    string `json:"changed_at"`
}

// ResultsEnteredEvent is published when final results are recorded.
type ResultsEnteredEvent struct {
	TournamentID   string `json:"tournament_id"`
	PlayerCount    int    `json:"player_count"`
	PrizePoolCents int64  `json:"prize_pool_cents"`
	DealType       string `json:"deal_type,omitempty"`
	EnteredAt      string `json:"entered_at"`
}

// TournamentFinishedEvent is published when a tournament reaches its
// terminal state, whether by an operator or the stale sweeper.
type TournamentFinishedEvent struct {
	TournamentID string `json:"tournament_id"`
	Reason       string `json:"reason"`
	FinishedAt   string `json:"finished_at"`
}
