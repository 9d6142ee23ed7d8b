package model

import "time"

// PayoutLine is one entry of a payout template's structure: the share
// of the prize pool awarded to a finishing position.
type PayoutLine struct {
	Position   int     `json:"position"`
	Percentage float64 `json:"percentage"`
}

// PayoutTemplate is a reusable prize distribution. The structure's
// percentages must sum to 100 within a small tolerance; this is
// validated every time the template is used, not only at creation.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  Name        – display name.
//  Description – optional description.
//  MinPlayers  – smallest field the template suits.
//  MaxPlayers  – largest field the template suits (nullable = open).
//  Structure   – ordered (position, percentage) lines, stored as JSON.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type PayoutTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	MinPlayers  int          `json:"min_players"`
	MaxPlayers  *int         `json:"max_players,omitempty"`
	Structure   []PayoutLine `json:"payout_structure"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PayoutPosition is one line of a computed tournament payout snapshot.
type PayoutPosition struct {
	Position    int     `json:"position"`
	Percentage  float64 `json:"percentage"`
	AmountCents int64   `json:"amount_cents"`
}

// TournamentPayout is the cached payout snapshot for a tournament. It
// is derived from the entry ledger and a template and is safe to
// recompute at any time; it is never a source of truth.
//
// Fields:
//  ID                  – primary key identifier (UUID).
//  TournamentID        – owning tournament (unique).
//  TemplateID          – template used, if any (nullable).
//  PlayerCount         – number of players the snapshot was computed for.
//  TotalPrizePoolCents – prize pool at computation time.
//  Positions           – computed per-position amounts, stored as JSON.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type TournamentPayout struct {
	ID                  string           `json:"id"`
	TournamentID        string           `json:"tournament_id"`
	TemplateID          *string          `json:"template_id,omitempty"`
	PlayerCount         int              `json:"player_count"`
	TotalPrizePoolCents int64            `json:"total_prize_pool_cents"`
	Positions           []PayoutPosition `json:"payout_positions"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// DealType identifies how a player-negotiated deal splits the
// remaining prize money.
type DealType string

const (
	DealEvenSplit DealType = "even_split"
	DealICM       DealType = "icm"
	DealCustom    DealType = "custom"
)

// PlayerDeal records a deal negotiated between the remaining players.
// At most one deal is created per results entry and it is immutable
// afterwards.
//
// Fields:
//  ID                – primary key identifier (UUID).
//  TournamentID      – tournament the deal applies to.
//  DealType          – even_split, icm or custom.
//  AffectedPositions – final positions covered by the deal.
//  CustomPayouts     – user → cents map, only for custom deals.
//  TotalAmountCents  – total money covered by the deal.
//  Notes             – optional notes.
//  CreatedBy         – manager who recorded the deal.
//  CreatedAt         – creation timestamp.
type PlayerDeal struct {
	ID                string           `json:"id"`
	TournamentID      string           `json:"tournament_id"`
	DealType          DealType         `json:"deal_type"`
	AffectedPositions []int            `json:"affected_positions"`
	CustomPayouts     map[string]int64 `json:"custom_payouts,omitempty"`
	TotalAmountCents  int64            `json:"total_amount_cents"`
	Notes             *string          `json:"notes,omitempty"`
	CreatedBy         string           `json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
}

// TournamentResult is a player's final result in a tournament, written
// in bulk by the results-entry workflow.
//
// Fields:
//  ID            – primary key identifier (UUID).
//  TournamentID  – tournament.
//  UserID        – player.
//  FinalPosition – 1-based finishing position.
//  PrizeCents    – prize money awarded.
//  Points        – leaderboard points awarded.
//  Notes         – optional notes.
//  CreatedAt     – creation timestamp.
type TournamentResult struct {
	ID            string    `json:"id"`
	TournamentID  string    `json:"tournament_id"`
	UserID        string    `json:"user_id"`
	FinalPosition int       `json:"final_position"`
	PrizeCents    int64     `json:"prize_cents"`
	Points        int       `json:"points"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EntryType classifies a prize-pool ledger entry.
type EntryType string

const (
	EntryBuyIn EntryType = "buy_in"
	EntryRebuy EntryType = "rebuy"
	EntryAddOn EntryType = "addon"
)

// TournamentEntry is one row of the prize-pool ledger: a buy-in, rebuy
// or add-on paid by a player. The sum of AmountCents across a
// tournament's entries is its total prize pool.
//
// Fields:
//  ID            – primary key identifier (UUID).
//  TournamentID  – tournament.
//  UserID        – paying player.
//  EntryType     – buy_in, rebuy or addon.
//  AmountCents   – amount paid in cents.
//  ChipsReceived – chips granted for the entry (nullable).
//  RecordedBy    – manager who recorded the entry (nullable).
//  CreatedAt     – creation timestamp.
type TournamentEntry struct {
	ID            string    `json:"id"`
	TournamentID  string    `json:"tournament_id"`
	UserID        string    `json:"user_id"`
	EntryType     EntryType `json:"entry_type"`
	AmountCents   int64     `json:"amount_cents"`
	ChipsReceived *int      `json:"chips_received,omitempty"`
	RecordedBy    *string   `json:"recorded_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
