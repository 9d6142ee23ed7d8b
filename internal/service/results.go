package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/payout"
	"github.com/brunomoyse/pp-service/internal/queue"
	"github.com/brunomoyse/pp-service/internal/repository"
)

// payoutCacheTTL bounds how long a cached payout snapshot is served
// before being recomputed from the ledger.
const payoutCacheTTL = 30 * time.Second

// ErrInvalid marks request validation failures so the HTTP layer can
// distinguish them from internal errors. Wrap with %w.
var ErrInvalid = errors.New("invalid input")

// ErrNoTemplateFits is returned when payouts are requested without an
// explicit template and no stored template covers the field size.
var ErrNoTemplateFits = errors.New("no payout template fits this player count")

// ErrNoEntries is returned when payouts are requested for a tournament
// with an empty money ledger.
var ErrNoEntries = errors.New("tournament has no entries")

// ResultsService owns the money side: the entry ledger, payout
// computation and the final results workflow. A computed payout
// snapshot is pure derived data; it is cached in Redis briefly and
// persisted for the record, but the ledger remains the only source of
// truth for the pool.
type ResultsService struct {
	db        *sql.DB
	entries   *repository.EntryRepo
	payouts   *repository.PayoutRepo
	templates *repository.PayoutTemplateRepo
	results   *repository.ResultRepo
	trnmts    *repository.TournamentRepo
	rdb       *redis.Client
	pub       *queue.Publisher
	log       *zap.Logger
}

// NewResultsService constructs a ResultsService. rdb may be nil, in
// which case snapshot caching is disabled and every read recomputes.
func NewResultsService(db *sql.DB, entries *repository.EntryRepo, payouts *repository.PayoutRepo, templates *repository.PayoutTemplateRepo, results *repository.ResultRepo, trnmts *repository.TournamentRepo, rdb *redis.Client, pub *queue.Publisher, log *zap.Logger) *ResultsService {
	return &ResultsService{db: db, entries: entries, payouts: payouts, templates: templates, results: results, trnmts: trnmts, rdb: rdb, pub: pub, log: log}
}

// RecordEntry appends a buy-in, rebuy or add-on to the ledger and
// invalidates the cached payout snapshot, since the pool just changed.
func (s *ResultsService) RecordEntry(ctx context.Context, e *model.TournamentEntry) error {
	switch e.EntryType {
	case model.EntryBuyIn, model.EntryRebuy, model.EntryAddOn:
	default:
		return fmt.Errorf("unknown entry type %q: %w", e.EntryType, ErrInvalid)
	}
	if e.AmountCents < 0 {
		return fmt.Errorf("entry amount must not be negative: %w", ErrInvalid)
	}
	if _, err := s.trnmts.GetByID(ctx, e.TournamentID); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return err
	}
	s.invalidateCache(ctx, e.TournamentID)
	return nil
}

// Entries returns the tournament's ledger with its running total.
func (s *ResultsService) Entries(ctx context.Context, tournamentID string) ([]model.TournamentEntry, int64, error) {
	entries, err := s.entries.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.AmountCents
	}
	return entries, total, nil
}

// ComputePayouts derives the payout snapshot from the current ledger.
// When templateID is nil the narrowest stored template covering the
// field size is used. The template's structure is validated here, at
// use, not just at creation. The snapshot is persisted (upsert) and
// cached.
func (s *ResultsService) ComputePayouts(ctx context.Context, tournamentID string, templateID *string) (*model.TournamentPayout, error) {
	if _, err := s.trnmts.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	pool, err := s.entries.PrizePool(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := s.entries.CountDistinctPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if players == 0 {
		return nil, ErrNoEntries
	}

	var tmpl *model.PayoutTemplate
	if templateID != nil {
		tmpl, err = s.templates.GetByID(ctx, *templateID)
		if err != nil {
			return nil, err
		}
	} else {
		candidates, err := s.templates.ListForPlayerCount(ctx, players)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, ErrNoTemplateFits
		}
		tmpl = &candidates[0]
	}
	if err := payout.ValidateStructure(tmpl.Structure); err != nil {
		return nil, err
	}

	snapshot := &model.TournamentPayout{
		ID:                  uuid.NewString(),
		TournamentID:        tournamentID,
		TemplateID:          &tmpl.ID,
		PlayerCount:         players,
		TotalPrizePoolCents: pool,
		Positions:           payout.Compute(pool, tmpl.Structure),
	}
	if err := s.payouts.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, snapshot)
	return snapshot, nil
}

// Payouts returns the current payout snapshot, serving the Redis copy
// when fresh and falling back to the persisted one.
func (s *ResultsService) Payouts(ctx context.Context, tournamentID string) (*model.TournamentPayout, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, payoutCacheKey(tournamentID)).Bytes()
		if err == nil {
			var p model.TournamentPayout
			if json.Unmarshal(raw, &p) == nil {
				return &p, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("payout cache read failed", zap.Error(err))
		}
	}
	p, err := s.payouts.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, p)
	return p, nil
}

// ResultEntry is one player's final result as submitted by the
// operator. PrizeCents overrides the computed amount when set;
// otherwise the snapshot (and any deal) decides.
type ResultEntry struct {
	UserID        string  `json:"user_id"`
	FinalPosition int     `json:"final_position"`
	PrizeCents    *int64  `json:"prize_cents,omitempty"`
	Points        int     `json:"points"`
	Notes         *string `json:"notes,omitempty"`
}

// DealRequest describes a deal negotiated among the remaining players.
type DealRequest struct {
	DealType          model.DealType   `json:"deal_type"`
	AffectedPositions []int            `json:"affected_positions"`
	CustomPayouts     map[string]int64 `json:"custom_payouts,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
}

// EnterResults records a tournament's final standings in one
// transaction: prizes are resolved from the payout snapshot and any
// deal, the results set replaces whatever was there, the deal is
// persisted, and the tournament is finished. Positions must be unique
// and start at 1.
func (s *ResultsService) EnterResults(ctx context.Context, tournamentID string, entries []ResultEntry, deal *DealRequest, actorID string) ([]model.TournamentResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("results are empty: %w", ErrInvalid)
	}
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.FinalPosition < 1 {
			return nil, fmt.Errorf("final position %d is invalid: %w", e.FinalPosition, ErrInvalid)
		}
		if seen[e.FinalPosition] {
			return nil, fmt.Errorf("final position %d appears twice: %w", e.FinalPosition, ErrInvalid)
		}
		seen[e.FinalPosition] = true
	}

	snapshot, err := s.payouts.Get(ctx, tournamentID)
	if err != nil && err != repository.ErrPayoutNotFound {
		return nil, err
	}
	pool, err := s.entries.PrizePool(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var positions []model.PayoutPosition
	if snapshot != nil {
		positions = snapshot.Positions
	}
	dealAmounts, err := resolveDeal(deal, entries, pool, positions)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.trnmts.GetByIDTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	results := make([]model.TournamentResult, len(entries))
	for i, e := range entries {
		prize := payout.PrizeFor(positions, e.FinalPosition)
		if amount, ok := dealAmounts[e.FinalPosition]; ok {
			prize = amount
		}
		if deal != nil && deal.DealType == model.DealCustom {
			if amount, ok := deal.CustomPayouts[e.UserID]; ok {
				prize = amount
			}
		}
		if e.PrizeCents != nil {
			prize = *e.PrizeCents
		}
		results[i] = model.TournamentResult{
			ID:            uuid.NewString(),
			TournamentID:  tournamentID,
			UserID:        e.UserID,
			FinalPosition: e.FinalPosition,
			PrizeCents:    prize,
			Points:        e.Points,
			Notes:         e.Notes,
		}
	}
	if err := s.results.ReplaceTx(ctx, tx, tournamentID, results); err != nil {
		return nil, err
	}
	if deal != nil {
		var total int64
		for _, p := range deal.AffectedPositions {
			if amount, ok := dealAmounts[p]; ok {
				total += amount
			}
		}
		if deal.DealType == model.DealCustom {
			total = 0
			for _, amount := range deal.CustomPayouts {
				total += amount
			}
		}
		if err := s.payouts.CreateDealTx(ctx, tx, &model.PlayerDeal{
			ID:                uuid.NewString(),
			TournamentID:      tournamentID,
			DealType:          deal.DealType,
			AffectedPositions: deal.AffectedPositions,
			CustomPayouts:     deal.CustomPayouts,
			TotalAmountCents:  total,
			Notes:             deal.Notes,
			CreatedBy:         actorID,
		}); err != nil {
			return nil, err
		}
	}
	if t.LiveStatus != model.LiveStatusFinished {
		if err := s.trnmts.ForceLiveStatusTx(ctx, tx, tournamentID, model.LiveStatusFinished); err != nil {
			return nil, err
		}
		if err := s.trnmts.SetEndTimeTx(ctx, tx, tournamentID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	now := time.Now().UTC().Format(time.RFC3339)
	ev := queue.ResultsEnteredEvent{
		TournamentID:   tournamentID,
		PlayerCount:    len(entries),
		PrizePoolCents: pool,
		EnteredAt:      now,
	}
	if deal != nil {
		ev.DealType = string(deal.DealType)
	}
	_ = s.pub.ResultsEntered(ctx, ev)
	_ = s.pub.TournamentFinished(ctx, queue.TournamentFinishedEvent{
		TournamentID: tournamentID,
		Reason:       "results entered",
		FinishedAt:   now,
	})
	return results, nil
}

// resolveDeal turns a deal request into per-position amounts. Custom
// deals are validated against the submitted results (every custom
// payout must name a listed player); split deals must name at least
// two positions.
func resolveDeal(deal *DealRequest, entries []ResultEntry, pool int64, positions []model.PayoutPosition) (map[int]int64, error) {
	if deal == nil {
		return map[int]int64{}, nil
	}
	switch deal.DealType {
	case model.DealEvenSplit, model.DealICM:
		if len(deal.AffectedPositions) < 2 {
			return nil, fmt.Errorf("a %s deal needs at least two positions: %w", deal.DealType, ErrInvalid)
		}
		return payout.DealAmounts(deal.DealType, pool, positions, deal.AffectedPositions), nil
	case model.DealCustom:
		if len(deal.CustomPayouts) == 0 {
			return nil, fmt.Errorf("a custom deal needs custom payouts: %w", ErrInvalid)
		}
		listed := make(map[string]bool, len(entries))
		for _, e := range entries {
			listed[e.UserID] = true
		}
		for userID := range deal.CustomPayouts {
			if !listed[userID] {
				return nil, fmt.Errorf("custom payout for user %s who is not in the results: %w", userID, ErrInvalid)
			}
		}
		return map[int]int64{}, nil
	default:
		return nil, fmt.Errorf("unknown deal type %q: %w", deal.DealType, ErrInvalid)
	}
}

// Standings returns the recorded final standings with player names.
func (s *ResultsService) Standings(ctx context.Context, tournamentID string) ([]repository.ResultDetail, error) {
	return s.results.ListByTournament(ctx, tournamentID)
}

// Deal returns the recorded deal for a tournament, nil when none.
func (s *ResultsService) Deal(ctx context.Context, tournamentID string) (*model.PlayerDeal, error) {
	return s.payouts.GetDeal(ctx, tournamentID)
}

func payoutCacheKey(tournamentID string) string { return "payout:" + tournamentID }

func (s *ResultsService) cacheSnapshot(ctx context.Context, p *model.TournamentPayout) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, payoutCacheKey(p.TournamentID), raw, payoutCacheTTL).Err(); err != nil {
		s.log.Warn("payout cache write failed", zap.Error(err))
	}
}

func (s *ResultsService) invalidateCache(ctx context.Context, tournamentID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, payoutCacheKey(tournamentID)).Err(); err != nil {
		s.log.Warn("payout cache invalidate failed", zap.Error(err))
	}
}
