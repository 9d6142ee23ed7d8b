package service

import (
	"errors"
	"testing"

	"github.com/brunomoyse/pp-service/internal/model"
)

func TestResolveDealNilRequest(t *testing.T) {
	got, err := resolveDeal(nil, nil, 10000, nil)
	if err != nil {
		t.Fatalf("resolveDeal(nil): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("no deal produced amounts: %v", got)
	}
}

func TestResolveDealEvenSplit(t *testing.T) {
	deal := &DealRequest{DealType: model.DealEvenSplit, AffectedPositions: []int{1, 2}}
	positions := []model.PayoutPosition{
		{Position: 1, AmountCents: 6000},
		{Position: 2, AmountCents: 4000},
	}
	got, err := resolveDeal(deal, nil, 10000, positions)
	if err != nil {
		t.Fatalf("resolveDeal: %v", err)
	}
	if got[1] != 5000 || got[2] != 5000 {
		t.Fatalf("even split amounts: %v", got)
	}
}

func TestResolveDealNeedsTwoPositions(t *testing.T) {
	deal := &DealRequest{DealType: model.DealEvenSplit, AffectedPositions: []int{1}}
	if _, err := resolveDeal(deal, nil, 10000, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("one-position deal: err = %v, want ErrInvalid", err)
	}
}

func TestResolveDealCustomValidatesPlayers(t *testing.T) {
	entries := []ResultEntry{
		{UserID: "u1", FinalPosition: 1},
		{UserID: "u2", FinalPosition: 2},
	}
	deal := &DealRequest{
		DealType:      model.DealCustom,
		CustomPayouts: map[string]int64{"u1": 6000, "u2": 4000},
	}
	got, err := resolveDeal(deal, entries, 10000, nil)
	if err != nil {
		t.Fatalf("resolveDeal: %v", err)
	}
	// Custom amounts attach per player when the results are written, not
	// per position here.
	if len(got) != 0 {
		t.Fatalf("custom deal produced position amounts: %v", got)
	}

	deal.CustomPayouts["ghost"] = 100
	if _, err := resolveDeal(deal, entries, 10000, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("unlisted player: err = %v, want ErrInvalid", err)
	}
}

func TestResolveDealCustomNeedsPayouts(t *testing.T) {
	deal := &DealRequest{DealType: model.DealCustom}
	if _, err := resolveDeal(deal, nil, 10000, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty custom deal: err = %v, want ErrInvalid", err)
	}
}

func TestResolveDealUnknownType(t *testing.T) {
	deal := &DealRequest{DealType: "chop", AffectedPositions: []int{1, 2}}
	if _, err := resolveDeal(deal, nil, 10000, nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("unknown deal type: err = %v, want ErrInvalid", err)
	}
}
