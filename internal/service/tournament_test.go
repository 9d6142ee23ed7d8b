package service

import (
	"testing"

	"github.com/brunomoyse/pp-service/internal/model"
)

func TestTransitionAllowed(t *testing.T) {
	allowed := []struct {
		from, to model.TournamentLiveStatus
	}{
		{model.LiveStatusNotStarted, model.LiveStatusRegistrationOpen},
		{model.LiveStatusRegistrationOpen, model.LiveStatusLateRegistration},
		{model.LiveStatusRegistrationOpen, model.LiveStatusInProgress},
		{model.LiveStatusLateRegistration, model.LiveStatusInProgress},
		{model.LiveStatusInProgress, model.LiveStatusBreak},
		{model.LiveStatusInProgress, model.LiveStatusFinalTable},
		{model.LiveStatusInProgress, model.LiveStatusFinished},
		{model.LiveStatusBreak, model.LiveStatusInProgress},
		{model.LiveStatusBreak, model.LiveStatusFinalTable},
		{model.LiveStatusFinalTable, model.LiveStatusFinished},
	}
	for _, tc := range allowed {
		if !transitionAllowed(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to model.TournamentLiveStatus
	}{
		{model.LiveStatusNotStarted, model.LiveStatusInProgress},
		{model.LiveStatusRegistrationOpen, model.LiveStatusNotStarted},
		{model.LiveStatusBreak, model.LiveStatusFinished},
		{model.LiveStatusFinalTable, model.LiveStatusInProgress},
		{model.LiveStatusFinished, model.LiveStatusInProgress},
		{model.LiveStatusFinished, model.LiveStatusRegistrationOpen},
		{model.LiveStatusInProgress, model.LiveStatusInProgress},
	}
	for _, tc := range denied {
		if transitionAllowed(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestFinishedIsTerminal(t *testing.T) {
	all := []model.TournamentLiveStatus{
		model.LiveStatusNotStarted, model.LiveStatusRegistrationOpen,
		model.LiveStatusLateRegistration, model.LiveStatusInProgress,
		model.LiveStatusBreak, model.LiveStatusFinalTable, model.LiveStatusFinished,
	}
	for _, to := range all {
		if transitionAllowed(model.LiveStatusFinished, to) {
			t.Fatalf("finished -> %s should be rejected", to)
		}
	}
}
