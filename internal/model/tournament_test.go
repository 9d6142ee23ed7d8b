package model

import "testing"

func TestLiveStatusValid(t *testing.T) {
	valid := []TournamentLiveStatus{
		LiveStatusNotStarted, LiveStatusRegistrationOpen, LiveStatusLateRegistration,
		LiveStatusInProgress, LiveStatusBreak, LiveStatusFinalTable, LiveStatusFinished,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Fatalf("%q reported invalid", s)
		}
	}
	for _, s := range []TournamentLiveStatus{"", "started", "REGISTRATION_OPEN"} {
		if s.Valid() {
			t.Fatalf("%q reported valid", s)
		}
	}
}

func TestAcceptsCheckIns(t *testing.T) {
	cases := map[TournamentLiveStatus]bool{
		LiveStatusNotStarted:       false,
		LiveStatusRegistrationOpen: true,
		LiveStatusLateRegistration: true,
		LiveStatusInProgress:       true,
		LiveStatusBreak:            false,
		LiveStatusFinalTable:       false,
		LiveStatusFinished:         false,
	}
	for s, want := range cases {
		if got := s.AcceptsCheckIns(); got != want {
			t.Fatalf("%q accepts check-ins = %v, want %v", s, got, want)
		}
	}
}

func TestDerivedStatus(t *testing.T) {
	cases := map[TournamentLiveStatus]TournamentStatus{
		LiveStatusNotStarted:       StatusUpcoming,
		LiveStatusRegistrationOpen: StatusUpcoming,
		LiveStatusLateRegistration: StatusInProgress,
		LiveStatusInProgress:       StatusInProgress,
		LiveStatusBreak:            StatusInProgress,
		LiveStatusFinalTable:       StatusInProgress,
		LiveStatusFinished:         StatusCompleted,
	}
	for live, want := range cases {
		tr := &Tournament{LiveStatus: live}
		if got := tr.Status(); got != want {
			t.Fatalf("Status(%q) = %q, want %q", live, got, want)
		}
	}
}
