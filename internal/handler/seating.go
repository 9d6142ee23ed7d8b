package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/service"
)

// SeatingHandler serves the floor: seat assignments, table activation and
// balancing.
type SeatingHandler struct {
	Seating *service.SeatingService
	Seats   *repository.SeatAssignmentRepo
	Clubs   *repository.ClubRepo
}

func NewSeatingHandler(s *service.SeatingService, seats *repository.SeatAssignmentRepo, clubs *repository.ClubRepo) *SeatingHandler {
	return &SeatingHandler{Seating: s, Seats: seats, Clubs: clubs}
}

// Floor handles GET /v1/tournaments/:id/floor: every active table with
// occupants and free seats.
func (h *SeatingHandler) Floor(c echo.Context) error {
	floor, err := h.Seating.Floor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, floor)
}

// AssignSeat handles POST /v1/tournaments/:id/seats. An existing current
// seat for the player is superseded, so this doubles as a manual move.
func (h *SeatingHandler) AssignSeat(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	var body struct {
		UserID      string  `json:"user_id"`
		ClubTableID string  `json:"club_table_id"`
		SeatNumber  int     `json:"seat_number"`
		StackSize   *int    `json:"stack_size"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.UserID == "" || body.ClubTableID == "" || body.SeatNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id, club_table_id and a positive seat_number required"})
	}
	a, err := h.Seating.AssignSeat(c.Request().Context(), tournamentID, body.UserID, body.ClubTableID, body.SeatNumber, body.StackSize, &actorID, body.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// Unassign handles DELETE /v1/tournaments/:id/seats/:assignmentID.
func (h *SeatingHandler) Unassign(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	if err := h.Seating.Unassign(c.Request().Context(), c.Param("assignmentID")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStack handles PUT /v1/tournaments/:id/stacks: a chip count update
// on the player's current seat.
func (h *SeatingHandler) UpdateStack(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		UserID    string `json:"user_id"`
		StackSize int    `json:"stack_size"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	if body.StackSize < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stack_size must not be negative"})
	}
	a, err := h.Seating.UpdateStack(c.Request().Context(), tournamentID, body.UserID, body.StackSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Balance handles POST /v1/tournaments/:id/balance: plan and execute table
// balancing moves in one transaction.
func (h *SeatingHandler) Balance(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	result, err := h.Seating.BalanceTables(c.Request().Context(), tournamentID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AssignTable handles POST /v1/tournaments/:id/tables: bring a club table
// into the tournament, optionally with a seat cap override.
func (h *SeatingHandler) AssignTable(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		ClubTableID      string `json:"club_table_id"`
		MaxSeatsOverride *int   `json:"max_seats_override"`
	}
	if err := c.Bind(&body); err != nil || body.ClubTableID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "club_table_id required"})
	}
	a, err := h.Seating.AssignTable(c.Request().Context(), tournamentID, body.ClubTableID, body.MaxSeatsOverride)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// UnassignTable handles DELETE /v1/tournaments/:id/tables/:tableID. Fails
// while players still sit at the table.
func (h *SeatingHandler) UnassignTable(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	if err := h.Seating.UnassignTable(c.Request().Context(), tournamentID, c.Param("tableID")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unassigned handles GET /v1/tournaments/:id/unassigned: active players
// who hold no seat.
func (h *SeatingHandler) Unassigned(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	players, err := h.Seats.ListUnassignedPlayers(c.Request().Context(), tournamentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, players)
}

// History handles GET /v1/tournaments/:id/seats/history, newest first.
// Optional query filters: user_id, table_id, current (true/false), from
// and to (RFC 3339, half-open range) and limit.
func (h *SeatingHandler) History(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var f repository.HistoryFilter
	if s := c.QueryParam("user_id"); s != "" {
		f.UserID = &s
	}
	if s := c.QueryParam("table_id"); s != "" {
		f.ClubTableID = &s
	}
	if s := c.QueryParam("current"); s != "" {
		cur, err := strconv.ParseBool(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "current must be true or false"})
		}
		f.Current = &cur
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be an RFC 3339 timestamp"})
		}
		f.From = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be an RFC 3339 timestamp"})
		}
		f.To = &t
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
		f.Limit = n
	}
	history, err := h.Seats.ListHistory(c.Request().Context(), tournamentID, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}
