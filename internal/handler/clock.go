package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/service"
)

// ClockHandler serves the tournament clock state machine.
type ClockHandler struct {
	Clocks *service.ClockService
	Clubs  *repository.ClubRepo
}

func NewClockHandler(clocks *service.ClockService, clubs *repository.ClubRepo) *ClockHandler {
	return &ClockHandler{Clocks: clocks, Clubs: clubs}
}

// Create handles POST /v1/tournaments/:id/clock.
func (h *ClockHandler) Create(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		AutoAdvance bool `json:"auto_advance"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	clock, err := h.Clocks.CreateClock(c.Request().Context(), tournamentID, body.AutoAdvance)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, clock)
}

// State handles GET /v1/tournaments/:id/clock: the clock plus the current
// blind level and derived remaining time.
func (h *ClockHandler) State(c echo.Context) error {
	state, err := h.Clocks.State(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// clockAction wraps the operator transitions that share a shape.
func (h *ClockHandler) clockAction(c echo.Context, action func(actorID *string) error) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	if err := action(&actorID); err != nil {
		return respondError(c, err)
	}
	state, err := h.Clocks.State(c.Request().Context(), tournamentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// Start handles POST /v1/tournaments/:id/clock/start.
func (h *ClockHandler) Start(c echo.Context) error {
	return h.clockAction(c, func(actorID *string) error {
		_, err := h.Clocks.Start(c.Request().Context(), c.Param("id"), actorID)
		return err
	})
}

// Pause handles POST /v1/tournaments/:id/clock/pause.
func (h *ClockHandler) Pause(c echo.Context) error {
	return h.clockAction(c, func(actorID *string) error {
		_, err := h.Clocks.Pause(c.Request().Context(), c.Param("id"), actorID)
		return err
	})
}

// Resume handles POST /v1/tournaments/:id/clock/resume.
func (h *ClockHandler) Resume(c echo.Context) error {
	return h.clockAction(c, func(actorID *string) error {
		_, err := h.Clocks.Resume(c.Request().Context(), c.Param("id"), actorID)
		return err
	})
}

// Advance handles POST /v1/tournaments/:id/clock/advance: manual move to
// the next level, or stop at the end of the schedule.
func (h *ClockHandler) Advance(c echo.Context) error {
	return h.clockAction(c, func(actorID *string) error {
		_, err := h.Clocks.AdvanceLevel(c.Request().Context(), c.Param("id"), actorID)
		return err
	})
}

// Revert handles POST /v1/tournaments/:id/clock/revert: manual move back
// one level, floored at level 1.
func (h *ClockHandler) Revert(c echo.Context) error {
	return h.clockAction(c, func(actorID *string) error {
		_, err := h.Clocks.RevertLevel(c.Request().Context(), c.Param("id"), actorID)
		return err
	})
}

// SetAutoAdvance handles PUT /v1/tournaments/:id/clock/auto-advance.
func (h *ClockHandler) SetAutoAdvance(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Clocks.SetAutoAdvance(c.Request().Context(), tournamentID, body.Enabled); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"auto_advance": body.Enabled})
}

// Events handles GET /v1/tournaments/:id/clock/events?limit=N, newest
// first.
func (h *ClockHandler) Events(c echo.Context) error {
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	events, err := h.Clocks.Events(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
