package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/seating"
	"github.com/brunomoyse/pp-service/internal/service"
)

// RegistrationHandler serves the player arrival workflow: registration,
// check-in, cancellation, no-shows and eliminations.
type RegistrationHandler struct {
	CheckIns *service.CheckInService
	Regs     *repository.RegistrationRepo
	Clubs    *repository.ClubRepo
}

func NewRegistrationHandler(ci *service.CheckInService, regs *repository.RegistrationRepo, clubs *repository.ClubRepo) *RegistrationHandler {
	return &RegistrationHandler{CheckIns: ci, Regs: regs, Clubs: clubs}
}

// targetUserID resolves who a workflow action applies to: the body's user_id
// when the caller manages the tournament, otherwise the caller themselves.
func (h *RegistrationHandler) targetUserID(c echo.Context, tournamentID, bodyUserID string) (string, bool) {
	uid, ok := currentUserID(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return "", false
	}
	if bodyUserID == "" || bodyUserID == uid {
		return uid, true
	}
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return "", false
	}
	return bodyUserID, true
}

// Register handles POST /v1/tournaments/:id/registrations. Players register
// themselves; managers may register anyone.
func (h *RegistrationHandler) Register(c echo.Context) error {
	tournamentID := c.Param("id")
	var body struct {
		UserID string  `json:"user_id"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	userID, ok := h.targetUserID(c, tournamentID, body.UserID)
	if !ok {
		return nil
	}
	reg, err := h.CheckIns.Register(c.Request().Context(), tournamentID, userID, body.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// List handles GET /v1/tournaments/:id/registrations with an optional
// ?status= filter. Manager only.
func (h *RegistrationHandler) List(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var status *model.RegistrationStatus
	if s := c.QueryParam("status"); s != "" {
		st := model.RegistrationStatus(s)
		status = &st
	}
	regs, err := h.Regs.ListByTournament(c.Request().Context(), tournamentID, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, regs)
}

// CheckIn handles POST /v1/tournaments/:id/checkin. Manager only: check-in
// happens at the front desk.
func (h *RegistrationHandler) CheckIn(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	var body struct {
		UserID   string `json:"user_id"`
		Strategy string `json:"strategy"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	strategy, err := seating.ParseStrategy(body.Strategy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	result, err := h.CheckIns.CheckIn(c.Request().Context(), tournamentID, body.UserID, strategy, &actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SelfCheckIn handles POST /v1/tournaments/:id/self-checkin. The
// authenticated player announces their own arrival; an unregistered
// player is registered on the fly while registration is open.
func (h *RegistrationHandler) SelfCheckIn(c echo.Context) error {
	tournamentID := c.Param("id")
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	result, err := h.CheckIns.SelfCheckIn(c.Request().Context(), tournamentID, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Cancel handles DELETE /v1/tournaments/:id/registrations. A freed seat cap
// slot promotes the longest-waiting waitlisted player.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	tournamentID := c.Param("id")
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	userID, ok := h.targetUserID(c, tournamentID, body.UserID)
	if !ok {
		return nil
	}
	reg, err := h.CheckIns.Cancel(c.Request().Context(), tournamentID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// NoShow handles POST /v1/tournaments/:id/no-show. Manager only.
func (h *RegistrationHandler) NoShow(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	reg, err := h.CheckIns.MarkNoShow(c.Request().Context(), tournamentID, body.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}

// Eliminate handles POST /v1/tournaments/:id/eliminations: the player busts
// and their seat frees up. Manager only.
func (h *RegistrationHandler) Eliminate(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	reg, err := h.CheckIns.Eliminate(c.Request().Context(), tournamentID, body.UserID, &actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reg)
}
