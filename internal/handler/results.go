package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/payout"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/service"
)

// ResultsHandler serves the money side: entries, payouts, deals and final
// results.
type ResultsHandler struct {
	Results   *service.ResultsService
	Templates *repository.PayoutTemplateRepo
	Clubs     *repository.ClubRepo
}

func NewResultsHandler(results *service.ResultsService, templates *repository.PayoutTemplateRepo, clubs *repository.ClubRepo) *ResultsHandler {
	return &ResultsHandler{Results: results, Templates: templates, Clubs: clubs}
}

// RecordEntry handles POST /v1/tournaments/:id/entries: a buy-in, rebuy or
// add-on into the money ledger.
func (h *ResultsHandler) RecordEntry(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	var body struct {
		UserID        string `json:"user_id"`
		EntryType     string `json:"entry_type"`
		AmountCents   int64  `json:"amount_cents"`
		ChipsReceived *int   `json:"chips_received"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	e := &model.TournamentEntry{
		TournamentID:  tournamentID,
		UserID:        body.UserID,
		EntryType:     model.EntryType(body.EntryType),
		AmountCents:   body.AmountCents,
		ChipsReceived: body.ChipsReceived,
		RecordedBy:    &actorID,
	}
	if err := h.Results.RecordEntry(c.Request().Context(), e); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// Entries handles GET /v1/tournaments/:id/entries: the ledger plus the
// running prize pool.
func (h *ResultsHandler) Entries(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	entries, pool, err := h.Results.Entries(c.Request().Context(), tournamentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"entries":          entries,
		"prize_pool_cents": pool,
	})
}

// ComputePayouts handles POST /v1/tournaments/:id/payouts: recompute the
// snapshot from the ledger, using an explicit or best-fit template.
func (h *ResultsHandler) ComputePayouts(c echo.Context) error {
	tournamentID := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, tournamentID); !ok {
		return nil
	}
	var body struct {
		TemplateID *string `json:"template_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	snapshot, err := h.Results.ComputePayouts(c.Request().Context(), tournamentID, body.TemplateID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// Payouts handles GET /v1/tournaments/:id/payouts.
func (h *ResultsHandler) Payouts(c echo.Context) error {
	snapshot, err := h.Results.Payouts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// EnterResults handles POST /v1/tournaments/:id/results: final standings,
// optionally with a deal. Replaces any previously entered results and
// finishes the tournament.
func (h *ResultsHandler) EnterResults(c echo.Context) error {
	tournamentID := c.Param("id")
	actorID, ok := requireTournamentManager(c, h.Clubs, tournamentID)
	if !ok {
		return nil
	}
	var body struct {
		Results []service.ResultEntry `json:"results"`
		Deal    *service.DealRequest  `json:"deal"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	results, err := h.Results.EnterResults(c.Request().Context(), tournamentID, body.Results, body.Deal, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, results)
}

// Standings handles GET /v1/tournaments/:id/results with player names,
// ordered by final position.
func (h *ResultsHandler) Standings(c echo.Context) error {
	standings, err := h.Results.Standings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, standings)
}

// Deal handles GET /v1/tournaments/:id/deal: the recorded deal, if any.
func (h *ResultsHandler) Deal(c echo.Context) error {
	deal, err := h.Results.Deal(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if deal == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no deal recorded"})
	}
	return c.JSON(http.StatusOK, deal)
}

type templateReq struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	MinPlayers  int                `json:"min_players"`
	MaxPlayers  *int               `json:"max_players"`
	Structure   []model.PayoutLine `json:"payout_structure"`
}

func (r *templateReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	if r.MinPlayers < 1 {
		return "min_players must be at least 1"
	}
	if r.MaxPlayers != nil && *r.MaxPlayers < r.MinPlayers {
		return "max_players must not be below min_players"
	}
	if err := payout.ValidateStructure(r.Structure); err != nil {
		return err.Error()
	}
	return ""
}

// CreateTemplate handles POST /v1/payout-templates. Admin only.
func (h *ResultsHandler) CreateTemplate(c echo.Context) error {
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := &model.PayoutTemplate{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		MinPlayers:  req.MinPlayers,
		MaxPlayers:  req.MaxPlayers,
		Structure:   req.Structure,
	}
	if err := h.Templates.Create(c.Request().Context(), t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTemplates handles GET /v1/payout-templates.
func (h *ResultsHandler) ListTemplates(c echo.Context) error {
	list, err := h.Templates.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetTemplate handles GET /v1/payout-templates/:id.
func (h *ResultsHandler) GetTemplate(c echo.Context) error {
	t, err := h.Templates.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTemplate handles PUT /v1/payout-templates/:id. Admin only.
func (h *ResultsHandler) UpdateTemplate(c echo.Context) error {
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := &model.PayoutTemplate{
		ID:          c.Param("id"),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		MinPlayers:  req.MinPlayers,
		MaxPlayers:  req.MaxPlayers,
		Structure:   req.Structure,
	}
	if err := h.Templates.Update(c.Request().Context(), t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTemplate handles DELETE /v1/payout-templates/:id. Admin only.
func (h *ResultsHandler) DeleteTemplate(c echo.Context) error {
	if err := h.Templates.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
