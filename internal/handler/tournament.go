package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/service"
)

// TournamentHandler serves tournament lifecycle endpoints.
type TournamentHandler struct {
	Tournaments *service.TournamentService
	Clubs       *repository.ClubRepo
}

func NewTournamentHandler(t *service.TournamentService, clubs *repository.ClubRepo) *TournamentHandler {
	return &TournamentHandler{Tournaments: t, Clubs: clubs}
}

type createTournamentReq struct {
	ClubID              string    `json:"club_id"`
	Name                string    `json:"name"`
	Description         *string   `json:"description"`
	StartTime           time.Time `json:"start_time"`
	BuyInCents          int64     `json:"buy_in_cents"`
	SeatCap             *int      `json:"seat_cap"`
	EarlyBirdBonusChips *int      `json:"early_bird_bonus_chips"`
}

// tournamentResp adds the derived coarse status to the stored fields.
type tournamentResp struct {
	*model.Tournament
	Status model.TournamentStatus `json:"status"`
}

func toTournamentResp(t *model.Tournament) tournamentResp {
	return tournamentResp{Tournament: t, Status: t.Status()}
}

// Create handles POST /v1/tournaments. Caller must manage the club.
func (h *TournamentHandler) Create(c echo.Context) error {
	var req createTournamentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ClubID == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "club_id and name required"})
	}

	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if currentRole(c) != "admin" {
		manages, err := h.Clubs.IsActiveManager(c.Request().Context(), req.ClubID, uid)
		if err != nil {
			return respondError(c, err)
		}
		if !manages {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a manager of this club"})
		}
	}

	t := &model.Tournament{
		ID:                  uuid.NewString(),
		ClubID:              req.ClubID,
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		StartTime:           req.StartTime,
		BuyInCents:          req.BuyInCents,
		SeatCap:             req.SeatCap,
		EarlyBirdBonusChips: req.EarlyBirdBonusChips,
	}
	if err := h.Tournaments.Create(c.Request().Context(), t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toTournamentResp(t))
}

// Get handles GET /v1/tournaments/:id.
func (h *TournamentHandler) Get(c echo.Context) error {
	t, err := h.Tournaments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTournamentResp(t))
}

// ListByClub handles GET /v1/clubs/:id/tournaments.
func (h *TournamentHandler) ListByClub(c echo.Context) error {
	list, err := h.Tournaments.ListByClub(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]tournamentResp, 0, len(list))
	for i := range list {
		out = append(out, toTournamentResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus handles PUT /v1/tournaments/:id/status.
func (h *TournamentHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")
	uid, ok := requireTournamentManager(c, h.Clubs, id)
	if !ok {
		return nil
	}
	var body struct {
		LiveStatus model.TournamentLiveStatus `json:"live_status"`
	}
	if err := c.Bind(&body); err != nil || body.LiveStatus == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "live_status required"})
	}
	t, err := h.Tournaments.UpdateLiveStatus(c.Request().Context(), id, body.LiveStatus, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTournamentResp(t))
}

type structureLevelReq struct {
	LevelNumber          int  `json:"level_number"`
	SmallBlind           int  `json:"small_blind"`
	BigBlind             int  `json:"big_blind"`
	Ante                 int  `json:"ante"`
	DurationMinutes      int  `json:"duration_minutes"`
	IsBreak              bool `json:"is_break"`
	BreakDurationMinutes *int `json:"break_duration_minutes"`
}

// SetStructure handles PUT /v1/tournaments/:id/structure, replacing the
// whole blind schedule.
func (h *TournamentHandler) SetStructure(c echo.Context) error {
	id := c.Param("id")
	if _, ok := requireTournamentManager(c, h.Clubs, id); !ok {
		return nil
	}
	var body struct {
		Levels []structureLevelReq `json:"levels"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	levels := make([]model.TournamentStructure, 0, len(body.Levels))
	for _, l := range body.Levels {
		levels = append(levels, model.TournamentStructure{
			TournamentID:         id,
			LevelNumber:          l.LevelNumber,
			SmallBlind:           l.SmallBlind,
			BigBlind:             l.BigBlind,
			Ante:                 l.Ante,
			DurationMinutes:      l.DurationMinutes,
			IsBreak:              l.IsBreak,
			BreakDurationMinutes: l.BreakDurationMinutes,
		})
	}
	stored, err := h.Tournaments.SetStructure(c.Request().Context(), id, levels)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stored)
}

// Structure handles GET /v1/tournaments/:id/structure.
func (h *TournamentHandler) Structure(c echo.Context) error {
	levels, err := h.Tournaments.Structure(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, levels)
}
