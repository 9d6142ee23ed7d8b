package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/model"
	"github.com/brunomoyse/pp-service/internal/repository"
)

// ClubHandler serves club administration: clubs, their physical tables and
// manager grants.
type ClubHandler struct {
	Clubs  *repository.ClubRepo
	Tables *repository.ClubTableRepo
}

func NewClubHandler(clubs *repository.ClubRepo, tables *repository.ClubTableRepo) *ClubHandler {
	return &ClubHandler{Clubs: clubs, Tables: tables}
}

// CreateClub handles POST /v1/clubs. Admin only (enforced by the router).
func (h *ClubHandler) CreateClub(c echo.Context) error {
	var body struct {
		Name    string  `json:"name"`
		City    *string `json:"city"`
		Country *string `json:"country"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	club := &model.Club{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(body.Name),
		City:    body.City,
		Country: body.Country,
	}
	if err := h.Clubs.Create(c.Request().Context(), club); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, club)
}

// GetClub handles GET /v1/clubs/:id.
func (h *ClubHandler) GetClub(c echo.Context) error {
	club, err := h.Clubs.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, club)
}

// AddManager handles POST /v1/clubs/:id/managers. Admin only.
func (h *ClubHandler) AddManager(c echo.Context) error {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	m := &model.ClubManager{
		ID:     uuid.NewString(),
		ClubID: c.Param("id"),
		UserID: body.UserID,
	}
	if err := h.Clubs.AddManager(c.Request().Context(), m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// CreateTable handles POST /v1/clubs/:id/tables. The table is a physical
// asset of the club, independent of any tournament.
func (h *ClubHandler) CreateTable(c echo.Context) error {
	clubID := c.Param("id")
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if currentRole(c) != "admin" {
		manages, err := h.Clubs.IsActiveManager(c.Request().Context(), clubID, uid)
		if err != nil {
			return respondError(c, err)
		}
		if !manages {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a manager of this club"})
		}
	}

	var body struct {
		TableNumber int `json:"table_number"`
		MaxSeats    int `json:"max_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.TableNumber <= 0 || body.MaxSeats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number and max_seats must be positive"})
	}
	t := &model.ClubTable{
		ID:          uuid.NewString(),
		ClubID:      clubID,
		TableNumber: body.TableNumber,
		MaxSeats:    body.MaxSeats,
	}
	if err := h.Tables.Create(c.Request().Context(), t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTables handles GET /v1/clubs/:id/tables.
func (h *ClubHandler) ListTables(c echo.Context) error {
	tables, err := h.Tables.ListByClub(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}
