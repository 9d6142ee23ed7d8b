package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brunomoyse/pp-service/internal/payout"
	"github.com/brunomoyse/pp-service/internal/repository"
	"github.com/brunomoyse/pp-service/internal/service"
)

// currentUserID returns the authenticated user's id as stored in context by
// the JWT middleware.
func currentUserID(c echo.Context) (string, bool) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, true
	}
	return "", false
}

func currentRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// requireTournamentManager authorizes a mutation on a tournament: the caller
// must be an admin or an active manager of the tournament's club. When ok is
// false the response has already been written.
func requireTournamentManager(c echo.Context, clubs *repository.ClubRepo, tournamentID string) (uid string, ok bool) {
	uid, authed := currentUserID(c)
	if !authed {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return "", false
	}
	if currentRole(c) == "admin" {
		return uid, true
	}
	manages, err := clubs.ManagesTournament(c.Request().Context(), tournamentID, uid)
	if err != nil {
		_ = respondError(c, err)
		return "", false
	}
	if !manages {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not a manager of this tournament's club"})
		return "", false
	}
	return uid, true
}

// respondError translates repository and service errors into HTTP responses.
// Unknown errors become 500 without leaking detail.
func respondError(c echo.Context, err error) error {
	var ste *repository.StatusTransitionError
	var cse *service.ClockStateError
	var strucErr *payout.StructureError

	switch {
	case errors.Is(err, repository.ErrTournamentNotFound),
		errors.Is(err, repository.ErrRegistrationNotFound),
		errors.Is(err, repository.ErrTableNotFound),
		errors.Is(err, repository.ErrAssignmentNotFound),
		errors.Is(err, repository.ErrClockNotFound),
		errors.Is(err, repository.ErrStructureNotFound),
		errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrPayoutNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSeatOccupied),
		errors.Is(err, repository.ErrAlreadySeated),
		errors.Is(err, repository.ErrAlreadyRegistered),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrClockExists),
		errors.Is(err, repository.ErrNotCurrent),
		errors.Is(err, repository.ErrAlreadyAtFirstLevel),
		errors.Is(err, repository.ErrLevelChanged),
		errors.Is(err, repository.ErrTableHasSeatedPlayers):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &ste), errors.As(err, &cse):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &strucErr),
		errors.Is(err, service.ErrInvalid),
		errors.Is(err, service.ErrNoTemplateFits),
		errors.Is(err, service.ErrNoEntries):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrRefreshInvalid):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
