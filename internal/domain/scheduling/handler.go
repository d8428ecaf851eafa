package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careops/careops/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/schedules", h.List)
	api.GET("/schedules/:id", h.Get)
	api.POST("/schedules", h.Create)
	api.PUT("/schedules/:id", h.Update)
	api.DELETE("/schedules/:id", h.Delete)
}

// httpError maps the domain error taxonomy onto HTTP statuses so UI layers
// can render "time slot unavailable" vs "missing field" vs "not found"
// distinctly.
func httpError(err error) *echo.HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Reason)
	}
	var cerr *ConflictError
	if errors.As(err, &cerr) {
		return echo.NewHTTPError(http.StatusConflict, cerr.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, h.svc.View(c.Request().Context(), a))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.svc.View(c.Request().Context(), a))
}

func (h *Handler) List(c echo.Context) error {
	agencyID, err := uuid.Parse(c.QueryParam("agency_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "agency_id query parameter is required")
	}
	f := Filter{AgencyID: agencyID}

	if v := c.QueryParam("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		f.ClientID = &id
	}
	if v := c.QueryParam("worker_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid worker_id")
		}
		f.WorkerID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		status := Status(v)
		if !IsValidStatus(status) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = &status
	}
	if v := c.QueryParam("category"); v != "" {
		category, ok := NormalizeCategory(v)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		f.Category = &category
	}
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from, expected YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to, expected YYYY-MM-DD")
		}
		f.DateTo = &t
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	views := h.svc.Views(c.Request().Context(), items)
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch UpdatePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.svc.View(c.Request().Context(), a))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
