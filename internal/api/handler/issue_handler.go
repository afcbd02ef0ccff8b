package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/civicdesk/issue-tracker/internal/api/metrics"
	"github.com/civicdesk/issue-tracker/internal/core/domain"
	"github.com/civicdesk/issue-tracker/internal/core/ports"
)

// IssueHandler handles HTTP requests for issue lifecycle operations.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// Create handles POST /v1/issues.
//
// @Summary      Report a new issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        body  body      createIssueRequest  true  "Issue details"
// @Success      201   {object}  createIssueResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	var req createIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.Create(c.Request().Context(), ports.CreateIssueInput{
		ReporterEmail: req.ReporterEmail,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		Priority:      req.Priority,
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			metrics.QuotaRejectionsTotal.Inc()
		}
		return err
	}

	metrics.IssuesCreatedTotal.WithLabelValues(req.Category).Inc()
	return c.JSON(http.StatusCreated, createIssueResponse{InsertedID: id})
}

// List handles GET /v1/issues.
//
// @Summary      List issues
// @Tags         issues
// @Produce      json
// @Param        page      query     int     false  "Page (1-based, default 1)"
// @Param        limit     query     int     false  "Page size (default 6)"
// @Param        category  query     string  false  "Exact category filter"
// @Param        status    query     string  false  "Exact status filter"
// @Param        priority  query     string  false  "Exact priority filter"
// @Param        search    query     string  false  "Substring search over title/location/category"
// @Success      200       {object}  listIssuesResponse
// @Router       /v1/issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	// Non-numeric paging input falls back to defaults rather than erroring.
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListIssuesInput{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /v1/issues/:id.
//
// @Summary      Get an issue by id
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  issueResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	issue, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIssueResponse(issue))
}

// Edit handles PUT /v1/issues/:id. Only pending issues may be edited.
//
// @Summary      Edit a pending issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Issue id"
// @Param        body  body      editIssueRequest  true  "Fields to patch"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/issues/{id} [put]
func (h *IssueHandler) Edit(c echo.Context) error {
	var req editIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.Edit(c.Request().Context(), c.Param("id"), ports.EditIssueInput{
		Patch:      toFieldPatch(req),
		ActorEmail: req.By,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Delete handles DELETE /v1/issues/:id. Only pending issues may be deleted.
//
// @Summary      Delete a pending issue
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue id"
// @Success      200  {object}  successResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Assign handles PATCH /v1/issues/assign/:id.
//
// @Summary      Assign an issue to a staff member
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Issue id"
// @Param        body  body      assignIssueRequest  true  "Staff snapshot"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/issues/assign/{id} [patch]
func (h *IssueHandler) Assign(c echo.Context) error {
	var req assignIssueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.Assign(c.Request().Context(), c.Param("id"), domain.StaffRef{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(domain.StatusInProgress)).Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// ChangeStatus handles PATCH /v1/issues/status/:id.
//
// @Summary      Apply a lifecycle transition
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Issue id"
// @Param        body  body      changeStatusRequest  true  "New status and actor"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/issues/status/{id} [patch]
func (h *IssueHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status, req.By); err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Upvote handles PATCH /v1/issues/upvote/:id.
//
// @Summary      Upvote an issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Issue id"
// @Param        body  body      upvoteRequest  true  "Voter"
// @Success      200   {object}  upvoteResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/issues/upvote/{id} [patch]
func (h *IssueHandler) Upvote(c echo.Context) error {
	var req upvoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := h.service.Upvote(c.Request().Context(), c.Param("id"), req.VoterEmail)
	if err != nil {
		metrics.VotesTotal.WithLabelValues(voteResult(err)).Inc()
		return err
	}

	metrics.VotesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, upvoteResponse{Success: true, NewCount: count})
}

func voteResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateVote):
		return "duplicate"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
