package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"capacity-planner/comparison"
	"capacity-planner/curve"
	apperrors "capacity-planner/errors"
	"capacity-planner/importer"
	"capacity-planner/workspace"

	"github.com/gin-gonic/gin"
)

// Handler serves the planning endpoints.
type Handler struct {
	ws      *workspace.Workspace
	client  *importer.Client
	syncURL string
	logger  *slog.Logger
}

// PoolUpdateRequest edits one pool. Only the fields present are applied, in
// the order name, demand (demand, or total with an optional curve), TPs,
// and either all of them are stored or none.
type PoolUpdateRequest struct {
	Name                *string   `json:"name"`
	Demand              []float64 `json:"demand"`
	Total               *float64  `json:"total"`
	Curve               string    `json:"curve"`
	TalentPartners      *float64  `json:"talent_partners"`
	UnpinTalentPartners bool      `json:"unpin_talent_partners"`
}

// ConfigUpdateRequest edits the global assumptions. Omitted fields keep
// their current values.
type ConfigUpdateRequest struct {
	HiringDuration    *int     `json:"hiring_duration"`
	RampUpWeeks       *int     `json:"ramp_up_weeks"`
	TPCapacityPerWeek *float64 `json:"tp_capacity_per_week"`
	PoolsPerSourcer   *float64 `json:"pools_per_sourcer"`
	TotalSourcers     *float64 `json:"total_sourcers"`
	UnpinSourcers     bool     `json:"unpin_sourcers"`
}

// SyncRequest optionally overrides the configured feed URL.
type SyncRequest struct {
	URL string `json:"url"`
}

// CurveQuery previews a generated demand curve.
type CurveQuery struct {
	Shape string  `form:"shape"`
	Weeks int     `form:"weeks" binding:"gte=0,lte=52"`
	Total float64 `form:"total" binding:"gte=0"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
}

// GetState returns configuration, pools and results.
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Snapshot()})
}

// GetResults returns per-pool and aggregate results.
func (h *Handler) GetResults(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Results()})
}

// AddPool appends a default pool.
func (h *Handler) AddPool(c *gin.Context) {
	pool := h.ws.AddPool()
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: pool})
}

// edits turns the request into workspace edits, applied together.
func (r PoolUpdateRequest) edits() ([]workspace.Edit, error) {
	var edits []workspace.Edit
	if r.Name != nil {
		edits = append(edits, workspace.Rename(*r.Name))
	}
	switch {
	case r.Demand != nil:
		edits = append(edits, workspace.ReplaceDemand(r.Demand))
	case r.Total != nil:
		shape, err := curve.ParseShape(r.Curve)
		if err != nil {
			return nil, err
		}
		edits = append(edits, workspace.ApplyCurve(shape, *r.Total))
	}
	if r.TalentPartners != nil {
		edits = append(edits, workspace.PinTalentPartners(*r.TalentPartners))
	} else if r.UnpinTalentPartners {
		edits = append(edits, workspace.ReleaseTalentPartners())
	}
	return edits, nil
}

// UpdatePool applies a PoolUpdateRequest. A rejected request changes
// nothing.
func (h *Handler) UpdatePool(c *gin.Context) {
	id := c.Param("id")
	var req PoolUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	edits, err := req.edits()
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.ws.UpdatePool(id, edits...); err != nil {
		h.failFor(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Snapshot()})
}

// DeletePool removes a pool.
func (h *Handler) DeletePool(c *gin.Context) {
	if err := h.ws.DeletePool(c.Param("id")); err != nil {
		h.failFor(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Snapshot()})
}

// UpdateConfig applies a ConfigUpdateRequest. Values are clamped into their
// editable ranges.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	if req.TotalSourcers != nil && *req.TotalSourcers < 0 {
		h.fail(c, http.StatusBadRequest, apperrors.ErrNegativeHeadcount)
		return
	}

	cfg := h.ws.Config()
	if req.HiringDuration != nil {
		cfg.HiringDuration = *req.HiringDuration
	}
	if req.RampUpWeeks != nil {
		cfg.RampUpWeeks = *req.RampUpWeeks
	}
	if req.TPCapacityPerWeek != nil {
		cfg.TPCapacityPerWeek = *req.TPCapacityPerWeek
	}
	if req.PoolsPerSourcer != nil {
		cfg.PoolsPerSourcer = *req.PoolsPerSourcer
	}
	h.ws.SetConfig(cfg)

	if req.TotalSourcers != nil {
		if err := h.ws.SetSourcers(*req.TotalSourcers); err != nil {
			h.failFor(c, err)
			return
		}
	} else if req.UnpinSourcers {
		h.ws.UnpinSourcers()
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Snapshot()})
}

// Sync replaces all pools with the external demand feed.
func (h *Handler) Sync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
			return
		}
	}
	url := req.URL
	if url == "" {
		url = h.syncURL
	}
	if url == "" {
		h.fail(c, http.StatusBadRequest, errors.New("no sync url configured"))
		return
	}

	pools, err := h.client.Sync(c.Request.Context(), h.ws, url)
	if err != nil {
		h.logger.Error("demand sync failed", "url", url, "error", err)
		h.failFor(c, err)
		return
	}
	h.logger.Info("demand synced", "url", url, "pools", len(pools))
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.ws.Snapshot()})
}

// Compare contrasts the current levers with target levers from the query.
// Missing target levers default to comparison.DefaultTarget.
func (h *Handler) Compare(c *gin.Context) {
	snap := h.ws.Snapshot()
	baseline := comparison.BaselineLevers(snap.Config)
	target := comparison.DefaultTarget(baseline)

	var query comparison.Levers
	if err := c.ShouldBindQuery(&query); err != nil {
		h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid query: %w", err))
		return
	}
	if query.TPCapacityPerWeek > 0 {
		target.TPCapacityPerWeek = query.TPCapacityPerWeek
	}
	if query.PoolsPerSourcer > 0 {
		target.PoolsPerSourcer = query.PoolsPerSourcer
	}

	c.JSON(http.StatusOK, APIResponse{Success: true, Data: comparison.FromResults(snap.Results, snap.Config, target)})
}

// Curve previews a generated demand curve without changing state. Weeks
// defaults to the current hiring duration.
func (h *Handler) Curve(c *gin.Context) {
	var query CurveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.fail(c, http.StatusBadRequest, fmt.Errorf("invalid query: %w", err))
		return
	}
	shape, err := curve.ParseShape(query.Shape)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	weeks := query.Weeks
	if weeks == 0 {
		weeks = h.ws.Config().HiringDuration
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: curve.Generate(shape, weeks, query.Total)})
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

// failFor maps domain errors to HTTP statuses.
func (h *Handler) failFor(c *gin.Context, err error) {
	var syncErr *importer.SyncError
	switch {
	case errors.Is(err, apperrors.ErrPoolNotFound):
		h.fail(c, http.StatusNotFound, err)
	case errors.As(err, &syncErr):
		if syncErr.Kind == importer.KindPayload {
			h.fail(c, http.StatusUnprocessableEntity, err)
		} else {
			h.fail(c, http.StatusBadGateway, err)
		}
	case errors.Is(err, apperrors.ErrInvalidDemand),
		errors.Is(err, apperrors.ErrNegativeHeadcount),
		errors.Is(err, apperrors.ErrDuplicatePool):
		h.fail(c, http.StatusBadRequest, err)
	default:
		h.fail(c, http.StatusInternalServerError, err)
	}
}
