// Package workspace owns the editable planning state: the ordered pool list
// and the global configuration.
//
// Every mutating action runs the same pipeline under one lock: apply the
// edit, recompute all results, then reconcile unpinned headcount fields
// until the suggestions stop changing. Readers always see converged state.
package workspace

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"capacity-planner/curve"
	"capacity-planner/engine"
	apperrors "capacity-planner/errors"
	"capacity-planner/metrics"
	"capacity-planner/models"
	"capacity-planner/reconciler"
)

// MaxReconcilePasses bounds the feedback loop unless overridden with
// WithMaxReconcilePasses.
const MaxReconcilePasses = 10

// Snapshot is a consistent copy of the state and its derived results.
type Snapshot struct {
	Config  models.GlobalConfig `json:"config"`
	Pools   []models.Scenario   `json:"pools"`
	Results engine.Results      `json:"results"`
}

// Workspace serialises state transitions. It is safe for concurrent use.
type Workspace struct {
	mu      sync.Mutex
	engine  *engine.Engine
	logger  *slog.Logger
	pools   *models.PoolSet
	config  models.GlobalConfig
	results engine.Results
	watched string

	maxPasses int
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithEngine sets the calculation engine.
func WithEngine(e *engine.Engine) Option {
	return func(w *Workspace) {
		if e != nil {
			w.engine = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMaxReconcilePasses bounds the reconcile loop at n passes.
func WithMaxReconcilePasses(n int) Option {
	return func(w *Workspace) {
		if n > 0 {
			w.maxPasses = n
		}
	}
}

// New creates a workspace from an initial configuration and pool list.
// The configuration is clamped into its editable ranges.
func New(cfg models.GlobalConfig, pools []models.Scenario, opts ...Option) (*Workspace, error) {
	set, err := models.NewPoolSet(pools...)
	if err != nil {
		return nil, err
	}
	for _, p := range pools {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.ID, err)
		}
	}
	w := &Workspace{
		engine: engine.New(),
		logger: slog.Default(),
		pools:  set,
		config: cfg.Clamp(),

		maxPasses: MaxReconcilePasses,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.refresh(true)
	return w, nil
}

// Snapshot returns the current state and results.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{Config: w.config, Pools: w.pools.List(), Results: w.results}
}

// Config returns the current configuration.
func (w *Workspace) Config() models.GlobalConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// Pools returns the current pools in order.
func (w *Workspace) Pools() []models.Scenario {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pools.List()
}

// Results returns the latest derived results.
func (w *Workspace) Results() engine.Results {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results
}

// AddPool appends a new pool named "Pool N" with one hire per week over
// the current hiring window, the next palette colour and no TPs.
func (w *Workspace) AddPool() models.Scenario {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.pools.NextID()
	s := models.Scenario{
		ID:             id,
		Name:           "Pool " + id,
		Demand:         curve.Generate(curve.Flat, w.config.HiringDuration, float64(w.config.HiringDuration)),
		Color:          models.ColorFor(w.pools.Len()),
		TalentPartners: models.Auto(0.0),
	}
	// NextID is unique by construction.
	_ = w.pools.Add(s)
	w.logger.Info("pool added", "pool_id", id)
	w.refresh(false)

	got, _ := w.pools.Get(id)
	return got
}

// Edit changes one pool. It sees the current configuration and rejects the
// change by returning an error.
type Edit func(s *models.Scenario, cfg models.GlobalConfig) error

// Rename sets a pool's display name.
func Rename(name string) Edit {
	return func(s *models.Scenario, _ models.GlobalConfig) error {
		s.Name = name
		return nil
	}
}

// SpreadTotal spreads a hiring target evenly over the current window.
func SpreadTotal(total float64) Edit {
	return ApplyCurve(curve.Flat, total)
}

// ApplyCurve replaces a pool's demand with a generated curve over the
// current window.
func ApplyCurve(shape curve.Shape, total float64) Edit {
	return func(s *models.Scenario, cfg models.GlobalConfig) error {
		if total < 0 || math.IsNaN(total) {
			return fmt.Errorf("%w: total %v", apperrors.ErrInvalidDemand, total)
		}
		s.Demand = curve.Generate(shape, cfg.HiringDuration, total)
		return nil
	}
}

// ReplaceDemand stores an explicit weekly demand curve.
func ReplaceDemand(demand []float64) Edit {
	return func(s *models.Scenario, _ models.GlobalConfig) error {
		for i, d := range demand {
			if d < 0 || math.IsNaN(d) {
				return fmt.Errorf("%w: week %d is %v", apperrors.ErrInvalidDemand, i+1, d)
			}
		}
		s.Demand = append([]float64(nil), demand...)
		return nil
	}
}

// PinTalentPartners fixes a pool's TP headcount to a user value.
func PinTalentPartners(tps float64) Edit {
	return func(s *models.Scenario, _ models.GlobalConfig) error {
		if tps < 0 || math.IsNaN(tps) {
			return apperrors.ErrNegativeHeadcount
		}
		s.TalentPartners = models.Manual(tps)
		return nil
	}
}

// ReleaseTalentPartners hands a pool's TP headcount back to the reconciler.
func ReleaseTalentPartners() Edit {
	return func(s *models.Scenario, _ models.GlobalConfig) error {
		s.TalentPartners.Source = models.SourceAuto
		return nil
	}
}

// UpdatePool applies edits in order to one pool. Either every edit is
// stored, followed by a single refresh, or the first error is returned and
// the pool is left untouched.
func (w *Workspace) UpdatePool(id string, edits ...Edit) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.pools.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPoolNotFound, id)
	}
	for _, edit := range edits {
		if err := edit(&s, w.config); err != nil {
			return err
		}
	}
	if err := w.pools.Replace(s); err != nil {
		return err
	}
	w.logger.Debug("pool updated", "pool_id", id, "edits", len(edits))
	w.refresh(false)
	return nil
}

// RenamePool changes a pool's display name.
func (w *Workspace) RenamePool(id, name string) error {
	return w.UpdatePool(id, Rename(name))
}

// SetPoolTotal spreads a new hiring target evenly over the current window.
func (w *Workspace) SetPoolTotal(id string, total float64) error {
	return w.UpdatePool(id, SpreadTotal(total))
}

// SetPoolCurve replaces a pool's demand with a generated curve.
func (w *Workspace) SetPoolCurve(id string, shape curve.Shape, total float64) error {
	return w.UpdatePool(id, ApplyCurve(shape, total))
}

// SetPoolDemand stores an explicit weekly demand curve.
func (w *Workspace) SetPoolDemand(id string, demand []float64) error {
	return w.UpdatePool(id, ReplaceDemand(demand))
}

// SetTalentPartners pins a pool's TP headcount to a user value.
func (w *Workspace) SetTalentPartners(id string, tps float64) error {
	return w.UpdatePool(id, PinTalentPartners(tps))
}

// UnpinTalentPartners hands a pool's TP headcount back to the reconciler.
func (w *Workspace) UnpinTalentPartners(id string) error {
	return w.UpdatePool(id, ReleaseTalentPartners())
}

// SetSourcers pins the global Sourcer total to a user value.
func (w *Workspace) SetSourcers(n float64) error {
	if n < 0 || math.IsNaN(n) {
		return apperrors.ErrNegativeHeadcount
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config.TotalSourcers = models.Manual(n)
	w.refresh(false)
	return nil
}

// UnpinSourcers hands the Sourcer total back to the reconciler.
func (w *Workspace) UnpinSourcers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config.TotalSourcers.Source = models.SourceAuto
	w.refresh(false)
}

// SetConfig replaces the planning assumptions, clamped into range. The
// Sourcer total and its pin are taken from cfg as given.
func (w *Workspace) SetConfig(cfg models.GlobalConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = cfg.Clamp()
	w.logger.Info("config updated",
		"hiring_duration", w.config.HiringDuration,
		"ramp_up_weeks", w.config.RampUpWeeks,
		"tp_capacity_per_week", w.config.TPCapacityPerWeek,
		"pools_per_sourcer", w.config.PoolsPerSourcer)
	w.refresh(false)
}

// DeletePool removes a pool.
func (w *Workspace) DeletePool(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.pools.Delete(id); err != nil {
		return err
	}
	w.logger.Info("pool deleted", "pool_id", id)
	w.refresh(false)
	return nil
}

// ReplacePools swaps the whole pool list, as an external sync does.
func (w *Workspace) ReplacePools(pools []models.Scenario) error {
	for _, p := range pools {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pool %s: %w", p.ID, err)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.pools.ReplaceAll(pools); err != nil {
		return err
	}
	w.logger.Info("pools replaced", "count", len(pools))
	w.refresh(false)
	return nil
}

// refresh recomputes results and, when a watched input changed (or force is
// set), reconciles until no further writes are suggested. Callers hold mu.
func (w *Workspace) refresh(force bool) {
	w.recompute()

	key := reconciler.Watched(w.pools.List(), w.config)
	if !force && key == w.watched {
		return
	}

	passes := 0
	for ; passes < w.maxPasses; passes++ {
		plan := reconciler.Suggest(w.results.Aggregate, w.pools.List(), w.config)
		if plan.Empty() {
			break
		}
		if err := reconciler.Apply(plan, w.pools, &w.config); err != nil {
			w.logger.Error("reconcile apply failed", "error", err)
			break
		}
		recordWrites(plan)
		w.logger.Debug("reconciled", "pass", passes+1, "writes", plan.Writes())
		w.recompute()
	}
	metrics.ReconcilerPasses.Observe(float64(passes))
	if passes == w.maxPasses && !reconciler.Suggest(w.results.Aggregate, w.pools.List(), w.config).Empty() {
		metrics.ReconcilerNotConvergedTotal.Inc()
		w.logger.Warn("reconcile did not converge", "passes", passes)
	}
	w.watched = reconciler.Watched(w.pools.List(), w.config)
}

// recompute is the pure reducer step: (pools, config) -> results.
func (w *Workspace) recompute() {
	start := time.Now()
	w.results = w.engine.Compute(w.pools.List(), w.config)
	metrics.Observe(w.results, time.Since(start))
}

func recordWrites(plan reconciler.Plan) {
	if plan.Sourcers != nil {
		metrics.ReconcilerWritesTotal.WithLabelValues("total_sourcers").Inc()
	}
	if n := len(plan.TalentPartners); n > 0 {
		metrics.ReconcilerWritesTotal.WithLabelValues("talent_partners").Add(float64(n))
	}
}
