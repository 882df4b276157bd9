package workflow

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"schemagraph/internal/common"
	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Engine applies reviewer decisions to the entities of one index.
type Engine struct {
	idx     *index.Index
	clock   func() time.Time
	logger  *slog.Logger
	reg     prometheus.Registerer
	metrics *workflowMetrics
	counts  Counts
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source stamped onto decided entities.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegisterer enables Prometheus metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.reg = reg
	}
}

// New creates an engine over idx and computes the initial counts.
func New(idx *index.Index, opts ...Option) (*Engine, error) {
	e := &Engine{
		idx:    idx,
		clock:  time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	m, err := newWorkflowMetrics(e.reg)
	if err != nil {
		return nil, err
	}

	e.metrics = m
	e.recount()

	return e, nil
}

// Index returns the index the engine mutates.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// Counts returns the aggregate counts as of the last decision.
func (e *Engine) Counts() Counts {
	return e.counts.clone()
}

// ApplyPropertyDecision moves a property to approved or rejected.
func (e *Engine) ApplyPropertyDecision(id string, d Decision, actor string) (model.Property, error) {
	p, err := e.applyProperty(id, d, actor)
	e.recount()

	return p, err
}

// ApplyMappingDecision moves a mapping to approved or rejected. A conflict
// reason is kept as history.
func (e *Engine) ApplyMappingDecision(id string, d Decision, actor string) (model.Mapping, error) {
	m, err := e.applyMapping(id, d, actor)
	e.recount()

	return m, err
}

// Failure is one item of a bulk decision that could not be applied.
type Failure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// Reason returns the failure message.
func (f Failure) Reason() string {
	return f.Err.Error()
}

// BulkResult is the per-item outcome of a bulk decision.
type BulkResult struct {
	Updated []string  `json:"updated"`
	Failed  []Failure `json:"failed"`
}

// ApplyBulkDecision applies d to every id of the given kind. Ids are
// deduplicated, order preserved. Each item stands alone: failures are
// collected and the remaining items still apply. The returned error is set
// only for an unknown kind or decision, in which case nothing is applied.
func (e *Engine) ApplyBulkDecision(kind EntityKind, ids []string, d Decision, actor string) (BulkResult, error) {
	var res BulkResult

	if !d.IsValid() {
		return res, model.NewError(model.ClassTransition, "decision", "", model.ErrUnknownDecision, string(d))
	}

	var apply func(id string) error

	switch kind {
	case EntityProperty:
		apply = func(id string) error {
			_, err := e.applyProperty(id, d, actor)
			return err
		}
	case EntityMapping:
		apply = func(id string) error {
			_, err := e.applyMapping(id, d, actor)
			return err
		}
	default:
		return res, fmt.Errorf("unknown entity kind %q", string(kind))
	}

	for _, id := range common.Dedupe(ids) {
		if err := apply(id); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Err: err})
			continue
		}

		res.Updated = append(res.Updated, id)
	}

	e.recount()

	e.logger.Info("Bulk decision applied",
		"kind", kind, "decision", d, "actor", actor,
		"updated", len(res.Updated), "failed", len(res.Failed))

	return res, nil
}

func (e *Engine) applyProperty(id string, d Decision, actor string) (model.Property, error) {
	p, err := e.decideProperty(id, d, actor)
	e.metrics.observeDecision(EntityProperty, d, err)

	if err != nil {
		e.logger.Debug("Property decision refused", "id", id, "decision", d, "error", err)
		return model.Property{}, err
	}

	e.logger.Debug("Property decision applied", "id", id, "status", p.Status, "actor", actor)

	return p, nil
}

func (e *Engine) decideProperty(id string, d Decision, actor string) (model.Property, error) {
	if err := checkDecision("property", id, d, actor); err != nil {
		return model.Property{}, err
	}

	cur := e.idx.Property(id)
	if cur == nil {
		return model.Property{}, model.NewError(model.ClassTransition, "property", id, model.ErrNotFound, "")
	}

	target := d.propertyStatus()
	if !cur.Status.CanTransitionTo(target) {
		return model.Property{}, model.NewError(model.ClassTransition, "property", id, model.ErrInvalidTransition,
			fmt.Sprintf("%s -> %s", cur.Status, target))
	}

	updated := *cur
	updated.Status = target
	updated.Reviewer = actor
	updated.LastModified = e.clock()

	if err := e.idx.PatchProperty(updated); err != nil {
		return model.Property{}, err
	}

	return updated, nil
}

func (e *Engine) applyMapping(id string, d Decision, actor string) (model.Mapping, error) {
	m, err := e.decideMapping(id, d, actor)
	e.metrics.observeDecision(EntityMapping, d, err)

	if err != nil {
		e.logger.Debug("Mapping decision refused", "id", id, "decision", d, "error", err)
		return model.Mapping{}, err
	}

	e.logger.Debug("Mapping decision applied", "id", id, "status", m.Status, "actor", actor)

	return m, nil
}

func (e *Engine) decideMapping(id string, d Decision, actor string) (model.Mapping, error) {
	if err := checkDecision("mapping", id, d, actor); err != nil {
		return model.Mapping{}, err
	}

	cur := e.idx.Mapping(id)
	if cur == nil {
		return model.Mapping{}, model.NewError(model.ClassTransition, "mapping", id, model.ErrNotFound, "")
	}

	target := d.mappingStatus()
	if !cur.Status.CanTransitionTo(target) {
		return model.Mapping{}, model.NewError(model.ClassTransition, "mapping", id, model.ErrInvalidTransition,
			fmt.Sprintf("%s -> %s", cur.Status, target))
	}

	updated := *cur
	updated.Status = target
	updated.Reviewer = actor
	updated.LastModified = e.clock()

	if err := e.idx.PatchMapping(updated); err != nil {
		return model.Mapping{}, err
	}

	return updated, nil
}

func checkDecision(entity, id string, d Decision, actor string) error {
	if !d.IsValid() {
		return model.NewError(model.ClassTransition, entity, id, model.ErrUnknownDecision, string(d))
	}

	if strings.TrimSpace(actor) == "" {
		return model.NewError(model.ClassTransition, entity, id, model.ErrInvalidStatusReviewerPair, "reviewer is required")
	}

	return nil
}

func (e *Engine) recount() {
	e.counts = CountIndex(e.idx)
	e.metrics.observeCounts(e.counts)
}
