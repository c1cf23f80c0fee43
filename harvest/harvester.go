package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/harvester/database"
	"github.com/kbukum/harvester/errors"
	"github.com/kbukum/harvester/executor"
	"github.com/kbukum/harvester/logger"
	"github.com/kbukum/harvester/observability"
	"github.com/kbukum/harvester/task"
)

// Harvester extracts datasets from task stores.
type Harvester struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Harvester) { h.log = l }
}

// WithMetrics records harvest counts and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Harvester) { h.metrics = m }
}

// New creates a Harvester.
func New(cfg Config, opts ...Option) *Harvester {
	cfg.ApplyDefaults()
	h := &Harvester{cfg: cfg, log: logger.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithComponent("harvest")
	return h
}

// StorePath returns the store location for t.
func (h *Harvester) StorePath(t *task.Task) string {
	return filepath.Join(t.Dir, h.cfg.Path)
}

// Harvest reads t's store. A nil outcome harvests unconditionally. It never
// returns nil.
func (h *Harvester) Harvest(ctx context.Context, t *task.Task, out *executor.Outcome) *Result {
	if out != nil && !out.Harvestable() {
		return &Result{Task: t.Name, Status: StatusSkipped, Diagnostic: "task did not run"}
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanHarvest)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTask, t.Name)

	start := time.Now()
	res := h.harvest(ctx, t)
	h.metrics.RecordPhase(ctx, t.KindName(), "harvest", time.Since(start))
	h.metrics.RecordHarvest(ctx, t.KindName(), string(res.Status), res.Records())

	observability.SetSpanAttribute(ctx, observability.AttrStatus, string(res.Status))
	observability.SetSpanAttribute(ctx, observability.AttrRecords, res.Records())
	observability.SetSpanError(ctx, res.Err)

	log := h.log.WithTask(t.Name, t.KindName())
	fields := logger.Fields(logger.FieldStatus, string(res.Status), logger.FieldRecords, res.Records())
	switch res.Status {
	case StatusHarvested:
		fields[logger.FieldColumns] = len(res.Dataset.Columns)
		log.Info("dataset harvested", fields)
	case StatusUnreadable, StatusMissingTable:
		fields["diagnostic"] = res.Diagnostic
		log.Warn("store not harvested", fields)
	default:
		log.Debug("nothing harvested", fields)
	}
	return res
}

func (h *Harvester) harvest(ctx context.Context, t *task.Task) *Result {
	path := h.StorePath(t)
	res := &Result{Task: t.Name}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		res.Status = StatusNoStore
		return res
	case err != nil:
		return h.unreadable(res, path, err)
	case info.IsDir():
		return h.unreadable(res, path, fmt.Errorf("%s is a directory", h.cfg.Path))
	}

	db, err := database.OpenReadOnly(ctx, path, h.cfg.Database, h.log)
	if err != nil {
		return h.unreadable(res, path, err)
	}
	defer db.Close()

	ok, err := db.HasTable(ctx, h.cfg.Table)
	if err != nil {
		return h.unreadable(res, path, err)
	}
	missing := !ok

	var ds *Dataset
	if !missing {
		err = db.WithReadOnlyTransaction(ctx, func(tx *gorm.DB) error {
			var err error
			ds, err = readTable(tx, t.Name, h.cfg.Table)
			return err
		})
	}
	switch {
	case missing || database.IsMissingTable(err):
		res.Status = StatusMissingTable
		res.Diagnostic = fmt.Sprintf("no table %q in %s", h.cfg.Table, h.cfg.Path)
		return res
	case err != nil:
		return h.unreadable(res, path, err)
	case ds.Len() == 0:
		res.Status = StatusEmpty
		res.Diagnostic = "empty"
		return res
	}

	res.Status = StatusHarvested
	res.Dataset = ds
	return res
}

func (h *Harvester) unreadable(res *Result, path string, err error) *Result {
	res.Status = StatusUnreadable
	switch {
	case database.IsCorrupt(err):
		res.Diagnostic = "corrupt store: " + err.Error()
	case database.IsLocked(err):
		res.Diagnostic = "store locked: " + err.Error()
	default:
		res.Diagnostic = err.Error()
	}
	res.Err = errors.HarvestFailure(res.Task, path, err)
	return res
}

// readTable returns every row of table in storage order.
func readTable(tx *gorm.DB, taskName, table string) (*Dataset, error) {
	rows, err := tx.Raw("SELECT * FROM " + database.QuoteIdent(table)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Task: taskName, Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		ds.Rows = append(ds.Rows, vals)
	}
	return ds, rows.Err()
}
