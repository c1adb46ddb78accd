package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

const defaultMaxRetries = 3

type Deps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Runner  TxRunner
	Hooks   Hooks
	Backoff func() retry.Backoff
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = NewLogHooks(d.Log)
	}
	if d.Backoff == nil {
		d.Backoff = func() retry.Backoff {
			return retry.WithMaxRetries(defaultMaxRetries, retry.NewExponential(25*time.Millisecond))
		}
	}
	return d
}

// Writer runs closures as single transactions.
type Writer struct {
	deps Deps
}

func NewWriter(deps Deps) *Writer {
	return &Writer{deps: deps.withDefaults()}
}

// Write runs fn in one transaction. A transient lock failure replays the whole
// closure, so fn must not keep state across attempts.
func (w *Writer) Write(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	err := retry.Do(ctx, w.deps.Backoff(), func(ctx context.Context) error {
		err := w.deps.Runner.InTx(ctx, fn)
		if IsRetryable(err) {
			w.deps.Hooks.IncRetry(op)
			return retry.RetryableError(err)
		}
		return err
	})
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = apperr.KindOf(mapped).String()
		if apperr.IsConflict(mapped) {
			w.deps.Hooks.IncConflict(op)
		}
	}
	w.deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// Read runs fn in one transaction for a consistent multi-query view.
func (w *Writer) Read(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	return MapError(op, w.deps.Runner.InTx(ctx, fn))
}
