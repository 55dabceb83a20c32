// Package engine runs generation pipelines on a bounded worker pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/config"
	"github.com/gyaneshwarpardhi/synthdata/internal/metrics"
)

// ErrQueueFull is returned when the run queue has no room.
var ErrQueueFull = errors.New("run queue full")

// ErrTimeout is returned when a run outlives the configured timeout.
var ErrTimeout = errors.New("run timeout")

// Engine processes generation requests through a Pipeline.
type Engine struct {
	pipeline *Pipeline
	pool     *workerPool[*runWork]
	conf     config.EngineConf
}

type runWork struct {
	ctx     context.Context
	req     Request
	resultC chan runOutcome
}

type runOutcome struct {
	res *Result
	err error
}

// New creates an Engine using conf and starts the worker pool.
func New(ctx context.Context, p *Pipeline, conf config.EngineConf) *Engine {
	if conf.Workers <= 0 {
		conf.Workers = 1
	}
	if conf.QueueDepth <= 0 {
		conf.QueueDepth = conf.Workers
	}
	e := &Engine{pipeline: p, conf: conf}
	e.pool = newWorkerPool[*runWork](ctx, conf.Workers, conf.QueueDepth, e.process)
	return e
}

// Pipeline returns the pipeline the engine runs.
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline
}

// ProcessSync runs req on the pool and waits for the result. It returns
// ErrQueueFull when the queue is full and ErrTimeout when the run takes
// longer than the configured timeout.
func (e *Engine) ProcessSync(ctx context.Context, req Request) (*Result, error) {
	timeout := time.Duration(e.conf.TimeoutMs) * time.Millisecond
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	resultC := make(chan runOutcome, 1)
	w := &runWork{ctx: runCtx, req: req, resultC: resultC}
	if !e.pool.Submit(w) {
		metrics.RunsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.pool.QueueCap())
	}
	metrics.RunsEnqueued.Inc()
	metrics.QueueUtilization.Set(e.QueueUtilization())

	select {
	case out := <-resultC:
		return out.res, out.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
}

// QueueUtilization returns queue used / capacity (0-1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Busy returns the number of runs currently executing.
func (e *Engine) Busy() int {
	return e.pool.Busy()
}

func (e *Engine) process(_ context.Context, w *runWork) {
	start := time.Now()
	var res *Result
	err := w.ctx.Err()
	if err == nil {
		err = recovered(func() error {
			var runErr error
			res, runErr = e.pipeline.Run(w.ctx, w.req)
			return runErr
		})
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RunsCompleted.WithLabelValues(status).Inc()
	metrics.RunDuration.Observe(float64(time.Since(start).Milliseconds()))
	w.resultC <- runOutcome{res: res, err: err}
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
