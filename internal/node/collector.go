package node

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vrcheck/internal/quorum"
	"vrcheck/internal/vr"
	"vrcheck/internal/wire"
)

// StateSource reads the observable state of one replica.
type StateSource interface {
	Fetch(ctx context.Context, replicaID string) (vr.Replica[vr.Entry], error)
}

// Checker checks one snapshot. Both Server and Client implement it.
type Checker interface {
	CheckSnapshot(ctx context.Context, req wire.Request) (wire.Report, error)
}

// Collector assembles a snapshot from every replica after each protocol
// step and submits it for checking. It is not safe for concurrent use.
type Collector struct {
	session  string
	replicas []string
	quorum   int
	source   StateSource
	checker  Checker
	logger   *zap.Logger
	step     uint64
}

// NewCollector creates a collector for the given replicas. quorum may be
// 0 to let the checker derive it.
func NewCollector(session string, replicas []string, quorum int, source StateSource, checker Checker, logger *zap.Logger) *Collector {
	return &Collector{
		session:  session,
		replicas: append([]string(nil), replicas...),
		quorum:   quorum,
		source:   source,
		checker:  checker,
		logger:   logger,
	}
}

// Step gathers a snapshot and checks it. A failing report is returned
// with a nil error; the error covers gathering and transport failures.
func (c *Collector) Step(ctx context.Context) (wire.Report, error) {
	res := quorum.Gather[vr.Replica[vr.Entry]](ctx, c.replicas, c.source.Fetch)
	if !res.Success {
		return wire.Report{}, fmt.Errorf("failed to gather snapshot: %s", res.ErrorMessage)
	}

	c.step++
	rep, err := c.checker.CheckSnapshot(ctx, wire.Request{
		Session:  c.session,
		Step:     c.step,
		Quorum:   c.quorum,
		Snapshot: vr.Snapshot[vr.Entry](res.Values),
	})
	if err != nil {
		return wire.Report{}, fmt.Errorf("step %d: %w", c.step, err)
	}
	if !rep.OK {
		c.logger.Info("step reported violations",
			zap.String("session", c.session),
			zap.Uint64("step", c.step),
			zap.Int("violations", len(rep.Violations)))
	}
	return rep, nil
}

// Steps returns the number of snapshots submitted so far.
func (c *Collector) Steps() uint64 {
	return c.step
}
