package it

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"vrcheck/internal/config"
	"vrcheck/internal/node"
	"vrcheck/internal/storage"
	"vrcheck/internal/vr"
	"vrcheck/internal/wire"
)

// Cluster is a scripted stand-in for a VR cluster wired to an in-process
// checker. Tests move replicas between states and call Step to have the
// resulting snapshot checked.
type Cluster struct {
	mu       sync.Mutex
	ids      []string
	replicas map[string]*vr.Replica[vr.Entry]
	down     map[string]bool

	checker   *node.Node
	client    *node.Client
	store     storage.Store
	collector *node.Collector
}

// NewCluster starts a checker and a cluster of size replicas named
// n1..nN. Replica n1 starts as primary of view 1; the rest are backups.
func NewCluster(session string, size int, store storage.Store, logger *zap.Logger) (*Cluster, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cluster size must be positive: %d", size)
	}

	c := &Cluster{
		replicas: make(map[string]*vr.Replica[vr.Entry]),
		down:     make(map[string]bool),
		store:    store,
	}
	for i := 1; i <= size; i++ {
		id := fmt.Sprintf("n%d", i)
		role := vr.RoleBackup
		if i == 1 {
			role = vr.RolePrimary
		}
		c.ids = append(c.ids, id)
		c.replicas[id] = &vr.Replica[vr.Entry]{
			ID:   id,
			Role: role,
			Ctx:  vr.Context[vr.Entry]{View: 1},
		}
	}

	cfg := config.Default()
	cfg.Replicas = append([]string(nil), c.ids...)
	c.checker = node.NewNode(cfg, store, logger)

	lis := bufconn.Listen(1 << 20)
	go func() {
		if err := c.checker.Serve(lis); err != nil {
			logger.Warn("checker stopped", zap.Error(err))
		}
	}()

	client, err := node.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		c.checker.Stop()
		return nil, fmt.Errorf("failed to dial checker: %w", err)
	}
	c.client = client
	c.collector = node.NewCollector(session, c.ids, 0, c, client, logger)
	return c, nil
}

// Fetch implements node.StateSource. It returns a deep copy so the
// snapshot cannot observe later mutations.
func (c *Cluster) Fetch(ctx context.Context, replicaID string) (vr.Replica[vr.Entry], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.down[replicaID] {
		return vr.Replica[vr.Entry]{}, fmt.Errorf("replica %s is down", replicaID)
	}
	r, ok := c.replicas[replicaID]
	if !ok {
		return vr.Replica[vr.Entry]{}, fmt.Errorf("replica %s not found", replicaID)
	}
	cp := *r
	cp.Ctx.Log = append([]vr.Entry(nil), r.Ctx.Log...)
	return cp, nil
}

// Step checks the current cluster state.
func (c *Cluster) Step(ctx context.Context) (wire.Report, error) {
	return c.collector.Step(ctx)
}

// Client returns the checker client.
func (c *Cluster) Client() *node.Client {
	return c.client
}

// Request executes a client operation on the primary and replicates it to
// every live backup in the same view. The primary then commits it.
func (c *Cluster) Request(clientID string, requestNum uint64, op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	primary := c.primaryLocked()
	if primary == nil {
		return fmt.Errorf("no primary")
	}
	e := vr.Entry{ClientID: clientID, RequestNum: requestNum, Op: op}
	primary.Ctx.Log = append(primary.Ctx.Log, e)
	for _, id := range c.ids {
		r := c.replicas[id]
		if r == primary || c.down[id] || r.Role != vr.RoleBackup || r.Ctx.View != primary.Ctx.View {
			continue
		}
		r.Ctx.Log = append(r.Ctx.Log, e)
	}
	primary.Ctx.CommitNum = uint64(len(primary.Ctx.Log))
	return nil
}

// Commit advances each live backup's commit number to the primary's,
// as a Commit message would.
func (c *Cluster) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	primary := c.primaryLocked()
	if primary == nil {
		return
	}
	for _, id := range c.ids {
		r := c.replicas[id]
		if c.down[id] || r.Role != vr.RoleBackup {
			continue
		}
		if n := primary.Ctx.CommitNum; uint64(len(r.Ctx.Log)) >= n {
			r.Ctx.CommitNum = n
		}
	}
}

// ViewChange makes id the primary of the next view; every other live
// replica outside recovery follows as a backup.
func (c *Cluster) ViewChange(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.replicas[id]
	if !ok {
		return fmt.Errorf("replica %s not found", id)
	}
	view := next.Ctx.View + 1
	for _, rid := range c.ids {
		r := c.replicas[rid]
		if c.down[rid] || r.Role == vr.RoleRecovery {
			continue
		}
		r.Ctx.View = view
		r.Role = vr.RoleBackup
	}
	next.Role = vr.RolePrimary
	return nil
}

// Set overwrites a replica's state, for injecting faults the scripted
// protocol would never produce.
func (c *Cluster) Set(id string, fn func(r *vr.Replica[vr.Entry])) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.replicas[id]
	if !ok {
		return fmt.Errorf("replica %s not found", id)
	}
	fn(r)
	return nil
}

// StartRecovery puts a replica into recovery.
func (c *Cluster) StartRecovery(id string) error {
	return c.Set(id, func(r *vr.Replica[vr.Entry]) {
		r.Role = vr.RoleRecovery
	})
}

// KillNode makes a replica unreachable.
func (c *Cluster) KillNode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.down[id] = true
}

// RestartNode makes a replica reachable again.
func (c *Cluster) RestartNode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.down, id)
}

// Stop shuts down the checker and its client.
func (c *Cluster) Stop() {
	c.client.Close()
	c.checker.Stop()
}

func (c *Cluster) primaryLocked() *vr.Replica[vr.Entry] {
	var primary *vr.Replica[vr.Entry]
	for _, id := range c.ids {
		r := c.replicas[id]
		if r.Role != vr.RolePrimary || c.down[id] {
			continue
		}
		if primary == nil || r.Ctx.View > primary.Ctx.View {
			primary = r
		}
	}
	return primary
}
