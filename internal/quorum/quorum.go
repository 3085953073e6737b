package quorum

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultPerReplicaTimeout is the default timeout for each replica fetch.
	DefaultPerReplicaTimeout = 2 * time.Second
)

// Majority returns floor(n/2)+1, the conventional quorum for a cluster of
// n replicas. It returns 0 for an empty cluster.
func Majority(n int) int {
	if n <= 0 {
		return 0
	}
	return n/2 + 1
}

// Resolve picks the quorum to check against: the explicit value when
// positive, otherwise a majority of the configured cluster size, otherwise
// a majority of the snapshot itself.
func Resolve(explicit, clusterSize, snapshotSize int) int {
	if explicit > 0 {
		return explicit
	}
	if clusterSize > 0 {
		return Majority(clusterSize)
	}
	return Majority(snapshotSize)
}

// FetchFunc reads the state of a single replica.
type FetchFunc[T any] func(ctx context.Context, replicaID string) (T, error)

// GatherResult represents the result of a gather operation.
type GatherResult[T any] struct {
	Success      bool
	Responses    int
	Replicas     int
	Values       []T // in replica order; zero value where a fetch failed
	Failed       []string
	ErrorMessage string
}

// Gather fetches every replica in parallel. A snapshot has one entry per
// replica, so it only succeeds when all replicas answer.
func Gather[T any](ctx context.Context, replicas []string, fetchFn FetchFunc[T]) GatherResult[T] {
	if len(replicas) == 0 {
		return GatherResult[T]{
			Success:      false,
			ErrorMessage: "no replicas provided",
		}
	}

	var (
		mu        sync.Mutex
		responses int
		values    = make([]T, len(replicas))
		failed    = make([]bool, len(replicas))
		errors    []error
		wg        sync.WaitGroup
	)

	// Create context with per-replica timeout
	replicaCtx, cancel := context.WithTimeout(ctx, DefaultPerReplicaTimeout)
	defer cancel()

	for i, replicaID := range replicas {
		wg.Add(1)
		go func(idx int, rid string) {
			defer wg.Done()

			value, err := fetchFn(replicaCtx, rid)
			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				responses++
				values[idx] = value
			} else {
				failed[idx] = true
				errors = append(errors, fmt.Errorf("replica %s: %w", rid, err))
			}
		}(i, replicaID)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		return GatherResult[T]{
			Success:      false,
			Responses:    responses,
			Replicas:     len(replicas),
			ErrorMessage: fmt.Sprintf("context cancelled: %v", ctx.Err()),
		}
	}

	mu.Lock()
	defer mu.Unlock()

	var missing []string
	for i, f := range failed {
		if f {
			missing = append(missing, replicas[i])
		}
	}

	if responses == len(replicas) {
		return GatherResult[T]{
			Success:   true,
			Responses: responses,
			Replicas:  len(replicas),
			Values:    values,
		}
	}

	errMsg := fmt.Sprintf("incomplete snapshot: responses=%d replicas=%d", responses, len(replicas))
	if len(errors) > 0 {
		errMsg += fmt.Sprintf(" errors=%v", errors[:min(3, len(errors))])
	}

	return GatherResult[T]{
		Success:      false,
		Responses:    responses,
		Replicas:     len(replicas),
		Values:       values,
		Failed:       missing,
		ErrorMessage: errMsg,
	}
}
