package quorum

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMajority(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 0}, {0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {5, 3}, {7, 4},
	}
	for _, tt := range tests {
		if got := Majority(tt.n); got != tt.want {
			t.Errorf("Majority(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name                        string
		explicit, cluster, snapshot int
		want                        int
	}{
		{"explicit wins", 4, 5, 3, 4},
		{"cluster size majority", 0, 5, 3, 3},
		{"snapshot majority", 0, 0, 3, 2},
		{"negative explicit ignored", -1, 0, 4, 3},
		{"nothing known", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.explicit, tt.cluster, tt.snapshot); got != tt.want {
				t.Errorf("Resolve() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGather_AllRespond(t *testing.T) {
	replicas := []string{"r1", "r2", "r3"}

	fetchFn := func(ctx context.Context, replicaID string) (string, error) {
		return "state-" + replicaID, nil
	}

	result := Gather[string](context.Background(), replicas, fetchFn)

	if !result.Success {
		t.Fatalf("Expected success, got: %v", result.ErrorMessage)
	}
	for i, r := range replicas {
		if result.Values[i] != "state-"+r {
			t.Errorf("Values[%d] = %q, want replica order preserved", i, result.Values[i])
		}
	}
}

func TestGather_MissingReplica(t *testing.T) {
	replicas := []string{"r1", "r2", "r3"}

	fetchFn := func(ctx context.Context, replicaID string) (int, error) {
		if replicaID == "r2" {
			return 0, errors.New("replica failed")
		}
		return 1, nil
	}

	result := Gather[int](context.Background(), replicas, fetchFn)

	if result.Success {
		t.Error("Expected failure, got success")
	}
	if result.Responses != 2 {
		t.Errorf("Expected 2 responses, got %d", result.Responses)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "r2" {
		t.Errorf("Expected r2 to be reported, got %v", result.Failed)
	}
	if result.ErrorMessage == "" {
		t.Error("Expected error message")
	}
}

func TestGather_Timeout(t *testing.T) {
	replicas := []string{"r1", "r2", "r3"}

	fetchFn := func(ctx context.Context, replicaID string) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result := Gather[int](ctx, replicas, fetchFn)

	if result.Success {
		t.Error("Expected failure due to timeout")
	}
	if result.ErrorMessage == "" {
		t.Error("Expected error message for timeout")
	}
}

func TestGather_NoReplicas(t *testing.T) {
	result := Gather[int](context.Background(), []string{}, nil)

	if result.Success {
		t.Error("Expected failure with no replicas")
	}
	if result.ErrorMessage == "" {
		t.Error("Expected error message")
	}
}
