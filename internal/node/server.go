package node

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"vrcheck/internal/invariant"
	"vrcheck/internal/quorum"
	"vrcheck/internal/storage"
	"vrcheck/internal/violation"
	"vrcheck/internal/vr"
	"vrcheck/internal/wire"
)

// Server implements the Checker gRPC service.
type Server struct {
	store       storage.Store
	logger      *zap.Logger
	quorum      int // 0 derives a majority
	clusterSize int
	monotonic   bool

	checks atomic.Uint64

	mu       sync.Mutex
	previous map[string]vr.Snapshot[vr.Entry] // last snapshot per session
}

// ServerOptions configures a Server.
type ServerOptions struct {
	Quorum      int
	ClusterSize int
	Monotonic   bool
}

// NewServer creates a new Checker server instance.
func NewServer(store storage.Store, logger *zap.Logger, opts ServerOptions) *Server {
	return &Server{
		store:       store,
		logger:      logger,
		quorum:      opts.Quorum,
		clusterSize: opts.ClusterSize,
		monotonic:   opts.Monotonic,
		previous:    make(map[string]vr.Snapshot[vr.Entry]),
	}
}

// Check handles Check requests.
func (s *Server) Check(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := wire.DecodeRequest(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid snapshot: %v", err)
	}

	rep, err := s.CheckSnapshot(ctx, req)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "check failed: %v", err)
	}

	out, err := wire.EncodeReport(rep)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	return out, nil
}

// CheckSnapshot runs every invariant against req and records the
// violations found. The returned error is reserved for failures of the
// server itself; violations are reported in the Report.
func (s *Server) CheckSnapshot(ctx context.Context, req wire.Request) (wire.Report, error) {
	s.checks.Add(1)

	q := req.Quorum
	if q <= 0 {
		q = quorum.Resolve(s.quorum, s.clusterSize, len(req.Snapshot))
	}
	if s.clusterSize > 0 && len(req.Snapshot) != s.clusterSize {
		s.logger.Warn("snapshot size differs from configured cluster",
			zap.String("session", req.Session),
			zap.Int("replicas", len(req.Snapshot)),
			zap.Int("cluster_size", s.clusterSize))
	}

	err := invariant.CheckAll(q, req.Snapshot)
	if s.monotonic && req.Session != "" {
		if prev, ok := s.swapPrevious(req.Session, req.Snapshot); ok {
			err = multierr.Append(err, invariant.CheckMonotonic(prev, req.Snapshot))
		}
	}

	rep := wire.Report{
		OK:      err == nil,
		Session: req.Session,
		Step:    req.Step,
		Quorum:  q,
	}
	for _, e := range multierr.Errors(err) {
		v, ok := violation.As(e)
		if !ok {
			return wire.Report{}, e
		}
		rep.Violations = append(rep.Violations, *v)
	}

	if rep.OK {
		s.logger.Debug("snapshot ok",
			zap.String("session", req.Session),
			zap.Uint64("step", req.Step),
			zap.Int("replicas", len(req.Snapshot)),
			zap.Int("quorum", q))
		return rep, nil
	}

	s.record(ctx, req, rep)
	return rep, nil
}

// Health handles Health requests.
func (s *Server) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"status": "SERVING",
		"checks": s.checks.Load(),
	})
}

// ForgetSession drops the snapshot kept for monotonic checks.
func (s *Server) ForgetSession(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previous, session)
}

// swapPrevious stores cur as the session's latest snapshot and returns
// the one it replaces.
func (s *Server) swapPrevious(session string, cur vr.Snapshot[vr.Entry]) (vr.Snapshot[vr.Entry], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.previous[session]
	s.previous[session] = cur
	return prev, ok
}

// record logs and stores each violation. Storage failures are logged but
// do not hide the report from the caller.
func (s *Server) record(ctx context.Context, req wire.Request, rep wire.Report) {
	snapshot, err := encodeSnapshot(req)
	if err != nil {
		s.logger.Warn("failed to encode snapshot for trace",
			zap.String("session", req.Session),
			zap.Uint64("step", req.Step),
			zap.Error(err))
	}

	for _, v := range rep.Violations {
		s.logger.Error("invariant violated",
			zap.String("session", req.Session),
			zap.Uint64("step", req.Step),
			zap.String("invariant", v.Invariant),
			zap.Stringer("kind", v.Kind),
			zap.String("message", v.Message),
			zap.String("left", v.Left),
			zap.String("right", v.Right),
			zap.Int("index", v.Index))

		_, err = s.store.Record(ctx, storage.Record{
			Session:   req.Session,
			Step:      req.Step,
			Invariant: v.Invariant,
			Kind:      v.Kind.String(),
			Message:   v.Error(),
			Snapshot:  snapshot,
		})
		if err != nil {
			s.logger.Warn("failed to record violation", zap.Error(err))
		}
	}
}

func encodeSnapshot(req wire.Request) ([]byte, error) {
	st, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	return wire.MarshalJSON(st)
}
