package node

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"vrcheck/internal/config"
	"vrcheck/internal/storage"
)

// Node hosts the Checker service.
type Node struct {
	listenAddr string
	grpcServer *grpc.Server
	server     *Server
	logger     *zap.Logger
}

// NewNode creates a new node instance from cfg.
func NewNode(cfg config.Config, store storage.Store, logger *zap.Logger) *Node {
	server := NewServer(store, logger, ServerOptions{
		Quorum:      cfg.Quorum,
		ClusterSize: cfg.ClusterSize(),
		Monotonic:   cfg.Monotonic,
	})

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logInterceptor(logger)))
	RegisterCheckerServer(grpcServer, server)

	// Enable gRPC reflection for grpcurl
	reflection.Register(grpcServer)

	return &Node{
		listenAddr: cfg.ListenAddr,
		grpcServer: grpcServer,
		server:     server,
		logger:     logger,
	}
}

// Server returns the service implementation, for in-process callers.
func (n *Node) Server() *Server {
	return n.server
}

// Start listens on the configured address and serves until Stop.
func (n *Node) Start() error {
	lis, err := net.Listen("tcp", n.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.listenAddr, err)
	}
	return n.Serve(lis)
}

// Serve serves on an existing listener until Stop.
func (n *Node) Serve(lis net.Listener) error {
	n.logger.Info("starting checker", zap.String("addr", lis.Addr().String()))

	if err := n.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully stops the node.
func (n *Node) Stop() {
	n.logger.Info("stopping checker")
	n.grpcServer.GracefulStop()
}

func logInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("rpc",
			zap.String("method", info.FullMethod),
			zap.Duration("took", time.Since(start)),
			zap.Stringer("code", status.Code(err)))
		return resp, err
	}
}
