package node

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"vrcheck/internal/wire"
)

// Client calls a remote Checker service.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn // nil when built from an existing connection
}

// Dial connects to the Checker at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection. Close leaves it open.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CheckSnapshot submits a snapshot and returns the report.
func (c *Client) CheckSnapshot(ctx context.Context, req wire.Request) (wire.Report, error) {
	in, err := wire.EncodeRequest(req)
	if err != nil {
		return wire.Report{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, checkFullMethod, in, out); err != nil {
		return wire.Report{}, err
	}
	return wire.DecodeReport(out)
}

// Health returns the service status and the number of checks served.
func (c *Client) Health(ctx context.Context) (string, uint64, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, healthFullMethod, &emptypb.Empty{}, out); err != nil {
		return "", 0, err
	}
	f := out.GetFields()
	return f["status"].GetStringValue(), uint64(f["checks"].GetNumberValue()), nil
}

// Close closes the connection opened by Dial.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
