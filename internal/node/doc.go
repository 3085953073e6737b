// Package node runs the Checker gRPC service: protocol drivers submit
// cluster snapshots and receive violation reports. Payloads are protobuf
// Struct messages built by package wire.
package node
