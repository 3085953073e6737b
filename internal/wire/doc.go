// Package wire converts snapshots and violation reports to and from
// protobuf Struct messages, the payloads of the Checker gRPC service.
package wire
