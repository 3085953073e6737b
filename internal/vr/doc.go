// Package vr describes the publicly observable state of Viewstamped
// Replication replicas at one simulated instant. Values here are produced by
// the protocol engine and are treated as read-only by every consumer.
package vr
