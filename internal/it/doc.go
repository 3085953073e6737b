// Package it holds end-to-end tests that drive a scripted cluster through
// protocol steps and check every step over gRPC.
package it
