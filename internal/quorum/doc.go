// Package quorum provides quorum sizing and the fanout used to gather one
// state report from every replica of a cluster.
package quorum
