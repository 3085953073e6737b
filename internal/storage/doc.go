// Package storage keeps the violations reported for each checked session
// so a driver can inspect or replay a failing trace. Records live either
// in memory or in a SQLite database.
package storage
