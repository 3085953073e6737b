// Package violation turns failed safety conditions into descriptive,
// comparable error values. Helpers never panic; a satisfied condition
// yields a nil error.
package violation
