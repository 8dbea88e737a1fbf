// Package export writes the trace and summary of a single run: CSV rows,
// an indented JSON summary and a PNG chart. Writers take an io.Writer; nothing
// is kept after the run.
package export
