// Package lines splits buffer contents into lines and maps offsets to lines.
//
// A line is delimited by "\n" clusters and never drops empty results, so
// "a\n\nb" has three lines and a trailing newline produces a trailing empty
// line. Line End offsets point at the terminating newline (or the end of the
// document); an offset equal to End belongs to the line.
//
// The Index is recomputed from a buffer snapshot rather than maintained
// incrementally. It is cheap to rebuild, has no side effects, and callers
// drop it whenever the buffer changes.
package lines
