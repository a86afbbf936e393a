// Package logtail reads the tail of dexterm's log file and parses slog text
// lines for display.
//
// # Reading
//
// Read returns the last maxLines lines of a file in one sequential pass,
// keeping only a ring buffer of maxLines entries. A maxLines of zero or less
// returns the whole file. A missing file yields no lines and no error, since
// the log may not exist before the first write.
//
//	lines, err := logtail.Read(path, 2000)
//
// # Parsing
//
// Parse understands the key=value format written by slog.TextHandler:
//
//	time=2026-01-02T15:04:05.000Z level=WARN msg="detail fetch failed" pokemon=25
//
// Quoted values are unquoted with strconv. The time, level and msg keys fill
// the matching Entry fields; every other pair lands in Attrs in order. Lines
// that are not key=value formatted come back with Message set to the raw
// line at info level.
//
// # Filtering
//
// Tail combines the two and drops entries below a minimum slog.Level. Blank
// lines are skipped.
package logtail
