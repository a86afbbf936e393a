package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Read returns the last maxLines lines of the file at path. maxLines <= 0
// returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Attr is one key=value pair from a log line.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed slog text-handler line.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []Attr
	Raw     string
}

// Parse splits a slog text-handler line into its fields. Lines that are not
// key=value formatted come back with only Raw and Message set, at info level.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: slog.LevelInfo}
	pairs, ok := splitPairs(line)
	if !ok {
		entry.Message = line
		return entry
	}
	for _, pair := range pairs {
		switch pair.Key {
		case slog.TimeKey:
			if ts, err := time.Parse(time.RFC3339Nano, pair.Value); err == nil {
				entry.Time = ts
			}
		case slog.LevelKey:
			var level slog.Level
			if err := level.UnmarshalText([]byte(pair.Value)); err == nil {
				entry.Level = level
			}
		case slog.MessageKey:
			entry.Message = pair.Value
		default:
			entry.Attrs = append(entry.Attrs, pair)
		}
	}
	return entry
}

// Tail reads the last maxLines lines of path and keeps those at or above min.
func Tail(path string, maxLines int, min slog.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := Parse(line)
		if entry.Level >= min {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func splitPairs(line string) ([]Attr, bool) {
	var pairs []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return nil, false
			}
			unquoted, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				return nil, false
			}
			value = unquoted
			rest = rest[end+1:]
		} else {
			end := strings.IndexByte(rest, ' ')
			if end < 0 {
				end = len(rest)
			}
			value = rest[:end]
			rest = rest[end:]
		}
		pairs = append(pairs, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}

// closingQuote returns the index of the quote ending the string that opens
// at s[0], honouring backslash escapes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
