package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		level   slog.Level
		message string
		attrs   []Attr
	}{
		{
			name:    "text handler line",
			input:   `time=2026-10-17T09:15:02.123Z level=WARN msg="detail fetch failed" pokemon=25 error="fetch failed: GET x returned status 500"`,
			level:   slog.LevelWarn,
			message: "detail fetch failed",
			attrs: []Attr{
				{Key: "pokemon", Value: "25"},
				{Key: "error", Value: "fetch failed: GET x returned status 500"},
			},
		},
		{
			name:    "escaped quotes",
			input:   `level=ERROR msg="list query failed" error="bad \"thing\""`,
			level:   slog.LevelError,
			message: "list query failed",
			attrs:   []Attr{{Key: "error", Value: `bad "thing"`}},
		},
		{
			name:    "free text",
			input:   "panic: something broke",
			level:   slog.LevelInfo,
			message: "panic: something broke",
		},
		{
			name:    "unterminated quote",
			input:   `level=INFO msg="oops`,
			level:   slog.LevelInfo,
			message: `level=INFO msg="oops`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Level != tt.level || got.Message != tt.message {
				t.Fatalf("Parse = level %v msg %q, want %v %q", got.Level, got.Message, tt.level, tt.message)
			}
			if !reflect.DeepEqual(got.Attrs, tt.attrs) {
				t.Fatalf("Attrs = %#v, want %#v", got.Attrs, tt.attrs)
			}
			if got.Raw != tt.input {
				t.Fatalf("Raw = %q", got.Raw)
			}
		})
	}
}

func TestTail_FiltersSlogOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "dexterm.log")
	file, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("search miss", slog.String("query", "missingno"))
	logger.Info("dexterm started")
	logger.Warn("storage operation failed", slog.String("key", "pokemonFavorites"))
	logger.Error("list query failed", slog.Int("page", 2))
	if err := file.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := Tail(logPath, 0, slog.LevelWarn)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Message != "storage operation failed" || entries[1].Level != slog.LevelError {
		t.Fatalf("entries = %#v", entries)
	}
	if entries[0].Time.IsZero() {
		t.Fatalf("time not parsed from %q", entries[0].Raw)
	}
	if entries[1].Attrs[0] != (Attr{Key: "page", Value: "2"}) {
		t.Fatalf("attrs = %#v", entries[1].Attrs)
	}

	last, err := Tail(logPath, 1, slog.LevelDebug)
	if err != nil || len(last) != 1 || last[0].Message != "list query failed" {
		t.Fatalf("Tail(1) = %#v, %v", last, err)
	}
}
