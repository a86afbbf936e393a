package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane stacks
	// under the list instead of beside it.
	LayoutCompactWidth = 100

	// LayoutTypesWidth is the minimum width to show the types column.
	LayoutTypesWidth = 70
)

// Log display limits.
const (
	// LogTailLines is the number of application log lines loaded per refresh.
	LogTailLines = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// RowEnrichDelay is the pause after selection moves before the selected
	// row's detail is fetched.
	RowEnrichDelay = 150 * time.Millisecond
)
