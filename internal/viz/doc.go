// Package viz renders problems, trial runs and validation results for the
// terminal.
//
// Text is styled with lipgloss; trajectories are drawn with asciigraph. All
// renderers return strings and never write to the terminal themselves, so the
// output degrades to plain text when stdout is not a TTY.
package viz
