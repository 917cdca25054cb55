package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"contourqa/internal/vcut"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 18

func renderStatusLine(label string, ok bool, message string, colorize bool) string {
	status := "[OK]"
	color := ansiGreen
	if !ok {
		status = "[ERROR]"
		color = ansiRed
	}
	if message != "" {
		status += " " + message
	}
	return paint(fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status), color, colorize)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatMM(v float64) string {
	return fmt.Sprintf("%.2f mm", v)
}

func passLabel(pass, colorize bool) string {
	if pass {
		return paint("PASS", ansiGreen, colorize)
	}
	return paint("FAIL", ansiRed, colorize)
}

func vcutStatusLabel(s vcut.Status, colorize bool) string {
	switch s {
	case vcut.InTolerance:
		return paint("in", ansiGreen, colorize)
	case vcut.OutOfTolerance:
		return paint("out", ansiRed, colorize)
	default:
		return paint("absent", ansiYellow, colorize)
	}
}

func vcutSummary(counts vcut.Counts) string {
	if counts.Evaluated() == 0 && counts.NotPresent == 0 {
		return "-"
	}
	return fmt.Sprintf("%d in / %d out / %d absent", counts.InTolerance, counts.OutOfTolerance, counts.NotPresent)
}

func renderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return paint(line, ansiBlue, colorize)
}
