package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/semiconip/patentspike/schema"
)

// Color variables for console output.
var (
	SpikeColor       = color.New(color.FgGreen, color.Bold, color.BlinkSlow) // strategic spikes blink like the dashboard
	EmergingColor    = color.New(color.FgYellow, color.Bold)
	NewActivityColor = color.New(color.FgCyan)
	NormalColor      = color.New(color.Faint)
)

// signalEmoji mirrors the markers used on the original dashboard.
var signalEmoji = map[schema.Signal]string{
	schema.StrategicSpike: "🔴",
	schema.EmergingSignal: "🟡",
	schema.NewActivity:    "🔵",
	schema.NormalSignal:   "⚪",
}

// GetPlainLabel returns the tier name, optionally followed by its emoji marker.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(s schema.Signal, emoji bool) string {
	if emoji {
		if e, ok := signalEmoji[s]; ok {
			return string(s) + " " + e
		}
	}
	return string(s)
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(s schema.Signal, emoji bool) string {
	text := GetPlainLabel(s, emoji)

	switch s {
	case schema.StrategicSpike:
		return SpikeColor.Sprint(text)
	case schema.EmergingSignal:
		return EmergingColor.Sprint(text)
	case schema.NewActivity:
		return NewActivityColor.Sprint(text)
	default:
		return NormalColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".patentspike_cache.db"
	}
	return filepath.Join(homeDir, ".patentspike_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".patentspike_analysis.db"
	}
	return filepath.Join(homeDir, ".patentspike_analysis.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// SplitList splits a comma-separated string, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
