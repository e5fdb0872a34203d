package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kalambet/dietfit/internal/bmi"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// categoryColors approximates each category's hex tint on a 16-color
// terminal.
var categoryColors = [bmi.NumCategories]string{
	bmi.Underweight: colorBlue,
	bmi.Normal:      colorGreen,
	bmi.Overweight:  colorYellow,
	bmi.Obese:       colorRed,
}

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func colorizeCategory(c bmi.Category, text string) string {
	if !c.Valid() {
		return colorize(colorGray, text)
	}
	return colorize(categoryColors[c], text)
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printField writes an aligned "label: value" line to w.
func printField(w io.Writer, label string, format string, args ...any) {
	fmt.Fprintf(w, "%-16s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
