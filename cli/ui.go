package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen)
	colorError   = color.New(color.FgRed)
	colorWarning = color.New(color.FgYellow)
	colorInfo    = color.New(color.FgHiBlack)
	colorValue   = color.New(color.FgCyan)
	colorTitle   = color.New(color.FgCyan, color.Bold)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconCurrent = "→"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colorSuccess.Sprint(iconSuccess), fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colorError.Sprint(iconError), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colorWarning.Sprint(iconWarning), fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colorInfo.Sprint(iconInfo), fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a previous message.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", colorInfo.Sprintf(format, args...))
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, colorTitle.Sprint(title))
}
