// Package diagdisplay renders a result.Result for a terminal through
// Render(res, w), kept separate from the result package itself so the core
// has zero dependency on pterm. Grounded on
// the teacher's `logging/display.go`: the same colored-tag-then-message
// banner style (SuccessStyleBG/WarnStyleBG/ErrorStyleBG), the same
// all-done/error-and-warning-count summary line, built with the same
// github.com/pterm/pterm styles.
package diagdisplay

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"chigraph/result"
)

var (
	successStyle = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnStyle    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorStyle   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)

	successColor = pterm.FgLightGreen
	warnColor    = pterm.FgYellow
	errorColor   = pterm.FgRed
)

// Render writes every entry of res to w, tagged with a colored banner
// derived from the entry's code ('E' prefix => error, 'W' prefix =>
// warning, anything else => informational), followed by a summary line
// counting errors and warnings.
func Render(res *result.Result, w io.Writer) {
	for _, entry := range res.Entries {
		renderEntry(entry, w)
	}

	renderSummary(res, w)
}

func renderEntry(entry result.Entry, w io.Writer) {
	var style *pterm.Style
	var tag string

	switch {
	case entry.IsError():
		style, tag = errorStyle, "Error "+entry.Code
	case entry.IsWarning():
		style, tag = warnStyle, "Warning "+entry.Code
	default:
		style, tag = successStyle, entry.Code
	}

	fmt.Fprint(w, style.Sprint(tag))
	fmt.Fprintln(w, " "+entry.Message)

	if len(entry.Context) > 0 {
		keys := make([]string, 0, len(entry.Context))
		for k := range entry.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(w, "    %s: %s\n", k, entry.Context[k])
		}
	}
}

func renderSummary(res *result.Result, w io.Writer) {
	var errorCount, warnCount int
	for _, e := range res.Entries {
		switch {
		case e.IsError():
			errorCount++
		case e.IsWarning():
			warnCount++
		}
	}

	fmt.Fprint(w, "\n")
	if res.Success() {
		fmt.Fprint(w, successColor.Sprint("All done! "))
	} else {
		fmt.Fprint(w, errorColor.Sprint("Oh no! "))
	}

	var parts []string
	if errorCount == 1 {
		parts = append(parts, errorColor.Sprint("1 error"))
	} else if errorCount > 0 {
		parts = append(parts, errorColor.Sprintf("%d errors", errorCount))
	} else {
		parts = append(parts, successColor.Sprint("0 errors"))
	}

	if warnCount == 1 {
		parts = append(parts, warnColor.Sprint("1 warning"))
	} else if warnCount > 0 {
		parts = append(parts, warnColor.Sprintf("%d warnings", warnCount))
	} else {
		parts = append(parts, successColor.Sprint("0 warnings"))
	}

	fmt.Fprintln(w, "("+strings.Join(parts, ", ")+")")
}
