package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ssbulk/internal/usecase/update"
)

// progressPrinter writes one human-readable line per processed saved search.
func progressPrinter(w io.Writer) update.ProgressFunc {
	return func(e update.Event) {
		var b strings.Builder
		if e.DryRun {
			b.WriteString("(dry run) ")
		}
		fmt.Fprintf(&b, "[%s] %s/%s: ", e.Action, e.App, e.Search)

		switch e.Action {
		case update.ActionSet:
			fmt.Fprintf(&b, "%s = %s", e.Parameter, strconv.Quote(e.Value))
		case update.ActionAppend:
			fmt.Fprintf(&b, "%s[%s] += %s", e.Parameter, strconv.Quote(e.Key), quoteList(e.Values))
		default:
			fmt.Fprintf(&b, "%s[%s] = %s", e.Parameter, strconv.Quote(e.Key), quoteList(e.Values))
		}
		if e.Reset {
			b.WriteString(" (previous value was not a JSON object)")
		}

		fmt.Fprintln(w, b.String())
	}
}

func printSummary(w io.Writer, s update.Summary) {
	if s.DryRun {
		fmt.Fprintf(w, "Dry run complete: %d saved searches matched, nothing persisted.\n", s.Matched)
		return
	}
	fmt.Fprintf(w, "Completed updating saved searches: %d matched, %d updated.\n", s.Matched, s.Updated)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
