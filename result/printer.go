package result

import (
	"fmt"
	"io"
)

// PrintSummary writes the crawled pages, any failures and the totals to w.
func PrintSummary(w io.Writer, res *Result) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if len(res.Pages) == 0 {
		writef("No pages extracted.\n")
	} else {
		writef("Pages:\n")
		for _, p := range res.Pages {
			writef("  %s (%d bytes)\n", p.URL, len(p.Markdown))
		}
	}

	if len(res.Failures) > 0 {
		writef("\nFailed:\n")
		for _, f := range res.Failures {
			if f.StatusCode != 0 {
				writef("  %s: status %d\n", f.URL, f.StatusCode)
			} else {
				writef("  %s: %s\n", f.URL, f.Error)
			}
		}
	}

	writef("Extracted %d of %d pages (%d failed) in %s\n",
		len(res.Pages), res.Stats.Processed, res.Stats.Failed, res.Stats.Duration.Round(1_000_000))
}
