package display

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/grovetools/speechprep/internal/pipeline"
)

// FormatReasonsTable renders rejection reasons with their counts and share
// of all rejected records.
func FormatReasonsTable(reasons []pipeline.ReasonCount, rejected int) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "REASON\tCOUNT\tSHARE")
	for _, r := range reasons {
		share := 0.0
		if rejected > 0 {
			share = 100 * float64(r.Count) / float64(rejected)
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", r.Reason, r.Count, share)
	}
	w.Flush()
	return buf.String()
}

// FormatKeyValues renders aligned "key  value" rows in the given order.
func FormatKeyValues(rows [][2]string) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(w, "  %s\t%s\n", row[0], row[1])
	}
	w.Flush()
	return buf.String()
}
