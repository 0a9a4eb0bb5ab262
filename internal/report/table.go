package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Napageneral/msgstats/internal/stats"
)

// PrintSplitTable prints the direct/group split as an aligned table.
func PrintSplitTable(w io.Writer, vols []stats.ContactVolume) {
	fmt.Fprintf(w, "%-30s %10s %10s %10s %10s %10s %10s\n",
		"Name", "Sent DM", "Recv DM", "Total DM", "Sent GC", "Recv GC", "Total GC")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, v := range vols {
		name := v.Name
		if r := []rune(name); len(r) > 29 {
			name = string(r[:29])
		}
		fmt.Fprintf(w, "%-30s %10s %10s %10s %10s %10s %10s\n",
			name,
			thousands(v.Direct.Sent), thousands(v.Direct.Received), thousands(v.Direct.Total()),
			thousands(v.Group.Sent), thousands(v.Group.Received), thousands(v.Group.Total()),
		)
	}
}

func thousands(n int) string {
	return humanize.Comma(int64(n))
}
