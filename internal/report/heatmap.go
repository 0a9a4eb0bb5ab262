package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/Napageneral/msgstats/internal/stats"
)

type heatmapDoc struct {
	AllTime stats.Grid            `json:"all_time"`
	ByYear  map[string]stats.Grid `json:"by_year"`
}

// WriteHeatmaps writes {name: {"all_time": grid, "by_year": {"YYYY": grid}}}.
func WriteHeatmaps(w io.Writer, maps map[string]*stats.Heatmap) error {
	doc := make(map[string]heatmapDoc, len(maps))
	for name, h := range maps {
		entry := heatmapDoc{AllTime: h.AllTime, ByYear: make(map[string]stats.Grid, len(h.ByYear))}
		for year, g := range h.ByYear {
			entry.ByYear[strconv.Itoa(year)] = *g
		}
		doc[name] = entry
	}
	return json.NewEncoder(w).Encode(doc)
}
