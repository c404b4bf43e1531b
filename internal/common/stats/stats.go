// Package stats aggregates extracted player records and renders the results as text tables.
package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

// Count is the number of records sharing one field value
type Count struct {
	Key   string
	Count int
}

// Share is the fraction of a group's records matching a value
type Share struct {
	Key     string
	Matched int
	Total   int
	Percent float64
}

// CountBy counts records per value of field, largest first, ties broken by key.
// Records without the field are counted under domain.UnknownNationality.
func CountBy(records []domain.Record, field string) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		counts[keyOf(r, field)]++
	}

	result := make([]Count, 0, len(counts))
	for key, n := range counts {
		result = append(result, Count{Key: key, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// ShareBy groups records by groupField and reports, per group, how many have
// matchField equal to matchValue. Highest percentage first, ties broken by key.
func ShareBy(records []domain.Record, groupField, matchField, matchValue string) []Share {
	groups := make(map[string]*Share)
	for _, r := range records {
		key := keyOf(r, groupField)
		s, ok := groups[key]
		if !ok {
			s = &Share{Key: key}
			groups[key] = s
		}
		s.Total++
		if r.String(matchField) == matchValue {
			s.Matched++
		}
	}

	result := make([]Share, 0, len(groups))
	for _, s := range groups {
		s.Percent = float64(s.Matched) / float64(s.Total) * 100
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Percent != result[j].Percent {
			return result[i].Percent > result[j].Percent
		}
		return result[i].Key < result[j].Key
	})
	return result
}

func keyOf(r domain.Record, field string) string {
	if v := r.String(field); v != "" {
		return v
	}
	return domain.UnknownNationality
}

// RenderCounts writes counts as a table with the given column titles
func RenderCounts(w io.Writer, keyTitle, countTitle string, counts []Count) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", keyTitle, countTitle})
	total := 0
	for i, c := range counts {
		t.AppendRow(table.Row{i + 1, c.Key, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"", "Total", total})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderShares writes shares as a table; matchTitle names the matched value
func RenderShares(w io.Writer, keyTitle, matchTitle string, shares []Share) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", keyTitle, matchTitle, "Total", "%"})
	for i, s := range shares {
		t.AppendRow(table.Row{i + 1, s.Key, s.Matched, s.Total, fmt.Sprintf("%.1f", s.Percent)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
