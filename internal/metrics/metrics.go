// Package metrics holds the per-category before/after counts a run writes
// into the metrics section of its summary report.
package metrics

import (
	"encoding/json"

	"github.com/dkoosis/lintfix/pkg/classify"
)

// Report is a table of named rows of metric values.
type Report struct {
	Scope       string       `json:"scope"`
	Columns     []string     `json:"columns"`
	Rows        []Row        `json:"rows"`
	Regressions []Regression `json:"regressions"`
}

// Row is a single named row of metric values.
type Row struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	N      int       `json:"n,omitempty"`
}

// Regression records a category that has more diagnostics after the run
// than before it.
type Regression struct {
	Group  string  `json:"group"`
	Metric string  `json:"metric"`
	From   float64 `json:"from"`
	To     float64 `json:"to"`
}

// CategoryColumns are the columns of a category report.
var CategoryColumns = []string{"before", "after", "fixed"}

// FromCategories builds the report for one run. Rows follow
// classify.Categories order and end with a total row.
func FromCategories(scope string, before, after map[classify.Category]int) *Report {
	r := &Report{Scope: scope, Columns: CategoryColumns, Regressions: []Regression{}}
	var tb, ta int
	for _, c := range classify.Categories {
		b, a := before[c], after[c]
		tb += b
		ta += a
		r.Rows = append(r.Rows, Row{Name: c.String(), Values: row(b, a), N: b})
		if a > b {
			r.Regressions = append(r.Regressions, Regression{
				Group: c.String(), Metric: "count", From: float64(b), To: float64(a),
			})
		}
	}
	r.Rows = append(r.Rows, Row{Name: "total", Values: row(tb, ta), N: tb})
	return r
}

func row(before, after int) []float64 {
	return []float64{float64(before), float64(after), float64(max(0, before-after))}
}

// Marshal encodes the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Parse decodes metrics JSON into a Report.
func Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
