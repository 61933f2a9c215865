package llama

import (
	"math"
	"time"

	"github.com/tidwall/gjson"
)

const (
	dayLayout = "2006-01-02"
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// PctChange returns (cur - prev) / prev * 100, or 0 when prev is zero or not
// a finite number. No prior data reports no change.
func PctChange(cur, prev float64) float64 {
	if prev == 0 || math.IsNaN(prev) || math.IsInf(prev, 0) {
		return 0
	}
	return (cur - prev) / prev * 100
}

// DayDate formats unix seconds as a UTC calendar day, YYYY-MM-DD.
func DayDate(ts float64) string {
	return unixTime(ts).Format(dayLayout)
}

// ISODate formats unix seconds as a UTC timestamp with milliseconds.
func ISODate(ts float64) string {
	return unixTime(ts).Format(isoLayout)
}

func unixTime(ts float64) time.Time {
	return time.UnixMilli(int64(math.Round(ts * 1000))).UTC()
}

// ChartPoint is one point of a single-series chart.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// pairChart converts [[unixSeconds, value], ...] into day-dated points.
func pairChart(series gjson.Result) []ChartPoint {
	return each(series, Query{}, func(p gjson.Result) ChartPoint {
		return ChartPoint{Date: DayDate(p.Get("0").Float()), Value: p.Get("1").Float()}
	})
}

// objectChart converts [{dateField: unixSeconds, ...}, ...] into day-dated
// points taking the value from valuePath.
func objectChart(series gjson.Result, dateField, valuePath string) []ChartPoint {
	return each(series, Query{}, func(p gjson.Result) ChartPoint {
		return ChartPoint{Date: DayDate(num(p, dateField)), Value: num(p, valuePath)}
	})
}

// NormalizeBreakdown turns [[unixSeconds, {name: value}], ...] into rows that
// all carry every name seen anywhere in the series. Names absent from a point
// are filled with 0 so every row has the same columns. Each row also has a
// day-dated "date" key.
func NormalizeBreakdown(series gjson.Result) []map[string]any {
	points := elems(series)
	rows := make([]map[string]any, 0, len(points))
	if len(points) == 0 {
		return rows
	}

	var names []string
	seen := make(map[string]struct{})
	for _, p := range points {
		p.Get("1").ForEach(func(k, _ gjson.Result) bool {
			if _, ok := seen[k.String()]; !ok {
				seen[k.String()] = struct{}{}
				names = append(names, k.String())
			}
			return true
		})
	}

	for _, p := range points {
		row := make(map[string]any, len(names)+1)
		row["date"] = DayDate(p.Get("0").Float())
		for _, n := range names {
			row[n] = 0.0
		}
		p.Get("1").ForEach(func(k, v gjson.Result) bool {
			row[k.String()] = v.Float()
			return true
		})
		rows = append(rows, row)
	}
	return rows
}

// Metric is one row of a statistics table.
type Metric struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// OpenInterestStats derives the summary table from an open-interest overview:
// the latest total, its change against the previous point and against the
// point eight back from the end, and the protocol and chain counts. A change
// without enough history is 0.
func OpenInterestStats(doc gjson.Result) []Metric {
	chart := elems(doc.Get("totalDataChart"))
	n := len(chart)
	value := func(i int) float64 { return chart[i].Get("1").Float() }

	var latest, prev, weekAgo float64
	if n >= 1 {
		latest = value(n - 1)
	}
	if n >= 2 {
		prev = value(n - 2)
	}
	if n >= 9 {
		weekAgo = value(n - 8)
	}

	return []Metric{
		{Metric: "Total Open Interest", Value: latest},
		{Metric: "24h Change", Value: PctChange(latest, prev)},
		{Metric: "7d Change", Value: PctChange(latest, weekAgo)},
		{Metric: "Total Protocols", Value: float64(len(elems(doc.Get("protocols"))))},
		{Metric: "Total Chains", Value: float64(len(elems(doc.Get("allChains"))))},
	}
}
