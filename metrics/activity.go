package metrics

import (
	"chat-analyzer/domain"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Point is one labelled value of a series.
type Point struct {
	Label string
	Value int
}

type Series []Point

// Heatmap counts messages per day of week (rows, Monday first) and hour period (columns).
type Heatmap struct {
	Days    []string
	Periods []string
	Cells   [][]int
}

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

func (e *Engine) MonthlyTimeline(user string, export *domain.Export) Series {
	return e.monthlyTimeline(selectView(user, export))
}

func (e *Engine) monthlyTimeline(v view) Series {
	type month struct {
		year  int
		month time.Month
	}
	counts := make(map[month]int)
	for _, m := range v.authored {
		counts[month{m.Year, m.Month}]++
	}
	keys := make([]month, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	series := make(Series, 0, len(keys))
	for _, k := range keys {
		series = append(series, Point{Label: fmt.Sprintf("%s-%d", k.month, k.year), Value: counts[k]})
	}
	return series
}

func (e *Engine) DailyTimeline(user string, export *domain.Export) Series {
	return e.dailyTimeline(selectView(user, export))
}

func (e *Engine) dailyTimeline(v view) Series {
	var days []string
	count := func(day string) int { return v.export.CountOn(day) }
	if v.overall() && v.export != nil {
		days = v.export.Dates()
	} else {
		c := newCounter()
		for _, m := range v.authored {
			c.add(m.Date.Format(domain.DateLayout))
		}
		days = c.order
		count = func(day string) int { return c.counts[day] }
	}
	sorted := append([]string(nil), days...)
	// DateLayout is ISO, lexical order is chronological.
	sort.Strings(sorted)
	series := make(Series, 0, len(sorted))
	for _, day := range sorted {
		series = append(series, Point{Label: day, Value: count(day)})
	}
	return series
}

func (e *Engine) WeekActivityMap(user string, export *domain.Export) Series {
	return e.weekActivityMap(selectView(user, export))
}

func (e *Engine) weekActivityMap(v view) Series {
	counts := make(map[time.Weekday]int)
	for _, m := range v.authored {
		counts[m.Weekday]++
	}
	series := make(Series, 0, len(counts))
	for _, d := range weekOrder {
		if n := counts[d]; n > 0 {
			series = append(series, Point{Label: d.String(), Value: n})
		}
	}
	return byValue(series)
}

func (e *Engine) MonthActivityMap(user string, export *domain.Export) Series {
	return e.monthActivityMap(selectView(user, export))
}

func (e *Engine) monthActivityMap(v view) Series {
	counts := make(map[time.Month]int)
	for _, m := range v.authored {
		counts[m.Month]++
	}
	series := make(Series, 0, len(counts))
	for mo := time.January; mo <= time.December; mo++ {
		if n := counts[mo]; n > 0 {
			series = append(series, Point{Label: mo.String(), Value: n})
		}
	}
	return byValue(series)
}

func (e *Engine) ActivityHeatmap(user string, export *domain.Export) Heatmap {
	return e.activityHeatmap(selectView(user, export))
}

func (e *Engine) activityHeatmap(v view) Heatmap {
	h := Heatmap{
		Days:    make([]string, len(weekOrder)),
		Periods: make([]string, 24),
		Cells:   make([][]int, len(weekOrder)),
	}
	row := make(map[time.Weekday]int, len(weekOrder))
	for i, d := range weekOrder {
		h.Days[i] = d.String()
		h.Cells[i] = make([]int, 24)
		row[d] = i
	}
	for hour := 0; hour < 24; hour++ {
		h.Periods[hour] = domain.PeriodLabel(hour)
	}
	for _, m := range v.authored {
		h.Cells[row[m.Weekday]][m.Hour]++
	}
	return h
}

func (e *Engine) ActiveHoursAnalysis(user string, export *domain.Export) Series {
	return e.activeHours(selectView(user, export))
}

func (e *Engine) activeHours(v view) Series {
	series := make(Series, 24)
	for hour := range series {
		series[hour].Label = strconv.Itoa(hour)
	}
	for _, m := range v.authored {
		series[m.Hour].Value++
	}
	return series
}

// byValue orders a series by descending value, keeping the input order on ties.
func byValue(s Series) Series {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Value > s[j].Value
	})
	return s
}
