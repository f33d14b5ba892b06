// Package report prints a metrics.Report as plain text tables for the command line.
package report

import (
	"chat-analyzer/domain"
	"chat-analyzer/metrics"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Renderer struct {
	out  io.Writer
	opts Options
}

func NewRenderer(out io.Writer, opts Options) *Renderer {
	return &Renderer{out: out, opts: opts}
}

func (r *Renderer) Render(session domain.Session, report metrics.Report) {
	r.header(fmt.Sprintf("%s / %s", session.Filename, report.User))
	fmt.Fprintf(r.out, "%d messages parsed, %d malformed lines skipped (%s)\n",
		session.Messages, session.Skipped, session.Format)
	if report.Empty {
		fmt.Fprintf(r.out, "No messages for %s\n", report.User)
		return
	}

	r.header("Top Statistics")
	r.table([]string{"Messages", "Words", "Media", "Links"}, [][]string{{
		strconv.Itoa(report.Stats.Messages),
		strconv.Itoa(report.Stats.Words),
		strconv.Itoa(report.Stats.Media),
		strconv.Itoa(report.Stats.Links),
	}})

	if len(report.BusyUsers) > 0 {
		r.header("Most Busy Users")
		r.table([]string{"User", "Messages", "Percent"}, lo.Map(r.limit(len(report.BusyUsers)), func(i int, _ int) []string {
			u := report.BusyUsers[i]
			return []string{u.Name, strconv.Itoa(u.Count), strconv.FormatFloat(u.Percent, 'f', 2, 64)}
		}))
	}

	r.counts("Most Common Words", "Word", report.CommonWords)
	r.counts("Emoji", "Emoji", report.Emoji)
	r.counts("Media Shared", "Type", report.MediaTypes)
	r.counts("Languages", "Language", report.Languages)

	r.series("Monthly Timeline", "Month", report.MonthlyTimeline)
	r.series("Most Busy Days", "Day", report.WeekActivity)
	r.series("Most Busy Months", "Month", report.MonthActivity)
	r.series("Active Hours", "Hour", lo.Filter(report.ActiveHours, func(p metrics.Point, _ int) bool {
		return p.Value > 0
	}))
	r.heatmap(report.Heatmap)

	r.header("Conversation")
	r.table([]string{"Mean sentiment", "Scored messages", "Mean response", "Responses"}, [][]string{{
		strconv.FormatFloat(report.MeanSentiment, 'f', 3, 64),
		strconv.Itoa(len(report.Sentiment)),
		(time.Duration(report.MeanResponseSeconds) * time.Second).String(),
		strconv.Itoa(len(report.ResponseTimes)),
	}})
}

// RenderSearch prints the messages matching query.
func (r *Renderer) RenderSearch(query string, messages []domain.Message) {
	r.header(fmt.Sprintf("Search %q", query))
	if len(messages) == 0 {
		fmt.Fprintln(r.out, "No match")
		return
	}
	r.table([]string{"When", "Sender", "Message"}, lo.Map(messages, func(m domain.Message, _ int) []string {
		return []string{m.Timestamp.Format("2006-01-02 15:04"), m.Sender, m.Body}
	}))
}

func (r *Renderer) header(title string) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if r.opts.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Fprintln(r.out, header)
}

func (r *Renderer) counts(title, key string, rows []metrics.Count) {
	if len(rows) == 0 {
		return
	}
	r.header(title)
	r.table([]string{key, "Count"}, lo.Map(r.limit(len(rows)), func(i int, _ int) []string {
		return []string{rows[i].Key, strconv.Itoa(rows[i].Count)}
	}))
}

func (r *Renderer) series(title, label string, s metrics.Series) {
	if len(s) == 0 {
		return
	}
	r.header(title)
	r.table([]string{label, "Messages"}, lo.Map(s, func(p metrics.Point, _ int) []string {
		return []string{p.Label, strconv.Itoa(p.Value)}
	}))
}

// heatmap prints only the periods with at least one message.
func (r *Renderer) heatmap(h metrics.Heatmap) {
	var columns []int
	for p := range h.Periods {
		if lo.SumBy(h.Cells, func(row []int) int { return row[p] }) > 0 {
			columns = append(columns, p)
		}
	}
	if len(columns) == 0 {
		return
	}
	r.header("Weekly Activity Map")
	header := append([]string{"Day"}, lo.Map(columns, func(p int, _ int) string { return h.Periods[p] })...)
	rows := lo.Map(h.Days, func(day string, d int) []string {
		return append([]string{day}, lo.Map(columns, func(p int, _ int) string {
			return strconv.Itoa(h.Cells[d][p])
		})...)
	})
	r.table(header, rows)
}

func (r *Renderer) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, row := range rows {
		table.Append(lo.Map(row, func(cell string, _ int) string {
			return strings.ReplaceAll(cell, "\n", " ")
		}))
	}
	table.Render()
}

// limit returns the row indexes to print.
func (r *Renderer) limit(n int) []int {
	if r.opts.MaxRows > 0 && n > r.opts.MaxRows {
		n = r.opts.MaxRows
	}
	return lo.Range(n)
}
