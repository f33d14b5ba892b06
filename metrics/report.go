package metrics

import (
	"chat-analyzer/domain"
	"context"
)

// Report is the whole battery for one user filter.
type Report struct {
	User string
	// Empty is set when the filter selects no message, every other field is then zero.
	Empty bool

	Stats               Stats
	MonthlyTimeline     Series
	DailyTimeline       Series
	WeekActivity        Series
	MonthActivity       Series
	Heatmap             Heatmap
	BusyUsers           []BusyUser
	WordCloud           map[string]int
	CommonWords         []Count
	Emoji               []Count
	Sentiment           []float64
	MeanSentiment       float64
	ResponseTimes       []float64
	MeanResponseSeconds float64
	ActiveHours         Series
	MediaTypes          []Count
	MessageLength       []LengthPoint
	Languages           []Count
}

// Run computes every metric in sequence. The context is checked between metrics and a
// cancellation discards the partial report.
func (e *Engine) Run(ctx context.Context, user string, export *domain.Export) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	v := selectView(user, export)
	report := Report{User: user}
	if len(v.records) == 0 || (!v.overall() && len(v.authored) == 0) {
		report.Empty = true
		return report, nil
	}

	steps := []func(){
		func() { report.Stats = e.fetchStats(v) },
		func() { report.MonthlyTimeline = e.monthlyTimeline(v) },
		func() { report.DailyTimeline = e.dailyTimeline(v) },
		func() { report.WeekActivity = e.weekActivityMap(v) },
		func() { report.MonthActivity = e.monthActivityMap(v) },
		func() { report.Heatmap = e.activityHeatmap(v) },
		func() { report.BusyUsers = e.mostBusyUsers(v) },
		func() { report.WordCloud = e.wordCloud(v) },
		func() { report.CommonWords = e.mostCommonWords(v) },
		func() { report.Emoji = e.emojiHelper(v) },
		func() {
			report.Sentiment = e.sentiment(v)
			report.MeanSentiment = Mean(report.Sentiment)
		},
		func() {
			report.ResponseTimes = e.responseTimes(v)
			report.MeanResponseSeconds = Mean(report.ResponseTimes)
		},
		func() { report.ActiveHours = e.activeHours(v) },
		func() { report.MediaTypes = e.mediaTypes(v) },
		func() { report.MessageLength = e.lengthTimeline(v) },
		func() { report.Languages = e.languages(v) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		step()
	}
	return report, nil
}
