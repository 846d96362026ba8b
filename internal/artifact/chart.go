package artifact

import (
	"log/slog"

	"github.com/nimbusops/console/internal/marker"
)

// ExtractChart pulls the [CHART]...[/CHART] sub-payload out of chart
// artifact content. Actual plotting is the browser collaborator's job; the
// console only ships the decoded series to the page, scheduled after the
// panel node exists.
func ExtractChart(content string, logger *slog.Logger) (marker.Chart, bool) {
	res := marker.Extract(content)
	for _, span := range res.Spans {
		if span.Kind == marker.KindChart {
			return marker.DecodeChart(span.Payload, logger)
		}
	}
	// Some backends send the chart JSON bare, without the tag pair.
	return marker.DecodeChart(content, logger)
}
