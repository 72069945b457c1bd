package campaign

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// OutreachStats is a point-in-time snapshot of the outreach counters, built
// from the Prometheus registry so the admin UI and the scrape endpoint never
// disagree.
type OutreachStats struct {
	ConversationsStarted int64            `json:"conversations_started"`
	TerminalByStatus     map[string]int64 `json:"terminal_by_status"`
	LLMFallbacksByStage  map[string]int64 `json:"llm_fallbacks_by_stage"`
	ReplyWait            ReplyWaitSummary `json:"reply_wait"`
}

// ReplyWaitSummary summarizes the reply-wait histogram.
type ReplyWaitSummary struct {
	Total int64   `json:"total"`
	P50S  float64 `json:"p50_seconds"`
	P90S  float64 `json:"p90_seconds"`
}

// StatsHandler serves GET /admin/outreach/stats.
type StatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewStatsHandler builds a stats handler over a metrics gatherer.
func NewStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *StatsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{gatherer: gatherer, logger: logger}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := snapshotStats(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather outreach stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func snapshotStats(gatherer prometheus.Gatherer) (*OutreachStats, error) {
	mfs, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}

	stats := &OutreachStats{
		TerminalByStatus:    map[string]int64{},
		LLMFallbacksByStage: map[string]int64{},
	}

	for _, mf := range mfs {
		switch mf.GetName() {
		case "outreach_conversation_started_total":
			for _, m := range mf.Metric {
				stats.ConversationsStarted += int64(m.GetCounter().GetValue())
			}
		case "outreach_conversation_terminal_total":
			sumByLabel(mf, "status", stats.TerminalByStatus)
		case "outreach_llm_fallback_total":
			sumByLabel(mf, "stage", stats.LLMFallbacksByStage)
		case "outreach_conversation_reply_wait_seconds":
			stats.ReplyWait = summarizeReplyWait(mf)
		}
	}

	return stats, nil
}

func sumByLabel(mf *dto.MetricFamily, label string, out map[string]int64) {
	for _, m := range mf.Metric {
		value := labelValue(m, label)
		if value == "" {
			continue
		}
		out[value] += int64(m.GetCounter().GetValue())
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func summarizeReplyWait(mf *dto.MetricFamily) ReplyWaitSummary {
	cumulativeByUpper := map[float64]uint64{}
	var total uint64

	for _, m := range mf.Metric {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		total += h.GetSampleCount()
		for _, b := range h.Bucket {
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if total == 0 {
		return ReplyWaitSummary{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	return ReplyWaitSummary{
		Total: int64(total),
		P50S:  bucketQuantile(0.50, total, uppers, cumulativeByUpper),
		P90S:  bucketQuantile(0.90, total, uppers, cumulativeByUpper),
	}
}

// bucketQuantile returns the upper bound of the first bucket whose cumulative
// count crosses the quantile. Coarse but stable across scrapes.
func bucketQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	threshold := uint64(math.Ceil(q * float64(total)))
	var lastFinite float64
	for _, upper := range uppers {
		if !math.IsInf(upper, 1) {
			lastFinite = upper
		}
		if cumulativeByUpper[upper] >= threshold {
			if math.IsInf(upper, 1) {
				return lastFinite
			}
			return upper
		}
	}
	return lastFinite
}
