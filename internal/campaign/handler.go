package campaign

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/internal/leads"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// Handler handles campaign HTTP requests: context generation and outreach
// launches.
type Handler struct {
	summarizer  *Summarizer
	matcher     *leads.Matcher
	publisher   *conversation.Publisher
	jobs        conversation.JobRecorder
	transcripts conversation.TranscriptStore
	maxMatches  int
	logger      *logging.Logger
}

// NewHandler creates a campaign handler. jobs and transcripts may be nil when
// job tracking or transcript persistence is disabled.
func NewHandler(
	summarizer *Summarizer,
	matcher *leads.Matcher,
	publisher *conversation.Publisher,
	jobs conversation.JobRecorder,
	transcripts conversation.TranscriptStore,
	maxMatches int,
	logger *logging.Logger,
) *Handler {
	if summarizer == nil {
		panic("campaign: summarizer cannot be nil")
	}
	if matcher == nil {
		panic("campaign: matcher cannot be nil")
	}
	if publisher == nil {
		panic("campaign: publisher cannot be nil")
	}
	if maxMatches <= 0 {
		maxMatches = 25
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		summarizer:  summarizer,
		matcher:     matcher,
		publisher:   publisher,
		jobs:        jobs,
		transcripts: transcripts,
		maxMatches:  maxMatches,
		logger:      logger,
	}
}

// ContextResponse carries the generated campaign context.
type ContextResponse struct {
	FinalContext string `json:"finalContext"`
}

// GenerateContext handles POST /api/campaign-context requests.
func (h *Handler) GenerateContext(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Error("failed to decode campaign input", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrEmptyCampaignInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to generate campaign context", "error", err)
		http.Error(w, "failed to generate context", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ContextResponse{FinalContext: summary})
}

// LaunchRequest starts outreach for a campaign. Either a pre-generated
// context or the raw questionnaire must be supplied.
type LaunchRequest struct {
	CampaignContext string   `json:"campaignContext,omitempty"`
	InitialMessage  string   `json:"initialMessage,omitempty"`
	Answers         []string `json:"answers,omitempty"`
}

// LaunchResponse reports the enqueued dispatch job.
type LaunchResponse struct {
	JobID   string              `json:"jobId"`
	Context string              `json:"context"`
	Leads   []leads.MatchedLead `json:"leads"`
}

// Launch handles POST /api/campaigns requests: summarize if needed, match
// leads, and enqueue the dispatch job.
func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	var req LaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode launch request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary := req.CampaignContext
	if summary == "" {
		var err error
		summary, err = h.summarizer.Summarize(r.Context(), Input{
			InitialMessage: req.InitialMessage,
			Answers:        req.Answers,
		})
		if err != nil {
			if errors.Is(err, ErrEmptyCampaignInput) {
				http.Error(w, "campaignContext or initialMessage required", http.StatusBadRequest)
				return
			}
			h.logger.Error("failed to summarize campaign", "error", err)
			http.Error(w, "failed to generate context", http.StatusBadGateway)
			return
		}
	}

	matched, err := h.matcher.Match(r.Context(), summary, h.maxMatches)
	if err != nil {
		h.logger.Error("failed to match leads", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(matched) == 0 {
		http.Error(w, "no leads matched the campaign", http.StatusUnprocessableEntity)
		return
	}

	jobID, err := h.publisher.EnqueueDispatch(r.Context(), summary, matched)
	if err != nil {
		h.logger.Error("failed to enqueue dispatch", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.jobs != nil {
		record := &conversation.JobRecord{
			JobID:           jobID,
			CampaignSummary: summary,
			LeadCount:       len(matched),
		}
		if err := h.jobs.PutPending(r.Context(), record); err != nil {
			h.logger.Warn("failed to record dispatch job", "job_id", jobID, "error", err)
		}
	}

	h.logger.Info("campaign dispatched", "job_id", jobID, "leads", len(matched))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(LaunchResponse{
		JobID:   jobID,
		Context: summary,
		Leads:   matched,
	})
}

// GetJob handles GET /admin/outreach/jobs/{jobID} requests.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		http.Error(w, "job tracking disabled", http.StatusNotFound)
		return
	}

	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, conversation.ErrJobNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch job", "job_id", jobID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetTranscript handles GET /admin/outreach/conversations/{conversationID}.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	if h.transcripts == nil {
		http.Error(w, "transcript persistence disabled", http.StatusNotFound)
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		http.Error(w, "missing conversation id", http.StatusBadRequest)
		return
	}

	record, err := h.transcripts.Load(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, conversation.ErrTranscriptNotFound) {
			http.Error(w, "transcript not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load transcript", "conversation_id", conversationID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}
