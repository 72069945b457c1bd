package leads

import (
	"strings"
	"time"
)

// Lead represents a potential outreach contact with a messaging handle.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Handle      string    `json:"handle"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchedLead is the slice of a lead the outreach dispatcher consumes.
type MatchedLead struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Handle) == "" {
		return ErrMissingHandle
	}
	return nil
}

// Matched converts a stored lead into its dispatcher-facing form.
func (l *Lead) Matched() MatchedLead {
	return MatchedLead{
		ID:          l.ID,
		Handle:      l.Handle,
		Description: l.Description,
	}
}
