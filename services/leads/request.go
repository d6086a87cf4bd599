package leads

import (
	"strings"

	"settlo-leads/api/services/storage"
)

const (
	msgMissingFields = "Missing required fields: name, email, phone, and source are required"
	msgInvalidSource = `Source must be either "contact" or "hero"`
)

// ValidationError is a client input problem. It maps to 400 and its
// Message is returned to the caller verbatim.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreateLeadRequest is the POST /api/leads body. Any id or createdAt sent
// by the client is ignored.
type CreateLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
	Demo    string `json:"demo"`
	Source  string `json:"source"`
}

// Validate checks required fields first, then the source, and returns the
// draft to persist. Blank optional fields become nil. The source must match
// exactly; surrounding whitespace makes it invalid.
func (req CreateLeadRequest) Validate() (storage.LeadDraft, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	source := storage.Source(req.Source)

	if name == "" || email == "" || phone == "" || strings.TrimSpace(req.Source) == "" {
		return storage.LeadDraft{}, &ValidationError{Reason: "missing_fields", Message: msgMissingFields}
	}
	if !source.Valid() {
		return storage.LeadDraft{}, &ValidationError{Reason: "invalid_source", Message: msgInvalidSource}
	}

	return storage.LeadDraft{
		Name:    name,
		Email:   email,
		Phone:   phone,
		Company: optional(req.Company),
		Message: optional(req.Message),
		Demo:    optional(req.Demo),
		Source:  source,
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
