package notify

import (
	"bytes"
	"fmt"
	"time"

	"settlo-leads/api/services/storage"
)

const (
	// DefaultBrand appears in the email header and footer.
	DefaultBrand = "Settlo"
	// TimestampLayout renders Submitted At in the day-first en-IN style.
	TimestampLayout = "2/1/2006, 3:04:05 pm"
)

// Notification is a formatted email ready for delivery.
type Notification struct {
	Subject string
	Text    string
	HTML    string
}

// Formatter turns a lead into a Notification. It has no side effects.
type Formatter struct {
	Brand    string
	Location *time.Location
	Now      func() time.Time
}

// NewFormatter returns a Formatter that renders timestamps in loc. Empty
// brand and nil loc fall back to DefaultBrand and UTC.
func NewFormatter(brand string, loc *time.Location) *Formatter {
	if brand == "" {
		brand = DefaultBrand
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{Brand: brand, Location: loc, Now: time.Now}
}

type leadView struct {
	Brand       string
	Badge       string
	Name        string
	Email       string
	Phone       string
	Company     string
	Demo        string
	Message     string
	SubmittedAt string
	Year        int
}

// Subject builds the email subject line for a lead.
func Subject(lead storage.Lead) string {
	if lead.Source == storage.SourceContact {
		return "🔔 New Contact Form Submission - " + lead.Name
	}
	if lead.Demo != nil && *lead.Demo != "" {
		return fmt.Sprintf("🚀 New Demo Request - %s (%s)", lead.Name, *lead.Demo)
	}
	return "🚀 New Demo Request - " + lead.Name
}

// Format renders the subject plus HTML and plain-text bodies.
func (f *Formatter) Format(lead storage.Lead) (Notification, error) {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	brand := f.Brand
	if brand == "" {
		brand = DefaultBrand
	}

	view := leadView{
		Brand:       brand,
		Badge:       "Demo Request",
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Company:     deref(lead.Company),
		Demo:        deref(lead.Demo),
		Message:     deref(lead.Message),
		SubmittedAt: lead.CreatedAt.In(loc).Format(TimestampLayout),
		Year:        now().In(loc).Year(),
	}
	if lead.Source == storage.SourceContact {
		view.Badge = "Contact Form"
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, view); err != nil {
		return Notification{}, fmt.Errorf("notify: render html: %w", err)
	}
	if err := textTmpl.Execute(&text, view); err != nil {
		return Notification{}, fmt.Errorf("notify: render text: %w", err)
	}

	return Notification{
		Subject: Subject(lead),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
