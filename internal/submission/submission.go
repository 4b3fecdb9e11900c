package submission

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"seotooler/internal/constants"
	apperrors "seotooler/pkg/errors"
)

// Fields is the raw JSON body posted by the contact form.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submission is one sanitized contact request. It lives for a single
// request and is never persisted.
type Submission struct {
	Name           string
	Email          string
	Subject        string
	Message        string
	ClientIdentity string
	UserAgent      string
	ReceivedAt     time.Time
}

// \s only covers ASCII whitespace, so Unicode separators are excluded
// explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// Sanitize removes angle brackets, trims surrounding whitespace and caps
// the result at MaxFieldLength runes.
func Sanitize(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > constants.MaxFieldLength {
		s = strings.TrimSpace(string(runes[:constants.MaxFieldLength]))
	}
	return s
}

// Validate checks the raw fields before sanitization.
func Validate(f Fields) error {
	required := []struct {
		field string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"subject", f.Subject},
		{"message", f.Message},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.ErrMissingField.WithDetail("field", r.field)
		}
	}

	if !emailPattern.MatchString(f.Email) {
		return apperrors.ErrInvalidEmail
	}
	return nil
}

func New(f Fields, identity, userAgent string, receivedAt time.Time) Submission {
	return Submission{
		Name:           Sanitize(f.Name),
		Email:          Sanitize(f.Email),
		Subject:        Sanitize(f.Subject),
		Message:        Sanitize(f.Message),
		ClientIdentity: Sanitize(identity),
		UserAgent:      Sanitize(userAgent),
		ReceivedAt:     receivedAt,
	}
}

const truncationMarker = "…"

// Format renders the notification text. Labels use HTML bold tags because
// the relay sends with parse_mode=HTML. The result never exceeds
// MaxNotificationLength runes: the message, then the user agent, subject
// and name are shortened until it fits.
func Format(s Submission) string {
	text := render(s)
	for _, field := range []*string{&s.Message, &s.UserAgent, &s.Subject, &s.Name} {
		over := utf8.RuneCountInString(text) - constants.MaxNotificationLength
		if over <= 0 {
			break
		}
		*field = shorten(*field, over)
		text = render(s)
	}
	return text
}

// shorten drops at least n runes from the end of s and marks the cut.
func shorten(s string, n int) string {
	runes := []rune(s)
	keep := len(runes) - n - utf8.RuneCountInString(truncationMarker)
	if keep <= 0 {
		return truncationMarker
	}
	return string(runes[:keep]) + truncationMarker
}

func render(s Submission) string {
	var b strings.Builder

	b.WriteString("📬 <b>New contact form submission</b>\n\n")

	fmt.Fprintf(&b, "<b>Name:</b> %s\n", s.Name)
	fmt.Fprintf(&b, "<b>Email:</b> %s\n", s.Email)
	fmt.Fprintf(&b, "<b>Subject:</b> %s\n\n", s.Subject)

	fmt.Fprintf(&b, "<b>Message:</b>\n%s\n\n", s.Message)

	fmt.Fprintf(&b, "<b>Received:</b> %s\n", s.ReceivedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "<b>Client:</b> %s\n", s.ClientIdentity)
	fmt.Fprintf(&b, "<b>User-Agent:</b> %s", orUnknown(s.UserAgent))

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return constants.UnknownIdentity
	}
	return s
}
