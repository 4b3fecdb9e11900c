package submission

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "seotooler/pkg/errors"
)

func validFields() Fields {
	return Fields{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Subject: "Partnership",
		Message: "Hello there",
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello", "hello"},
		{"angle brackets removed", "<script>alert(1)</script>", "scriptalert(1)/script"},
		{"whitespace trimmed", "  \t hi \n", "hi"},
		{"brackets then trim", " <b> ", "b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("é", 1500)

	got := Sanitize(long)
	assert.Equal(t, 1000, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"",
		"<<>>",
		" a < b > c ",
		strings.Repeat("x", 999) + "  <y>",
		strings.Repeat("<a> ", 600),
		strings.Repeat("z", 999) + " " + strings.Repeat("w", 10),
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "sanitize must be idempotent")
		assert.NotContains(t, once, "<")
		assert.NotContains(t, once, ">")
		assert.LessOrEqual(t, utf8.RuneCountInString(once), 1000)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Fields)
		wantErr error
	}{
		{"valid", func(*Fields) {}, nil},
		{"minimal email", func(f *Fields) { f.Email = "a@b.co" }, nil},
		{"missing name", func(f *Fields) { f.Name = "" }, apperrors.ErrMissingField},
		{"whitespace subject", func(f *Fields) { f.Subject = "   " }, apperrors.ErrMissingField},
		{"missing message", func(f *Fields) { f.Message = "" }, apperrors.ErrMissingField},
		{"missing email", func(f *Fields) { f.Email = "" }, apperrors.ErrMissingField},
		{"no at sign", func(f *Fields) { f.Email = "ada.example.com" }, apperrors.ErrInvalidEmail},
		{"two at signs", func(f *Fields) { f.Email = "ada@@example.com" }, apperrors.ErrInvalidEmail},
		{"whitespace in email", func(f *Fields) { f.Email = "ada lovelace@example.com" }, apperrors.ErrInvalidEmail},
		{"no-break space in email", func(f *Fields) { f.Email = "ada\u00a0lovelace@example.com" }, apperrors.ErrInvalidEmail},
		{"ideographic space in domain", func(f *Fields) { f.Email = "ada@exam\u3000ple.com" }, apperrors.ErrInvalidEmail},
		{"unicode local part", func(f *Fields) { f.Email = "ada.récamier@example.com" }, nil},
		{"no dot after at", func(f *Fields) { f.Email = "ada@example" }, apperrors.ErrInvalidEmail},
		{"dot only before at", func(f *Fields) { f.Email = "a.b@example" }, apperrors.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)

			err := Validate(f)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateReportsFirstMissingField(t *testing.T) {
	err := Validate(Fields{Email: "ada@example.com"})

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "name", appErr.Details["field"])
	assert.Equal(t, "All fields are required", appErr.Message)
}

func TestNewSanitizesEverything(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s := New(Fields{
		Name:    " <Ada> ",
		Email:   "ada@example.com",
		Subject: "<i>Hi</i>",
		Message: strings.Repeat("m", 1200),
	}, "198.51.100.4", "Mozilla/5.0 <x>", at)

	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "iHi/i", s.Subject)
	assert.Len(t, s.Message, 1000)
	assert.Equal(t, "Mozilla/5.0 x", s.UserAgent)
	assert.Equal(t, "198.51.100.4", s.ClientIdentity)
	assert.Equal(t, at, s.ReceivedAt)
}

func TestNewSanitizesClientIdentity(t *testing.T) {
	identity := `<a href="x">` + strings.Repeat("A", 5000)
	s := New(Fields{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"},
		identity, "", time.Now())

	assert.NotContains(t, s.ClientIdentity, "<")
	assert.NotContains(t, s.ClientIdentity, ">")
	assert.True(t, strings.HasPrefix(s.ClientIdentity, `a href="x"AAA`))
	assert.Len(t, s.ClientIdentity, 1000)
}

func TestFormat(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	s := Submission{
		Name:           "Ada",
		Email:          "ada@example.com",
		Subject:        "Partnership",
		Message:        "Line one\nLine two",
		ClientIdentity: "198.51.100.4",
		UserAgent:      "curl/8.0",
		ReceivedAt:     time.Date(2024, 5, 2, 12, 30, 0, 0, loc),
	}

	want := "📬 <b>New contact form submission</b>\n\n" +
		"<b>Name:</b> Ada\n" +
		"<b>Email:</b> ada@example.com\n" +
		"<b>Subject:</b> Partnership\n\n" +
		"<b>Message:</b>\nLine one\nLine two\n\n" +
		"<b>Received:</b> 2024-05-02 09:30:00 UTC\n" +
		"<b>Client:</b> 198.51.100.4\n" +
		"<b>User-Agent:</b> curl/8.0"

	assert.Equal(t, want, Format(s))
}

func TestFormatSectionOrder(t *testing.T) {
	out := Format(Submission{
		Name:           "n",
		Email:          "e@x.io",
		Subject:        "s",
		Message:        "body",
		ClientIdentity: "unknown",
		ReceivedAt:     time.Unix(0, 0),
	})

	name := strings.Index(out, "<b>Name:</b>")
	body := strings.Index(out, "<b>Message:</b>")
	meta := strings.Index(out, "<b>Received:</b>")
	assert.True(t, name < body && body < meta)
	assert.Contains(t, out, "<b>User-Agent:</b> unknown")
}

func TestFormatFitsNotificationLimit(t *testing.T) {
	long := func(r string) string { return strings.Repeat(r, 1000) }

	t.Run("message absorbs the overflow", func(t *testing.T) {
		s := Submission{
			Name:           "Ada",
			Email:          "ada@example.com",
			Subject:        long("s"),
			Message:        long("é") + long("m") + long("m") + long("m"),
			ClientIdentity: "198.51.100.4",
			UserAgent:      long("u"),
			ReceivedAt:     time.Unix(0, 0),
		}

		out := Format(s)
		assert.Equal(t, 4096, utf8.RuneCountInString(out))
		assert.Contains(t, out, "<b>Subject:</b> "+long("s")+"\n")
		assert.Contains(t, out, "m…\n\n<b>Received:</b>")
		assert.True(t, strings.HasSuffix(out, "<b>User-Agent:</b> "+long("u")))
	})

	t.Run("every field at its cap", func(t *testing.T) {
		s := Submission{
			Name:           long("n"),
			Email:          long("e"),
			Subject:        long("s"),
			Message:        long("é"),
			ClientIdentity: strings.Repeat("i", 256),
			UserAgent:      long("u"),
			ReceivedAt:     time.Unix(0, 0),
		}

		out := Format(s)
		assert.Equal(t, 4096, utf8.RuneCountInString(out))
		assert.Contains(t, out, "<b>Name:</b> "+long("n")+"\n")
		assert.Contains(t, out, "<b>Message:</b>\n…\n\n")
		assert.True(t, strings.HasSuffix(out, "…"))
	})

	t.Run("short text untouched", func(t *testing.T) {
		s := Submission{Name: "Ada", Email: "a@b.co", Subject: "Hi", Message: "Hello", ReceivedAt: time.Unix(0, 0)}
		assert.NotContains(t, Format(s), "…")
	})
}
