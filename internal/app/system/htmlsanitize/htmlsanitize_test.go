// internal/app/system/htmlsanitize/htmlsanitize_test.go
package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Discuss Q3 roadmap", "Discuss Q3 roadmap"},
		{"safe markup kept", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"script stripped", "Hello <script>alert('xss')</script>World", "Hello World"},
		{"onclick stripped", `<p onclick="evil()">text</p>`, "<p>text</p>"},
		{"javascript href stripped", `<a href="javascript:evil()">link</a>`, "link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeLinksGetNoFollow(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">site</a>`)
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("link href lost: %q", got)
	}
	if !strings.Contains(got, `rel="nofollow"`) {
		t.Errorf("expected rel=nofollow on link, got %q", got)
	}
}

func TestSanitizeKeepsTables(t *testing.T) {
	in := `<table><tr><td colspan="2">cell</td></tr></table>`
	got := htmlsanitize.Sanitize(in)
	if !strings.Contains(got, "<table>") || !strings.Contains(got, `colspan="2"`) {
		t.Errorf("table markup not preserved: %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  spaced  ", "spaced"},
		{"<b>subject</b>", "subject"},
		{"<script>x()</script>topic", "topic"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainText(tt.input); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
