package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("full frontmatter", func(t *testing.T) {
		content := []byte("---\ncampaign: ember-march\nsession: session-12\ntitle: The Siege Begins\ndate: 2026-03-14\n---\n\nAldric rallied the defenders at the gate.\n")
		transcript, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.Campaign != "ember-march" {
			t.Fatalf("expected campaign, got %q", transcript.Campaign)
		}
		if transcript.Session != "session-12" {
			t.Fatalf("expected session, got %q", transcript.Session)
		}
		if transcript.Title != "The Siege Begins" {
			t.Fatalf("expected title, got %q", transcript.Title)
		}
		if transcript.Date != "2026-03-14" {
			t.Fatalf("expected date, got %q", transcript.Date)
		}
		if transcript.Body == "" {
			t.Fatalf("expected body")
		}
	})

	t.Run("minimal frontmatter", func(t *testing.T) {
		content := []byte("---\ncampaign: ember-march\nsession: s1\n---\n")
		transcript, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.Title != "" || transcript.Date != "" {
			t.Fatalf("expected empty optionals, got %q %q", transcript.Title, transcript.Date)
		}
		if transcript.Body != "" {
			t.Fatalf("expected empty body, got %q", transcript.Body)
		}
	})

	t.Run("numeric session id", func(t *testing.T) {
		transcript, err := Parse([]byte("---\ncampaign: ember-march\nsession: 12\n---\ntext\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.Session != "12" {
			t.Fatalf("expected session \"12\", got %q", transcript.Session)
		}
	})

	t.Run("no frontmatter", func(t *testing.T) {
		_, err := Parse([]byte("Just session text"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("missing closing marker", func(t *testing.T) {
		_, err := Parse([]byte("---\ncampaign: ember-march\n"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("---\ncampaign: [\n---\n"))
		if !errors.Is(err, ErrInvalidYAML) {
			t.Fatalf("expected ErrInvalidYAML, got %v", err)
		}
	})

	t.Run("missing campaign", func(t *testing.T) {
		_, err := Parse([]byte("---\nsession: s1\n---\n"))
		if !errors.Is(err, ErrMissingCampaign) {
			t.Fatalf("expected ErrMissingCampaign, got %v", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := Parse([]byte("---\ncampaign: ember-march\n---\n"))
		if !errors.Is(err, ErrMissingSession) {
			t.Fatalf("expected ErrMissingSession, got %v", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session-03.md")
	content := "---\ncampaign: ember-march\nsession: session-03\n---\nThe party crossed the Ashfen marshes.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing transcript: %v", err)
	}

	transcript, err := ParseFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if transcript.SourceFile != path {
		t.Fatalf("expected source file %q, got %q", path, transcript.SourceFile)
	}
	if transcript.Body == "" {
		t.Fatalf("expected body")
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
