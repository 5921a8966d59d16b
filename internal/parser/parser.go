// Package parser reads session transcript files: YAML frontmatter naming
// the campaign and session, followed by the free-form session text.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transcript is one parsed session file.
type Transcript struct {
	Frontmatter map[string]any
	Campaign    string
	Session     string
	Title       string
	Date        string
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter   = errors.New("no frontmatter found")
	ErrInvalidYAML     = errors.New("invalid YAML in frontmatter")
	ErrMissingCampaign = errors.New("frontmatter missing required 'campaign' field")
	ErrMissingSession  = errors.New("frontmatter missing required 'session' field")
)

func ParseFile(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	transcript, err := Parse(data)
	if err != nil {
		return nil, err
	}
	transcript.SourceFile = path
	return transcript, nil
}

func Parse(content []byte) (*Transcript, error) {
	trimmed := bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")) // UTF-8 BOM
	trimmed = bytes.TrimLeft(trimmed, "\r\n\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := string(rest[end+len("---\n"):])

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	campaign := stringField(frontmatter, "campaign")
	if campaign == "" {
		return nil, ErrMissingCampaign
	}
	session := stringField(frontmatter, "session")
	if session == "" {
		return nil, ErrMissingSession
	}

	return &Transcript{
		Frontmatter: frontmatter,
		Campaign:    campaign,
		Session:     session,
		Title:       stringField(frontmatter, "title"),
		Date:        stringField(frontmatter, "date"),
		Body:        body,
	}, nil
}

// stringField reads a frontmatter value as a string. Numeric session ids
// ("session: 12") are accepted and rendered as their decimal form.
func stringField(frontmatter map[string]any, key string) string {
	value, ok := frontmatter[key]
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
