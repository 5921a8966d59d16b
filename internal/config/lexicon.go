package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chronicler/internal/semantic"
)

// Lexicon is the optional keyword-dictionary override file. Any category or
// context level listed here replaces the classifier's built-in dictionary
// for that name; everything else keeps the defaults.
type Lexicon struct {
	Version       int                 `yaml:"version"`
	Categories    map[string][]string `yaml:"categories"`
	ContextLevels map[string][]string `yaml:"context_levels"`
}

var validLevels = map[string]semantic.Level{
	"critical":  semantic.LevelCritical,
	"important": semantic.LevelImportant,
	"moderate":  semantic.LevelModerate,
}

func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}

	if err := validateLexicon(&lex); err != nil {
		return nil, fmt.Errorf("loading lexicon: %w", err)
	}

	return &lex, nil
}

func validateLexicon(lex *Lexicon) error {
	if lex.Version != 1 {
		return fmt.Errorf("unsupported version: %d", lex.Version)
	}
	for category, keywords := range lex.Categories {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("category with empty name")
		}
		if len(keywords) == 0 {
			return fmt.Errorf("category %s has no keywords", category)
		}
	}
	for level, keywords := range lex.ContextLevels {
		if _, ok := validLevels[strings.ToLower(level)]; !ok {
			return fmt.Errorf("unknown context level: %s", level)
		}
		if len(keywords) == 0 {
			return fmt.Errorf("context level %s has no keywords", level)
		}
	}
	return nil
}

// Semantic converts the file shape into the classifier's lexicon.
func (l *Lexicon) Semantic() semantic.Lexicon {
	out := semantic.Lexicon{}
	if len(l.Categories) > 0 {
		out.Categories = l.Categories
	}
	if len(l.ContextLevels) > 0 {
		out.Levels = make(map[semantic.Level][]string, len(l.ContextLevels))
		for level, keywords := range l.ContextLevels {
			out.Levels[validLevels[strings.ToLower(level)]] = keywords
		}
	}
	return out
}

// NewClassifier builds the classifier for a project: built-in dictionaries,
// overridden by the project's lexicon file when one is configured.
func NewClassifier(cfg *ProjectConfig) (*semantic.Classifier, error) {
	if cfg == nil || strings.TrimSpace(cfg.Lexicon) == "" {
		return semantic.New(), nil
	}
	lex, err := LoadLexicon(cfg.Lexicon)
	if err != nil {
		return nil, err
	}
	return semantic.NewWithLexicon(lex.Semantic()), nil
}
