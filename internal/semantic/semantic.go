package semantic

import (
	"sort"
	"strings"
)

// Level is the narrative weight of a span of session text.
type Level string

const (
	LevelCritical  Level = "critical"
	LevelImportant Level = "important"
	LevelModerate  Level = "moderate"
	LevelMinor     Level = "minor"
)

// Classification is one category match for a span of text. Confidence is the
// share of the category's lexicon found in the span, capped at 1.0.
type Classification struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
}

// Lexicon carries the keyword dictionaries the classifier matches against.
// Empty fields fall back to the built-in dictionaries.
type Lexicon struct {
	Categories map[string][]string
	Levels     map[Level][]string
}

type Classifier struct {
	categories map[string][]string
	levelOrder []Level
	levels     map[Level][]string
}

var defaultCategories = map[string][]string{
	"combat":      {"attack", "attacks", "battle", "blade", "bow", "damage", "defend", "duel", "fight", "fought", "slain", "slash", "strike", "struck", "sword", "wound", "wounded"},
	"social":      {"bargain", "befriend", "conversation", "convince", "favor", "feast", "greet", "insult", "negotiate", "persuade", "promise", "rumor", "speak", "spoke", "tavern", "toast"},
	"magic":       {"arcane", "cast", "curse", "enchant", "enchanted", "incantation", "potion", "ritual", "rune", "scroll", "sorcery", "spell", "summon", "ward", "wizard"},
	"exploration": {"cavern", "discover", "discovered", "dungeon", "expedition", "explore", "journey", "map", "path", "ruin", "ruins", "search", "travel", "traveled", "uncover", "wilderness"},
	"stealth":     {"ambush", "disguise", "eavesdrop", "hidden", "hide", "infiltrate", "lockpick", "pickpocket", "shadow", "sneak", "spy", "steal", "stole"},
	"commerce":    {"barter", "coin", "gold", "market", "merchant", "pay", "price", "purchase", "sell", "shop", "sold", "trade", "wares"},
}

var defaultLevels = map[Level][]string{
	LevelCritical:  {"assassinated", "betrayal", "betrayed", "death", "destroyed", "died", "killed", "prophecy", "slain", "war"},
	LevelImportant: {"alliance", "artifact", "curse", "discovered", "quest", "revealed", "ritual", "secret", "stolen", "treasure"},
	LevelModerate:  {"arrived", "fought", "injured", "learned", "met", "traded", "traveled"},
}

// New returns a classifier using the built-in lexicons.
func New() *Classifier {
	return NewWithLexicon(Lexicon{})
}

// NewWithLexicon returns a classifier with any built-in dictionary replaced
// by the corresponding lexicon entry.
func NewWithLexicon(lex Lexicon) *Classifier {
	c := &Classifier{
		categories: make(map[string][]string, len(defaultCategories)),
		levelOrder: []Level{LevelCritical, LevelImportant, LevelModerate},
		levels:     make(map[Level][]string, len(defaultLevels)),
	}
	for category, keywords := range defaultCategories {
		c.categories[category] = keywords
	}
	for category, keywords := range lex.Categories {
		c.categories[strings.ToLower(category)] = lowerAll(keywords)
	}
	for level, keywords := range defaultLevels {
		c.levels[level] = keywords
	}
	for level, keywords := range lex.Levels {
		c.levels[level] = lowerAll(keywords)
	}
	return c
}

// ClassifyText matches the text against every category lexicon. Categories
// are independent; zero, one, or many may match. Results are sorted by
// category name so identical input always yields identical output.
func (c *Classifier) ClassifyText(text string) []Classification {
	words := tokenSet(text)
	if len(words) == 0 {
		return []Classification{}
	}

	var results []Classification
	for category, keywords := range c.categories {
		var matched []string
		for _, keyword := range keywords {
			if _, ok := words[keyword]; ok {
				matched = append(matched, keyword)
			}
		}
		if len(matched) == 0 {
			continue
		}
		confidence := float64(len(matched)) / float64(len(keywords))
		if confidence > 1.0 {
			confidence = 1.0
		}
		sort.Strings(matched)
		results = append(results, Classification{
			Category:   category,
			Confidence: confidence,
			Keywords:   matched,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Category < results[j].Category
	})
	if results == nil {
		results = []Classification{}
	}
	return results
}

// ContextLevel evaluates one sentence, first match wins in the order
// critical > important > moderate, defaulting to minor.
func (c *Classifier) ContextLevel(sentence string) Level {
	words := tokenSet(sentence)
	for _, level := range c.levelOrder {
		for _, keyword := range c.levels[level] {
			if _, ok := words[keyword]; ok {
				return level
			}
		}
	}
	return LevelMinor
}

// ClassifyMention classifies a window of text around the first mention of
// name. The window spans up to windowRunes runes on either side of the
// mention. Used to seed an entity's initial tags.
func (c *Classifier) ClassifyMention(name, text string, windowRunes int) []Classification {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(text) == "" {
		return []Classification{}
	}
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(name))
	if idx < 0 {
		return []Classification{}
	}

	runes := []rune(text)
	start := len([]rune(text[:idx]))
	end := start + len([]rune(name))
	if start > windowRunes {
		start -= windowRunes
	} else {
		start = 0
	}
	end += windowRunes
	if end > len(runes) {
		end = len(runes)
	}
	return c.ClassifyText(string(runes[start:end]))
}

// Categories returns the category names in sorted order.
func (c *Classifier) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for category := range c.categories {
		names = append(names, category)
	}
	sort.Strings(names)
	return names
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, "'")
		if field != "" {
			set[field] = struct{}{}
		}
	}
	return set
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

// SplitSentences breaks raw session text into trimmed sentences. It is a
// lexical split on terminal punctuation; quality of the split is not a
// correctness concern, reproducibility is.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" && sentence != "." && sentence != "!" && sentence != "?" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
