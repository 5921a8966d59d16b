package memory

import (
	"strings"
	"unicode"

	"chronicler/internal/semantic"
)

// Extraction is the raw output of a pass over session text: candidate
// entities plus relationships still keyed by name.
type Extraction struct {
	Entities  []*Entity
	Relations []NameRelation
}

// Extractor pulls candidate entities out of free-form session text. The
// mechanism is lexical: capitalized phrases become candidates, cue words in
// or next to the phrase decide the kind, and the classifier seeds tags and
// importance. Malformed or empty text extracts zero candidates, never an
// error.
type Extractor struct {
	classifier *semantic.Classifier
}

func NewExtractor(classifier *semantic.Classifier) *Extractor {
	return &Extractor{classifier: classifier}
}

const (
	mentionWindow = 80
	cueWindow     = 2 // words on either side of a phrase checked for kind cues
)

var kindCues = []struct {
	kind Kind
	cues []string
}{
	{KindLocation, []string{"tavern", "inn", "castle", "city", "town", "village", "forest", "cave", "cavern", "temple", "tower", "keep", "ruins", "dungeon", "bridge", "harbor", "mountain", "swamp"}},
	{KindItem, []string{"sword", "blade", "dagger", "amulet", "ring", "potion", "scroll", "shield", "staff", "tome", "gem", "crown", "key", "cloak"}},
	{KindFaction, []string{"guild", "order", "clan", "cult", "company", "brotherhood", "circle", "court", "legion", "syndicate"}},
	{KindCreature, []string{"dragon", "goblin", "troll", "wolf", "beast", "wyvern", "ogre", "spider", "lich", "demon", "elemental"}},
	{KindAbility, []string{"spell", "ritual", "incantation", "enchantment", "curse", "blessing"}},
	{KindEvent, []string{"battle", "siege", "festival", "council", "wedding", "coronation", "eclipse"}},
}

var relationCues = []struct {
	relType string
	cues    []string
}{
	{"opposes", []string{"attacked", "attacks", "fought", "fights", "opposes", "betrayed", "ambushed"}},
	{"allies", []string{"allied", "allies", "befriended", "befriends", "trusts", "aided", "helped"}},
	{"possesses", []string{"carries", "carried", "owns", "owned", "wields", "wielded", "holds", "possesses", "took"}},
	{"serves", []string{"serves", "served", "obeys", "follows"}},
}

// Capitalized words that open a sentence without naming anything.
var sentenceOpeners = map[string]struct{}{
	"a": {}, "after": {}, "an": {}, "and": {}, "as": {}, "at": {}, "before": {},
	"but": {}, "by": {}, "during": {}, "eventually": {}, "far": {}, "finally": {},
	"he": {}, "her": {}, "his": {}, "i": {}, "in": {}, "inside": {}, "it": {},
	"its": {}, "later": {}, "meanwhile": {}, "now": {}, "of": {}, "on": {},
	"once": {}, "our": {}, "outside": {}, "she": {}, "so": {}, "soon": {},
	"suddenly": {}, "that": {}, "the": {}, "then": {}, "there": {}, "they": {},
	"this": {}, "to": {}, "we": {}, "when": {}, "with": {}, "you": {},
}

// Lowercase words allowed inside a multi-word name ("Tower of Glass").
var phraseConnectors = map[string]struct{}{
	"of": {}, "the": {},
}

type phraseMatch struct {
	name  string
	start int // index of first word in the sentence's word slice
	end   int // index one past the last word
}

// Extract scans text for candidate entities in one session. Candidates carry
// no id yet; the verifier assigns ids when it decides new-vs-existing.
func (x *Extractor) Extract(sessionID, text string) *Extraction {
	extraction := &Extraction{}
	if strings.TrimSpace(text) == "" {
		return extraction
	}

	type mention struct {
		name      string
		sentences []string
		firstSent string
		near      []string
		count     int
	}
	mentions := make(map[string]*mention)
	var ordered []*mention

	for _, sentence := range semantic.SplitSentences(text) {
		words := strings.Fields(sentence)
		matches := capitalizedPhrases(words)
		var names []string
		for _, match := range matches {
			names = append(names, match.name)
			key := strings.ToLower(match.name)
			m, ok := mentions[key]
			if !ok {
				m = &mention{name: match.name, firstSent: sentence}
				mentions[key] = m
				ordered = append(ordered, m)
			}
			m.count++
			m.sentences = append(m.sentences, snippet(sentence))
			m.near = append(m.near, nearWords(words, match)...)
		}

		if len(names) >= 2 {
			extraction.Relations = append(extraction.Relations, sentenceRelations(sentence, names)...)
		}
	}

	for _, m := range ordered {
		confidence := 0.3 + 0.2*float64(m.count)
		if confidence > 1.0 {
			confidence = 1.0
		}
		extraction.Entities = append(extraction.Entities, &Entity{
			Name:       m.name,
			Kind:       inferKind(m.name, m.near),
			CoreAttrs:  map[string]any{},
			VarAttrs:   map[string]any{},
			Confidence: confidence,
			Importance: importanceForLevel(x.classifier.ContextLevel(m.firstSent)),
			Snippets:   dedupe(m.sentences),
			Tags:       x.entityTags(m.name, text),
			FirstSeen:  sessionID,
		})
	}
	return extraction
}

func (x *Extractor) entityTags(name, text string) []Tag {
	classifications := x.classifier.ClassifyMention(name, text, mentionWindow)
	tags := make([]Tag, 0, len(classifications))
	for _, classification := range classifications {
		tags = append(tags, Tag{
			Category:   classification.Category,
			Confidence: classification.Confidence,
			Keywords:   classification.Keywords,
		})
	}
	return tags
}

func importanceForLevel(level semantic.Level) Importance {
	switch level {
	case semantic.LevelCritical:
		return ImportanceCritical
	case semantic.LevelImportant:
		return ImportanceImportant
	case semantic.LevelModerate:
		return ImportanceModerate
	default:
		return ImportanceMinor
	}
}

// capitalizedPhrases finds runs of capitalized words in the sentence's word
// slice. A sentence-opening filler word ("The", "Then", "He") only joins a
// phrase when the run continues past it; lowercase connectors ("of", "the")
// are kept when bracketed by capitalized words.
func capitalizedPhrases(words []string) []phraseMatch {
	cleaned := make([]string, len(words))
	capital := make([]bool, len(words))
	for i, word := range words {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		cleaned[i] = trimmed
		capital[i] = trimmed != "" && unicode.IsUpper([]rune(trimmed)[0])
	}

	var matches []phraseMatch
	i := 0
	for i < len(words) {
		if !capital[i] {
			i++
			continue
		}
		lower := strings.ToLower(cleaned[i])
		if _, opener := sentenceOpeners[lower]; opener {
			// "The Gilded Goose" keeps its article; a lone "The" or a
			// pronoun opening a run does not start a name.
			if i+1 >= len(words) || !capital[i+1] {
				i++
				continue
			}
			if lower != "the" {
				i++
				continue
			}
		}

		start := i
		j := i + 1
		for j < len(words) {
			if capital[j] {
				j++
				continue
			}
			_, connector := phraseConnectors[strings.ToLower(cleaned[j])]
			if connector && j+1 < len(words) && capital[j+1] && !endsClause(words[j-1]) {
				j += 2
				continue
			}
			break
		}
		// Trim words whose original token ended a clause mid-run.
		end := start + 1
		for k := start; k < j-1; k++ {
			if endsClause(words[k]) {
				break
			}
			end = k + 2
		}
		if end > j {
			end = j
		}

		name := strings.Join(cleaned[start:end], " ")
		if _, opener := sentenceOpeners[strings.ToLower(name)]; !opener && name != "" {
			matches = append(matches, phraseMatch{name: name, start: start, end: end})
		}
		i = end
	}
	return matches
}

func endsClause(word string) bool {
	return strings.TrimRight(word, ".,!?;:\"')") != word
}

func nearWords(words []string, match phraseMatch) []string {
	var near []string
	for i := match.start - cueWindow; i < match.start; i++ {
		if i >= 0 {
			near = append(near, strings.ToLower(strings.Trim(words[i], ".,!?;:\"'()")))
		}
	}
	for i := match.end; i < match.end+cueWindow && i < len(words); i++ {
		near = append(near, strings.ToLower(strings.Trim(words[i], ".,!?;:\"'()")))
	}
	return near
}

func sentenceRelations(sentence string, names []string) []NameRelation {
	lower := strings.ToLower(sentence)
	var relations []NameRelation
	for _, rule := range relationCues {
		for _, cue := range rule.cues {
			idx := strings.Index(lower, cue)
			if idx < 0 {
				continue
			}
			// Pair the nearest name before the cue with the first after it.
			var from, to string
			for _, name := range names {
				pos := strings.Index(lower, strings.ToLower(name))
				if pos < 0 {
					continue
				}
				if pos < idx {
					from = name
				} else if to == "" {
					to = name
				}
			}
			if from != "" && to != "" && !strings.EqualFold(from, to) {
				relations = append(relations, NameRelation{FromName: from, ToName: to, Type: rule.relType})
			}
			break
		}
	}
	return relations
}

// inferKind decides a candidate's kind from cue words inside the name, then
// from the words immediately around its mentions, defaulting to character.
func inferKind(name string, near []string) Kind {
	nameLower := strings.ToLower(name)
	for _, rule := range kindCues {
		for _, cue := range rule.cues {
			if containsWord(nameLower, cue) {
				return rule.kind
			}
		}
	}
	for _, rule := range kindCues {
		for _, cue := range rule.cues {
			for _, word := range near {
				if word == cue {
					return rule.kind
				}
			}
		}
	}
	return KindCharacter
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		pos += idx
		end := pos + len(word)
		beforeOK := pos == 0 || !unicode.IsLetter(rune(text[pos-1]))
		afterOK := end >= len(text) || !unicode.IsLetter(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func snippet(sentence string) string {
	const maxRunes = 160
	runes := []rune(strings.TrimSpace(sentence))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes-1]) + "…"
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
