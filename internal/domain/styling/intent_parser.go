package styling

import (
	"regexp"
	"strconv"
	"strings"
)

// intentKeywords maps request vocabulary to intent labels, checked in order
var intentKeywords = []struct {
	label    string
	keywords []string
}{
	{"wedding", []string{"wedding", "bridesmaid", "ceremony"}},
	{"formal", []string{"gala", "black tie", "formal", "cocktail"}},
	{"work", []string{"office", "work", "business", "meeting", "interview", "conference"}},
	{"date", []string{"date night", "date", "dinner"}},
	{"party", []string{"party", "club", "birthday", "festival"}},
	{"sport", []string{"gym", "workout", "running", "yoga", "training", "hiking", "sport"}},
	{"travel", []string{"travel", "vacation", "holiday", "airport", "beach"}},
	{"casual", []string{"casual", "weekend", "everyday", "brunch", "errands"}},
}

var activityKeywords = []string{
	"hiking", "running", "yoga", "dinner", "commute", "travel", "brunch", "dancing", "meeting", "interview",
}

var formalityKeywords = []struct {
	phrase string
	value  string
}{
	{"black tie", "formal"},
	{"smart casual", "smart-casual"},
	{"business casual", "business-casual"},
	{"semi formal", "semi-formal"},
	{"semi-formal", "semi-formal"},
	{"formal", "formal"},
	{"dressy", "formal"},
	{"relaxed", "casual"},
	{"casual", "casual"},
}

var objectiveKeywords = map[string]string{
	"comfortable": "comfort",
	"comfy":       "comfort",
	"warm":        "warmth",
	"cozy":        "warmth",
	"breathable":  "breathable",
	"lightweight": "breathable",
	"layered":     "layering",
	"layers":      "layering",
	"minimal":     "minimal",
	"minimalist":  "minimal",
	"bold":        "statement",
	"statement":   "statement",
	"sustainable": "sustainable",
	"slimming":    "flattering",
	"flattering":  "flattering",
}

var paletteColors = []string{
	"black", "white", "navy", "blue", "grey", "gray", "beige", "brown", "camel",
	"green", "olive", "red", "burgundy", "pink", "purple", "yellow", "orange",
	"cream", "tan", "khaki", "denim", "pastel", "neutral",
}

var (
	budgetPattern   = regexp.MustCompile(`(?:under|below|less than|max(?:imum)?|up to|within|budget(?: of)?|<)\s*(?:\$|€|£|usd\s*)?\s*(\d+(?:\.\d+)?)`)
	currencyPattern = regexp.MustCompile(`(?:\$|€|£)\s*(\d+(?:\.\d+)?)`)
	sizePattern     = regexp.MustCompile(`\bsize\s+(xxxl|xxl|xl|xxs|xs|3xl|2xl|2xs|s|m|l|small|medium|large)\b`)
	wordPattern     = regexp.MustCompile(`[a-z]+`)
)

// IntentParser turns free-text requests into intents using keyword rules.
// Parsing is deterministic and never fails; unrecognized text yields a
// casual intent with no preferences.
type IntentParser struct{}

// NewIntentParser creates a new intent parser
func NewIntentParser() *IntentParser {
	return &IntentParser{}
}

// Parse extracts an intent from the request text
func (p *IntentParser) Parse(text string) Intent {
	lower := strings.ToLower(text)
	words := wordSet(lower)

	intent := Intent{Intent: DefaultIntentLabel}

	for _, entry := range intentKeywords {
		if kw, ok := firstPhrase(lower, words, entry.keywords); ok {
			intent.Intent = entry.label
			if entry.label != DefaultIntentLabel {
				intent.Occasion = kw
			}
			break
		}
	}

	for _, a := range activityKeywords {
		if words[a] {
			intent.Activity = a
			break
		}
	}

	for _, f := range formalityKeywords {
		if containsPhrase(lower, words, f.phrase) {
			intent.Formality = f.value
			break
		}
	}

	if budget, ok := parseBudget(lower); ok {
		intent.BudgetMax = &budget
	}

	if m := sizePattern.FindStringSubmatch(lower); m != nil {
		intent.Size = strings.ToUpper(m[1])
	}

	for _, c := range paletteColors {
		if words[c] {
			intent.Palette = append(intent.Palette, c)
		}
	}

	seen := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(lower, -1) {
		obj, ok := objectiveKeywords[w]
		if !ok {
			continue
		}
		if _, dup := seen[obj]; dup {
			continue
		}
		seen[obj] = struct{}{}
		intent.Objectives = append(intent.Objectives, obj)
	}

	return intent
}

func parseBudget(lower string) (float64, bool) {
	m := budgetPattern.FindStringSubmatch(lower)
	if m == nil {
		m = currencyPattern.FindStringSubmatch(lower)
	}
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func wordSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		set[w] = true
	}
	return set
}

func firstPhrase(lower string, words map[string]bool, phrases []string) (string, bool) {
	for _, p := range phrases {
		if containsPhrase(lower, words, p) {
			return p, true
		}
	}
	return "", false
}

func containsPhrase(lower string, words map[string]bool, phrase string) bool {
	if strings.ContainsAny(phrase, " -") {
		return strings.Contains(lower, phrase)
	}
	return words[phrase]
}
