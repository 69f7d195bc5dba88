package strength

import "fmt"

// SuggestionThreshold is the score below which the meter lists suggestions
const SuggestionThreshold = StrongThreshold

// Meter colors, one per level
const (
	ColorNone    = "secondary"
	ColorDanger  = "danger"
	ColorWarning = "warning"
	ColorInfo    = "info"
	ColorSuccess = "success"
)

var levelColors = map[Level]string{
	LevelNone:       ColorNone,
	LevelWeak:       ColorDanger,
	LevelMedium:     ColorWarning,
	LevelStrong:     ColorInfo,
	LevelVeryStrong: ColorSuccess,
}

// RuleInfo describes a rule for checklists
type RuleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

var ruleInfo = map[string]RuleInfo{
	RuleMinLength: {
		Name:        RuleMinLength,
		Description: fmt.Sprintf("At least %d characters", MinLength),
		Suggestion:  fmt.Sprintf("Use at least %d characters", MinLength),
	},
	RuleUppercase: {
		Name:        RuleUppercase,
		Description: "Contains an uppercase letter",
		Suggestion:  "Add an uppercase letter (A-Z)",
	},
	RuleLowercase: {
		Name:        RuleLowercase,
		Description: "Contains a lowercase letter",
		Suggestion:  "Add a lowercase letter (a-z)",
	},
	RuleDigit: {
		Name:        RuleDigit,
		Description: "Contains a number",
		Suggestion:  "Add a number (0-9)",
	},
	RuleSpecialChar: {
		Name:        RuleSpecialChar,
		Description: "Contains a special character",
		Suggestion:  "Add a special character such as ! @ # $ %",
	},
	RuleNoWhitespace: {
		Name:        RuleNoWhitespace,
		Description: "No spaces",
	},
	RuleNoSequentialRun: {
		Name:        RuleNoSequentialRun,
		Description: "No sequences like abc or 123",
	},
	RuleNoRepeatedChar: {
		Name:        RuleNoRepeatedChar,
		Description: "No character repeated three times in a row",
	},
}

// suggestionRules are the only rules that produce suggestions
var suggestionRules = []string{
	RuleMinLength,
	RuleUppercase,
	RuleLowercase,
	RuleDigit,
	RuleSpecialChar,
}

// DescribeRules returns the rule table in display order
func DescribeRules() []RuleInfo {
	rules := make([]RuleInfo, 0, len(Rules))
	for _, name := range Rules {
		rules = append(rules, ruleInfo[name])
	}
	return rules
}

// ChecklistItem is one line of the rule checklist
type ChecklistItem struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
	Met         bool   `json:"met"`
}

// Meter is what a password field renders next to the input
type Meter struct {
	Percent     int             `json:"percent"`
	Color       string          `json:"color"`
	Label       string          `json:"label"`
	Checklist   []ChecklistItem `json:"checklist"`
	Suggestions []string        `json:"suggestions"`
}

// NewMeter builds the display model for an assessment
func NewMeter(a Assessment) Meter {
	checks := a.Checks.Map()

	checklist := make([]ChecklistItem, 0, len(Rules))
	for _, name := range Rules {
		checklist = append(checklist, ChecklistItem{
			Rule:        name,
			Description: ruleInfo[name].Description,
			Met:         checks[name],
		})
	}

	suggestions := []string{}
	if a.Score < SuggestionThreshold {
		for _, name := range suggestionRules {
			if !checks[name] {
				suggestions = append(suggestions, ruleInfo[name].Suggestion)
			}
		}
	}

	return Meter{
		Percent:     a.Score,
		Color:       ColorFor(a.Level),
		Label:       fmt.Sprintf("%s (%d/%d)", a.Level.Label(), a.Score, MaxScore),
		Checklist:   checklist,
		Suggestions: suggestions,
	}
}

// ColorFor returns the meter color of a level
func ColorFor(l Level) string {
	if color, ok := levelColors[l]; ok {
		return color
	}
	return ColorNone
}
