package strength

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Level is a coarse bucketing of a strength score
type Level string

const (
	LevelNone       Level = ""
	LevelWeak       Level = "weak"
	LevelMedium     Level = "medium"
	LevelStrong     Level = "strong"
	LevelVeryStrong Level = "very_strong"
)

// Score thresholds, checked from highest to lowest
const (
	VeryStrongThreshold = 80
	StrongThreshold     = 60
	MediumThreshold     = 40

	MinLength       = 8
	LongLength      = 12
	ExtraLongLength = 16

	MaxScore = 100
)

// Rule names
const (
	RuleMinLength       = "hasMinLength"
	RuleUppercase       = "hasUppercase"
	RuleLowercase       = "hasLowercase"
	RuleDigit           = "hasDigit"
	RuleSpecialChar     = "hasSpecialChar"
	RuleNoWhitespace    = "noWhitespace"
	RuleNoSequentialRun = "noSequentialRun"
	RuleNoRepeatedChar  = "noRepeatedChar"
)

// Rules lists every rule name in display order
var Rules = []string{
	RuleMinLength,
	RuleUppercase,
	RuleLowercase,
	RuleDigit,
	RuleSpecialChar,
	RuleNoWhitespace,
	RuleNoSequentialRun,
	RuleNoRepeatedChar,
}

// SpecialChars is the punctuation set counted by hasSpecialChar
const SpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var (
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	lowercasePattern = regexp.MustCompile(`[a-z]`)
	digitPattern     = regexp.MustCompile(`[0-9]`)
	specialPattern   = regexp.MustCompile(`[` + strings.ReplaceAll(regexp.QuoteMeta(SpecialChars), "-", `\-`) + `]`)

	sequences = []string{
		"0123456789",
		"abcdefghijklmnopqrstuvwxyz",
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	}
)

const runWindow = 3

// Checks holds the outcome of every rule
type Checks struct {
	HasMinLength    bool `json:"hasMinLength"`
	HasUppercase    bool `json:"hasUppercase"`
	HasLowercase    bool `json:"hasLowercase"`
	HasDigit        bool `json:"hasDigit"`
	HasSpecialChar  bool `json:"hasSpecialChar"`
	NoWhitespace    bool `json:"noWhitespace"`
	NoSequentialRun bool `json:"noSequentialRun"`
	NoRepeatedChar  bool `json:"noRepeatedChar"`
}

// Assessment is the result of evaluating a single password
type Assessment struct {
	Score  int    `json:"score"`
	Level  Level  `json:"level,omitempty"`
	Checks Checks `json:"checks"`
}

// DefaultChecks returns the checks of a password that has not been typed yet
func DefaultChecks() Checks {
	return Checks{
		NoWhitespace:    true,
		NoSequentialRun: true,
		NoRepeatedChar:  true,
	}
}

// Map returns the checks keyed by rule name
func (c Checks) Map() map[string]bool {
	return map[string]bool{
		RuleMinLength:       c.HasMinLength,
		RuleUppercase:       c.HasUppercase,
		RuleLowercase:       c.HasLowercase,
		RuleDigit:           c.HasDigit,
		RuleSpecialChar:     c.HasSpecialChar,
		RuleNoWhitespace:    c.NoWhitespace,
		RuleNoSequentialRun: c.NoSequentialRun,
		RuleNoRepeatedChar:  c.NoRepeatedChar,
	}
}

// Met reports whether the named rule passed. Unknown names are never met.
func (c Checks) Met(rule string) bool {
	return c.Map()[rule]
}

// Evaluate scores a password. It is total over all strings and keeps no state.
func Evaluate(password string) Assessment {
	if password == "" {
		return Assessment{Checks: DefaultChecks()}
	}

	length := utf8.RuneCountInString(password)
	specials := len(specialPattern.FindAllStringIndex(password, -1))

	checks := Checks{
		HasMinLength:    length >= MinLength,
		HasUppercase:    uppercasePattern.MatchString(password),
		HasLowercase:    lowercasePattern.MatchString(password),
		HasDigit:        digitPattern.MatchString(password),
		HasSpecialChar:  specials > 0,
		NoWhitespace:    strings.IndexFunc(password, unicode.IsSpace) < 0,
		NoSequentialRun: !hasSequentialRun(password),
		NoRepeatedChar:  !hasRepeatedChar(password),
	}

	score := computeScore(checks, length, specials)
	return Assessment{
		Score:  score,
		Level:  Classify(score),
		Checks: checks,
	}
}

func computeScore(c Checks, length, specials int) int {
	score := 0

	if c.HasMinLength {
		score += 20
	}
	if length >= LongLength {
		score += 10
	}
	if length >= ExtraLongLength {
		score += 10
	}
	if c.HasLowercase {
		score += 10
	}
	if c.HasUppercase {
		score += 10
	}
	if c.HasDigit {
		score += 10
	}
	if c.HasSpecialChar {
		score += 15
	}
	if specials >= 2 {
		score += 10
	}
	if c.HasLowercase && c.HasUppercase && c.HasDigit && c.HasSpecialChar {
		score += 5
	}

	return clamp(score)
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > MaxScore:
		return MaxScore
	}
	return score
}

// Classify maps a score onto a level
func Classify(score int) Level {
	switch {
	case score >= VeryStrongThreshold:
		return LevelVeryStrong
	case score >= StrongThreshold:
		return LevelStrong
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelWeak
	}
}

// hasSequentialRun reports whether any 3-character window is an ascending run.
// Each alphabet is matched case-sensitively on its own.
func hasSequentialRun(password string) bool {
	runes := []rune(password)
	for i := 0; i+runWindow <= len(runes); i++ {
		window := string(runes[i : i+runWindow])
		for _, seq := range sequences {
			if strings.Contains(seq, window) {
				return true
			}
		}
	}
	return false
}

func hasRepeatedChar(password string) bool {
	var prev rune
	count := 0
	for _, r := range password {
		if count > 0 && r == prev {
			count++
		} else {
			prev = r
			count = 1
		}
		if count >= runWindow {
			return true
		}
	}
	return false
}

var levelOrder = map[Level]int{
	LevelNone:       0,
	LevelWeak:       1,
	LevelMedium:     2,
	LevelStrong:     3,
	LevelVeryStrong: 4,
}

var levelLabels = map[Level]string{
	LevelNone:       "Not Evaluated",
	LevelWeak:       "Weak",
	LevelMedium:     "Medium",
	LevelStrong:     "Strong",
	LevelVeryStrong: "Very Strong",
}

// Label returns the human-readable level name
func (l Level) Label() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}

// AtLeast reports whether l ranks at or above min
func (l Level) AtLeast(min Level) bool {
	return levelOrder[l] >= levelOrder[min]
}

// Valid reports whether l is one of the four evaluated levels
func (l Level) Valid() bool {
	return levelOrder[l] > 0
}

// ParseLevel accepts the level identifiers as well as their labels, case-insensitively
func ParseLevel(s string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "verystrong" {
		normalized = string(LevelVeryStrong)
	}

	level := Level(normalized)
	if !level.Valid() {
		return LevelNone, fmt.Errorf("unknown strength level %q", s)
	}
	return level, nil
}
