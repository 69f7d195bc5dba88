package model

import (
	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

// StrengthRequest carries the live value of a password field.
// Password is a pointer so an empty field is accepted while a missing one is not.
type StrengthRequest struct {
	Password *string `json:"password" binding:"required,max=1024"`
}

// StrengthResponse is the assessment plus its display model
type StrengthResponse struct {
	strength.Assessment
	LevelLabel string         `json:"level_label"`
	Meter      strength.Meter `json:"meter"`
}

// PolicyRequest asks whether a password meets a minimum level
type PolicyRequest struct {
	Password *string `json:"password" binding:"required,max=1024"`
	MinLevel string  `json:"min_level" binding:"omitempty,strength_level"`
}

// PolicyResponse reports the outcome of a policy check
type PolicyResponse struct {
	Score       int            `json:"score"`
	Level       strength.Level `json:"level,omitempty"`
	MinLevel    strength.Level `json:"min_level"`
	Satisfied   bool           `json:"satisfied"`
	Suggestions []string       `json:"suggestions"`
}

// RulesResponse describes the rule table and level thresholds
type RulesResponse struct {
	Rules      []strength.RuleInfo `json:"rules"`
	Thresholds []LevelThreshold    `json:"thresholds"`
	MinLevel   strength.Level      `json:"min_level"`
}

// LevelThreshold is the lowest score of a level
type LevelThreshold struct {
	Level    strength.Level `json:"level"`
	Label    string         `json:"label"`
	MinScore int            `json:"min_score"`
	Color    string         `json:"color"`
}
