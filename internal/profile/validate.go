// Package profile validates onboarding input and stores learner profiles.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/store"
)

// Skill levels.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Learning styles.
const (
	StyleVisual    = "visual"
	StyleText      = "text"
	StylePractical = "practical"
	StyleMixed     = "mixed"
)

// Input is the onboarding submission after type decoding.
type Input struct {
	Goal           string `json:"goal" validate:"min=5"`
	TimeframeWeeks int    `json:"timeframeWeeks" validate:"min=1,max=52"`
	WeeklyHours    int    `json:"weeklyHours" validate:"min=1,max=168"`
	SkillLevel     string `json:"skillLevel" validate:"oneof=beginner intermediate advanced"`
	LearningStyle  string `json:"learningStyle" validate:"oneof=visual text practical mixed"`
	EndObjective   string `json:"endObjective" validate:"min=10"`
	PriorKnowledge string `json:"priorKnowledge"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate decodes a raw key/value submission and checks every field
// constraint. All violations are reported together in one
// *apperr.ValidationError; on success the typed profile is returned.
func Validate(userID string, raw map[string]any) (*store.Profile, error) {
	var (
		in     Input
		fields []apperr.FieldError
		bad    = map[string]bool{}
	)
	fail := func(field, msg string) {
		fields = append(fields, apperr.FieldError{Field: field, Message: msg})
		bad[field] = true
	}

	var ok bool
	if in.Goal, ok = stringField(raw, "goal", true, fail); ok {
		in.Goal = strings.TrimSpace(in.Goal)
	}
	in.TimeframeWeeks, _ = intField(raw, "timeframeWeeks", fail)
	in.WeeklyHours, _ = intField(raw, "weeklyHours", fail)
	in.SkillLevel, _ = stringField(raw, "skillLevel", true, fail)
	in.LearningStyle, _ = stringField(raw, "learningStyle", true, fail)
	if in.EndObjective, ok = stringField(raw, "endObjective", true, fail); ok {
		in.EndObjective = strings.TrimSpace(in.EndObjective)
	}
	in.PriorKnowledge, _ = stringField(raw, "priorKnowledge", false, fail)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate profile: %w", err)
		}
		for _, fe := range verrs {
			if bad[fe.Field()] {
				continue
			}
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	}

	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}
	return in.toProfile(userID), nil
}

// ValidateInput checks an already-typed submission.
func ValidateInput(userID string, in Input) (*store.Profile, error) {
	raw := map[string]any{
		"goal":           in.Goal,
		"timeframeWeeks": in.TimeframeWeeks,
		"weeklyHours":    in.WeeklyHours,
		"skillLevel":     in.SkillLevel,
		"learningStyle":  in.LearningStyle,
		"endObjective":   in.EndObjective,
	}
	if in.PriorKnowledge != "" {
		raw["priorKnowledge"] = in.PriorKnowledge
	}
	return Validate(userID, raw)
}

func (in Input) toProfile(userID string) *store.Profile {
	return &store.Profile{
		UserID:         userID,
		Goal:           in.Goal,
		TimeframeWeeks: in.TimeframeWeeks,
		WeeklyHours:    in.WeeklyHours,
		SkillLevel:     in.SkillLevel,
		LearningStyle:  in.LearningStyle,
		EndObjective:   in.EndObjective,
		PriorKnowledge: strings.TrimSpace(in.PriorKnowledge),
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func stringField(raw map[string]any, key string, required bool, fail func(string, string)) (string, bool) {
	v, present := raw[key]
	if !present || v == nil {
		if required {
			fail(key, "is required")
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		fail(key, "must be a string")
		return "", false
	}
	return s, true
}

// intField accepts any whole number, including JSON-decoded float64 and
// json.Number values.
func intField(raw map[string]any, key string, fail func(string, string)) (int, bool) {
	v, present := raw[key]
	if !present || v == nil {
		fail(key, "is required")
		return 0, false
	}
	var f float64
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			fail(key, "must be an integer")
			return 0, false
		}
	default:
		fail(key, "must be an integer")
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		fail(key, "must be an integer")
		return 0, false
	}
	return int(f), true
}
