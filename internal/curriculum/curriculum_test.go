package curriculum

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

func testProfile() *store.Profile {
	return &store.Profile{
		UserID:         "u1",
		Goal:           "Learn Go",
		TimeframeWeeks: 8,
		WeeklyHours:    10,
		SkillLevel:     "beginner",
		LearningStyle:  "practical",
		EndObjective:   "Build a CLI tool",
	}
}

const validReply = `{
  "title": "Go for Builders",
  "description": "From syntax to shipping a CLI",
  "estimatedWeeks": 8,
  "milestones": [
    {"title": "Basics", "modules": [
      {"title": "Syntax", "description": "Types and control flow", "weekNumber": 1, "estimatedHours": 6,
       "learningObjectives": ["declare variables", "write loops"], "youtubeSearchQuery": "golang basics"},
      {"title": "Packages", "description": "Modules and imports", "weekNumber": 2, "estimatedHours": 5,
       "learningObjectives": ["create a module"], "youtubeSearchQuery": "go modules tutorial"}
    ]},
    {"title": "Shipping", "modules": [
      {"title": "Cobra CLIs", "description": "Commands and flags", "weekNumber": 6, "estimatedHours": 10,
       "learningObjectives": [], "youtubeSearchQuery": "cobra cli golang"}
    ]}
  ]
}`

func TestBuildPrompt_ContainsEveryField(t *testing.T) {
	p := testProfile()
	p.PriorKnowledge = "Some Python"
	prompt := buildPrompt(p)

	for _, want := range []string{
		"Goal: Learn Go",
		"Timeframe: 8 weeks",
		"Weekly Hours: 10 hours/week",
		"Skill Level: beginner",
		"Learning Style: practical",
		"End Objective: Build a CLI tool",
		"Prior Knowledge: Some Python",
		"3-5 major phases",
		"2-4 modules",
		`"youtubeSearchQuery"`,
	} {
		assert.Contains(t, prompt, want)
	}
	assert.Equal(t, prompt, buildPrompt(p), "prompt must be deterministic")
}

func TestBuildPrompt_NoPriorKnowledge(t *testing.T) {
	assert.Contains(t, buildPrompt(testProfile()), "Prior Knowledge: None specified")
}

func TestParse(t *testing.T) {
	c, err := Parse(validReply)
	require.NoError(t, err)
	assert.Equal(t, "Go for Builders", c.Title)
	require.Len(t, c.Milestones, 2)
	assert.Equal(t, 3, c.ModuleCount())
	assert.Equal(t, "golang basics", c.Milestones[0].Modules[0].SearchQuery)
	assert.NotNil(t, c.Milestones[1].Modules[0].LearningObjectives)
}

func TestParse_StripsFences(t *testing.T) {
	for _, reply := range []string{
		"```json\n" + validReply + "\n```",
		"```\n" + validReply + "\n```",
		"\n\n  " + validReply + "  \n",
	} {
		c, err := Parse(reply)
		require.NoError(t, err)
		assert.Equal(t, 3, c.ModuleCount())
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		reason string
	}{
		{"empty", "  ", "empty reply"},
		{"prose", "Sure! Here is your course.", "not valid JSON"},
		{"truncated", validReply[:200], "not valid JSON"},
		{"wrong type", `{"title":"x","milestones":"none"}`, "not valid JSON"},
		{"no milestones", `{"title":"x","description":"y","estimatedWeeks":1,"milestones":[]}`, "schema"},
		{"empty milestone", `{"title":"x","milestones":[{"title":"m","modules":[]}]}`, "schema"},
		{"week zero", `{"title":"x","milestones":[{"title":"m","modules":[{"title":"a","weekNumber":0,"estimatedHours":1}]}]}`, "schema"},
		{"no title", `{"title":"","milestones":[{"title":"m","modules":[{"title":"a","weekNumber":1,"estimatedHours":1}]}]}`, "schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.reply)
			var genErr *apperr.GenerationError
			require.True(t, errors.As(err, &genErr), "got %T: %v", err, err)
			assert.Contains(t, genErr.Reason, tt.reason)
			assert.Equal(t, apperr.KindGeneration, apperr.Kind(err))
		})
	}
}

func TestLLMGenerator_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: "```json\n" + validReply + "\n```"})
	gen := NewLLM(mock, DefaultConfig(), logger.Nop())

	c, err := gen.Generate(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, 3, c.ModuleCount())

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, systemPrompt, req.System)
	assert.Contains(t, req.Messages[0].Content, "Goal: Learn Go")
	assert.Equal(t, CurriculumSchema, req.Schema)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
}

func TestLLMGenerator_SchemaMismatchIsGenerationError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Reply: `{"title":"Only a title"}`})
	gen := NewLLM(mock, DefaultConfig(), logger.Nop())

	_, err := gen.Generate(context.Background(), testProfile())
	var genErr *apperr.GenerationError
	require.True(t, errors.As(err, &genErr), "got %T: %v", err, err)
	assert.Contains(t, genErr.Content, "Only a title")
}

func TestLLMGenerator_ProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    apperr.ErrorKind
		timeout bool
	}{
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}, apperr.KindExternal, false},
		{"unauthorized", &llm.ErrUnauthorized{Err: errors.New("401")}, apperr.KindExternal, false},
		{"rate limited", &llm.ErrRateLimit{Err: errors.New("429")}, apperr.KindExternal, false},
		{"timeout", &llm.ErrTimeout{After: time.Second, Err: context.DeadlineExceeded}, apperr.KindTimeout, true},
		{"bare deadline", context.DeadlineExceeded, apperr.KindTimeout, true},
		{"max tokens", &llm.ErrMaxTokensExceeded{}, apperr.KindGeneration, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewLLM(llm.NewMockProvider(llm.MockResponse{Err: tt.err}), DefaultConfig(), logger.Nop())
			_, err := gen.Generate(context.Background(), testProfile())
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.Kind(err))

			var ext *apperr.ExternalServiceError
			if errors.As(err, &ext) {
				assert.Equal(t, tt.timeout, ext.Timeout)
				assert.Equal(t, "text-generation", ext.Service)
			}
		})
	}
}

func TestMock_EndToEndProfile(t *testing.T) {
	c, err := NewMock().Generate(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, "Learn Go - Complete Course", c.Title)
	assert.Equal(t, 8, c.EstimatedWeeks)
	require.Len(t, c.Milestones, 3)
	require.Equal(t, 6, c.ModuleCount())

	var hours, weeks []int
	for _, ms := range c.Milestones {
		require.Len(t, ms.Modules, 2)
		for _, m := range ms.Modules {
			hours = append(hours, m.EstimatedHours)
			weeks = append(weeks, m.WeekNumber)
			assert.NotEmpty(t, m.SearchQuery)
			assert.Len(t, m.LearningObjectives, 3)
		}
	}
	assert.Equal(t, []int{8, 10, 12, 10, 15, 10}, hours)
	assert.Equal(t, []int{1, 2, 4, 6, 6, 7}, weeks)
	assert.True(t, strings.HasPrefix(c.Milestones[2].Modules[0].Title, "Final Project: Build a CLI tool"))
}

func TestMock_HoursRoundToNearest(t *testing.T) {
	p := testProfile()
	p.WeeklyHours = 7

	var hours []int
	for _, ms := range Mock(p).Milestones {
		for _, m := range ms.Modules {
			hours = append(hours, m.EstimatedHours)
		}
	}
	assert.Equal(t, []int{6, 7, 8, 7, 11, 7}, hours)
}

func TestMock_HoursPositiveAndWeeksInRange(t *testing.T) {
	for weeks := 1; weeks <= 52; weeks++ {
		for _, hrs := range []int{1, 2, 3, 7, 40, 168} {
			p := testProfile()
			p.TimeframeWeeks = weeks
			p.WeeklyHours = hrs

			c := Mock(p)
			for _, ms := range c.Milestones {
				for _, m := range ms.Modules {
					assert.Positive(t, m.EstimatedHours, "weeks=%d hours=%d", weeks, hrs)
					assert.GreaterOrEqual(t, m.WeekNumber, 1, "weeks=%d hours=%d", weeks, hrs)
					assert.LessOrEqual(t, m.WeekNumber, weeks, "weeks=%d hours=%d", weeks, hrs)
				}
			}
		}
	}
}

func TestNew(t *testing.T) {
	gen, err := New(Config{Mode: ModeMock}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockGenerator{}, gen)

	_, err = New(Config{Mode: ModeLLM}, nil, nil)
	assert.Error(t, err)

	gen, err = New(DefaultConfig(), llm.NewMockProvider(), nil)
	require.NoError(t, err)
	assert.IsType(t, &LLMGenerator{}, gen)

	_, err = New(Config{Mode: "oracle"}, nil, nil)
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LEARNPATH_GENERATOR", "mock")
	assert.Equal(t, ModeMock, ConfigFromEnv().Mode)
}
