package prompt

import (
	"strings"
	"testing"
	"time"

	"rafeyshell/internal/config"
	"rafeyshell/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = Environment{
	WorkingDir: "/home/rafey/projects",
	Now:        time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
}

func TestBuildContextualPrompt_NoHistory(t *testing.T) {
	got := BuildContextualPrompt("hello", nil, testEnv)

	want := "CURRENT CONTEXT:\n" +
		"- Working Directory: /home/rafey/projects\n" +
		"- Timestamp: 2025-06-01T12:30:00.000Z\n\n" +
		"USER QUERY: hello"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "RECENT CONVERSATION CONTEXT")
}

func TestBuildContextualPrompt_LastThreeOnly(t *testing.T) {
	recent := []history.Entry{
		{Query: "one", Response: "r1"},
		{Query: "two", Response: "r2"},
		{Query: "three", Response: "r3"},
		{Query: "four", Response: "r4"},
	}

	got := BuildContextualPrompt("five", recent, testEnv)

	require.True(t, strings.HasPrefix(got, "RECENT CONVERSATION CONTEXT:\n"))
	assert.NotContains(t, got, "User: one")
	assert.Contains(t, got, "1. User: two\n   Assistant: r2\n\n")
	assert.Contains(t, got, "3. User: four\n   Assistant: r4\n\n")
	assert.True(t, strings.HasSuffix(got, "USER QUERY: five"))
}

func TestBuildContextualPrompt_TruncatesResponses(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := BuildContextualPrompt("q", []history.Entry{{Query: "prev", Response: long}}, testEnv)

	line := ""
	for _, l := range strings.Split(got, "\n") {
		if strings.HasPrefix(l, "   Assistant: ") {
			line = strings.TrimPrefix(l, "   Assistant: ")
		}
	}
	require.NotEmpty(t, line)
	assert.Equal(t, strings.Repeat("é", 200)+"...", line)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 5, "abcde..."},
		{"runes", "日本語テキスト", 3, "日本語..."},
		{"zero", "abc", 0, "..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}

func TestCombine(t *testing.T) {
	assert.Equal(t, "sys\n\nctx", Combine("sys", "ctx"))
}

func TestBuildSystemPrompt_Profile(t *testing.T) {
	p := config.DefaultProfile()
	p.Name = "Rafey Masood"

	got := BuildSystemPrompt(p, nil)

	assert.True(t, strings.HasPrefix(got, "You are Rafey's assistant"))
	assert.Contains(t, got, "- Name: Rafey Masood\n")
	assert.Contains(t, got, "- Interests: programming, ai, technology\n")
	assert.Contains(t, got, "- Preferred Languages: typescript, python, javascript\n")
	assert.Contains(t, got, "- Be technical in your responses\n")
	assert.Contains(t, got, "RESPONSE FORMAT:")
	assert.NotContains(t, got, "USER BIOGRAPHY")
	assert.Equal(t, got, BuildSystemPrompt(p, nil), "output is deterministic")
}

func TestBuildSystemPrompt_Document(t *testing.T) {
	doc := &config.ProfileDocument{
		Biography:       "Engineer and musician.",
		CurrentLocation: "London",
		Experience: []config.Experience{
			{Role: "Founder", Organization: "Insight OS", Period: "2025 - Present", Summary: "Reimagining writing."},
		},
		Education: []config.Education{
			{Degree: "MSc Computer Science", Institution: "King's College London", Thesis: "Generative AI for Fraud Detection"},
		},
		Hobbies: []string{"Piano"},
	}

	got := BuildSystemPrompt(config.DefaultProfile(), doc)

	assert.Contains(t, got, "- Current Location: London\n")
	assert.Contains(t, got, "USER BIOGRAPHY:\nEngineer and musician.\n\n")
	assert.Contains(t, got, "- Founder at Insight OS (2025 - Present): Reimagining writing.\n")
	assert.Contains(t, got, "- MSc Computer Science from King's College London: Thesis on Generative AI for Fraud Detection\n")
	assert.Contains(t, got, "USER HOBBIES:\n- Piano\n")
	assert.NotContains(t, got, "USER PERSONALITY")
	assert.Less(t, strings.Index(got, "USER BIOGRAPHY"), strings.Index(got, "BEHAVIORAL GUIDELINES"))
}

func TestProfileSummary(t *testing.T) {
	got := ProfileSummary(config.DefaultProfile())
	assert.Equal(t, "- Name: Rafey\n"+
		"- Profession: Software Developer\n"+
		"- Interests: programming, ai, technology\n"+
		"- Preferred Languages: typescript, python, javascript\n"+
		"- Response Style: technical", got)
}
