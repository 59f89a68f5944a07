package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFencedBlock(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence with language tag",
			in:   "Here is the feedback:\n```json\n[{\"a\": 1}]\n```\nHope it helps!",
			want: `[{"a": 1}]`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"summary\": \"ok\"}\n```",
			want: `{"summary": "ok"}`,
		},
		{
			name: "no fence returns trimmed text",
			in:   "  [1, 2, 3]\n",
			want: "[1, 2, 3]",
		},
		{
			name: "unterminated fence keeps the remainder",
			in:   "```json\n[true]",
			want: "[true]",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, extractFencedBlock(tc.in))
		})
	}
}

func TestParseInlineComments(t *testing.T) {
	text := "```json\n[{\"criterion_id\": 2, \"quote\": \"the cat sat\", \"comment\": \"nice rhythm\"}]\n```"
	items, err := parseInlineComments(text)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(2), items[0].CriterionID)
	require.Equal(t, "the cat sat", items[0].Quote)
	require.Equal(t, "nice rhythm", items[0].Comment)
}

func TestParseInlineCommentsRejectsProse(t *testing.T) {
	_, err := parseInlineComments("I'm sorry, I can't produce JSON for this essay.")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseInlineCommentsRejectsWrongShape(t *testing.T) {
	// Valid JSON, wrong schema: missing the comment field.
	_, err := parseInlineComments("```json\n[{\"criterion_id\": 1, \"quote\": \"x\"}]\n```")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseCriterionFeedback(t *testing.T) {
	text := "```json\n[{\"criterion_id\": 1, \"strengths\": \"clear thesis\", \"growth\": \"weak evidence\", \"suggestions\": [\"cite a study\"]}]\n```"
	items, err := parseCriterionFeedback(text)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, []string{"cite a study"}, items[0].Suggestions)
}

func TestParseCriterionFeedbackRejectsExtraFields(t *testing.T) {
	text := "```json\n[{\"criterion_id\": 1, \"strengths\": \"s\", \"growth\": \"g\", \"suggestions\": [], \"score\": 95}]\n```"
	_, err := parseCriterionFeedback(text)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseOverallFeedback(t *testing.T) {
	text := "The essay shows promise.\n```json\n{\"summary\": \"solid draft\", \"priorities\": [\"thesis\"], \"next_steps\": [\"revise\", \"proofread\"]}\n```"
	payload, err := parseOverallFeedback(text)
	require.NoError(t, err)
	require.Equal(t, "solid draft", payload.Summary)
	require.Equal(t, []string{"thesis"}, payload.Priorities)
	require.Len(t, payload.NextSteps, 2)
}

func TestParseOverallFeedbackRejectsArray(t *testing.T) {
	_, err := parseOverallFeedback("```json\n[\"summary\"]\n```")
	require.ErrorIs(t, err, ErrMalformedResponse)
}
