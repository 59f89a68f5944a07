package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedResponse indicates the model's reply could not be parsed as the
// structured payload a grading stage expects. The submission's grading fails
// as a whole for that stage; partial or malformed data is never persisted.
var ErrMalformedResponse = errors.New("malformed model response")

const inlineCommentsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["criterion_id", "quote", "comment"],
		"properties": {
			"criterion_id": {"type": "integer", "minimum": 1},
			"quote": {"type": "string"},
			"comment": {"type": "string"}
		},
		"additionalProperties": false
	}
}`

const criterionFeedbackSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["criterion_id", "strengths", "growth", "suggestions"],
		"properties": {
			"criterion_id": {"type": "integer", "minimum": 1},
			"strengths": {"type": "string"},
			"growth": {"type": "string"},
			"suggestions": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}
}`

const overallFeedbackSchema = `{
	"type": "object",
	"required": ["summary", "priorities", "next_steps"],
	"properties": {
		"summary": {"type": "string"},
		"priorities": {"type": "array", "items": {"type": "string"}},
		"next_steps": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

var (
	inlineCommentsValidator    = mustCompileSchema("inline_comments.json", inlineCommentsSchema)
	criterionFeedbackValidator = mustCompileSchema("criterion_feedback.json", criterionFeedbackSchema)
	overallFeedbackValidator   = mustCompileSchema("overall_feedback.json", overallFeedbackSchema)
)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

type inlineCommentItem struct {
	CriterionID uint   `json:"criterion_id"`
	Quote       string `json:"quote"`
	Comment     string `json:"comment"`
}

type criterionFeedbackItem struct {
	CriterionID uint     `json:"criterion_id"`
	Strengths   string   `json:"strengths"`
	Growth      string   `json:"growth"`
	Suggestions []string `json:"suggestions"`
}

type overallFeedbackPayload struct {
	Summary    string   `json:"summary"`
	Priorities []string `json:"priorities"`
	NextSteps  []string `json:"next_steps"`
}

// extractFencedBlock pulls the body of the first fenced code block out of the
// model's reply, tolerating a language tag and surrounding commentary. When no
// fence is present the trimmed reply is returned as-is for the strict parse to
// judge.
func extractFencedBlock(text string) string {
	const fence = "```"

	start := strings.Index(text, fence)
	if start < 0 {
		return strings.TrimSpace(text)
	}

	rest := text[start+len(fence):]
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		rest = rest[newline+1:]
	}

	end := strings.Index(rest, fence)
	if end < 0 {
		return strings.TrimSpace(rest)
	}

	return strings.TrimSpace(rest[:end])
}

// decodeStage validates raw model output against the stage schema before
// decoding it, making a malformed reply a first-class, testable outcome.
func decodeStage(stage, text string, schema *jsonschema.Schema, out interface{}) error {
	block := extractFencedBlock(text)

	var raw interface{}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return fmt.Errorf("%w: %s stage: %v", ErrMalformedResponse, stage, err)
	}

	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("%w: %s stage: %v", ErrMalformedResponse, stage, err)
	}

	if err := json.Unmarshal([]byte(block), out); err != nil {
		return fmt.Errorf("%w: %s stage: %v", ErrMalformedResponse, stage, err)
	}

	return nil
}

func parseInlineComments(text string) ([]inlineCommentItem, error) {
	var items []inlineCommentItem
	if err := decodeStage("inline comments", text, inlineCommentsValidator, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func parseCriterionFeedback(text string) ([]criterionFeedbackItem, error) {
	var items []criterionFeedbackItem
	if err := decodeStage("criterion feedback", text, criterionFeedbackValidator, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func parseOverallFeedback(text string) (overallFeedbackPayload, error) {
	var payload overallFeedbackPayload
	if err := decodeStage("overall feedback", text, overallFeedbackValidator, &payload); err != nil {
		return overallFeedbackPayload{}, err
	}
	return payload, nil
}
