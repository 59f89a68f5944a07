package service

import (
	"fmt"
	"strings"

	"github.com/inkwell-ed/inkwell-api/internal/models"
)

// writeRubric renders the assignment rubric into the prompt. Criteria appear
// in rubric order and levels from highest to lowest performance; the model is
// told to reference criteria by their numeric ids.
func writeRubric(builder *strings.Builder, criteria []models.RubricCriterion) {
	builder.WriteString("## Rubric\n")
	for _, criterion := range criteria {
		fmt.Fprintf(builder, "### Criterion %d: %s\n", criterion.ID, criterion.Name)
		if criterion.Description != "" {
			builder.WriteString(criterion.Description)
			builder.WriteString("\n")
		}
		builder.WriteString("Performance levels, highest to lowest:\n")
		for _, level := range criterion.Levels {
			fmt.Fprintf(builder, "- %s: %s\n", level.Label, level.Description)
		}
	}
}

func writeInstructions(builder *strings.Builder, instructions string) {
	if strings.TrimSpace(instructions) == "" {
		return
	}
	builder.WriteString("\n## Teacher Instructions\n")
	builder.WriteString(instructions)
	builder.WriteString("\n")
}

func writeEssay(builder *strings.Builder, text string) {
	builder.WriteString("\n## Student Essay\n")
	builder.WriteString(text)
	builder.WriteString("\n")
}

func buildInlineCommentsPrompt(assignment models.Assignment, text string) string {
	builder := strings.Builder{}
	builder.WriteString("You are an experienced writing teacher giving inline feedback on a student essay.\n\n")
	writeRubric(&builder, assignment.Criteria)
	writeInstructions(&builder, assignment.Instructions)
	writeEssay(&builder, text)
	builder.WriteString("\nSelect up to 8 short passages that deserve a comment. ")
	builder.WriteString("Quote each passage EXACTLY as it appears in the essay, character for character. ")
	builder.WriteString("Respond with only a fenced json code block containing an array of objects, ")
	builder.WriteString(`each shaped as {"criterion_id": <number>, "quote": "<exact excerpt>", "comment": "<feedback>"}.`)
	builder.WriteString("\n")
	return builder.String()
}

func buildCriterionFeedbackPrompt(assignment models.Assignment, text string) string {
	builder := strings.Builder{}
	builder.WriteString("You are an experienced writing teacher grading a student essay against a rubric.\n\n")
	writeRubric(&builder, assignment.Criteria)
	writeInstructions(&builder, assignment.Instructions)
	writeEssay(&builder, text)
	builder.WriteString("\nFor every rubric criterion, describe what the student did well, where they can grow, ")
	builder.WriteString("and concrete suggestions. Respond with only a fenced json code block containing an array of objects, ")
	builder.WriteString(`each shaped as {"criterion_id": <number>, "strengths": "<text>", "growth": "<text>", "suggestions": ["<text>", ...]}.`)
	builder.WriteString("\n")
	return builder.String()
}

func buildOverallFeedbackPrompt(assignment models.Assignment, text string) string {
	builder := strings.Builder{}
	builder.WriteString("You are an experienced writing teacher summarising feedback on a student essay.\n\n")
	writeRubric(&builder, assignment.Criteria)
	writeInstructions(&builder, assignment.Instructions)
	writeEssay(&builder, text)
	builder.WriteString("\nWrite an encouraging overall summary, the top priorities to address, and next steps. ")
	builder.WriteString("Respond with only a fenced json code block containing one object shaped as ")
	builder.WriteString(`{"summary": "<text>", "priorities": ["<text>", ...], "next_steps": ["<text>", ...]}.`)
	builder.WriteString("\n")
	return builder.String()
}
