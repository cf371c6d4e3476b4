// Package ai produces assessment questions and tutor answers through a
// generative-language API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured = errors.New("text generation is not configured")
	ErrGeneration    = errors.New("text generation failed")
)

// Generator is the text-generation collaborator used by the controllers.
type Generator interface {
	AssessmentQuestions(ctx context.Context, topic, notes string) (string, error)
	TutorAnswer(ctx context.Context, topic, question string) (string, error)
}

func assessmentPrompt(topic, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The student just studied: %s.\n", topic)
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, "Additional context from their notes: %s\n", notes)
	}
	b.WriteString("Generate three short open-ended questions that test conceptual understanding of this topic. ")
	b.WriteString("Number them 1 to 3 and do not include the answers.")
	return b.String()
}

func tutorPrompt(topic, question string) string {
	var b strings.Builder
	b.WriteString("You are a patient study tutor. Answer the student's question clearly and concisely, ")
	b.WriteString("using a short example where it helps.\n")
	if topic = strings.TrimSpace(topic); topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", topic)
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
