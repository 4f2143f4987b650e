package prompt

import (
	"fmt"
	"strings"

	"ai-docchat-be/pkg/llm"
)

const (
	// MaxKeywords is the number of keywords the augmentation prompt asks for.
	MaxKeywords = 15

	// answerExcerptLength bounds how much of the top document's body is
	// embedded in the grounding prompt.
	answerExcerptLength = 1000
)

// KeywordMessages builds the chat history for the keyword-augmentation call.
func KeywordMessages(question string) []llm.Message {
	return []llm.Message{
		{
			Role: "system",
			Content: fmt.Sprintf(
				"You are a professional keyword analyst. Analyze the given question and generate related domain keywords. "+
					"Separate each keyword with a comma and generate at most %d keywords.", MaxKeywords),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Generate related keywords for the following question: %s", question),
		},
	}
}

// GroundedAnswer builds the prompt for the final answer generation, grounding
// the model in the top retrieved document.
func GroundedAnswer(question, documentTitle, documentContent string) string {
	var b strings.Builder

	b.WriteString("Answer the question using the reference document below.\n\n")

	b.WriteString("[Reference document]\n")
	b.WriteString("Title: ")
	b.WriteString(documentTitle)
	b.WriteString("\n")
	b.WriteString("Content: ")
	b.WriteString(Excerpt(documentContent, answerExcerptLength))
	b.WriteString("\n\n")

	b.WriteString("[Question]\n")
	b.WriteString(question)
	b.WriteString("\n\n")

	b.WriteString("Write the answer based on the document above. Guidelines:\n")
	b.WriteString("- Use a natural, conversational tone\n")
	b.WriteString("- Prefer clear explanations over formal phrasing\n")
	b.WriteString("- Give concrete, useful information grounded in the document\n")
	b.WriteString("- Output only the answer, without headers or extra formatting\n")

	return strings.TrimSpace(b.String())
}

// Excerpt truncates text to at most n runes, marking the cut with an ellipsis.
func Excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
