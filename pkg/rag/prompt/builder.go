package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"review-rag-be/internal/entity"
)

// DefaultTemplate grounds the answer in the supplied review excerpts.
const DefaultTemplate = `Using only the product review excerpts below, answer:
{{.UserMessage}}

Context:
{{.Context}}

Recent conversation:
{{.History}}

Rules:
- Do not invent information
- Quote the relevant excerpts and cite their Source ID
- If the excerpts are not enough to answer, say so explicitly
`

type templateData struct {
	UserMessage string
	Context     string
	History     string
}

// Builder fills the grounding template. It is immutable and safe for
// concurrent use.
type Builder struct {
	tmpl *template.Template
}

func NewBuilder() *Builder {
	return &Builder{tmpl: template.Must(template.New("grounded").Option("missingkey=error").Parse(DefaultTemplate))}
}

// NewBuilderFromTemplate parses a custom template. It must reference only
// .UserMessage, .Context and .History.
func NewBuilderFromTemplate(text string) (*Builder, error) {
	tmpl, err := template.New("grounded").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Build renders the prompt. history is expected to be already trimmed to the
// window the caller wants the model to see.
func (b *Builder) Build(userMessage string, history []entity.ConversationMessage, docs []entity.RetrievedDocument) (string, error) {
	var out strings.Builder
	err := b.tmpl.Execute(&out, templateData{
		UserMessage: userMessage,
		Context:     RenderContext(docs),
		History:     RenderHistory(history),
	})
	if err != nil {
		return "", fmt.Errorf("fill prompt template: %w", err)
	}
	return out.String(), nil
}

// RenderContext renders each document as "{content} | Source ID: {id}",
// separated by blank lines, in the order given.
func RenderContext(docs []entity.RetrievedDocument) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content + " | Source ID: " + d.SourceId
	}
	return strings.Join(parts, "\n\n")
}

// RenderHistory renders "sender: content" lines in chronological order.
func RenderHistory(history []entity.ConversationMessage) string {
	lines := make([]string, len(history))
	for i, m := range history {
		lines[i] = m.Sender + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}
