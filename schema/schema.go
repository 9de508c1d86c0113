package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Document is the full text of one source file. It is never mutated after it
// has been loaded.
type Document struct {
	ID          string
	Source      string
	PageContent string
	Metadata    map[string]any
}

func (d Document) String() string {
	return d.PageContent
}

// NewDocument creates a document read from source and assigns it a fresh ID.
func NewDocument(source, content string, metadata map[string]any) Document {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["source"] = source
	return Document{
		ID:          uuid.NewString(),
		Source:      source,
		PageContent: content,
		Metadata:    metadata,
	}
}

// ModelDetails describes a model as reported by the inference server.
type ModelDetails struct {
	Name          string
	Family        string
	ParameterSize string
	Quantization  string
	ContextLength int
}

func (md ModelDetails) String() string {
	return fmt.Sprintf("%s (%s, %s, %s, ctx: %d)",
		md.Name, md.Family, md.ParameterSize, md.Quantization, md.ContextLength)
}

// ContentResponse is the result of a generation call.
type ContentResponse struct {
	Choices []*ContentChoice
}

type ContentChoice struct {
	Content        string
	StopReason     string
	GenerationInfo map[string]any
}

// Text returns the content of the first choice.
func (r *ContentResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Content)
}
