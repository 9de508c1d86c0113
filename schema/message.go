package schema

import "strings"

type ChatMessageType string

const (
	ChatMessageTypeSystem ChatMessageType = "system"
	ChatMessageTypeHuman  ChatMessageType = "human"
	ChatMessageTypeAI     ChatMessageType = "ai"
)

type ContentPart interface {
	String() string
	isPart()
}

type TextContent struct {
	Text string
}

func (tc TextContent) String() string {
	return tc.Text
}

func (TextContent) isPart() {}

// MessageContent is one turn of a conversation sent to a model.
type MessageContent struct {
	Role  ChatMessageType
	Parts []ContentPart
}

// GetTextContent joins the text parts of the message with newlines.
func (mc MessageContent) GetTextContent() string {
	parts := make([]string, 0, len(mc.Parts))
	for _, part := range mc.Parts {
		if s := part.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func NewTextMessage(role ChatMessageType, text string) MessageContent {
	return MessageContent{
		Role:  role,
		Parts: []ContentPart{TextContent{Text: text}},
	}
}

func NewSystemMessage(text string) MessageContent {
	return NewTextMessage(ChatMessageTypeSystem, text)
}

func NewHumanMessage(text string) MessageContent {
	return NewTextMessage(ChatMessageTypeHuman, text)
}
