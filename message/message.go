package message

import (
	"encoding/json"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	PartTypeText           = "text"
	PartTypeImage          = "image"
	PartTypeReasoning      = "reasoning"
	PartTypeToolInvocation = "tool-invocation"
	PartTypeStepStart      = "step-start"
)

const (
	StateCall   = "call"
	StateResult = "result"
)

type Message struct {
	Id          string       `json:"id,omitempty"`
	Role        string       `json:"role"`
	Content     []Part       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// Native holds the provider's own rendition of an assistant turn produced
	// during the current request. It never crosses the wire.
	Native any `json:"-"`
}

type Part struct {
	Type           string          `json:"type"`
	Text           string          `json:"text,omitempty"`
	Image          string          `json:"image,omitempty"`
	MediaType      string          `json:"mimeType,omitempty"`
	Reasoning      string          `json:"reasoning,omitempty"`
	ToolInvocation *ToolInvocation `json:"toolInvocation,omitempty"`
}

type ToolInvocation struct {
	ToolCallId string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	State      string         `json:"state"`
	Args       map[string]any `json:"args,omitempty"`
	Result     any            `json:"result,omitempty"`
}

type Attachment struct {
	Name        string `json:"name"`
	Url         string `json:"url"`
	ContentType string `json:"contentType"`
}

func NewText(role string, text string) Message {
	return Message{
		Role:    role,
		Content: []Part{{Type: PartTypeText, Text: text}},
	}
}

func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Content {
		if p.Type == PartTypeText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func (m Message) ToolInvocations() []ToolInvocation {
	var invocations []ToolInvocation
	for _, p := range m.Content {
		if p.Type == PartTypeToolInvocation && p.ToolInvocation != nil {
			invocations = append(invocations, *p.ToolInvocation)
		}
	}
	return invocations
}

func (m Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

type wireMessage struct {
	Id                      string           `json:"id"`
	Role                    string           `json:"role"`
	Content                 json.RawMessage  `json:"content"`
	Parts                   []Part           `json:"parts"`
	Attachments             []Attachment     `json:"attachments"`
	ExperimentalAttachments []Attachment     `json:"experimental_attachments"`
	ToolInvocations         []ToolInvocation `json:"toolInvocations"`
}

// UnmarshalJSON accepts content as a plain string or as a part array, and the
// parts/toolInvocations/experimental_attachments fields sent by chat clients.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*m = Message{
		Id:          w.Id,
		Role:        w.Role,
		Attachments: w.Attachments,
	}

	if len(m.Attachments) == 0 {
		m.Attachments = w.ExperimentalAttachments
	}

	// parts is the richer rendition of the same turn; prefer it over content
	if len(w.Parts) > 0 {
		m.Content = w.Parts
		return nil
	}

	text, parts, err := decodeContent(w.Content)
	if err != nil {
		return err
	}

	switch {
	case len(parts) > 0:
		m.Content = parts
	case len(text) > 0:
		m.Content = []Part{{Type: PartTypeText, Text: text}}
	}

	for i := range w.ToolInvocations {
		inv := w.ToolInvocations[i]
		m.Content = append(m.Content, Part{Type: PartTypeToolInvocation, ToolInvocation: &inv})
	}

	return nil
}

func decodeContent(raw json.RawMessage) (string, []Part, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 || trimmed == "null" {
		return "", nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var parts []Part
		if err := json.Unmarshal(raw, &parts); err != nil {
			return "", nil, err
		}
		return "", parts, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", nil, err
	}

	return text, nil, nil
}
