package chat

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
)

// splitSystem folds system-role messages into the system prompt and returns
// the remaining conversation.
func splitSystem(base string, msgs []message.Message) (string, []message.Message) {
	var extra []string
	history := make([]message.Message, 0, len(msgs))

	for _, msg := range msgs {
		if msg.Role == message.RoleSystem {
			if text := strings.TrimSpace(msg.Text()); len(text) > 0 {
				extra = append(extra, text)
			}
			continue
		}
		if len(msg.Content) == 0 {
			continue
		}
		history = append(history, msg)
	}

	if len(extra) == 0 {
		return base, history
	}

	return strings.Join(append([]string{base}, extra...), "\n\n"), history
}

func failure(msg string) toolhandler.ToolResponse {
	return toolhandler.ToolResponse{
		Content: map[string]any{"error": msg},
		IsError: true,
	}
}

func assistantStep(turn generator.Turn, invocations []message.ToolInvocation) message.Message {
	msg := message.Message{
		Id:     newMessageId(),
		Role:   message.RoleAssistant,
		Native: turn.Native,
	}

	if len(turn.Text) > 0 {
		msg.Content = append(msg.Content, message.Part{Type: message.PartTypeText, Text: turn.Text})
	}

	msg.Content = append(msg.Content, lo.Map(invocations, func(inv message.ToolInvocation, _ int) message.Part {
		return message.Part{Type: message.PartTypeToolInvocation, ToolInvocation: &inv}
	})...)

	return msg
}

func newMessageId() string {
	return "msg-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
