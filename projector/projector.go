package projector

import (
	"encoding/json"
	"strings"

	"github.com/samber/lo"
	"github.com/w-h-a/rio/chart"
	"github.com/w-h-a/rio/message"
	charttool "github.com/w-h-a/rio/tool_handler/chart"
	databasetool "github.com/w-h-a/rio/tool_handler/database"
	searchtool "github.com/w-h-a/rio/tool_handler/websearch"
	getsafe "github.com/w-h-a/rio/util/get_safe"
	"github.com/w-h-a/rio/warehouse"
)

const (
	StatusThinking  = "Thinking..."
	StatusSearching = "Searching..."
	StatusDatabase  = "Searching database..."
)

// Projection is the renderable payload of a finished tool call. Exactly one
// of Spec and Database is set.
type Projection struct {
	ToolCallId string                 `json:"toolCallId"`
	ToolName   string                 `json:"toolName"`
	Spec       *chart.Spec            `json:"spec,omitempty"`
	Database   *warehouse.QueryResult `json:"db,omitempty"`
}

type Status struct {
	ToolName string `json:"toolName,omitempty"`
	Text     string `json:"text"`
	Query    string `json:"query,omitempty"`
}

func Project(part message.Part) (Projection, bool) {
	inv := part.ToolInvocation
	if part.Type != message.PartTypeToolInvocation || inv == nil || inv.State != message.StateResult || inv.Result == nil {
		return Projection{}, false
	}

	p := Projection{
		ToolCallId: inv.ToolCallId,
		ToolName:   inv.ToolName,
	}

	switch inv.ToolName {
	case charttool.Name:
		var out struct {
			Spec *chart.Spec `json:"spec"`
		}
		if !recast(inv.Result, &out) || out.Spec == nil {
			return Projection{}, false
		}
		p.Spec = out.Spec
	case databasetool.Name:
		var out warehouse.QueryResult
		if !recast(inv.Result, &out) {
			return Projection{}, false
		}
		p.Database = &out
	default:
		return Projection{}, false
	}

	return p, true
}

func Projections(msg message.Message) []Projection {
	return lo.FilterMap(msg.Content, func(part message.Part, _ int) (Projection, bool) {
		return Project(part)
	})
}

// HasContent reports whether a message has anything to show: non-blank text
// or a finished chart or database call.
func HasContent(msg message.Message) bool {
	return lo.SomeBy(msg.Content, func(part message.Part) bool {
		if part.Type == message.PartTypeText && strings.TrimSpace(part.Text) != "" {
			return true
		}
		_, ok := Project(part)
		return ok
	})
}

// StatusOf picks the indicator shown while the last message is still
// being produced.
func StatusOf(msg message.Message) Status {
	if msg.Role != message.RoleAssistant {
		return Status{Text: StatusThinking}
	}

	invocations := msg.ToolInvocations()

	if strings.TrimSpace(msg.Text()) == "" {
		if _, ok := lo.Find(invocations, func(inv message.ToolInvocation) bool {
			return inv.ToolName == searchtool.Name
		}); ok {
			return Status{ToolName: searchtool.Name, Text: StatusSearching}
		}
	}

	if inv, ok := lo.Find(invocations, func(inv message.ToolInvocation) bool {
		return inv.ToolName == databasetool.Name && inv.State == message.StateCall
	}); ok {
		return Status{ToolName: databasetool.Name, Text: StatusDatabase, Query: getsafe.String(inv.Args, "query")}
	}

	return Status{Text: StatusThinking}
}

func recast(in any, out any) bool {
	bs, err := json.Marshal(in)
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, out) == nil
}
