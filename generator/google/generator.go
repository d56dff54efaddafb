package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/w-h-a/rio/generator"
	"github.com/w-h-a/rio/message"
	toolhandler "github.com/w-h-a/rio/tool_handler"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/iterator"
	genaiopt "google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash-preview-05-20"

const (
	roleUser  = "user"
	roleModel = "model"
)

const maxImageBytes = 20 << 20

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
	http    *http.Client
}

func (g *googleGenerator) Generate(ctx context.Context, req generator.Request, onDelta generator.DeltaFunc) (generator.Turn, error) {
	model := g.client.GenerativeModel(g.options.Model)

	if len(req.System) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	if g.options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.options.MaxTokens))
	}

	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	contents := g.toContents(ctx, req.Messages)
	if len(contents) == 0 {
		return generator.Turn{}, errors.New("no messages to send")
	}

	last := contents[len(contents)-1]
	if last.Role != roleUser {
		return generator.Turn{}, errors.New("conversation must end with a user turn")
	}

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]

	iter := cs.SendMessageStream(ctx, last.Parts...)

	var (
		text   strings.Builder
		parts  []genai.Part
		finish genai.FinishReason
		turn   generator.Turn
	)

	for {
		rsp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return generator.Turn{}, fmt.Errorf("failed to stream gemini response: %w", err)
		}

		if rsp.UsageMetadata != nil {
			turn.Usage = generator.Usage{
				PromptTokens:     int(rsp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(rsp.UsageMetadata.CandidatesTokenCount),
			}
		}

		if len(rsp.Candidates) == 0 {
			continue
		}

		cand := rsp.Candidates[0]

		if cand.FinishReason != genai.FinishReasonUnspecified {
			finish = cand.FinishReason
		}

		if cand.Content == nil {
			continue
		}

		for _, part := range cand.Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				text.WriteString(string(p))
				parts = appendText(parts, string(p))
				if onDelta != nil && len(p) > 0 {
					if err := onDelta(generator.Delta{Kind: generator.DeltaText, Text: string(p)}); err != nil {
						return generator.Turn{}, err
					}
				}
			case genai.FunctionCall:
				parts = append(parts, p)
				args := p.Args
				if args == nil {
					args = map[string]any{}
				}
				turn.ToolCalls = append(turn.ToolCalls, generator.ToolCall{
					Id:        "call_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
					Name:      p.Name,
					Arguments: args,
				})
			}
		}
	}

	turn.Text = text.String()
	turn.FinishReason = finishReason(finish, len(turn.ToolCalls) > 0)
	turn.Native = &genai.Content{Role: roleModel, Parts: parts}

	return turn, nil
}

func appendText(parts []genai.Part, s string) []genai.Part {
	if n := len(parts); n > 0 {
		if prev, ok := parts[n-1].(genai.Text); ok {
			parts[n-1] = prev + genai.Text(s)
			return parts
		}
	}
	return append(parts, genai.Text(s))
}

func finishReason(reason genai.FinishReason, calledTools bool) string {
	if calledTools {
		return generator.FinishToolCalls
	}
	switch reason {
	case genai.FinishReasonStop:
		return generator.FinishStop
	case genai.FinishReasonMaxTokens:
		return generator.FinishLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return generator.FinishContentFilter
	case genai.FinishReasonUnspecified:
		return generator.FinishUnknown
	default:
		return generator.FinishOther
	}
}

func (g *googleGenerator) toContents(ctx context.Context, msgs []message.Message) []*genai.Content {
	var out []*genai.Content

	push := func(c *genai.Content) {
		if c == nil || len(c.Parts) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == c.Role {
			out[n-1] = &genai.Content{Role: c.Role, Parts: append(append([]genai.Part{}, out[n-1].Parts...), c.Parts...)}
			return
		}
		out = append(out, c)
	}

	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleUser:
			c := &genai.Content{Role: roleUser}
			for _, part := range msg.Content {
				switch part.Type {
				case message.PartTypeText:
					if len(part.Text) > 0 {
						c.Parts = append(c.Parts, genai.Text(part.Text))
					}
				case message.PartTypeImage:
					c.Parts = append(c.Parts, g.image(ctx, part))
				}
			}
			push(c)
		case message.RoleAssistant:
			native, ok := msg.Native.(*genai.Content)
			if !ok {
				native = &genai.Content{Role: roleModel}
				for _, part := range msg.Content {
					switch {
					case part.Type == message.PartTypeText && len(part.Text) > 0:
						native.Parts = append(native.Parts, genai.Text(part.Text))
					case part.ToolInvocation != nil && part.ToolInvocation.State == message.StateResult:
						native.Parts = append(native.Parts, genai.FunctionCall{
							Name: part.ToolInvocation.ToolName,
							Args: part.ToolInvocation.Args,
						})
					}
				}
			}
			push(native)

			results := &genai.Content{Role: roleUser}
			for _, inv := range msg.ToolInvocations() {
				if inv.State != message.StateResult {
					continue
				}
				results.Parts = append(results.Parts, genai.FunctionResponse{
					Name:     inv.ToolName,
					Response: generator.ResultObject(inv.Result),
				})
			}
			push(results)
		}
	}

	return out
}

// image inlines an image part. Gemini only dereferences its own file URIs,
// so other URLs are fetched here.
func (g *googleGenerator) image(ctx context.Context, part message.Part) genai.Part {
	if strings.HasPrefix(part.Image, "gs://") || strings.HasPrefix(part.Image, "https://generativelanguage.googleapis.com/") {
		return genai.FileData{MIMEType: part.MediaType, URI: part.Image}
	}

	data, contentType, err := g.fetch(ctx, part.Image)
	if err != nil {
		return genai.Text(fmt.Sprintf("[Error: Could not read image %s]", part.Image))
	}

	mimeType := part.MediaType
	if len(mimeType) == 0 {
		mimeType = contentType
	}

	return genai.Blob{MIMEType: mimeType, Data: data}
}

func (g *googleGenerator) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	rsp, err := g.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %s", rsp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(rsp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}

	return data, rsp.Header.Get("Content-Type"), nil
}

func toDeclarations(specs []toolhandler.ToolSpec) []*genai.FunctionDeclaration {
	var out []*genai.FunctionDeclaration
	for _, spec := range specs {
		out = append(out, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  toSchema(spec.InputSchema),
		})
	}
	return out
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = DefaultModel
	}

	g := &googleGenerator{
		options: options,
		http:    options.Client,
	}

	if g.http == nil {
		g.http = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	clientOpts := []genaiopt.ClientOption{
		genaiopt.WithAPIKey(options.ApiKey),
	}

	if len(options.BaseUrl) > 0 {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.BaseUrl))
	}

	client, err := genai.NewClient(
		options.Context,
		clientOpts...,
	)
	if err != nil {
		panic(err)
	}

	g.client = client

	return g
}
