package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/w-h-a/rio/message"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

type Normalizer struct {
	options Options
	client  *http.Client
}

// Normalize folds every message's attachments into its content. Messages are
// processed one at a time; the attachments of a single message are fetched in
// parallel and their parts keep the original attachment order.
func (n *Normalizer) Normalize(ctx context.Context, msgs []message.Message) []message.Message {
	out := make([]message.Message, 0, len(msgs))

	for _, msg := range msgs {
		if !msg.HasAttachments() {
			out = append(out, msg)
			continue
		}
		out = append(out, n.normalizeMessage(ctx, msg))
	}

	return out
}

func (n *Normalizer) normalizeMessage(ctx context.Context, msg message.Message) message.Message {
	parts := make([]message.Part, 0, len(msg.Content)+len(msg.Attachments))

	for _, p := range msg.Content {
		if p.Type == message.PartTypeText && len(p.Text) == 0 {
			continue
		}
		parts = append(parts, p)
	}

	converted := make([]message.Part, len(msg.Attachments))

	var g errgroup.Group
	if n.options.Concurrency > 0 {
		g.SetLimit(n.options.Concurrency)
	}

	for i, att := range msg.Attachments {
		g.Go(func() error {
			converted[i] = n.convert(ctx, att)
			return nil
		})
	}

	_ = g.Wait()

	normalized := msg
	normalized.Content = append(parts, converted...)
	normalized.Attachments = nil

	return normalized
}

func (n *Normalizer) convert(ctx context.Context, att message.Attachment) message.Part {
	if strings.HasPrefix(att.ContentType, "image/") {
		return message.Part{
			Type:      message.PartTypeImage,
			Image:     att.Url,
			MediaType: att.ContentType,
		}
	}

	content, err := n.fetch(ctx, att.Url)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch attachment", "name", att.Name, "error", err)
		return message.Part{
			Type: message.PartTypeText,
			Text: FetchErrorText(att.Name),
		}
	}

	return message.Part{
		Type: message.PartTypeText,
		Text: FileText(att.Name, content),
	}
}

func (n *Normalizer) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	rsp, err := n.client.Do(req)
	if err != nil {
		return "", err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode >= 300 {
		return "", fmt.Errorf("status: %s", rsp.Status)
	}

	bs, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", err
	}

	return string(bs), nil
}

func FileText(name string, content string) string {
	return fmt.Sprintf("[File: %s]\n%s\n[End of %s]", name, content, name)
}

func FetchErrorText(name string) string {
	return fmt.Sprintf("[Error: Could not read file %s]", name)
}

func NewNormalizer(opts ...Option) *Normalizer {
	options := NewOptions(opts...)

	n := &Normalizer{
		options: options,
		client:  options.Client,
	}

	if n.client == nil {
		n.client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return n
}
