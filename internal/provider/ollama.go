package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	ollama "github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// defaultOllamaHost is used when neither config nor OLLAMA_HOST name one.
const defaultOllamaHost = "http://localhost:11434"

// defaultOllamaModel is the fallback when the configured model is a Gemini
// identifier that cannot resolve locally.
const defaultOllamaModel = "llama3.2"

// Ollama talks to a local or remote Ollama server. This backend is
// best-effort: unsupported options (native tools, thinking config, file
// attachments) are logged and ignored rather than failing the call.
type Ollama struct {
	host   string
	client *ollama.Client
}

// NewOllama creates the Ollama adapter. Host resolution order: explicit
// host, OLLAMA_HOST, local default.
func NewOllama(host string) (*Ollama, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &Ollama{
		host:   host,
		client: ollama.NewClient(base, http.DefaultClient),
	}, nil
}

func (o *Ollama) Name() models.ProviderName { return models.ProviderOllama }

func (o *Ollama) Complete(ctx context.Context, req *Request) (*Response, error) {
	modelName := req.Model
	if strings.HasPrefix(modelName, "gemini") {
		modelName = defaultOllamaModel
		log.Debug().Str("model", modelName).Msg("ollama: gemini model configured, falling back to local default")
	}

	if len(req.Tools) > 0 {
		log.Debug().Msg("ollama: native tools are not supported, ignoring")
	}
	if req.Thinking != nil {
		log.Debug().Msg("ollama: thinking config is not supported, ignoring")
	}
	if len(req.Files) > 0 {
		log.Debug().Msg("ollama: file attachments are not supported, ignoring")
	}

	messages := []ollama.Message{
		{Role: "system", Content: req.Instructions},
		{Role: "user", Content: req.Message},
	}

	var format json.RawMessage
	switch {
	case len(req.Format) > 0:
		// Ollama accepts a full JSON schema as the format constraint.
		b, err := json.Marshal(req.Format)
		if err != nil {
			return nil, fmt.Errorf("marshal response format: %w", err)
		}
		format = b
	case req.JSONMode || req.Schema != nil:
		format = json.RawMessage(`"json"`)
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   &stream,
		Format:   format,
	}
	if req.MaxTokens > 0 {
		chatReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	var (
		content strings.Builder
		tokens  int
	)
	err := o.client.Chat(ctx, chatReq, func(res ollama.ChatResponse) error {
		content.WriteString(res.Message.Content)
		if res.Done {
			tokens = res.Metrics.PromptEvalCount + res.Metrics.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat (%s): %w", o.host, err)
	}

	return &Response{
		Text:       content.String(),
		TokensUsed: tokens,
	}, nil
}
