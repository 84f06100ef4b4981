package provider

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/consoleagent/consoleagent/pkg/models"
)

// Google talks to the Gemini API. A client is built per call because the
// API key can change between calls via configuration.
type Google struct{}

// NewGoogle creates the Gemini adapter.
func NewGoogle() *Google { return &Google{} }

func (g *Google) Name() models.ProviderName { return models.ProviderGoogle }

// Complete submits one request to Gemini. Tools and JSON mode are mutually
// exclusive at the API level; the dispatcher guarantees the request only
// sets one of them.
func (g *Google) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("google provider: no API key (set GEMINI_API_KEY or config api_key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(req.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.Instructions)},
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if len(req.Safety) > 0 {
		model.SafetySettings = safetySettings(req.Safety)
	}
	if req.Thinking != nil {
		log.Debug().Msg("thinking config is not supported by this SDK, ignoring")
	}

	switch {
	case len(req.Tools) > 0:
		model.Tools = nativeTools(req.Tools)
	case req.Schema != nil:
		schema, err := schemaFor(req.Schema)
		if err != nil {
			return nil, fmt.Errorf("derive response schema: %w", err)
		}
		model.GenerationConfig.ResponseMIMEType = "application/json"
		model.GenerationConfig.ResponseSchema = schema
	case req.JSONMode:
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}

	parts := []genai.Part{genai.Text(req.Message)}
	for _, f := range req.Files {
		log.Debug().Str("file", f.Name).Str("mime", f.MIMEType).Msg("attaching file")
		parts = append(parts, genai.Blob{MIMEType: f.MIMEType, Data: f.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	out := &Response{TokensUsed: tokenCount(resp)}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			switch v := part.(type) {
			case genai.Text:
				out.Text += string(v)
			case genai.FunctionCall:
				args := v.Args
				if args == nil {
					args = map[string]any{}
				}
				out.ToolCalls = append(out.ToolCalls, models.ToolCall{Name: v.Name, Args: args})
			}
		}
	}
	return out, nil
}

// nativeTools maps tool selectors onto Gemini tool declarations. Tools the
// SDK cannot express degrade with a debug log rather than failing the
// call; file_analysis is carried by multimodal parts, not a tool.
func nativeTools(selectors []models.ToolSelector) []*genai.Tool {
	var tools []*genai.Tool
	for _, sel := range selectors {
		switch sel.Type {
		case models.ToolGoogleSearch:
			log.Debug().Msg("google_search tool is not supported by this SDK, skipping")
		case models.ToolCodeExecution:
			tools = append(tools, &genai.Tool{CodeExecution: &genai.CodeExecution{}})
		case models.ToolURLContext:
			log.Debug().Msg("url_context tool is not supported by this SDK, skipping")
		case models.ToolFileAnalysis:
			// handled via multimodal content
		default:
			log.Debug().Str("tool", string(sel.Type)).Msg("unknown tool, skipping")
		}
	}
	return tools
}

var harmCategories = map[models.HarmCategory]genai.HarmCategory{
	models.HarmHateSpeech:       genai.HarmCategoryHateSpeech,
	models.HarmDangerousContent: genai.HarmCategoryDangerousContent,
	models.HarmHarassment:       genai.HarmCategoryHarassment,
	models.HarmSexuallyExplicit: genai.HarmCategorySexuallyExplicit,
}

var harmThresholds = map[models.HarmBlockThreshold]genai.HarmBlockThreshold{
	models.BlockNone:           genai.HarmBlockNone,
	models.BlockOnlyHigh:       genai.HarmBlockOnlyHigh,
	models.BlockMediumAndAbove: genai.HarmBlockMediumAndAbove,
	models.BlockLowAndAbove:    genai.HarmBlockLowAndAbove,
}

func safetySettings(settings []models.SafetySetting) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		cat, okC := harmCategories[s.Category]
		thr, okT := harmThresholds[s.Threshold]
		if !okC || !okT {
			log.Debug().Str("category", string(s.Category)).Msg("unknown safety setting, skipping")
			continue
		}
		out = append(out, &genai.SafetySetting{Category: cat, Threshold: thr})
	}
	return out
}

func tokenCount(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata == nil {
		return 0
	}
	total := int(resp.UsageMetadata.TotalTokenCount)
	if total == 0 {
		total = int(resp.UsageMetadata.PromptTokenCount) + int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return total
}
