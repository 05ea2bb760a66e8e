package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/httpclient"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
	"github.com/svenkata/TabChatAPI/pkg/logx"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logx.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: httpclient.Pooled()})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
}

func (c *llmClient) StreamChat(ctx context.Context, system string, history []chatModel.Message, tools []llm.Tool, onDelta func(delta string) error) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == chatModel.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	byName := make(map[string]llm.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaFromJSON(tool.Parameters),
		})
	}

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature: genai.Ptr[float32](float32(config.ModelTemperature)),
	}
	if len(declarations) > 0 {
		contentConfig.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	var total strings.Builder
	for step := 0; step < config.MaxToolSteps; step++ {
		var calls []*genai.FunctionCall
		var finishReason genai.FinishReason
		start := time.Now()

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, contents, contentConfig) {
			if err != nil {
				return total.String(), fmt.Errorf("completion stream failed: %w", err)
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			finishReason = resp.Candidates[0].FinishReason
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text != "" {
					total.WriteString(part.Text)
					if err := onDelta(part.Text); err != nil {
						return total.String(), err
					}
				}
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
				}
			}
		}
		metrics.CaptureExecutionMetrics("llm_stream", time.Since(start))
		log.Debug("Generation step finished",
			"step", step, "finishReason", finishReason, "toolCalls", len(calls))

		if len(calls) == 0 {
			return total.String(), nil
		}

		callParts := make([]*genai.Part, 0, len(calls))
		responseParts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			callParts = append(callParts, &genai.Part{FunctionCall: call})

			tool, found := byName[call.Name]
			if !found {
				log.Warn("Model requested unknown tool", "tool", call.Name)
				responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name,
					map[string]any{"error": "unknown tool"}))
				continue
			}

			log.Debug("Executing tool call", "tool", tool.Name, "step", step)
			metrics.CountToolCall(tool.Name)
			args, err := json.Marshal(call.Args)
			if err != nil {
				return total.String(), fmt.Errorf("serializing tool args: %w", err)
			}

			result, err := tool.Execute(ctx, args)
			if err != nil {
				responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name,
					map[string]any{"error": err.Error()}))
				continue
			}
			responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name,
				map[string]any{"result": result}))
		}

		contents = append(contents,
			&genai.Content{Role: genai.RoleModel, Parts: callParts},
			&genai.Content{Role: genai.RoleUser, Parts: responseParts},
		)
	}

	log.Warn("Tool step budget exhausted", "steps", config.MaxToolSteps)
	return total.String(), nil
}

// schemaFromJSON maps a JSON-schema object into the genai schema type.
// Covers the shapes our tools declare: objects, arrays, strings, numbers.
func schemaFromJSON(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		switch t {
		case "object":
			out.Type = genai.TypeObject
		case "array":
			out.Type = genai.TypeArray
		case "string":
			out.Type = genai.TypeString
		case "number":
			out.Type = genai.TypeNumber
		case "integer":
			out.Type = genai.TypeInteger
		case "boolean":
			out.Type = genai.TypeBoolean
		}
	}
	if d, ok := schema["description"].(string); ok {
		out.Description = d
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				out.Properties[name] = schemaFromJSON(sub)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = schemaFromJSON(items)
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	} else if rawRequired, ok := schema["required"].([]any); ok {
		for _, r := range rawRequired {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}
