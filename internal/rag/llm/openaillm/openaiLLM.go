package openaillm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/httpclient"
	"github.com/svenkata/TabChatAPI/internal/metrics"
	"github.com/svenkata/TabChatAPI/internal/rag/llm"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logx.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("No OpenAI API key configured")
			return
		}
		openaiClient = &llmClient{
			api:       openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(httpclient.Pooled())),
			modelName: modelName,
		}
		logger.Info("OpenAI chat client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) StreamChat(ctx context.Context, system string, history []chatModel.Message, tools []llm.Tool, onDelta func(delta string) error) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, msg := range history {
		switch msg.Role {
		case chatModel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	toolParams := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	byName := make(map[string]llm.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
		toolParams = append(toolParams, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  shared.FunctionParameters(tool.Parameters),
		}))
	}

	var total strings.Builder
	for step := 0; step < config.MaxToolSteps; step++ {
		params := openai.ChatCompletionNewParams{
			Model:       c.modelName,
			Messages:    messages,
			Temperature: openai.Float(config.ModelTemperature),
		}
		if len(toolParams) > 0 {
			params.Tools = toolParams
		}

		start := time.Now()
		stream := c.api.Chat.Completions.NewStreaming(ctx, params)
		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				total.WriteString(delta)
				if err := onDelta(delta); err != nil {
					_ = stream.Close()
					return total.String(), err
				}
			}
		}
		metrics.CaptureExecutionMetrics("llm_stream", time.Since(start))
		if err := stream.Err(); err != nil {
			return total.String(), fmt.Errorf("completion stream failed: %w", err)
		}
		if len(acc.Choices) == 0 {
			return total.String(), nil
		}

		assistantMsg := acc.Choices[0].Message
		log.Debug("Generation step finished",
			"step", step,
			"finishReason", acc.Choices[0].FinishReason,
			"toolCalls", len(assistantMsg.ToolCalls),
			"promptTokens", acc.Usage.PromptTokens,
			"completionTokens", acc.Usage.CompletionTokens)
		if len(assistantMsg.ToolCalls) == 0 {
			return total.String(), nil
		}

		messages = append(messages, assistantMsg.ToParam())
		for _, call := range assistantMsg.ToolCalls {
			tool, found := byName[call.Function.Name]
			if !found {
				log.Warn("Model requested unknown tool", "tool", call.Function.Name)
				messages = append(messages, openai.ToolMessage("unknown tool: "+call.Function.Name, call.ID))
				continue
			}

			log.Debug("Executing tool call", "tool", tool.Name, "step", step)
			metrics.CountToolCall(tool.Name)
			result, err := tool.Execute(ctx, json.RawMessage(call.Function.Arguments))
			if err != nil {
				// the model gets the failure and decides how to answer
				messages = append(messages, openai.ToolMessage("tool failed: "+err.Error(), call.ID))
				continue
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return total.String(), fmt.Errorf("serializing tool result: %w", err)
			}
			messages = append(messages, openai.ToolMessage(string(payload), call.ID))
		}
	}

	log.Warn("Tool step budget exhausted", "steps", config.MaxToolSteps)
	return total.String(), nil
}
