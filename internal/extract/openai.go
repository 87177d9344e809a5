package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type gptParams struct {
	EmployeeIdentifier *string `json:"employee_identifier"`
	ChangeType         string  `json:"change_type"`
	TargetSalary       *int64  `json:"target_salary"`
	AllowanceType      *string `json:"allowance_type"`
	Reasoning          string  `json:"reasoning"`
}

type GPTExtractor struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTExtractor(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTExtractor {
	return &GPTExtractor{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

const extractPrompt = `Extract salary change parameters from an instruction posted in an internal HR chat.

Respond as a JSON object:
{
  "employee_identifier": "employee number or full name, or null if not stated",
  "change_type": "mechanical when the instruction names a concrete grade/step or allowance, discretionary when it targets an arbitrary total amount",
  "target_salary": 300000,
  "allowance_type": "position | region | qualification | other, or null",
  "reasoning": "one sentence on how the fields were read"
}

target_salary is the monthly total in the smallest currency unit, or null.
Never compute new amounts yourself; only report what the text states.

Instruction: %s`

func (e *GPTExtractor) Extract(ctx context.Context, text string) (*Params, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(extractPrompt, text)},
		},
		MaxTokens:   e.maxTokens,
		Temperature: float32(e.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var raw gptParams
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("extraction response is not valid JSON: %w", err)
	}

	params := &Params{
		ChangeType:   raw.ChangeType,
		TargetSalary: raw.TargetSalary,
		Reasoning:    raw.Reasoning,
	}
	if raw.EmployeeIdentifier != nil {
		params.EmployeeIdentifier = strings.TrimSpace(*raw.EmployeeIdentifier)
	}
	if raw.AllowanceType != nil {
		params.AllowanceType = strings.TrimSpace(*raw.AllowanceType)
	}
	if params.ChangeType != ChangeTypeMechanical && params.ChangeType != ChangeTypeDiscretionary {
		e.logger.Warn("model returned unknown change type, using discretionary",
			zap.String("changeType", params.ChangeType))
		params.ChangeType = ChangeTypeDiscretionary
	}
	return params, nil
}
