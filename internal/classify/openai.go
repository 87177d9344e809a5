package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Cheap patterns checked before spending a model call. Order matters: the
// first hit wins.
var regexRules = []struct {
	category Category
	pattern  *regexp.Regexp
}{
	{CategorySalaryChange, regexp.MustCompile(`(?i)(salary|base pay|pay raise|raise to|昇給|給与|基本給)`)},
	{CategoryLeaveRequest, regexp.MustCompile(`(?i)(day off|vacation|paid leave|休暇|有給)`)},
	{CategoryGreeting, regexp.MustCompile(`(?i)^(hi|hello|good (morning|afternoon|evening)|おはよう|お疲れ様)[\s!.]*$`)},
	{CategorySystemNotice, regexp.MustCompile(`(?i)^\[(system|bot|notice)\]`)},
}

const regexConfidence = 0.95

type gptResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type GPTClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *GPTClassifier) Classify(ctx context.Context, text string, threadCtx *ThreadContext) (*Classification, error) {
	for _, rule := range regexRules {
		if rule.pattern.MatchString(text) {
			return &Classification{
				Category:     rule.category,
				Confidence:   regexConfidence,
				Reasoning:    "matched pattern",
				Method:       MethodRegex,
				RegexPattern: rule.pattern.String(),
			}, nil
		}
	}

	prompt := buildPrompt(text, threadCtx)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	var result gptResult
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("classification response is not valid JSON: %w", err)
	}

	category := Category(result.Category)
	if !ValidCategory(category) {
		c.logger.Warn("model returned unknown category, using other",
			zap.String("category", result.Category))
		category = CategoryOther
	}

	return &Classification{
		Category:   category,
		Confidence: clamp01(result.Confidence),
		Reasoning:  result.Reasoning,
		Method:     MethodAI,
	}, nil
}

func buildPrompt(text string, threadCtx *ThreadContext) string {
	var b strings.Builder
	b.WriteString("Classify the intent of a message posted in an internal HR team chat.\n")
	b.WriteString("Pick exactly one category from: ")
	for i, cat := range AllCategories {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(cat))
	}
	b.WriteString("\n\nRespond as a JSON object: {\"category\": \"...\", \"confidence\": 0.0, \"reasoning\": \"...\"}\n")
	if threadCtx != nil {
		fmt.Fprintf(&b, "\nThis is reply %d in a thread whose first message (%q) was classified as %s.\n",
			threadCtx.ReplyCount, threadCtx.ParentSnippet, threadCtx.ParentCategory)
	}
	fmt.Fprintf(&b, "\nMessage: %s", text)
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
