package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aimastery/questd/internal/domain"
)

// Remote evaluator defaults.
const (
	DefaultEndpoint = "https://openrouter.ai/api/v1"
	DefaultModel    = "openai/gpt-4o-mini"
	DefaultTimeout  = 30 * time.Second

	evalMaxTokens   = 500
	evalTemperature = 0.3
)

const evalSystemPrompt = `You are an expert evaluator for AI learning quests.

Score the submission on:
1. Understanding (0-30): grasp of the core concepts
2. Application (0-30): correct use of what was learned
3. Completeness (0-20): every part of the task addressed
4. Quality (0-20): clear, well-structured work

Be encouraging but honest. Start with what went well, then give concrete
improvements. Keep feedback to 2-3 short paragraphs. Be more lenient with
beginner quests.

Respond with ONLY valid JSON in exactly this format:
{"score": <number 0-100>, "feedback": "<feedback as a single string>"}`

// OpenAI evaluates submissions with an OpenAI-compatible chat completions
// endpoint (OpenAI, OpenRouter, a local llama-server, ...).
type OpenAI struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewOpenAI creates a remote evaluator. Empty values take the defaults.
func NewOpenAI(endpoint, apiKey, model string, timeout time.Duration) *OpenAI {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAI{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Evaluator.
func (o *OpenAI) Name() string { return ModeOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Evaluate implements Evaluator.
func (o *OpenAI) Evaluate(ctx context.Context, req Request) (domain.AIFeedback, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: evalSystemPrompt},
			{Role: "user", Content: evalPrompt(req)},
		},
		MaxTokens:   evalMaxTokens,
		Temperature: evalTemperature,
	})
	if err != nil {
		return domain.AIFeedback{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.AIFeedback{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	httpReq.Header.Set("X-Title", "questd evaluation")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return domain.AIFeedback{}, fmt.Errorf("evaluation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.AIFeedback{}, fmt.Errorf("evaluator error %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.AIFeedback{}, fmt.Errorf("decode response: %w", err)
	}
	if chat.Error != nil {
		return domain.AIFeedback{}, fmt.Errorf("evaluator error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return domain.AIFeedback{}, fmt.Errorf("evaluator returned no choices")
	}

	return ParseVerdict(chat.Choices[0].Message.Content)
}

// ParseVerdict extracts {"score", "feedback"} from a model reply. Text
// around the outermost JSON object is ignored. The score is rounded and
// clamped to 0..100.
func ParseVerdict(content string) (domain.AIFeedback, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return domain.AIFeedback{}, fmt.Errorf("no JSON object in evaluator reply")
	}

	var v struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return domain.AIFeedback{}, fmt.Errorf("parse evaluator reply: %w", err)
	}
	if v.Score == nil || v.Feedback == nil {
		return domain.AIFeedback{}, fmt.Errorf("evaluator reply missing score or feedback")
	}

	score := int(math.Round(*v.Score))
	return domain.AIFeedback{
		Score:    min(100, max(0, score)),
		Feedback: *v.Feedback,
	}, nil
}

func evalPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Evaluate this submission for an AI learning quest.\n\n")
	b.WriteString("## Quest\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.QuestTitle)
	fmt.Fprintf(&b, "- Description: %s\n", req.Description)
	fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty)
	if req.Instructions != "" {
		fmt.Fprintf(&b, "- Practice instructions: %s\n", req.Instructions)
	}
	b.WriteString("\n## Submission\n")
	b.WriteString(req.Submission)
	b.WriteString("\n\nRespond with ONLY valid JSON: {\"score\": <number>, \"feedback\": \"<string>\"}")
	return b.String()
}
