// Package ai summarizes leads through a hosted language model.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matheuskafuri/leadfinder/internal/config"
	"github.com/matheuskafuri/leadfinder/internal/summary"
)

// BatchLimit caps how many posts go into one batch prompt.
const BatchLimit = 10

// Price per thousand tokens, used to estimate Usage.Cost.
const (
	claudeCostPerKTokens = 0.004
	openaiCostPerKTokens = 0.002
)

// New creates a BatchSummarizer from the given AI config.
func New(cfg *config.AIConfig, apiKey string, client *http.Client) (summary.BatchSummarizer, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}
	if client == nil {
		client = http.DefaultClient
	}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		endpoint := "https://api.anthropic.com/v1/messages"
		if cfg.BaseURL != "" {
			endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
		}
		return &provider{model: model, client: client, api: &claudeAPI{apiKey: apiKey, endpoint: endpoint}}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		endpoint := "https://api.openai.com/v1/chat/completions"
		if cfg.BaseURL != "" {
			endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/chat/completions"
		}
		return &provider{model: model, client: client, api: &openaiAPI{apiKey: apiKey, endpoint: endpoint}}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}

const summarizePrompt = `You are analyzing a Reddit post that has already been identified as relevant to someone looking for help with: "%s"

Post Title: %s
Post Content: %s

Generate a concise 2-3 sentence summary that explains:
1. What specific problem the person is facing
2. Why this would be a good lead for someone who solves "%s"

Keep it under 150 words and focus on the business opportunity. Respond with ONLY the summary.`

const batchPrompt = `You are analyzing Reddit posts that have already been identified as relevant to someone looking for help with: "%s"
%s
For each post, generate a concise 2-3 sentence summary that explains:
1. What specific problem the person is facing
2. Why this would be a good lead for someone who solves "%s"

Return your response as a JSON array of summaries, one for each post.
Format: ["summary1", "summary2", ...]

Keep each summary under 100 words and focus on the business opportunity.`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func formatBatch(reqs []summary.Request) string {
	var sb strings.Builder
	for i, r := range reqs {
		fmt.Fprintf(&sb, "\nPost %d:\nTitle: %s\nContent: %s\n---\n", i+1, r.Title, truncate(r.Body, 300))
	}
	return sb.String()
}

// parseBatch decodes a JSON array of n summaries, tolerating a fenced code
// block around it.
func parseBatch(text string, n int) ([]string, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			text = text[start : end+1]
		}
	}
	var out []string
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decoding batch summaries: %w", err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("batch returned %d summaries for %d posts", len(out), n)
	}
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out, nil
}

// api is one vendor's wire format.
type api interface {
	name() string
	costPerKTokens() float64
	newRequest(ctx context.Context, model, prompt string, maxTokens int) (*http.Request, error)
	decode(r io.Reader) (text string, tokens int, err error)
}

type provider struct {
	model  string
	client *http.Client
	api    api
}

func (p *provider) Summarize(ctx context.Context, req summary.Request) (string, summary.Usage, error) {
	prompt := fmt.Sprintf(summarizePrompt, req.Problem, req.Title, truncate(req.Body, 500), req.Problem)
	text, usage, err := p.call(ctx, prompt, 256)
	if err != nil {
		return "", usage, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", usage, fmt.Errorf("empty %s summary", p.api.name())
	}
	return text, usage, nil
}

// SummarizeBatch splits reqs into chunks of BatchLimit. A malformed batch
// reply falls back to one call per post for that chunk. On error the result
// still has one entry per request: finished summaries are kept and the rest
// are empty.
func (p *provider) SummarizeBatch(ctx context.Context, reqs []summary.Request) ([]string, summary.Usage, error) {
	var total summary.Usage
	out := make([]string, len(reqs))
	for start := 0; start < len(reqs); start += BatchLimit {
		end := min(start+BatchLimit, len(reqs))
		chunk := reqs[start:end]

		problem := chunk[0].Problem
		prompt := fmt.Sprintf(batchPrompt, problem, formatBatch(chunk), problem)
		text, usage, err := p.call(ctx, prompt, 800)
		total.Add(usage)
		if err != nil {
			return out, total, err
		}
		if parsed, perr := parseBatch(text, len(chunk)); perr == nil {
			copy(out[start:end], parsed)
			continue
		}
		for i, r := range chunk {
			s, u, err := p.Summarize(ctx, r)
			total.Add(u)
			if err != nil {
				return out, total, err
			}
			out[start+i] = s
		}
	}
	return out, total, nil
}

func (p *provider) call(ctx context.Context, prompt string, maxTokens int) (string, summary.Usage, error) {
	usage := summary.Usage{Model: p.model}
	req, err := p.api.newRequest(ctx, p.model, prompt, maxTokens)
	if err != nil {
		return "", usage, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", usage, fmt.Errorf("%s API error: %w", p.api.name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", usage, fmt.Errorf("%s API %d: %s", p.api.name(), resp.StatusCode, string(b))
	}

	text, tokens, err := p.api.decode(resp.Body)
	if err != nil {
		return "", usage, err
	}
	usage.Tokens = tokens
	usage.Cost = float64(tokens) / 1000 * p.api.costPerKTokens()
	return text, usage, nil
}

// --- Claude ---

type claudeAPI struct {
	apiKey   string
	endpoint string
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *claudeAPI) name() string            { return "claude" }
func (c *claudeAPI) costPerKTokens() float64 { return claudeCostPerKTokens }

func (c *claudeAPI) newRequest(ctx context.Context, model, prompt string, maxTokens int) (*http.Request, error) {
	body, _ := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return req, nil
}

func (c *claudeAPI) decode(r io.Reader) (string, int, error) {
	var cr claudeResponse
	if err := json.NewDecoder(r).Decode(&cr); err != nil {
		return "", 0, err
	}
	if len(cr.Content) == 0 {
		return "", 0, fmt.Errorf("empty claude response")
	}
	return cr.Content[0].Text, cr.Usage.InputTokens + cr.Usage.OutputTokens, nil
}

// --- OpenAI ---

type openaiAPI struct {
	apiKey   string
	endpoint string
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *openaiAPI) name() string            { return "openai" }
func (o *openaiAPI) costPerKTokens() float64 { return openaiCostPerKTokens }

func (o *openaiAPI) newRequest(ctx context.Context, model, prompt string, maxTokens int) (*http.Request, error) {
	body, _ := json.Marshal(openaiRequest{
		Model:       model,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	return req, nil
}

func (o *openaiAPI) decode(r io.Reader) (string, int, error) {
	var or openaiResponse
	if err := json.NewDecoder(r).Decode(&or); err != nil {
		return "", 0, err
	}
	if len(or.Choices) == 0 {
		return "", 0, fmt.Errorf("empty openai response")
	}
	return or.Choices[0].Message.Content, or.Usage.TotalTokens, nil
}
