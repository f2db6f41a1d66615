package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
)

// TextRequest asks the model for a completion. Payload is an arbitrary
// structured value which gets serialized into the single user turn, with
// System preceding it as the system turn. Sampling parameters which are nil
// are omitted from the wire request entirely, no implicit defaults.
type TextRequest struct {
	System      string
	Payload     any
	Model       string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// TextResult carries the completion text, the model which actually answered
// (may differ from the requested one due to upstream substitution) and the
// untouched raw reply for advanced inspection.
type TextResult struct {
	Text  string
	Model string
	Raw   json.RawMessage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Modalities     []string        `json:"modalities,omitempty"`
	Seed           *int            `json:"seed,omitempty"`
	Steps          *int            `json:"steps,omitempty"`
	Guidance       *float64        `json:"guidance_scale,omitempty"`
	Size           string          `json:"size,omitempty"`
	Quality        string          `json:"quality,omitempty"`
	Style          string          `json:"style,omitempty"`
}

// CompleteText sends one chat-style completion and normalizes the reply to
// the first choice's message content. An absent or non-string content field
// fails, it never degrades to an empty-string success.
func (c *Client) CompleteText(ctx context.Context, req TextRequest) (*TextResult, error) {
	model, err := resolveModel(req.Model, c.conf.TextModel)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	wireReq := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: string(payload)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    req.Temperature,
		TopP:           req.TopP,
		MaxTokens:      req.MaxTokens,
	}
	raw, err := c.postJSON(ctx, "/chat/completions", wireReq)
	if err != nil {
		return nil, err
	}
	return normalizeText(raw, model)
}
