// Package ai generates product copy with the OpenAI chat completion API.
package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Copywriter struct {
	apiKey string
	model  string
}

func NewCopywriter(apiKey, model string) *Copywriter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Copywriter{apiKey: apiKey, model: model}
}

func (c *Copywriter) ProductDescription(ctx context.Context, name, category, hints string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY not configured")
	}

	prompt := "Write a compelling, SEO-friendly product description for \"" + name + "\""
	if category != "" {
		prompt += " in the " + category + " category"
	}
	prompt += ".\n\nRules:\n" +
		"1. Keep it between 60 and 150 words.\n" +
		"2. Highlight concrete benefits, not hype.\n" +
		"3. Professional and inviting tone.\n" +
		"4. Return ONLY the description text, no preamble."
	if hints != "" {
		prompt += "\n\nDetails to work in: " + hints
	}

	client := openai.NewClient(c.apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.7,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a marketing copywriter for small retail businesses."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	out = strings.Trim(out, `"'`)
	return out, nil
}
