package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Parser interface using Google Gemini.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Parser instance.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ParseBill extracts bill fields from OCR text.
func (g *Gemini) ParseBill(ctx context.Context, ocrText string) (*BillResult, error) {
	text, err := g.generate(ctx, billSystemPrompt, billUserPrompt(ocrText))
	if err != nil {
		return nil, err
	}
	return decodeBill(text)
}

// ParseReceipt extracts receipt fields from OCR text.
func (g *Gemini) ParseReceipt(ctx context.Context, ocrText string) (*ReceiptResult, error) {
	text, err := g.generate(ctx, receiptSystemPrompt, receiptUserPrompt(ocrText))
	if err != nil {
		return nil, err
	}
	return decodeReceipt(text)
}

// generate sends the system prompt as the leading content part; the shared
// model is never mutated, so concurrent bill and receipt requests are safe.
func (g *Gemini) generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(system), genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return responseText.String(), nil
}

// Close closes the Gemini client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
