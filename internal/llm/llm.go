// Package llm provides the two completion backends the pipeline writes
// and filters with, behind one backend-agnostic interface, plus the
// JSON extraction and repair protocol every structured call goes
// through.
//
// The write backend (Gemini) handles long-form article generation; the
// filter backend (OpenAI-compatible chat completions) handles the short
// structured tasks: classification, suitability, claims, persons,
// notes, review, and JSON repair.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Request is one completion call. Model overrides the backend default
// when set; MaxTokens zero means backend default.
type Request struct {
	Prompt      string
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Completer is the backend-agnostic completion interface. Tests inject
// scripted fakes.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Writer is the Gemini-backed write client.
type Writer struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewWriter builds the write backend.
func NewWriter(ctx context.Context, apiKey, model string, temperature float32) (*Writer, error) {
	if apiKey == "" {
		return nil, errors.New("write backend API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create write client: %w", err)
	}
	return &Writer{client: client, model: model, temperature: temperature}, nil
}

// Complete generates text for a single user prompt.
func (w *Writer) Complete(ctx context.Context, req Request) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: req.Prompt}},
		Role:  "user",
	}}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = w.temperature
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}

	model := req.Model
	if model == "" {
		model = w.model
	}

	resp, err := w.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from write model")
	}
	return text, nil
}

// Filter is the chat-completions-backed client for short structured
// tasks.
type Filter struct {
	client *openai.Client
	model  string
}

// NewFilter builds the filter backend with a default model.
func NewFilter(apiKey, model string) (*Filter, error) {
	if apiKey == "" {
		return nil, errors.New("filter backend API key is required")
	}
	return &Filter{client: openai.NewClient(apiKey), model: model}, nil
}

// Complete runs one chat completion with a single user message.
func (f *Filter) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = f.model
	}

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   int(req.MaxTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from filter model")
	}
	return resp.Choices[0].Message.Content, nil
}

// ErrNoJSON is returned when a raw response holds no parseable JSON
// object.
var ErrNoJSON = errors.New("no JSON object in response")

// ExtractJSON pulls the JSON object out of a raw model response: code
// fences stripped, text sliced from the first '{' to the last '}'.
func ExtractJSON(raw string) ([]byte, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last == -1 || last <= first {
		return nil, ErrNoJSON
	}
	candidate := []byte(cleaned[first : last+1])
	if !json.Valid(candidate) {
		return nil, ErrNoJSON
	}
	return candidate, nil
}

const repairInputMax = 12000

// Codec decodes structured model output, issuing one repair call via
// the filter backend when the first parse fails. A failed repair is
// terminal for the call.
type Codec struct {
	repair Completer
}

// NewCodec builds a Codec that repairs through the given completer.
func NewCodec(repair Completer) *Codec {
	return &Codec{repair: repair}
}

// Decode extracts and unmarshals the JSON object in raw into v. On
// parse failure it asks the repair backend to reformat raw to
// schemaHint, once.
func (c *Codec) Decode(ctx context.Context, raw, schemaHint string, v any) error {
	if data, err := ExtractJSON(raw); err == nil {
		if err := json.Unmarshal(data, v); err == nil {
			return nil
		}
	}

	if c.repair == nil {
		return fmt.Errorf("failed to parse model output: %w", ErrNoJSON)
	}

	input := raw
	if len(input) > repairInputMax {
		input = input[:repairInputMax]
	}
	prompt := fmt.Sprintf(`Zet onderstaande output om naar GELDIGE JSON die exact dit schema volgt.

SCHEMA:
%s

TEKST:
%s

Regels:
- Output: ALLEEN geldige JSON
- Geen code fences
- Geen extra tekst`, schemaHint, input)

	fixed, err := c.repair.Complete(ctx, Request{Prompt: prompt, Temperature: 0})
	if err != nil {
		return fmt.Errorf("JSON repair call failed: %w", err)
	}
	data, err := ExtractJSON(fixed)
	if err != nil {
		return fmt.Errorf("JSON repair produced no object: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSON repair produced invalid object: %w", err)
	}
	return nil
}
