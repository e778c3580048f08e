package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// ChatClient is the slice of the OpenAI SDK the generator needs. Satisfied
// by *openai.Client and by test doubles.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// completionTokenModels are model families that reject the legacy max_tokens
// parameter and require max_completion_tokens instead.
var completionTokenModels = regexp.MustCompile(`(^(gpt-5|o4|o3))|4o`)

const (
	emitToolName = "emit_questions"

	generationTemperature = 0.2

	attemptsPerConvention = 2
	rateLimitBaseWait     = 300 * time.Millisecond
	rateLimitJitterMs     = 200
)

// convention names the request shape used to obtain structured output.
// Newer models take tool calls; older OpenAI-compatible gateways only
// understand the deprecated functions API, so both are tried in order.
type convention int

const (
	conventionTools convention = iota
	conventionLegacyFunctions
)

// AIGenerator asks a chat-completion model for a batch of questions,
// validates the reply against the batch schema and sanitizes what survives.
// It never fails hard: an exhausted run yields an empty batch and the caller
// decides what to do without the model.
type AIGenerator struct {
	client          ChatClient
	model           string
	maxOutputTokens int
	sleep           func(time.Duration)
	log             zerolog.Logger
}

// NewAIGenerator builds a generator over the given chat client.
func NewAIGenerator(client ChatClient, modelName string, maxOutputTokens int, log zerolog.Logger) *AIGenerator {
	return &AIGenerator{
		client:          client,
		model:           modelName,
		maxOutputTokens: maxOutputTokens,
		sleep:           time.Sleep,
		log:             log.With().Str("component", "ai_generator").Logger(),
	}
}

// Generate requests one question per entry of kinds, built from the given
// chunks. Returns at most len(kinds) sanitized, valid questions; returns an
// empty slice when every attempt fails.
func (g *AIGenerator) Generate(ctx context.Context, chunks []ChunkInput, kinds []model.QuestionKind) []model.Question {
	if len(chunks) == 0 || len(kinds) == 0 {
		return nil
	}

	for _, conv := range []convention{conventionTools, conventionLegacyFunctions} {
		for attempt := 0; attempt < attemptsPerConvention; attempt++ {
			if ctx.Err() != nil {
				return nil
			}

			qs, err := g.once(ctx, conv, chunks, kinds)
			if err == nil {
				if len(qs) > len(kinds) {
					qs = qs[:len(kinds)]
				}
				return qs
			}

			if isRateLimit(err) {
				wait := rateLimitBaseWait*time.Duration(1<<attempt) + time.Duration(rand.Intn(rateLimitJitterMs))*time.Millisecond
				g.log.Warn().Err(err).Dur("wait", wait).Msg("rate limited, backing off")
				g.sleep(wait)
				continue
			}

			g.log.Warn().Err(err).Int("convention", int(conv)).Int("attempt", attempt).Msg("generation attempt failed")
		}
	}

	g.log.Error().Msg("all generation attempts exhausted")
	return nil
}

func (g *AIGenerator) once(ctx context.Context, conv convention, chunks []ChunkInput, kinds []model.QuestionKind) ([]model.Question, error) {
	req := g.buildRequest(conv, chunks, kinds)

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in completion response")
	}

	raw, err := extractArguments(resp.Choices[0].Message)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(raw); err != nil {
		return nil, err
	}

	var payload struct {
		Questions []model.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	qs := sanitizeQuestions(payload.Questions, chunks)
	if len(qs) == 0 {
		return nil, errors.New("no question survived sanitization")
	}
	return qs, nil
}

func (g *AIGenerator) buildRequest(conv convention, chunks []ChunkInput, kinds []model.QuestionKind) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: generationTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(chunks, kinds)},
		},
	}

	if completionTokenModels.MatchString(g.model) {
		req.MaxCompletionTokens = g.maxOutputTokens
	} else {
		req.MaxTokens = g.maxOutputTokens
	}

	def := openai.FunctionDefinition{
		Name:        emitToolName,
		Description: "Emit the generated quiz questions.",
		Parameters:  payloadSchema,
	}
	switch conv {
	case conventionTools:
		req.Tools = []openai.Tool{{Type: openai.ToolTypeFunction, Function: &def}}
		req.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: emitToolName},
		}
	case conventionLegacyFunctions:
		req.Functions = []openai.FunctionDefinition{def}
		req.FunctionCall = openai.FunctionCall{Name: emitToolName}
	}
	return req
}

// extractArguments pulls the JSON payload out of whichever slot the model
// used: tool call, legacy function call, or plain message content.
func extractArguments(msg openai.ChatCompletionMessage) ([]byte, error) {
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == emitToolName && tc.Function.Arguments != "" {
			return []byte(tc.Function.Arguments), nil
		}
	}
	if msg.FunctionCall != nil && msg.FunctionCall.Arguments != "" {
		return []byte(msg.FunctionCall.Arguments), nil
	}
	if content := strings.TrimSpace(msg.Content); content != "" {
		return []byte(content), nil
	}
	return nil, errors.New("completion carried no arguments")
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

const systemPrompt = `You write quiz questions for students from study material excerpts.
Rules:
- Every question must be answerable from the excerpts alone.
- Question text must be at least 8 characters after trimming.
- mcq: 2+ unique options, exactly one correct index.
- msq: 2+ unique options, one or more unique correct indices.
- tf: set correctBool.
- cloze: the text contains {{gap1}}-style markers, one answer per gap at most.
- short: one or more distinct acceptable answers.
- match: matchLeft[i] pairs with matchRight[i], at least 2 pairs of equal length.
- order: orderItems holds at least 3 items in the correct sequence.
- Set source.chunkId and source.fileId from the excerpt a question is built on.
Call ` + emitToolName + ` with the full batch.`

func userPrompt(chunks []ChunkInput, kinds []model.QuestionKind) string {
	counts := make(map[model.QuestionKind]int, len(kinds))
	for _, k := range kinds {
		counts[k]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d questions:", len(kinds))
	for _, k := range model.AllQuestionKinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(&b, " %d %s,", n, k)
		}
	}
	b.WriteString("\n\nExcerpts:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "[chunkId=%s fileId=%s]\n%s\n\n", c.ChunkID, c.FileID, c.Text)
	}
	return b.String()
}
