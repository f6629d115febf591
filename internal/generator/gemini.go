package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// GeminiService generates multiple-choice question sets with the Gemini
// API. When no API key is configured it degrades to the deterministic
// local set so exam attempts are never blocked on configuration.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    zerolog.Logger
}

// NewGeminiService creates the generator. A missing API key is not an
// error; the service runs in local-only mode.
func NewGeminiService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*GeminiService, error) {
	s := &GeminiService{log: log.With().Str("component", "question_generator").Logger()}

	if cfg.GeminiAPIKey == "" {
		s.log.Warn().Msg("GEMINI_API_KEY is not set, serving local question sets only")
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := client.GenerativeModel("gemini-1.5-flash")
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question":     {Type: genai.TypeString},
						"options":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"correctIndex": {Type: genai.TypeInteger},
					},
					Required: []string{"question", "options", "correctIndex"},
				},
			},
		},
		Required: []string{"questions"},
	}

	s.client = client
	s.model = m
	return s, nil
}

// Close releases the underlying API client.
func (s *GeminiService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

type generatedPayload struct {
	Questions []struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correctIndex"`
	} `json:"questions"`
}

// Generate requests count MCQs for the given topic. Callers bound the
// wait through ctx and substitute Placeholder output on error.
func (s *GeminiService) Generate(ctx context.Context, topic string, count int) ([]model.Question, error) {
	if s.model == nil {
		return Placeholder(topic, count), nil
	}

	prompt := fmt.Sprintf("Generate %d multiple-choice questions for %q. Return STRICT JSON.", count, topic)
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}

	var payload generatedPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}

	questions := make([]model.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if q.Question == "" || len(q.Options) < 2 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		questions = append(questions, model.Question{
			Text:         q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
		})
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("gemini returned no usable questions")
	}

	s.log.Debug().Int("count", len(questions)).Str("topic", topic).Msg("Questions generated")
	return questions, nil
}
