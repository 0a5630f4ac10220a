package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// segmentMarker separates batch segments inside a single prompt and is
// expected back in the response on its own line.
const segmentMarker = "---SEGMENT---"

// Service implements field and batch translation on top of a raw text
// generator. Persistent backend failure degrades to Failed outcomes at
// field granularity; no error ever reaches the orchestrator.
type Service struct {
	generator      ports.TextGenerator
	targetLanguage string
	logger         *slog.Logger
}

var _ ports.Translator = (*Service)(nil)

// NewService wires the generative backend and target language.
func NewService(generator ports.TextGenerator, targetLanguage string, logger *slog.Logger) *Service {
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	return &Service{generator: generator, targetLanguage: targetLanguage, logger: logger}
}

// TranslateField translates a single text. Blank input short-circuits to
// a successful empty outcome without a network call.
func (s *Service) TranslateField(ctx context.Context, text string) domain.TranslationOutcome {
	if strings.TrimSpace(text) == "" {
		return domain.Translated("")
	}

	generated, err := s.generator.Generate(ctx, s.fieldPrompt(text))
	if err != nil {
		s.warn("field translation failed", "error", err)
		return domain.TranslationFailed
	}

	return domain.Translated(strings.TrimSpace(generated))
}

// TranslateBatch translates texts in one call, preserving positions. The
// output always has the same length as the input: blank inputs become
// empty successes without being sent, and any response shortfall is
// padded with Failed entries so downstream field assignment stays aligned.
func (s *Service) TranslateBatch(ctx context.Context, texts []string) []domain.TranslationOutcome {
	outcomes := make([]domain.TranslationOutcome, len(texts))

	sendIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			outcomes[i] = domain.Translated("")
			continue
		}
		sendIdx = append(sendIdx, i)
	}

	if len(sendIdx) == 0 {
		return outcomes
	}

	segments := make([]string, len(sendIdx))
	for n, i := range sendIdx {
		segments[n] = texts[i]
	}

	generated, err := s.generator.Generate(ctx, s.batchPrompt(segments))
	if err != nil {
		s.warn("batch translation failed", "segments", len(segments), "error", err)
		for _, i := range sendIdx {
			outcomes[i] = domain.TranslationFailed
		}
		return outcomes
	}

	parts := splitSegments(generated)
	if len(parts) < len(sendIdx) {
		s.warn("batch response shorter than request", "want", len(sendIdx), "got", len(parts))
	}

	for n, i := range sendIdx {
		if n < len(parts) {
			outcomes[i] = domain.Translated(parts[n])
		} else {
			outcomes[i] = domain.TranslationFailed
		}
	}

	return outcomes
}

func (s *Service) fieldPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional translator. Translate the following text into %s.\n", s.targetLanguage))
	sb.WriteString("Only respond with the translation, nothing else. No explanations, no quotes.\n\n")
	sb.WriteString(text)
	return sb.String()
}

func (s *Service) batchPrompt(segments []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional translator. Translate each segment below into %s.\n", s.targetLanguage))
	sb.WriteString(fmt.Sprintf("Segments are separated by a line containing exactly %q.\n", segmentMarker))
	sb.WriteString("Return one translation per segment, in the same order, separated by the same line.\n")
	sb.WriteString("Only output the translations.\n\n")
	for i, segment := range segments {
		if i > 0 {
			sb.WriteString("\n" + segmentMarker + "\n")
		}
		sb.WriteString(segment)
	}
	return sb.String()
}

func splitSegments(response string) []string {
	raw := strings.Split(response, segmentMarker)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		parts = append(parts, strings.TrimSpace(part))
	}
	return parts
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
