package intake

import (
	"fmt"
	"strings"

	"github.com/caliberhq/question-bank/internal/models"
)

const (
	chunkSizeLimit  = 500
	minChunkLength  = 20
	maxKeywords     = 5
	minKeywordLen   = 6
	keywordScanCap  = 50
	defaultTitle    = "Untitled Question"
	defaultKeywords = "sample"
)

// QuestionGenerator turns extracted document text into draft questions.
// The current implementation is a chunking stub standing in for a future
// model-backed pipeline; it keeps the same output shape so the rest of the
// intake flow will not change when the real pipeline lands.
type QuestionGenerator interface {
	Generate(text string, maxQuestions int) []models.DraftQuestion
}

type ChunkingGenerator struct{}

func NewChunkingGenerator() *ChunkingGenerator {
	return &ChunkingGenerator{}
}

func (g *ChunkingGenerator) Generate(text string, maxQuestions int) []models.DraftQuestion {
	if maxQuestions < 1 {
		maxQuestions = 10
	}

	chunks := splitChunks(text)

	drafts := make([]models.DraftQuestion, 0, maxQuestions)
	for i, chunk := range chunks {
		if len(drafts) >= maxQuestions {
			break
		}
		if len(chunk) < minChunkLength {
			continue
		}

		body := chunk
		if len(body) > chunkSizeLimit {
			body = body[:chunkSizeLimit]
		}

		drafts = append(drafts, models.DraftQuestion{
			Title:    defaultTitle,
			Text:     body,
			Tags:     fmt.Sprintf("chunk-%d,auto-generated", i+1),
			Keywords: extractKeywords(chunk),
		})
	}

	return drafts
}

// splitChunks accumulates lines into roughly chunkSizeLimit sized blocks.
func splitChunks(text string) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line) > chunkSizeLimit && current.Len() > 0 {
			if chunk := strings.TrimSpace(current.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
			current.WriteString(line)
		} else {
			current.WriteString(" ")
			current.WriteString(line)
		}
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

func extractKeywords(chunk string) string {
	words := strings.Fields(chunk)
	if len(words) > keywordScanCap {
		words = words[:keywordScanCap]
	}

	var keywords []string
	for _, w := range words {
		if len(keywords) >= maxKeywords {
			break
		}
		w = strings.Trim(w, ".,!?;:")
		if len(w) >= minKeywordLen {
			keywords = append(keywords, w)
		}
	}

	if len(keywords) == 0 {
		return defaultKeywords
	}

	return strings.Join(keywords, ",")
}
