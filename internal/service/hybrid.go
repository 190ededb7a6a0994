package service

import (
	"strconv"
	"strings"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// chunkHybrid implements the figure/paragraph strategy used when the analyze
// result exposes explicit figure→paragraph element references. Figures become
// primary chunks whose text is the caption followed by the deduplicated
// content of every referenced paragraph; each referenced paragraph index is
// recorded as absorbed. Paragraphs not absorbed by any figure are emitted one
// chunk each, carrying their semantic role.
func (e *ChunkingEngine) chunkHybrid(content *domain.NormalizedContent) []domain.Chunk {
	paragraphs := content.Paragraphs()
	absorbed := make(map[int]bool)
	var chunks []domain.Chunk

	for _, item := range content.Items {
		if item.Kind != domain.ItemFigure {
			continue
		}

		var parts []string
		seen := make(map[string]bool)
		if caption := strings.TrimSpace(item.Caption); caption != "" {
			parts = append(parts, caption)
			seen[caption] = true
		}
		for _, idx := range item.ParagraphRefs {
			if idx < 0 || idx >= len(paragraphs) {
				continue
			}
			absorbed[idx] = true
			text := strings.TrimSpace(paragraphs[idx].Text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			parts = append(parts, text)
		}

		figureText := strings.Join(parts, "\n")
		if strings.TrimSpace(figureText) == "" {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			ID:         "figure_" + item.FigureID,
			Kind:       domain.ItemFigure,
			Text:       figureText,
			PageNumber: item.PageNumber,
			Region:     item.Region,
		})
	}

	standalone := 0
	for idx, para := range paragraphs {
		if absorbed[idx] {
			continue
		}
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         "paragraph_" + strconv.Itoa(standalone),
			Kind:       domain.ItemParagraph,
			Text:       text,
			PageNumber: para.PageNumber,
			Region:     para.Region,
			Role:       para.Role,
		})
		standalone++
	}

	return chunks
}
