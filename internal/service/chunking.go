package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// ChunkConfig controls chunk sizing for the chunking engine.
type ChunkConfig struct {
	MaxChunkSize int
	MinChunkSize int
	ChunkOverlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize: 1500,
		MinChunkSize: 100,
		ChunkOverlap: 200,
	}
}

// ChunkingEngine splits normalized document content into bounded-size chunks,
// one strategy per content kind.
type ChunkingEngine struct {
	cfg ChunkConfig
}

// NewChunkingEngine creates a ChunkingEngine with the given configuration.
func NewChunkingEngine(cfg ChunkConfig) *ChunkingEngine {
	if cfg.MaxChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	return &ChunkingEngine{cfg: cfg}
}

// Chunk converts normalized content into chunks ready for embedding.
//
// When the analyze result exposes figure→paragraph element links, the hybrid
// figure/paragraph strategy runs: figures become primary chunks absorbing
// their referenced paragraphs, remaining paragraphs are emitted one chunk
// each. Otherwise the independent per-kind strategies run. Tables and
// handwriting are chunked the same way on both paths. Chunk IDs are
// deterministic, so re-chunking the same document yields the same sequence.
func (e *ChunkingEngine) Chunk(content *domain.NormalizedContent, documentID, documentTitle string) []domain.Chunk {
	var chunks []domain.Chunk

	if content.HasFigureRefs {
		chunks = append(chunks, e.chunkHybrid(content)...)
	} else {
		chunks = append(chunks, e.chunkParagraphs(content.Paragraphs())...)
		chunks = append(chunks, e.chunkFigures(content.Items)...)
	}

	chunks = append(chunks, e.chunkTables(content.Items)...)
	chunks = append(chunks, e.chunkHandwriting(content.Items)...)

	// Unstructured fallback: nothing was recognized as an item but the
	// provider still returned raw text.
	if len(chunks) == 0 && strings.TrimSpace(content.RawText) != "" {
		for _, text := range splitText(content.RawText, e.cfg) {
			chunks = append(chunks, domain.Chunk{
				Kind:       domain.ItemParagraph,
				Text:       text,
				PageNumber: 1,
			})
		}
	}

	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = fmt.Sprintf("%s_chunk_%d", documentID, i)
		}
		chunks[i].ParentID = documentID
		chunks[i].Title = documentTitle
	}

	return chunks
}

// chunkParagraphs accumulates paragraphs into a running buffer, flushing a
// chunk whenever the next paragraph would exceed the max size and the buffer
// already meets the minimum. A trailing buffer below the minimum is merged
// into the previous chunk instead of being emitted standalone.
func (e *ChunkingEngine) chunkParagraphs(paragraphs []domain.NormalizedItem) []domain.Chunk {
	sorted := make([]domain.NormalizedItem, len(paragraphs))
	copy(sorted, paragraphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PageNumber < sorted[j].PageNumber
	})

	var chunks []domain.Chunk
	var buf strings.Builder
	page := 0
	var region *domain.BoundingRegion

	flush := func() {
		chunks = append(chunks, domain.Chunk{
			Kind:       domain.ItemParagraph,
			Text:       buf.String(),
			PageNumber: page,
			Region:     region,
		})
		buf.Reset()
		page = 0
		region = nil
	}

	for _, para := range sorted {
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}

		if buf.Len() > 0 && buf.Len()+len(text) > e.cfg.MaxChunkSize && buf.Len() >= e.cfg.MinChunkSize {
			flush()
		}

		if buf.Len() == 0 {
			page = para.PageNumber
			region = para.Region
		} else {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)
	}

	if buf.Len() == 0 {
		return chunks
	}
	if buf.Len() >= e.cfg.MinChunkSize || len(chunks) == 0 {
		flush()
	} else {
		// Trailing remainder below the minimum: merge into the last chunk.
		chunks[len(chunks)-1].Text += "\n\n" + buf.String()
	}

	return chunks
}

// chunkTables serializes each table grid into boxed text; oversized tables
// are split by rows, never mid-span, each piece labeled with its row range.
func (e *ChunkingEngine) chunkTables(items []domain.NormalizedItem) []domain.Chunk {
	var chunks []domain.Chunk

	for _, item := range items {
		if item.Kind != domain.ItemTable || len(item.Grid) == 0 {
			continue
		}

		tableText := tableToText(item.Grid)
		if strings.TrimSpace(tableText) == "" {
			continue
		}

		if len(tableText) <= e.cfg.MaxChunkSize {
			chunks = append(chunks, domain.Chunk{
				Kind:       domain.ItemTable,
				Text:       fmt.Sprintf("Table (%dx%d):\n%s", item.RowCount, item.ColumnCount, tableText),
				PageNumber: item.PageNumber,
				Region:     item.Region,
			})
			continue
		}

		rowsPerChunk := item.RowCount / (len(tableText)/e.cfg.MaxChunkSize + 1)
		if rowsPerChunk < 1 {
			rowsPerChunk = 1
		}
		for start := 0; start < item.RowCount; start += rowsPerChunk {
			end := start + rowsPerChunk
			if end > item.RowCount {
				end = item.RowCount
			}
			chunkText := tableToText(item.Grid[start:end])
			chunks = append(chunks, domain.Chunk{
				Kind:       domain.ItemTable,
				Text:       fmt.Sprintf("Table (rows %d-%d of %d):\n%s", start+1, end, item.RowCount, chunkText),
				PageNumber: item.PageNumber,
				Region:     item.Region,
			})
		}
	}

	return chunks
}

// chunkFigures emits one chunk per figure as "{caption}: {text}". Figures
// with no recognized text are dropped.
func (e *ChunkingEngine) chunkFigures(items []domain.NormalizedItem) []domain.Chunk {
	var chunks []domain.Chunk
	for _, item := range items {
		if item.Kind != domain.ItemFigure {
			continue
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Kind:       domain.ItemFigure,
			Text:       fmt.Sprintf("%s: %s", item.Caption, text),
			PageNumber: item.PageNumber,
			Region:     item.Region,
		})
	}
	return chunks
}

// chunkHandwriting emits one chunk per handwritten item.
func (e *ChunkingEngine) chunkHandwriting(items []domain.NormalizedItem) []domain.Chunk {
	var chunks []domain.Chunk
	for _, item := range items {
		if item.Kind != domain.ItemHandwriting {
			continue
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Kind:       domain.ItemHandwriting,
			Text:       "Handwritten text: " + text,
			PageNumber: item.PageNumber,
			Region:     item.Region,
		})
	}
	return chunks
}
