package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ocrlab-io/ocrlab/internal/docintel"
	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// minHandwritingConfidence is the style confidence below which handwritten
// spans are discarded.
const minHandwritingConfidence = 0.5

// ContentNormalizer converts heterogeneous layout-analysis output into a
// uniform ordered list of content items. No chunking decisions are made here.
type ContentNormalizer struct{}

// NewContentNormalizer creates a ContentNormalizer.
func NewContentNormalizer() *ContentNormalizer {
	return &ContentNormalizer{}
}

// Normalize unifies the analyze result into NormalizedContent. Paragraph
// items keep their source order and index, so figure paragraph references
// stay valid. Tables are flattened into full grids by span expansion.
func (n *ContentNormalizer) Normalize(result *docintel.AnalyzeResult) *domain.NormalizedContent {
	content := &domain.NormalizedContent{
		PageCount: len(result.Pages),
		RawText:   result.Content,
	}
	if content.PageCount == 0 && len(result.Paragraphs) > 0 {
		content.PageCount = 1
	}

	// Paragraphs first and in source order: the hybrid chunking strategy
	// addresses them by index.
	for _, para := range result.Paragraphs {
		item := domain.NormalizedItem{
			Kind:       domain.ItemParagraph,
			Text:       para.Content,
			Role:       para.Role,
			PageNumber: 1,
		}
		if region := firstRegion(para.BoundingRegions); region != nil {
			item.PageNumber = region.PageNumber
			item.Region = region
		}
		content.Items = append(content.Items, item)
	}

	for _, table := range result.Tables {
		grid := expandTableGrid(table)
		item := domain.NormalizedItem{
			Kind:        domain.ItemTable,
			Grid:        grid,
			RowCount:    len(grid),
			PageNumber:  1,
			ColumnCount: 0,
		}
		if len(grid) > 0 {
			item.ColumnCount = len(grid[0])
		}
		if region := firstRegion(table.BoundingRegions); region != nil {
			item.PageNumber = region.PageNumber
			item.Region = region
		}
		content.Items = append(content.Items, item)
	}

	for i, figure := range result.Figures {
		item := normalizeFigure(figure, i, result.Paragraphs)
		if len(item.ParagraphRefs) > 0 {
			content.HasFigureRefs = true
		}
		content.Items = append(content.Items, item)
	}

	for _, hw := range extractHandwriting(result) {
		content.Items = append(content.Items, hw)
	}

	return content
}

// OrderedItems returns the items sorted by page, then by vertical position.
// Paragraph source order is preserved within equal positions.
func OrderedItems(content *domain.NormalizedContent) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, len(content.Items))
	copy(items, content.Items)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PageNumber != items[j].PageNumber {
			return items[i].PageNumber < items[j].PageNumber
		}
		return regionTop(items[i].Region) < regionTop(items[j].Region)
	})
	return items
}

func regionTop(r *domain.BoundingRegion) float64 {
	if r == nil {
		return 0
	}
	return r.Top
}

func firstRegion(regions []docintel.BoundingRegion) *domain.BoundingRegion {
	if len(regions) == 0 {
		return nil
	}
	src := regions[0]
	return &domain.BoundingRegion{
		PageNumber: src.PageNumber,
		Top:        src.Top(),
		Left:       src.Left(),
	}
}

// expandTableGrid flattens table cells into a full 2-D grid. Row and column
// spans fill every covered cell with the owning cell's content.
func expandTableGrid(table docintel.Table) [][]string {
	rowCount := table.RowCount
	columnCount := table.ColumnCount
	for _, cell := range table.Cells {
		if cell.RowIndex+1 > rowCount {
			rowCount = cell.RowIndex + 1
		}
		if cell.ColumnIndex+1 > columnCount {
			columnCount = cell.ColumnIndex + 1
		}
	}
	if rowCount == 0 || columnCount == 0 {
		return nil
	}

	grid := make([][]string, rowCount)
	for r := range grid {
		grid[r] = make([]string, columnCount)
	}

	for _, cell := range table.Cells {
		rowSpan := cell.RowSpan
		if rowSpan < 1 {
			rowSpan = 1
		}
		columnSpan := cell.ColumnSpan
		if columnSpan < 1 {
			columnSpan = 1
		}
		for r := cell.RowIndex; r < cell.RowIndex+rowSpan && r < rowCount; r++ {
			for c := cell.ColumnIndex; c < cell.ColumnIndex+columnSpan && c < columnCount; c++ {
				grid[r][c] = cell.Content
			}
		}
	}

	return grid
}

func normalizeFigure(figure docintel.Figure, index int, paragraphs []docintel.Paragraph) domain.NormalizedItem {
	item := domain.NormalizedItem{
		Kind:       domain.ItemFigure,
		FigureID:   figure.ID,
		PageNumber: 1,
	}
	if item.FigureID == "" {
		item.FigureID = figureFallbackID(index)
	}
	if region := firstRegion(figure.BoundingRegions); region != nil {
		item.PageNumber = region.PageNumber
		item.Region = region
	}

	elements := append([]string{}, figure.Elements...)
	if figure.Caption != nil {
		item.Caption = figure.Caption.Content
		elements = append(elements, figure.Caption.Elements...)
	}

	seen := make(map[int]bool)
	var texts []string
	for _, element := range elements {
		idx, ok := paragraphElementIndex(element)
		if !ok || idx < 0 || idx >= len(paragraphs) || seen[idx] {
			continue
		}
		seen[idx] = true
		item.ParagraphRefs = append(item.ParagraphRefs, idx)
		if text := strings.TrimSpace(paragraphs[idx].Content); text != "" {
			texts = append(texts, text)
		}
	}
	item.Text = strings.Join(texts, "\n")

	return item
}

func figureFallbackID(index int) string {
	return "fig" + strconv.Itoa(index+1)
}

// paragraphElementIndex parses a "/paragraphs/N" element reference.
func paragraphElementIndex(element string) (int, bool) {
	const prefix = "/paragraphs/"
	if !strings.HasPrefix(element, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(element[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// extractHandwriting derives handwriting items from handwritten style spans
// over the document's content string.
func extractHandwriting(result *docintel.AnalyzeResult) []domain.NormalizedItem {
	var items []domain.NormalizedItem
	for _, style := range result.Styles {
		if !style.IsHandwritten || style.Confidence < minHandwritingConfidence {
			continue
		}
		for _, span := range style.Spans {
			text := spanText(result.Content, span)
			if strings.TrimSpace(text) == "" {
				continue
			}
			items = append(items, domain.NormalizedItem{
				Kind:       domain.ItemHandwriting,
				Text:       text,
				PageNumber: pageForSpan(result.Pages, span),
			})
		}
	}
	return items
}

// spanText extracts a span from the document content. Span offsets count
// characters, not bytes, so the content is sliced as runes.
func spanText(content string, span docintel.Span) string {
	runes := []rune(content)
	if span.Offset < 0 || span.Offset >= len(runes) {
		return ""
	}
	end := span.Offset + span.Length
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[span.Offset:end])
}

func pageForSpan(pages []docintel.Page, span docintel.Span) int {
	for _, page := range pages {
		for _, ps := range page.Spans {
			if span.Offset >= ps.Offset && span.Offset < ps.Offset+ps.Length {
				return page.PageNumber
			}
		}
	}
	return 1
}
