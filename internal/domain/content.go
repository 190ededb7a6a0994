package domain

// ItemKind discriminates the normalized content union.
type ItemKind string

const (
	ItemParagraph   ItemKind = "paragraph"
	ItemTable       ItemKind = "table"
	ItemFigure      ItemKind = "figure"
	ItemHandwriting ItemKind = "handwriting"
)

// BoundingRegion locates a content item on a page. Top is the y-coordinate of
// the region's upper edge, used for vertical ordering within a page.
type BoundingRegion struct {
	PageNumber int
	Top        float64
	Left       float64
	Width      float64
	Height     float64
}

// NormalizedItem is one piece of layout-analysis output unified across
// content kinds. Exactly the fields for the item's Kind are populated:
// paragraphs and handwriting carry Text; tables carry the span-expanded Grid;
// figures carry Text (OCR content), Caption, and the indices of the source
// paragraphs they visually contain.
type NormalizedItem struct {
	Kind       ItemKind
	Text       string
	PageNumber int
	Region     *BoundingRegion

	// Paragraph fields
	Role string // title, sectionHeading, pageHeader, pageFooter, ...

	// Table fields
	Grid        [][]string
	RowCount    int
	ColumnCount int

	// Figure fields
	FigureID      string
	Caption       string
	ParagraphRefs []int // indices into the normalized paragraph sequence
}

// NormalizedContent is the normalizer's output for one document.
type NormalizedContent struct {
	Items     []NormalizedItem
	PageCount int

	// RawText is the provider's full concatenated content, used as a
	// fallback when no structured items were recognized.
	RawText string

	// HasFigureRefs reports whether at least one figure carries explicit
	// paragraph element references, which enables the hybrid chunking
	// strategy.
	HasFigureRefs bool
}

// Paragraphs returns the normalized paragraph items in document order.
func (c *NormalizedContent) Paragraphs() []NormalizedItem {
	var out []NormalizedItem
	for _, item := range c.Items {
		if item.Kind == ItemParagraph {
			out = append(out, item)
		}
	}
	return out
}
