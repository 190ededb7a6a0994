package docintel

// AnalyzeResult is the layout-analysis output for one document. Field names
// follow the provider's REST schema.
type AnalyzeResult struct {
	Content    string      `json:"content"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
	Figures    []Figure    `json:"figures"`
	Styles     []Style     `json:"styles"`
	Pages      []Page      `json:"pages"`
}

// Paragraph is a block of recognized text with an optional semantic role.
type Paragraph struct {
	Content         string           `json:"content"`
	Role            string           `json:"role,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
	Spans           []Span           `json:"spans,omitempty"`
}

// Table is a recognized table; cells carry explicit indices and spans, so the
// grid must be reconstructed by span expansion.
type Table struct {
	RowCount        int              `json:"rowCount"`
	ColumnCount     int              `json:"columnCount"`
	Cells           []TableCell      `json:"cells"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

// TableCell is one cell of a table. RowSpan/ColumnSpan of zero mean one.
type TableCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	RowSpan     int    `json:"rowSpan,omitempty"`
	ColumnSpan  int    `json:"columnSpan,omitempty"`
	Content     string `json:"content"`
}

// Figure is a recognized figure with references to the paragraph elements it
// visually contains ("/paragraphs/N") and an optional caption.
type Figure struct {
	ID              string           `json:"id,omitempty"`
	Elements        []string         `json:"elements,omitempty"`
	Caption         *Caption         `json:"caption,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

// Caption is a figure caption plus the paragraph elements composing it.
type Caption struct {
	Content  string   `json:"content"`
	Elements []string `json:"elements,omitempty"`
}

// Style marks a span of the document content, e.g. handwritten text.
type Style struct {
	IsHandwritten bool    `json:"isHandwritten"`
	Confidence    float64 `json:"confidence"`
	Spans         []Span  `json:"spans"`
}

// Span is an offset/length window into the top-level Content string.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Page describes one page of the analyzed document.
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Spans      []Span  `json:"spans,omitempty"`
}

// BoundingRegion ties an element to a page. Polygon is a flat list of x,y
// pairs tracing the element's outline clockwise from the top-left.
type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon,omitempty"`
}

// Top returns the smallest y-coordinate of the region's polygon, or zero when
// no polygon is present.
func (r BoundingRegion) Top() float64 {
	if len(r.Polygon) < 2 {
		return 0
	}
	top := r.Polygon[1]
	for i := 3; i < len(r.Polygon); i += 2 {
		if r.Polygon[i] < top {
			top = r.Polygon[i]
		}
	}
	return top
}

// Left returns the smallest x-coordinate of the region's polygon.
func (r BoundingRegion) Left() float64 {
	if len(r.Polygon) < 2 {
		return 0
	}
	left := r.Polygon[0]
	for i := 2; i < len(r.Polygon); i += 2 {
		if r.Polygon[i] < left {
			left = r.Polygon[i]
		}
	}
	return left
}
