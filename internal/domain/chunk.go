package domain

// Chunk is a bounded-size unit of document text prepared for embedding and
// indexing. IDs are deterministic per document so re-processing the same
// document overwrites rather than duplicates index entries.
type Chunk struct {
	ID         string
	ParentID   string
	Title      string
	Kind       ItemKind
	Text       string
	PageNumber int
	Region     *BoundingRegion
	Role       string
	Embedding  []float32
}

// ChunkDocument is the record pushed to the search index for one chunk.
// UserID is the tenant isolation filter.
type ChunkDocument struct {
	ChunkID       string    `json:"chunk_id"`
	TextParentID  string    `json:"text_parent_id"`
	Chunk         string    `json:"chunk"`
	Title         string    `json:"title"`
	Header1       string    `json:"header_1"`
	Header2       string    `json:"header_2"`
	Header3       string    `json:"header_3"`
	ContentVector []float32 `json:"content_vector"`
	UserID        string    `json:"user_id"`
}

// UploadResult reports the outcome of indexing a single chunk document.
type UploadResult struct {
	Key       string
	Succeeded bool
	Error     string
}
