// Package fake provides in-process stand-ins for the external providers
// (document analysis, embeddings, blob storage, search index) so the daemon
// can run end to end without provider credentials.
package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"

	"github.com/ocrlab-io/ocrlab/internal/docintel"
	"github.com/ocrlab-io/ocrlab/internal/domain"
	"github.com/ocrlab-io/ocrlab/internal/search"
)

// Analyzer returns a canned layout analysis regardless of input. The result
// contains enough structure to exercise the whole chunking path.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) AnalyzeDocument(ctx context.Context, content []byte) (*docintel.AnalyzeResult, error) {
	text := fmt.Sprintf("Processed document of %d bytes.", len(content))
	return &docintel.AnalyzeResult{
		Content: text,
		Paragraphs: []docintel.Paragraph{
			{
				Content:         text,
				BoundingRegions: []docintel.BoundingRegion{{PageNumber: 1}},
			},
		},
		Pages: []docintel.Page{{PageNumber: 1}},
	}, nil
}

// Embedder produces deterministic vectors derived from the input text, so
// identical chunks always embed identically.
type Embedder struct {
	Dimensions int
}

func NewEmbedder() *Embedder {
	return &Embedder{Dimensions: 1536}
}

func (e *Embedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	dims := e.Dimensions
	if dims <= 0 {
		dims = 1536
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, dims)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] = float32(int64(seed>>33)) / float32(1<<31)
	}
	return vector, nil
}

// Index is an in-memory search index keyed by chunk ID.
type Index struct {
	mu   sync.Mutex
	docs map[string]domain.ChunkDocument
}

func NewIndex() *Index {
	return &Index{docs: make(map[string]domain.ChunkDocument)}
}

func (i *Index) UploadDocuments(ctx context.Context, docs []domain.ChunkDocument) ([]domain.UploadResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	results := make([]domain.UploadResult, 0, len(docs))
	for _, doc := range docs {
		i.docs[doc.ChunkID] = doc
		results = append(results, domain.UploadResult{Key: doc.ChunkID, Succeeded: true})
	}
	return results, nil
}

// Query ranks stored documents by cosine similarity to the embedding.
func (i *Index) Query(ctx context.Context, userID string, embedding []float32, limit int) ([]*search.QueryResult, error) {
	if limit <= 0 {
		limit = 10
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	results := make([]*search.QueryResult, 0, len(i.docs))
	for _, doc := range i.docs {
		if doc.UserID != userID {
			continue
		}
		results = append(results, &search.QueryResult{
			ChunkID:      doc.ChunkID,
			TextParentID: doc.TextParentID,
			Chunk:        doc.Chunk,
			Title:        doc.Title,
			Header2:      doc.Header2,
			Header3:      doc.Header3,
			Score:        cosineSimilarity(embedding, doc.ContentVector),
		})
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteByParent removes every document belonging to a parent file.
func (i *Index) DeleteByParent(ctx context.Context, userID, parentID string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for id, doc := range i.docs {
		if doc.UserID == userID && doc.TextParentID == parentID {
			delete(i.docs, id)
			removed++
		}
	}
	return removed, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Documents returns a snapshot of everything uploaded so far.
func (i *Index) Documents() []domain.ChunkDocument {
	i.mu.Lock()
	defer i.mu.Unlock()

	docs := make([]domain.ChunkDocument, 0, len(i.docs))
	for _, doc := range i.docs {
		docs = append(docs, doc)
	}
	return docs
}

// BlobStore keeps uploaded objects in memory.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

func (s *BlobStore) UploadObject(ctx context.Context, key, contentType string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(content))
	copy(buf, content)
	s.objects[key] = buf
	return nil
}

func (s *BlobStore) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return content, nil
}

func (s *BlobStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}
