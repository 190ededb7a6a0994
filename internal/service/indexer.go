package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ocrlab-io/ocrlab/internal/domain"
)

// SearchIndex defines the interface for the vector search index.
type SearchIndex interface {
	UploadDocuments(ctx context.Context, docs []domain.ChunkDocument) ([]domain.UploadResult, error)
}

// maxIndexBatchSize caps the number of documents sent per upload request.
const maxIndexBatchSize = 1000

// IndexReport summarizes the outcome of publishing a file's chunks.
type IndexReport struct {
	Total   int
	Indexed int
	Failed  int
}

// IndexPublisher converts embedded chunks into search documents and uploads
// them to the search index in batches.
type IndexPublisher struct {
	index SearchIndex
}

// NewIndexPublisher creates an IndexPublisher.
func NewIndexPublisher(index SearchIndex) *IndexPublisher {
	return &IndexPublisher{index: index}
}

// Publish uploads one search document per chunk, at most maxIndexBatchSize
// per request. A failed batch counts all of its documents as failed and the
// remaining batches are still attempted.
func (p *IndexPublisher) Publish(ctx context.Context, userID string, chunks []domain.Chunk) (IndexReport, error) {
	report := IndexReport{Total: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	docs := make([]domain.ChunkDocument, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chunkToDocument(userID, chunk)
	}

	for start := 0; start < len(docs); start += maxIndexBatchSize {
		end := start + maxIndexBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		results, err := p.index.UploadDocuments(ctx, batch)
		if err != nil {
			log.Printf("index upload failed for batch of %d documents: %v", len(batch), err)
			report.Failed += len(batch)
			continue
		}

		for _, res := range results {
			if res.Succeeded {
				report.Indexed++
			} else {
				log.Printf("index rejected document %s: %s", res.Key, res.Error)
				report.Failed++
			}
		}
	}

	return report, nil
}

// chunkToDocument maps a chunk onto the search index schema.
func chunkToDocument(userID string, chunk domain.Chunk) domain.ChunkDocument {
	return domain.ChunkDocument{
		ChunkID:       chunk.ID,
		TextParentID:  chunk.ParentID,
		Chunk:         chunk.Text,
		Title:         chunk.Title,
		Header1:       chunk.Title,
		Header2:       fmt.Sprintf("Page %d", chunk.PageNumber),
		Header3:       capitalize(string(chunk.Kind)),
		ContentVector: chunk.Embedding,
		UserID:        userID,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
