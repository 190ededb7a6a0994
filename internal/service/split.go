package service

import "strings"

var sentenceBoundaries = []string{". ", "! ", "? "}

// splitText splits free-form text into chunks of at most MaxChunkSize runes,
// preferring to cut at the sentence boundary nearest the size limit and
// falling back to a hard cut. ChunkOverlap runes from the end of each chunk
// are re-included at the start of the next one.
func splitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}

	runes := []rune(clean)
	if len(runes) <= cfg.MaxChunkSize {
		return []string{clean}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := sentenceCut(runes, start, end); cut > 0 {
			end = cut
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end - cfg.ChunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// sentenceCut finds the end of the last sentence boundary in runes[start:end],
// provided it lies past the midpoint of the window. Returns 0 when no
// acceptable boundary exists.
func sentenceCut(runes []rune, start, end int) int {
	window := string(runes[start:end])
	best := -1
	for _, sep := range sentenceBoundaries {
		if i := strings.LastIndex(window, sep); i >= 0 && i+len(sep) > best {
			best = i + len(sep)
		}
	}
	if best < 0 {
		return 0
	}
	// The window is cut on rune boundaries, so byte and rune offsets agree
	// only for ASCII; recount to stay safe with multi-byte text.
	cut := start + len([]rune(window[:best]))
	if cut <= start+(end-start)/2 {
		return 0
	}
	return cut
}
