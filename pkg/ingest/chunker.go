package ingest

import "strings"

// Chunking defaults. Overlap keeps sentences that straddle a boundary
// retrievable from both neighboring chunks.
const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// chunkText splits text into chunks of at most size runes with the
// given rune overlap between consecutive chunks. Chunk boundaries are
// pulled back to the nearest whitespace when one exists in the second
// half of the chunk, so words are not split mid-token.
//
// Empty or whitespace-only text yields no chunks.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Prefer breaking on whitespace in the back half of the chunk.
		cut := end
		for i := end; i > start+size/2; i-- {
			if isSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		// Align the overlap start to a word boundary when one exists;
		// unbreakable runs keep the raw overlap.
		aligned := next
		for aligned < cut && !isSpace(runes[aligned-1]) {
			aligned++
		}
		if aligned < cut {
			next = aligned
		}
		start = next
	}

	return chunks
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
