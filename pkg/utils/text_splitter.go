package utils

import "unicode"

// SplitText splits a long string into chunks of approximately 'chunkSize'
// characters with 'overlap' characters carried across boundaries.
// Chunks prefer to break at whitespace so words stay intact.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	totalLen := len(runes)

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		} else {
			// Walk back to the nearest whitespace, but never give up more
			// than a fifth of the chunk and never past the next start.
			limit := end - chunkSize/5
			if limit < i+step {
				limit = i + step
			}
			for j := end; j > limit; j-- {
				if unicode.IsSpace(runes[j-1]) {
					end = j
					break
				}
			}
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
