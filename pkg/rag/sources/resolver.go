package sources

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
)

// Citation is one user-facing source reference, deduplicated by URL.
type Citation struct {
	Url      string `json:"url"`
	Title    string `json:"title"`
	Citation string `json:"citation"`
}

// EnrichedCitation keeps one row per contributing chunk with its score,
// for debugging and analytics. It is not deduplicated.
type EnrichedCitation struct {
	Url        string  `json:"url"`
	Title      string  `json:"title"`
	Citation   string  `json:"citation"`
	PaperId    string  `json:"paper_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// PaperMeta is the resolved metadata of one stored paper.
type PaperMeta struct {
	Title string
	Url   string
}

// PaperIndex looks chunks back up to their owning papers.
type PaperIndex interface {
	Lookup(paperId uuid.UUID) (PaperMeta, bool)
}

const defaultTopN = 5

type Resolver struct {
	topN   int
	logger *log.Logger
}

func NewResolver(topN int, logger *log.Logger) *Resolver {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Resolver{topN: topN, logger: logger}
}

// Resolve builds citations for the top chunks in retrieval order. A chunk
// whose paper no longer exists is skipped; the index and the paper table
// can disagree briefly after a delete.
func (r *Resolver) Resolve(chunks []retrieval.Chunk, index PaperIndex) ([]Citation, []EnrichedCitation) {
	limit := r.topN
	if len(chunks) < limit {
		limit = len(chunks)
	}

	var citations []Citation
	var enriched []EnrichedCitation
	seen := map[string]bool{}

	for _, chunk := range chunks[:limit] {
		meta, found := index.Lookup(chunk.PaperId)
		if !found {
			r.logger.Printf("[SOURCES] Paper %s not found, skipping chunk %d", chunk.PaperId, chunk.ChunkIndex)
			continue
		}

		citationText := formatCitation(meta.Title, chunk.ChunkIndex)

		if !seen[meta.Url] {
			seen[meta.Url] = true
			citations = append(citations, Citation{
				Url:      meta.Url,
				Title:    meta.Title,
				Citation: citationText,
			})
		}

		enriched = append(enriched, EnrichedCitation{
			Url:        meta.Url,
			Title:      meta.Title,
			Citation:   citationText,
			PaperId:    chunk.PaperId.String(),
			ChunkIndex: chunk.ChunkIndex,
			Score:      chunk.Score,
		})
	}

	return citations, enriched
}

var authorYearPattern = regexp.MustCompile(`([A-Z][\w.'\-]+(?:\s+(?:et al\.?|&\s*[A-Z][\w.'\-]+|and\s+[A-Z][\w.'\-]+))?)\s*\((\d{4})\)`)

// formatCitation derives a short display label from the paper title.
// Academic titles often lead with "Author (Year)"; otherwise the first
// title token stands in, and a missing label falls back to the full title.
func formatCitation(title string, chunkIndex int) string {
	page := chunkIndex + 1

	if m := authorYearPattern.FindStringSubmatch(title); m != nil {
		return fmt.Sprintf("%s (%s), page %d", m[1], m[2], page)
	}

	if token := firstToken(title); token != "" {
		return fmt.Sprintf("%s, page %d", token, page)
	}

	return fmt.Sprintf("%s (page %d)", title, page)
}

func firstToken(title string) string {
	for _, token := range strings.Fields(title) {
		cleaned := strings.Trim(token, ".,;:—-")
		if cleaned != "" {
			return cleaned
		}
	}
	return ""
}
