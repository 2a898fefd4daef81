package vectorindex

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeMatch(t *testing.T) {
	paperId := uuid.New()

	tests := []struct {
		name      string
		raw       map[string]interface{}
		wantOk    bool
		wantIndex int
		wantScore float64
		wantText  string
	}{
		{
			name: "full metadata",
			raw: map[string]interface{}{
				"id":    paperId.String() + "_3",
				"score": 0.91,
				"metadata": map[string]interface{}{
					"paper_id":    paperId.String(),
					"title":       "Widgets",
					"chunk_index": float64(3),
					"text":        "widget text",
					"file_path":   "org_x/widgets.pdf",
				},
			},
			wantOk:    true,
			wantIndex: 3,
			wantScore: 0.91,
			wantText:  "widget text",
		},
		{
			name: "chunk index encoded as string",
			raw: map[string]interface{}{
				"id":    paperId.String() + "_7",
				"score": 0.5,
				"metadata": map[string]interface{}{
					"paper_id":    paperId.String(),
					"chunk_index": "7",
					"text":        "from string index",
				},
			},
			wantOk:    true,
			wantIndex: 7,
			wantScore: 0.5,
			wantText:  "from string index",
		},
		{
			name: "missing metadata falls back to id convention",
			raw: map[string]interface{}{
				"id":    paperId.String() + "_12",
				"score": 0.42,
			},
			wantOk:    true,
			wantIndex: 12,
			wantScore: 0.42,
			wantText:  "",
		},
		{
			name: "unparseable id is skipped",
			raw: map[string]interface{}{
				"id":    "not-a-uuid",
				"score": 0.9,
			},
			wantOk: false,
		},
		{
			name: "missing score defaults to zero",
			raw: map[string]interface{}{
				"id": paperId.String() + "_0",
				"metadata": map[string]interface{}{
					"paper_id":    paperId.String(),
					"chunk_index": float64(0),
				},
			},
			wantOk:    true,
			wantIndex: 0,
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := normalizeMatch(tt.raw)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if m.PaperId != paperId {
				t.Errorf("paperId = %s, want %s", m.PaperId, paperId)
			}
			if m.ChunkIndex != tt.wantIndex {
				t.Errorf("chunkIndex = %d, want %d", m.ChunkIndex, tt.wantIndex)
			}
			if m.Score != tt.wantScore {
				t.Errorf("score = %f, want %f", m.Score, tt.wantScore)
			}
			if m.Text != tt.wantText {
				t.Errorf("text = %q, want %q", m.Text, tt.wantText)
			}
		})
	}
}
