package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/contract"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/llm"
	"github.com/barnabasli/alexandria/pkg/qa"
	"github.com/barnabasli/alexandria/pkg/rag/budget"
	"github.com/barnabasli/alexandria/pkg/rag/corpuscache"
	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
	"github.com/barnabasli/alexandria/pkg/rag/sources"
	"github.com/barnabasli/alexandria/pkg/rag/stream"
	"github.com/barnabasli/alexandria/pkg/rag/synthesis"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

type fakePaperRepo struct {
	papers []*entity.Paper
}

func (r *fakePaperRepo) Create(ctx context.Context, paper *entity.Paper) error { return nil }
func (r *fakePaperRepo) Update(ctx context.Context, paper *entity.Paper) error { return nil }
func (r *fakePaperRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

func (r *fakePaperRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Paper, error) {
	if len(r.papers) == 0 {
		return nil, nil
	}
	return r.papers[0], nil
}

func (r *fakePaperRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Paper, error) {
	return r.papers, nil
}

func (r *fakePaperRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.papers)), nil
}

type fakeUnitOfWork struct {
	papers *fakePaperRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) PaperRepository() contract.PaperRepository { return u.papers }
func (u *fakeUnitOfWork) OrganizationRepository() contract.OrganizationRepository {
	panic("not used")
}
func (u *fakeUnitOfWork) MembershipRepository() contract.MembershipRepository {
	panic("not used")
}
func (u *fakeUnitOfWork) PaperVectorRepository() contract.PaperVectorRepository {
	panic("not used")
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeStore struct {
	files     map[string][]byte
	signedErr error
}

func (s *fakeStore) Upload(ctx context.Context, storagePath string, content []byte, contentType string) error {
	return nil
}

func (s *fakeStore) Download(ctx context.Context, storagePath string) ([]byte, error) {
	content, ok := s.files[storagePath]
	if !ok {
		return nil, fmt.Errorf("no object at %s", storagePath)
	}
	return content, nil
}

func (s *fakeStore) Delete(ctx context.Context, storagePath string) error { return nil }

func (s *fakeStore) SignedURL(ctx context.Context, storagePath string, expiry time.Duration) (string, error) {
	if s.signedErr != nil {
		return "", s.signedErr
	}
	return "https://signed.example/" + storagePath, nil
}

type allowAllMembership struct{ approved bool }

func (m *allowAllMembership) IsApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (bool, error) {
	return m.approved, nil
}

func (m *allowAllMembership) RequireApprovedMember(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) error {
	if !m.approved {
		return ErrNotApprovedMember
	}
	return nil
}

func (m *allowAllMembership) GetMemberships(ctx context.Context, userId uuid.UUID) ([]*dto.GetMembershipResponse, error) {
	return nil, nil
}

type cannedLLM struct {
	answer string
}

func (c *cannedLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return c.answer, nil
}

func (c *cannedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.answer, nil
}

type zeroEmbedder struct{}

func (zeroEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: make([]float32, 4)},
	}, nil
}

type emptyIndex struct{}

func (emptyIndex) Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error {
	return nil
}

func (emptyIndex) Search(ctx context.Context, emb []float32, organizationId uuid.UUID, topK int) ([]vectorindex.Match, error) {
	return nil, nil
}

func (emptyIndex) Delete(ctx context.Context, paperId uuid.UUID) error { return nil }

func newTestQueryService(t *testing.T, approved bool, papers []*entity.Paper, files map[string][]byte) IQueryService {
	t.Helper()

	quiet := log.New(io.Discard, "", 0)
	engine := qa.NewLLMEngine(&cannedLLM{answer: "Widgets are small mechanical parts."}, quiet)

	factory := &fakeUowFactory{uow: &fakeUnitOfWork{papers: &fakePaperRepo{papers: papers}}}
	store := &fakeStore{files: files}

	cache := corpuscache.NewCache(engine, NewPaperSource(factory, store), corpuscache.Options{
		CorpusTTL:    time.Minute,
		ByteCacheTTL: time.Minute,
		BuildTimeout: 5 * time.Second,
	}, quiet)

	pipeline := stream.NewPipeline(
		retrieval.NewRetriever(emptyIndex{}, zeroEmbedder{}, 8, quiet),
		budget.NewBudgeter(0.3, quiet),
		synthesis.NewSynthesizer(engine, synthesis.NewCleaner(synthesis.DefaultEchoPrefixes, 0.82), synthesis.DefaultInsufficiencyPhrases, quiet),
		sources.NewResolver(5, quiet),
		stream.PipelineConfig{
			MaxContextTokens: 2048,
			SynthesisTimeout: 5 * time.Second,
		},
		quiet,
	)

	return NewQueryService(
		&allowAllMembership{approved: approved},
		factory,
		cache,
		pipeline,
		store,
		noopLogger{},
	)
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func TestStreamQueryRejectsNonMember(t *testing.T) {
	svc := newTestQueryService(t, false, nil, nil)

	_, err := svc.StreamQuery(context.Background(), uuid.New(), uuid.New(), "what is a widget?")
	if !errors.Is(err, ErrNotApprovedMember) {
		t.Fatalf("expected ErrNotApprovedMember, got %v", err)
	}
}

func TestStreamQueryEmptyOrganization(t *testing.T) {
	svc := newTestQueryService(t, true, nil, nil)

	events, err := svc.StreamQuery(context.Background(), uuid.New(), uuid.New(), "what is a widget?")
	if !errors.Is(err, corpuscache.ErrNoPapers) {
		t.Fatalf("expected ErrNoPapers, got %v", err)
	}
	if events != nil {
		t.Fatal("no event channel should be opened when the corpus is empty")
	}
}

func TestStreamQueryHappyPath(t *testing.T) {
	orgId := uuid.New()
	paperId := uuid.New()
	path := fmt.Sprintf("org_%s/%s_widgets.txt", orgId, paperId)

	papers := []*entity.Paper{{
		Id:             paperId,
		Title:          "Smith (2020)",
		StoragePath:    path,
		OrganizationId: orgId,
		UploadedAt:     time.Now(),
	}}
	files := map[string][]byte{
		path: []byte("Widgets are small mechanical parts. They are used everywhere."),
	}

	svc := newTestQueryService(t, true, papers, files)

	events, err := svc.StreamQuery(context.Background(), uuid.New(), orgId, "what is a widget?")
	if err != nil {
		t.Fatalf("StreamQuery failed: %v", err)
	}

	var answer string
	var sawDone bool
	for ev := range events {
		switch ev.Type {
		case stream.EventAnswerFragment:
			answer += ev.Text
		case stream.EventError:
			t.Fatalf("unexpected error event: %s", ev.Text)
		case stream.EventDone:
			sawDone = true
		}
	}

	if answer != "Widgets are small mechanical parts." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if !sawDone {
		t.Fatal("stream ended without a done event")
	}
}
