package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/document"
	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/events"
	pktNats "github.com/barnabasli/alexandria/pkg/nats"
	"github.com/barnabasli/alexandria/pkg/storage"
	"github.com/barnabasli/alexandria/pkg/utils"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

// Chunk sizing for the vector index. 1500 chars is roughly 375 tokens,
// well inside every embedding model's context limit.
const (
	indexChunkSize    = 1500
	indexChunkOverlap = 200
)

type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
	store             storage.PaperStore
	eventPublisher    *pktNats.Publisher
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	index vectorindex.Index,
	store storage.PaperStore,
	eventPublisher *pktNats.Publisher,
) IIndexerService {
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		index:             index,
		store:             store,
		eventPublisher:    eventPublisher,
	}
}

func (is *indexerService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexPaperMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal indexing message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing paper %s", payload.PaperId)

	uow := is.uowFactory.NewUnitOfWork(ctx)

	paper, err := uow.PaperRepository().FindOne(ctx, specification.ByID{ID: payload.PaperId})
	if err != nil {
		log.Printf("[ERROR] Failed to get paper %s: %v", payload.PaperId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if paper == nil {
		log.Printf("[WARN] Paper not found, likely deleted before indexing: %s", payload.PaperId)
		msg.Ack()
		return
	}

	content, err := is.store.Download(ctx, paper.StoragePath)
	if err != nil {
		log.Printf("[ERROR] Failed to download %s: %v", paper.StoragePath, err)
		msg.Nack()
		return
	}

	parser, err := document.ParserFor(paper.StoragePath)
	if err != nil {
		log.Printf("[ERROR] No parser for %s: %v", paper.StoragePath, err)
		msg.Ack() // Unsupported format will never become retriable
		return
	}
	text, err := parser.Parse(content)
	if err != nil {
		log.Printf("[ERROR] Failed to parse %s: %v", paper.StoragePath, err)
		msg.Ack() // Corrupt file, retrying won't fix it
		return
	}

	chunks := utils.SplitText(text, indexChunkSize, indexChunkOverlap)
	log.Printf("[INFO] Paper %s split into %d chunks", payload.PaperId, len(chunks))

	embeddings := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := is.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of paper %s: %v", i, payload.PaperId, err)
			msg.Nack()
			return
		}
		embeddings = append(embeddings, res.Embedding.Values)
	}

	// Replace, not append: re-indexing the same paper must not duplicate
	// its vectors.
	if err := is.index.Delete(ctx, paper.Id); err != nil {
		log.Printf("[ERROR] Failed to clear old vectors for paper %s: %v", payload.PaperId, err)
		msg.Nack()
		return
	}
	if err := is.index.Upsert(ctx, paper.Id, paper.OrganizationId, paper.Title, paper.StoragePath, chunks, embeddings); err != nil {
		log.Printf("[ERROR] Failed to upsert vectors for paper %s: %v", payload.PaperId, err)
		msg.Nack()
		return
	}

	paper.IngestStats = map[string]interface{}{
		"chunk_count":     len(chunks),
		"extracted_chars": len(text),
	}
	if err := uow.PaperRepository().Update(ctx, paper); err != nil {
		// Vectors are already live, so the stats column losing this write
		// is not worth a retry that would re-embed everything.
		log.Printf("[WARN] Failed to record ingest stats for paper %s: %v", payload.PaperId, err)
	}

	if is.eventPublisher != nil {
		if err := is.eventPublisher.Publish(ctx, events.NewPaperIndexed(paper.Id, paper.OrganizationId, len(chunks))); err != nil {
			log.Printf("[WARN] Failed to publish paper.indexed for %s: %v", payload.PaperId, err)
		}
	}

	log.Printf("[SUCCESS] Paper indexed: %d chunks for PaperId: %s", len(chunks), payload.PaperId)
	msg.Ack()
}
