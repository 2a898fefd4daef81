package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/database"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.PaperRepository())
	assert.NotNil(t, uow.MembershipRepository())
	assert.NotNil(t, uow.OrganizationRepository())
	assert.NotNil(t, uow.PaperVectorRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Paper Repository", func(t *testing.T) {
		count, err := uow.PaperRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Paper count: %d", count)
	})

	t.Run("Check Paper Chunk Repository", func(t *testing.T) {
		count, err := uow.PaperVectorRepository().CountByOrganization(context.Background(), uuid.Nil)
		assert.NoError(t, err)
		t.Logf("Chunks for nil org: %d", count)
	})

	t.Run("Check Membership Filter", func(t *testing.T) {
		memberships, err := uow.MembershipRepository().FindAll(context.Background(),
			specification.WithStatus{Status: entity.MembershipStatusApproved},
		)
		assert.NoError(t, err)
		t.Logf("Approved memberships: %d", len(memberships))
	})

	t.Run("Check Transactional Paper Create", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)

		err := txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		orgId := uuid.New()
		paper := &entity.Paper{
			Id:             uuid.New(),
			Title:          "Integration Paper",
			StoragePath:    "org_" + orgId.String() + "/integration.txt",
			OrganizationId: orgId,
			UploadedBy:     uuid.New(),
			UploadedAt:     time.Now(),
		}

		err = txUow.PaperRepository().Create(ctx, paper)
		assert.NoError(t, err)

		found, err := txUow.PaperRepository().FindOne(ctx,
			specification.ByID{ID: paper.Id},
			specification.OwnedByOrganization{OrganizationID: orgId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, paper.Title, found.Title)
		}

		// Rollback in the deferred call keeps the table clean.
	})
}
