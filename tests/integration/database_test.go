//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voralis/invoxly-backend/internal/database"
	"github.com/voralis/invoxly-backend/internal/models"
	"github.com/voralis/invoxly-backend/internal/repository"
	"github.com/voralis/invoxly-backend/tests/fixtures"
)

// DatabaseIntegrationTestSuite exercises the repositories against a real
// PostgreSQL instance.
type DatabaseIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	invoices  repository.InvoiceRepository
	sessions  repository.SessionRepository
}

// SetupSuite starts the PostgreSQL container and runs migrations
func (s *DatabaseIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("invoxly_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(s.T(), err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	require.NoError(s.T(), database.Migrate(db))

	s.invoices = repository.NewInvoiceRepository(db)
	s.sessions = repository.NewSessionRepository(db)
}

// TearDownSuite stops the PostgreSQL container
func (s *DatabaseIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *DatabaseIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE TABLE attachments, line_items, invoices, sessions CASCADE")
}

func TestDatabaseIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}

func (s *DatabaseIntegrationTestSuite) TestCreateWithRelationsRoundtrip() {
	ctx := context.Background()

	size := int64(2048)
	created, err := s.invoices.CreateWithRelations(ctx,
		fixtures.NewInvoiceBuilder().WithID("").Build(),
		[]models.LineItem{
			{Description: "Consulting", Quantity: 10, Amount: 100, SortOrder: 0},
			{Description: "Travel", Quantity: 1, Amount: 50, SortOrder: 1},
		},
		[]models.Attachment{
			{StorageKey: "ab/key.pdf", Filename: "invoice.pdf", ContentType: "application/pdf", SizeBytes: &size},
		},
	)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), created.ID)

	got, err := s.invoices.GetByID(ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Acme Corp", got.VendorName)
	require.Len(s.T(), got.LineItems, 2)
	assert.Equal(s.T(), "Consulting", got.LineItems[0].Description)
	assert.Equal(s.T(), "Travel", got.LineItems[1].Description)
	require.Len(s.T(), got.Attachments, 1)
	assert.Equal(s.T(), "ab/key.pdf", got.Attachments[0].StorageKey)
}

func (s *DatabaseIntegrationTestSuite) TestCursorPagination() {
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UnixMilli()
	for i := 0; i < 5; i++ {
		_, err := s.invoices.CreateWithRelations(ctx,
			fixtures.NewInvoiceBuilder().
				WithID("").
				WithNumber("INV-"+string(rune('A'+i))).
				WithCreatedAt(base+int64(i*1000)).
				Build(),
			[]models.LineItem{{Description: "Work", Quantity: 1, Amount: 10}},
			nil,
		)
		require.NoError(s.T(), err)
	}

	page1, next, err := s.invoices.List(ctx, repository.ListFilter{Limit: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page1, 2)
	require.NotNil(s.T(), next)
	// Newest first
	assert.Equal(s.T(), "INV-E", page1[0].InvoiceNumber)
	assert.Equal(s.T(), "INV-D", page1[1].InvoiceNumber)

	page2, next2, err := s.invoices.List(ctx, repository.ListFilter{Limit: 2, Cursor: next})
	require.NoError(s.T(), err)
	require.Len(s.T(), page2, 2)
	require.NotNil(s.T(), next2)
	assert.Equal(s.T(), "INV-C", page2[0].InvoiceNumber)
	assert.Equal(s.T(), "INV-B", page2[1].InvoiceNumber)

	page3, next3, err := s.invoices.List(ctx, repository.ListFilter{Limit: 2, Cursor: next2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page3, 1)
	assert.Nil(s.T(), next3)
	assert.Equal(s.T(), "INV-A", page3[0].InvoiceNumber)
}

func (s *DatabaseIntegrationTestSuite) TestListFilters() {
	ctx := context.Background()

	_, err := s.invoices.CreateWithRelations(ctx,
		fixtures.NewInvoiceBuilder().WithID("").WithVendor("Acme Corp").WithStatus(models.StatusApproved).Build(),
		[]models.LineItem{{Description: "Work", Quantity: 1, Amount: 10}}, nil)
	require.NoError(s.T(), err)
	_, err = s.invoices.CreateWithRelations(ctx,
		fixtures.NewInvoiceBuilder().WithID("").WithVendor("Globex LLC").WithNumber("GLX-7").Build(),
		[]models.LineItem{{Description: "Work", Quantity: 1, Amount: 10}}, nil)
	require.NoError(s.T(), err)

	byStatus, _, err := s.invoices.List(ctx, repository.ListFilter{Status: models.StatusApproved})
	require.NoError(s.T(), err)
	require.Len(s.T(), byStatus, 1)
	assert.Equal(s.T(), "Acme Corp", byStatus[0].VendorName)

	byVendor, _, err := s.invoices.List(ctx, repository.ListFilter{Vendor: "globex"})
	require.NoError(s.T(), err)
	require.Len(s.T(), byVendor, 1)

	byQuery, _, err := s.invoices.List(ctx, repository.ListFilter{Query: "glx-7"})
	require.NoError(s.T(), err)
	require.Len(s.T(), byQuery, 1)
}

func (s *DatabaseIntegrationTestSuite) TestDeleteCascades() {
	ctx := context.Background()

	created, err := s.invoices.CreateWithRelations(ctx,
		fixtures.NewInvoiceBuilder().WithID("").Build(),
		[]models.LineItem{{Description: "Work", Quantity: 1, Amount: 10}},
		[]models.Attachment{{StorageKey: "ab/key.pdf", Filename: "f.pdf", ContentType: "application/pdf"}},
	)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.invoices.Delete(ctx, created.ID))

	var itemCount, attCount int64
	s.db.Model(&models.LineItem{}).Where("invoice_id = ?", created.ID).Count(&itemCount)
	s.db.Model(&models.Attachment{}).Where("invoice_id = ?", created.ID).Count(&attCount)
	assert.Zero(s.T(), itemCount)
	assert.Zero(s.T(), attCount)

	_, err = s.invoices.GetByID(ctx, created.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestSessionLifecycle() {
	ctx := context.Background()

	live := fixtures.NewSessionBuilder().WithToken("tok-live").Build()
	expired := fixtures.NewSessionBuilder().WithToken("tok-expired").Expired().Build()
	require.NoError(s.T(), s.sessions.Create(ctx, live))
	require.NoError(s.T(), s.sessions.Create(ctx, expired))

	got, err := s.sessions.GetByToken(ctx, "tok-live")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ops@example.com", got.UserEmail)

	_, err = s.sessions.GetByToken(ctx, "tok-expired")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	removed, err := s.sessions.DeleteExpired(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), removed)

	require.NoError(s.T(), s.sessions.Delete(ctx, "tok-live"))
	_, err = s.sessions.GetByToken(ctx, "tok-live")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}
