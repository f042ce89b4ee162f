package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lumina-ai/rag-backend/internal/domain"
	"github.com/lumina-ai/rag-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVectorSize = 4

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)           {}
func (nopLogger) Infof(format string, args ...any)            {}
func (nopLogger) Warnf(format string, args ...any)            {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type fakeVectorRepo struct {
	existsRes   bool
	existsErr   error
	existsCalls int

	createErr   error
	createCalls int

	upsertErr error
	upserted  []domain.Embedding

	searchRes []domain.QueryResult
	searchErr error

	countRes uint64
	countErr error

	deleteErr  error
	deletedIDs []string
}

func (f *fakeVectorRepo) CollectionExists(ctx context.Context) (bool, error) {
	f.existsCalls++
	return f.existsRes, f.existsErr
}

func (f *fakeVectorRepo) CreateCollection(ctx context.Context) error {
	f.createCalls++
	if f.createErr == nil {
		f.existsRes = true
	}
	return f.createErr
}

func (f *fakeVectorRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeVectorRepo) Search(ctx context.Context, vector []float32, limit uint64) ([]domain.QueryResult, error) {
	return f.searchRes, f.searchErr
}

func (f *fakeVectorRepo) Count(ctx context.Context) (uint64, error) {
	return f.countRes, f.countErr
}

func (f *fakeVectorRepo) Delete(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

type fakeRegistryRepo struct {
	entries    []*domain.RecordEntry
	createErr  error
	getRes     []RecordInfo
	getErr     error
	deleteErr  error
	deletedIDs []string
	pingErr    error
}

func (f *fakeRegistryRepo) CreateBatch(ctx context.Context, entries []*domain.RecordEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeRegistryRepo) GetRecords(ctx context.Context, ids []string) ([]RecordInfo, error) {
	return f.getRes, f.getErr
}

func (f *fakeRegistryRepo) Delete(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

func (f *fakeRegistryRepo) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeCacheRepo struct {
	mu         sync.Mutex
	getRes     map[string]RecordInfo
	getErr     error
	setRecords []RecordInfo
	deletedIDs []string
	pingErr    error
}

func (f *fakeCacheRepo) GetRecords(ctx context.Context, ids []string) (map[string]RecordInfo, error) {
	return f.getRes, f.getErr
}

func (f *fakeCacheRepo) SetRecords(ctx context.Context, records []RecordInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRecords = append(f.setRecords, records...)
	return nil
}

func (f *fakeCacheRepo) DeleteRecords(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

func (f *fakeCacheRepo) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeOutboxRepo struct {
	events    []*OutboxEvent
	createErr error
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return nil
}

type fakeEmbedder struct {
	vectors  [][]float32
	err      error
	texts    []string
	purposes []domain.EmbedPurpose
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, purpose domain.EmbedPurpose) ([][]float32, error) {
	f.texts = append(f.texts, texts...)
	f.purposes = append(f.purposes, purpose)
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = testVector()
	}
	return vectors, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	items   []ArchiveItem
	removed []string
}

func (f *fakeArchive) ArchiveTexts(items []ArchiveItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
}

func (f *fakeArchive) RemoveArchived(ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, ids...)
}

func (f *fakeArchive) WaitForFlush(ctx context.Context) error {
	return nil
}

// fakeTx реализует pgx.Tx ровно настолько, насколько им пользуется usecase.
type fakeTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return f, nil }

func (f *fakeTx) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

func (f *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (f *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (f *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (f *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (f *fakeTx) Conn() *pgx.Conn                                               { return nil }

type fakeTxBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

// --- test harness ---

type ucFixture struct {
	uc       *EmbeddingUseCase
	vector   *fakeVectorRepo
	registry *fakeRegistryRepo
	cache    *fakeCacheRepo
	outbox   *fakeOutboxRepo
	embedder *fakeEmbedder
	archive  *fakeArchive
	tx       *fakeTx
}

func newFixture() *ucFixture {
	f := &ucFixture{
		vector:   &fakeVectorRepo{existsRes: true},
		registry: &fakeRegistryRepo{},
		cache:    &fakeCacheRepo{},
		outbox:   &fakeOutboxRepo{},
		embedder: &fakeEmbedder{},
		archive:  &fakeArchive{},
		tx:       &fakeTx{},
	}
	f.uc = NewEmbeddingUC(
		f.vector,
		f.registry,
		f.cache,
		f.outbox,
		&fakeTxBeginner{tx: f.tx},
		f.embedder,
		f.archive,
		nopLogger{},
		"text_embeddings",
		testVectorSize,
	)
	return f
}

// --- SaveTexts ---

func TestSaveTexts_EmptyBatch(t *testing.T) {
	f := newFixture()

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: nil})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrNoTexts)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	assert.Empty(t, f.embedder.texts)
}

func TestSaveTexts_BlankText(t *testing.T) {
	f := newFixture()

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"ok", "   "}})

	assert.ErrorIs(t, err, e.ErrEmptyText)
}

func TestSaveTexts_MetadataLengthMismatch(t *testing.T) {
	f := newFixture()

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{
		Texts:        []string{"a", "b"},
		MetadataList: []map[string]any{{"k": "v"}},
	})

	assert.ErrorIs(t, err, e.ErrMetadataMismatch)
}

func TestSaveTexts_Success(t *testing.T) {
	f := newFixture()

	res, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{
		Texts:        []string{"first text", "second text"},
		MetadataList: []map[string]any{{"source": "a"}, {"source": "b"}},
	})

	require.NoError(t, err)
	require.Len(t, res.IDs, 2)
	assert.NotEqual(t, res.IDs[0], res.IDs[1])

	// один вызов провайдера на весь батч, в режиме документа
	require.Len(t, f.embedder.purposes, 1)
	assert.Equal(t, domain.PurposeDocument, f.embedder.purposes[0])

	require.Len(t, f.vector.upserted, 2)
	assert.Equal(t, res.IDs[0], f.vector.upserted[0].ID)
	assert.Equal(t, "first text", f.vector.upserted[0].Payload["text"])
	assert.Equal(t, "a", f.vector.upserted[0].Payload["source"])

	require.Len(t, f.registry.entries, 2)
	assert.Equal(t, res.IDs[0], f.registry.entries[0].ID)
	assert.Equal(t, len("first text"), f.registry.entries[0].TextLength)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, "record_ingested", f.outbox.events[0].EventType)
	assert.Equal(t, res.IDs[0], f.outbox.events[0].AggregateID)

	assert.True(t, f.tx.committed)
	assert.Len(t, f.archive.items, 2)
}

func TestSaveTexts_ProviderError(t *testing.T) {
	f := newFixture()
	f.embedder.err = fmt.Errorf("%w: quota exceeded", e.ErrRateLimited)

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"a"}})

	assert.ErrorIs(t, err, e.ErrRateLimited)
	assert.Empty(t, f.vector.upserted)
	assert.Empty(t, f.registry.entries)
}

func TestSaveTexts_WrongVectorSize(t *testing.T) {
	f := newFixture()
	f.embedder.vectors = [][]float32{{0.1, 0.2}}

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"a"}})

	assert.ErrorIs(t, err, e.ErrVectorSizeMismatch)
	assert.ErrorIs(t, err, e.ErrContractViolation)
	assert.Empty(t, f.vector.upserted)
}

func TestSaveTexts_WrongVectorCount(t *testing.T) {
	f := newFixture()
	f.embedder.vectors = [][]float32{testVector()}

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"a", "b"}})

	assert.ErrorIs(t, err, e.ErrVectorCountMismatch)
}

func TestSaveTexts_UpsertFailureRollsBackRegistry(t *testing.T) {
	f := newFixture()
	f.vector.upsertErr = errors.New("write failed")

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"a"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrStorageWrite)
	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
	assert.Empty(t, f.archive.items)
}

func TestSaveText_DelegatesToBatch(t *testing.T) {
	f := newFixture()

	res, err := f.uc.SaveText(context.Background(), &SaveTextReq{
		Text:     "solo",
		Metadata: map[string]any{"source": "unit"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	require.Len(t, f.vector.upserted, 1)
	assert.Equal(t, "solo", f.vector.upserted[0].Payload["text"])
	assert.Equal(t, "unit", f.vector.upserted[0].Payload["source"])
}

// --- Retrieve ---

func TestRetrieve_EmptyQuery(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "  ", TopK: 5})

	assert.ErrorIs(t, err, e.ErrEmptyQuery)
}

func TestRetrieve_TopKOutOfRange(t *testing.T) {
	f := newFixture()

	for _, topK := range []int{0, -1, 101} {
		_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: topK})
		assert.ErrorIs(t, err, e.ErrTopKOutOfRange, "topK=%d", topK)
	}
}

func TestRetrieve_TopKBounds(t *testing.T) {
	f := newFixture()

	for _, topK := range []int{1, 100} {
		_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: topK})
		assert.NoError(t, err, "topK=%d", topK)
	}
}

func TestRetrieve_Success(t *testing.T) {
	f := newFixture()
	f.vector.searchRes = []domain.QueryResult{
		{ID: "id-1", Score: 0.9, Text: "closest"},
		{ID: "id-2", Score: 0.7, Text: "further"},
	}

	res, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "find me", TopK: 5})

	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "id-1", res.Results[0].ID)

	require.Len(t, f.embedder.purposes, 1)
	assert.Equal(t, domain.PurposeQuery, f.embedder.purposes[0])
}

func TestRetrieve_EmptyCollection(t *testing.T) {
	f := newFixture()
	f.vector.searchRes = nil

	res, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "anything", TopK: 5})

	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestRetrieve_SearchFailure(t *testing.T) {
	f := newFixture()
	f.vector.searchErr = errors.New("read failed")

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})

	assert.ErrorIs(t, err, e.ErrStorageRead)
}

func TestCountRecords_Success(t *testing.T) {
	f := newFixture()
	f.vector.countRes = 12

	count, err := f.uc.CountRecords(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(12), count)
}

func TestCountRecords_StoreFailure(t *testing.T) {
	f := newFixture()
	f.vector.countErr = errors.New("count failed")

	_, err := f.uc.CountRecords(context.Background())

	assert.ErrorIs(t, err, e.ErrStorageRead)
}

// --- readiness ---

func TestEnsureReady_CachedAcrossCalls(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)
	_, err = f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, f.vector.existsCalls)
}

func TestEnsureReady_CreatesMissingCollection(t *testing.T) {
	f := newFixture()
	f.vector.existsRes = false

	_, err := f.uc.SaveTexts(context.Background(), &SaveTextsReq{Texts: []string{"a"}})

	require.NoError(t, err)
	assert.Equal(t, 1, f.vector.createCalls)
}

func TestEnsureReady_Unreachable(t *testing.T) {
	f := newFixture()
	f.vector.existsErr = errors.New("connection refused")

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})

	assert.ErrorIs(t, err, e.ErrCollectionUnavailable)
}

func TestEnsureReady_InvalidatedOnConnectivityError(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)
	require.Equal(t, 1, f.vector.existsCalls)

	// потеря связности сбрасывает кэш готовности
	f.vector.searchErr = errors.New("connection refused")
	_, err = f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.Error(t, err)

	f.vector.searchErr = nil
	_, err = f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, f.vector.existsCalls)
}

func TestEnsureReady_NotInvalidatedOnLogicError(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)

	f.vector.searchErr = errors.New("bad request")
	_, err = f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.Error(t, err)

	f.vector.searchErr = nil
	_, err = f.uc.Retrieve(context.Background(), &RetrieveReq{Query: "q", TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, f.vector.existsCalls)
}

// --- DeleteRecords ---

func TestDeleteRecords_NoIDs(t *testing.T) {
	f := newFixture()

	err := f.uc.DeleteRecords(context.Background(), &DeleteRecordsReq{})

	assert.ErrorIs(t, err, e.ErrNoIDs)
}

func TestDeleteRecords_Success(t *testing.T) {
	f := newFixture()
	ids := []string{"id-1", "id-2"}

	err := f.uc.DeleteRecords(context.Background(), &DeleteRecordsReq{IDs: ids})

	require.NoError(t, err)
	assert.Equal(t, ids, f.vector.deletedIDs)
	assert.Equal(t, ids, f.registry.deletedIDs)
	assert.Equal(t, ids, f.cache.deletedIDs)
	assert.Equal(t, ids, f.archive.removed)
	assert.True(t, f.tx.committed)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, "record_deleted", f.outbox.events[0].EventType)
}

func TestDeleteRecords_VectorFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.vector.deleteErr = errors.New("delete failed")

	err := f.uc.DeleteRecords(context.Background(), &DeleteRecordsReq{IDs: []string{"id-1"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrStorageWrite)
	assert.False(t, f.tx.committed)
	assert.Empty(t, f.archive.removed)
}

// --- GetRecords ---

func TestGetRecords_MergesCacheAndRegistry(t *testing.T) {
	f := newFixture()
	f.cache.getRes = map[string]RecordInfo{
		"id-1": {ID: "id-1", Collection: "text_embeddings"},
	}
	f.registry.getRes = []RecordInfo{
		{ID: "id-2", Collection: "text_embeddings"},
	}

	res, err := f.uc.GetRecords(context.Background(), &GetRecordsReq{IDs: []string{"id-1", "id-2", "id-3"}})

	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "id-1", res.Records[0].ID)
	assert.Equal(t, "id-2", res.Records[1].ID)
	assert.Equal(t, []string{"id-3"}, res.NotFoundRecords)
}

func TestGetRecords_CacheFailureFallsThrough(t *testing.T) {
	f := newFixture()
	f.cache.getErr = errors.New("redis down")
	f.registry.getRes = []RecordInfo{{ID: "id-1"}}

	res, err := f.uc.GetRecords(context.Background(), &GetRecordsReq{IDs: []string{"id-1"}})

	require.NoError(t, err)
	require.Len(t, res.Records, 1)
}

func TestGetRecords_RegistryFailure(t *testing.T) {
	f := newFixture()
	f.registry.getErr = errors.New("pg down")

	_, err := f.uc.GetRecords(context.Background(), &GetRecordsReq{IDs: []string{"id-1"}})

	assert.ErrorIs(t, err, e.ErrStorageRead)
}

// --- CheckHealth ---

func TestCheckHealth_Healthy(t *testing.T) {
	f := newFixture()
	f.vector.countRes = 42

	res := f.uc.CheckHealth(context.Background())

	assert.Equal(t, domain.StatusHealthy, res.Status)
	assert.True(t, res.CollectionExists)
	require.NotNil(t, res.RecordCount)
	assert.Equal(t, uint64(42), *res.RecordCount)
	assert.Empty(t, res.Detail)
}

func TestCheckHealth_UnreachableStore(t *testing.T) {
	f := newFixture()
	f.vector.existsErr = errors.New("connection refused")

	res := f.uc.CheckHealth(context.Background())

	assert.Equal(t, domain.StatusUnhealthy, res.Status)
	assert.False(t, res.CollectionExists)
	assert.Nil(t, res.RecordCount)
	assert.NotEmpty(t, res.Detail)
}

func TestCheckHealth_MissingCollection(t *testing.T) {
	f := newFixture()
	f.vector.existsRes = false

	res := f.uc.CheckHealth(context.Background())

	assert.Equal(t, domain.StatusDegraded, res.Status)
	assert.False(t, res.CollectionExists)
	assert.Nil(t, res.RecordCount)
}

func TestCheckHealth_SecondaryFailuresDegrade(t *testing.T) {
	f := newFixture()
	f.registry.pingErr = errors.New("pg down")
	f.cache.pingErr = errors.New("redis down")

	res := f.uc.CheckHealth(context.Background())

	assert.Equal(t, domain.StatusDegraded, res.Status)
	assert.Contains(t, res.Detail, "record registry unreachable")
	assert.Contains(t, res.Detail, "cache unreachable")
}
