package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"edgesync/internal/edge"
	"edgesync/internal/logger"
	"edgesync/internal/models"
	"edgesync/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

type memJobs struct {
	m map[string][]byte
}

func newMemJobs() *memJobs { return &memJobs{m: map[string][]byte{}} }

func (s *memJobs) Get(_ context.Context, id string) ([]byte, bool, error) {
	b, ok := s.m[id]
	return b, ok, nil
}

func (s *memJobs) Put(_ context.Context, id string, data []byte) error {
	s.m[id] = data
	return nil
}

func (s *memJobs) Delete(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

type memChunk struct {
	data      []byte
	expiresAt time.Time
}

type memChunks struct {
	m map[string]memChunk
}

func newMemChunks() *memChunks { return &memChunks{m: map[string]memChunk{}} }

func chunkKey(jobID string, idx int) string { return fmt.Sprintf("%s/%d", jobID, idx) }

func (s *memChunks) Put(_ context.Context, jobID string, idx int, data []byte, ttl time.Duration) error {
	s.m[chunkKey(jobID, idx)] = memChunk{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memChunks) Get(_ context.Context, jobID string, idx int) ([]byte, bool, error) {
	c, ok := s.m[chunkKey(jobID, idx)]
	if !ok || time.Now().After(c.expiresAt) {
		return nil, false, nil
	}
	return c.data, true, nil
}

func (s *memChunks) Delete(_ context.Context, jobID string, idx int) error {
	delete(s.m, chunkKey(jobID, idx))
	return nil
}

func (s *memChunks) DeleteJob(_ context.Context, jobID string) error {
	for key := range s.m {
		if strings.HasPrefix(key, jobID+"/") {
			delete(s.m, key)
		}
	}
	return nil
}

type memState struct {
	seq int64
	kv  map[string]string
}

func newMemState() *memState { return &memState{seq: 1, kv: map[string]string{}} }

func (s *memState) OutboundSeq(_ context.Context) (int64, error) { return s.seq, nil }
func (s *memState) BumpOutboundSeq(_ context.Context) error      { s.seq++; return nil }
func (s *memState) Set(_ context.Context, key, value string) error {
	s.kv[key] = value
	return nil
}
func (s *memState) Get(_ context.Context, key string) (string, error) { return s.kv[key], nil }

type memUsers struct {
	nextID uint
	byID   map[uint]*models.User
	meta   map[uint]map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]*models.User{}, meta: map[uint]map[string]string{}}
}

func (s *memUsers) add(email string) *models.User {
	s.nextID++
	u := &models.User{ID: s.nextID, Email: email}
	s.byID[u.ID] = u
	return u
}

func (s *memUsers) ByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *memUsers) Get(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

func (s *memUsers) Create(_ context.Context, email, firstName, lastName, passwordHash string) (*models.User, error) {
	s.nextID++
	u := &models.User{ID: s.nextID, Email: email, FirstName: firstName, LastName: lastName, PasswordHash: passwordHash}
	s.byID[u.ID] = u
	copy := *u
	return &copy, nil
}

func (s *memUsers) GetMeta(_ context.Context, userID uint, key string) (string, error) {
	return s.meta[userID][key], nil
}

func (s *memUsers) SetMeta(_ context.Context, userID uint, key, value string) error {
	if s.meta[userID] == nil {
		s.meta[userID] = map[string]string{}
	}
	s.meta[userID][key] = value
	return nil
}

func (s *memUsers) PageAfter(_ context.Context, lastID uint, limit int) ([]models.User, error) {
	var ids []uint
	for id := range s.byID {
		if id > lastID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	var out []models.User
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	return out, nil
}

func (s *memUsers) Count(_ context.Context) (int64, error) { return int64(len(s.byID)), nil }

type memProducts struct {
	nextID uint
	byEdge map[string]uint
	names  map[uint]string
	prices map[uint]float64
	images map[uint]*models.Attachment
}

func newMemProducts() *memProducts {
	return &memProducts{
		byEdge: map[string]uint{},
		names:  map[uint]string{},
		prices: map[uint]float64{},
		images: map[uint]*models.Attachment{},
	}
}

func (s *memProducts) IDByEdgeID(_ context.Context, edgeID string) (uint, bool, error) {
	id, ok := s.byEdge[edgeID]
	return id, ok, nil
}

func (s *memProducts) Create(_ context.Context, edgeID, name string, price float64) (uint, error) {
	s.nextID++
	s.byEdge[edgeID] = s.nextID
	s.names[s.nextID] = name
	s.prices[s.nextID] = price
	return s.nextID, nil
}

func (s *memProducts) Update(_ context.Context, id uint, name string, price float64) error {
	s.names[id] = name
	s.prices[id] = price
	return nil
}

func (s *memProducts) EdgeID(_ context.Context, productID uint) (string, error) {
	for edgeID, id := range s.byEdge {
		if id == productID {
			return edgeID, nil
		}
	}
	return "", nil
}

func (s *memProducts) SetImage(_ context.Context, productID uint, attachment *models.Attachment) error {
	s.images[productID] = attachment
	return nil
}

type fakeFile struct {
	data []byte
	mod  time.Time
}

type fakeTransport struct {
	files  map[string]fakeFile
	closed bool
}

func newFakeTransport() *fakeTransport { return &fakeTransport{files: map[string]fakeFile{}} }

func (f *fakeTransport) put(path string, data []byte, mod time.Time) {
	f.files[path] = fakeFile{data: data, mod: mod}
}

func (f *fakeTransport) List(path string) (map[string]transport.FileInfo, error) {
	prefix := strings.TrimRight(path, "/") + "/"
	out := map[string]transport.FileInfo{}
	for name, file := range f.files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		out[rest] = transport.FileInfo{Name: rest, Size: int64(len(file.data)), ModTime: file.mod}
	}
	return out, nil
}

func (f *fakeTransport) Read(path string) ([]byte, error) {
	file, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file %s", path)
	}
	return file.data, nil
}

func (f *fakeTransport) Write(path string, data []byte) error {
	f.files[path] = fakeFile{data: data, mod: time.Now()}
	return nil
}

func (f *fakeTransport) Exists(path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) SendAccountSetup(to, _, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type fakeEvents struct {
	types []string
}

func (e *fakeEvents) Publish(_ context.Context, eventType, _ string, _ map[string]interface{}) {
	e.types = append(e.types, eventType)
}

// ---- test harness ----

type testEnv struct {
	ft       *fakeTransport
	jobs     *memJobs
	chunks   *memChunks
	state    *memState
	users    *memUsers
	products *memProducts
	mailer   *fakeMailer
	events   *fakeEvents
	coord    *Coordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.New("error")
	e := &testEnv{
		ft:       newFakeTransport(),
		jobs:     newMemJobs(),
		chunks:   newMemChunks(),
		state:    newMemState(),
		users:    newMemUsers(),
		products: newMemProducts(),
		mailer:   &fakeMailer{},
		events:   &fakeEvents{},
	}

	transformer := edge.NewTransformer(7)
	exporter := &Exporter{Logger: log, State: e.state, Users: e.users, Transformer: transformer}

	e.coord = New(Options{
		Namespace:         "interactive",
		ChunkTTL:          time.Hour,
		CustomerChunkSize: 2,
		ProductChunkSize:  2,
		BackfillChunkSize: 2,
		RemoteFolder:      "/edge",
		Transport:         transport.Config{Kind: "sftp", Host: "edge.local", Username: "u", Password: "p", Port: 22},
		UploadsDir:        t.TempDir(),
		SiteURL:           "https://shop.test",
	}, Deps{
		Logger:      log,
		Dial:        func(transport.Config) (transport.Transport, error) { return e.ft, nil },
		Jobs:        e.jobs,
		Chunks:      e.chunks,
		State:       e.state,
		Users:       e.users,
		Products:    e.products,
		Transformer: transformer,
		Exporter:    exporter,
		Mailer:      e.mailer,
		Events:      e.events,
	})
	return e
}

func customerRecord(key, email, first, last string) edge.Customer {
	c := edge.Customer{Key: key}
	c.PairValue.CustomerKey = key
	c.PairValue.CustomerID = "E-" + key
	c.PairValue.CustomerFirstName = first
	c.PairValue.CustomerLastName = last
	if email != "" {
		c.PairValue.Emails = []edge.Email{
			{Key: "Work", PairValue: edge.EmailDetail{EmailType: "Work", EmailEmail: email}},
		}
	}
	return c
}

func (e *testEnv) seedCustomerList(t *testing.T, name string, mod time.Time, records ...edge.Customer) {
	t.Helper()
	list := edge.CustomerList{Customers: records, MaxAddresses: 2, MaxEmails: 1, MaxPhones: 1}
	data, err := json.Marshal(list)
	require.NoError(t, err)
	e.ft.put("/edge/Inbox/"+name, data, mod)
}

func (e *testEnv) seedItemList(t *testing.T, name string, mod time.Time, items ...edge.Item) {
	t.Helper()
	data, err := json.Marshal(edge.ItemList{Items: items})
	require.NoError(t, err)
	e.ft.put("/edge/Inbox/"+name, data, mod)
}

// runFlow drives a flow the way the admin UI does: chunk 0, then every
// nextChunk until complete.
func (e *testEnv) runFlow(t *testing.T, flow Flow) *Status {
	t.Helper()
	status, err := e.coord.StartOrResume(context.Background(), flow, 0)
	require.NoError(t, err)
	for !status.IsComplete {
		require.NotNil(t, status.NextChunk)
		status, err = e.coord.StartOrResume(context.Background(), flow, *status.NextChunk)
		require.NoError(t, err)
	}
	return status
}

// ---- customer import ----

func TestCustomerImportEndToEnd(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "20240105-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "alice@example.com", "Alice", "Smith"),
		customerRecord("C-2", "bob@example.com", "Bob", "Jones"),
		customerRecord("C-3", "", "No", "Email"),
		customerRecord("C-4", "carol@example.com", "Carol", "King"),
		customerRecord("C-5", "dave@example.com", "Dave", "Hall"),
	)

	status, err := e.coord.StartOrResume(context.Background(), FlowCustomerImport, 0)
	require.NoError(t, err)
	require.NotNil(t, status.NextChunk)
	assert.Equal(t, 1, *status.NextChunk)
	assert.False(t, status.IsComplete)
	assert.Equal(t, 2, status.Stats.Processed)

	status, err = e.coord.StartOrResume(context.Background(), FlowCustomerImport, 1)
	require.NoError(t, err)
	require.NotNil(t, status.NextChunk)
	assert.Equal(t, 2, *status.NextChunk)

	status, err = e.coord.StartOrResume(context.Background(), FlowCustomerImport, 2)
	require.NoError(t, err)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 5, status.Stats.Processed)
	assert.Equal(t, 4, status.Stats.Created)
	assert.Equal(t, 1, status.Stats.Skipped)
	assert.Equal(t, 4, status.Stats.Exported)

	// Feedback file carries every newly linked record with our account id
	// patched into the transfer block.
	raw, err := e.ft.Read("/edge/Outbox/1-CustomerList.json")
	require.NoError(t, err)
	var feedback edge.CustomerList
	require.NoError(t, json.Unmarshal(raw, &feedback))
	assert.Len(t, feedback.Customers, 4)
	assert.Equal(t, 2, feedback.MaxAddresses)
	for _, rec := range feedback.Customers {
		assert.NotNil(t, rec.PairValue.CustomerTransfer.WebTransferWebID)
	}

	// Counter consumed, job gone, accounts linked and mailed.
	seq, _ := e.state.OutboundSeq(context.Background())
	assert.EqualValues(t, 2, seq)
	assert.Empty(t, e.jobs.m)
	assert.Empty(t, e.chunks.m)
	assert.Len(t, e.mailer.sent, 4)

	alice, err := e.users.ByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, alice)
	for key, want := range map[string]string{
		models.MetaEdgeSync:         "1",
		models.MetaEdgeKey:          "C-1",
		models.MetaEdgeID:           "E-C-1",
		models.MetaEdgeSyncedBefore: "1",
	} {
		got, _ := e.users.GetMeta(context.Background(), alice.ID, key)
		assert.Equal(t, want, got, key)
	}
}

func TestCustomerImportFiveRecordsChunkedByTwo(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "a-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "a@example.com", "A", "A"),
		customerRecord("C-2", "b@example.com", "B", "B"),
		customerRecord("C-3", "c@example.com", "C", "C"),
		customerRecord("C-4", "d@example.com", "D", "D"),
		customerRecord("C-5", "e@example.com", "E", "E"),
	)

	wantProcessed := []int{2, 4, 5}
	status, err := e.coord.StartOrResume(context.Background(), FlowCustomerImport, 0)
	require.NoError(t, err)
	for i := 0; ; i++ {
		assert.Equal(t, wantProcessed[i], status.Stats.Processed)
		assert.Equal(t, wantProcessed[i], status.Stats.Created)
		if status.IsComplete {
			assert.Equal(t, 2, i)
			break
		}
		require.NotNil(t, status.NextChunk)
		status, err = e.coord.StartOrResume(context.Background(), FlowCustomerImport, *status.NextChunk)
		require.NoError(t, err)
	}

	raw, err := e.ft.Read("/edge/Outbox/1-CustomerList.json")
	require.NoError(t, err)
	var feedback edge.CustomerList
	require.NoError(t, json.Unmarshal(raw, &feedback))
	assert.Len(t, feedback.Customers, 5)
}

func TestCustomerImportReimportExportsNothing(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "a-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "alice@example.com", "Alice", "Smith"),
	)

	status := e.runFlow(t, FlowCustomerImport)
	assert.Equal(t, 1, status.Stats.Created)
	assert.Equal(t, 1, status.Stats.Exported)

	// Second import of the same file: the account is found, not created,
	// and the synced-before latch keeps it out of the feedback file.
	status = e.runFlow(t, FlowCustomerImport)
	assert.Equal(t, 0, status.Stats.Created)
	assert.Equal(t, 1, status.Stats.Updated)
	assert.Equal(t, 0, status.Stats.Exported)

	raw, err := e.ft.Read("/edge/Outbox/2-CustomerList.json")
	require.NoError(t, err)
	var feedback edge.CustomerList
	require.NoError(t, json.Unmarshal(raw, &feedback))
	assert.Empty(t, feedback.Customers)

	// Exactly one account exists.
	count, _ := e.users.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestCustomerImportPicksNewestFile(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "old-FullCustomerList.json", time.Now().Add(-time.Hour),
		customerRecord("C-OLD", "old@example.com", "Old", "Record"),
	)
	e.seedCustomerList(t, "new-FullCustomerList.json", time.Now(),
		customerRecord("C-NEW", "new@example.com", "New", "Record"),
	)
	e.ft.put("/edge/Inbox/ignore.txt", []byte("x"), time.Now().Add(time.Hour))

	status := e.runFlow(t, FlowCustomerImport)
	assert.Equal(t, 1, status.Stats.Processed)

	user, err := e.users.ByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user)
	user, err = e.users.ByEmail(context.Background(), "old@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCustomerImportNoSourceFile(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.coord.StartOrResume(context.Background(), FlowCustomerImport, 0)
	assert.ErrorIs(t, err, ErrNoSourceFile)
	assert.Empty(t, e.jobs.m)
	assert.Empty(t, e.chunks.m)
}

func TestCustomerImportStaleChunkWipesJob(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "a-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "a@example.com", "A", "A"),
		customerRecord("C-2", "b@example.com", "B", "B"),
		customerRecord("C-3", "c@example.com", "C", "C"),
	)

	status, err := e.coord.StartOrResume(context.Background(), FlowCustomerImport, 0)
	require.NoError(t, err)
	require.NotNil(t, status.NextChunk)

	// Simulate the chunk blob expiring between requests.
	jobID := e.coord.jobID(FlowCustomerImport)
	delete(e.chunks.m, chunkKey(jobID, 1))

	_, err = e.coord.StartOrResume(context.Background(), FlowCustomerImport, 1)
	assert.ErrorIs(t, err, ErrStaleJob)
	assert.Empty(t, e.jobs.m)
	assert.Empty(t, e.chunks.m)

	// A fresh start from chunk 0 works.
	final := e.runFlow(t, FlowCustomerImport)
	assert.True(t, final.IsComplete)
	assert.Equal(t, 3, final.Stats.Processed)
}

func TestResumeWithoutJobFails(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.coord.StartOrResume(context.Background(), FlowCustomerImport, 3)
	assert.ErrorIs(t, err, ErrNoJob)
}

// ---- product import ----

func itemRecord(key, desc string, price float64, image string) edge.Item {
	return edge.Item{
		Key: key,
		PairValue: edge.ItemDetail{
			ItemDesc:        desc,
			ItemRetailPrice: price,
			ItemImage:       image,
		},
	}
}

func TestProductImportCreatesAndUpdates(t *testing.T) {
	e := newTestEnv(t)
	existing, err := e.products.Create(context.Background(), "SKU-1", "Old Name", 5)
	require.NoError(t, err)

	e.ft.put("/edge/Inbox/ring.jpg", []byte("jpeg-bytes"), time.Now())
	e.seedItemList(t, "a-ItemList.json", time.Now(),
		itemRecord("SKU-1", "Gold Ring", 199.99, ""),
		itemRecord("SKU-2", "Silver Band", 49.50, "ring.jpg"),
		itemRecord("", "No Key", 1, ""),
	)

	status := e.runFlow(t, FlowProductImport)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 3, status.Stats.Processed)
	assert.Equal(t, 1, status.Stats.Created)
	assert.Equal(t, 1, status.Stats.Updated)
	assert.Equal(t, 1, status.Stats.Skipped)

	// Existing product renamed and repriced.
	assert.Equal(t, "Gold Ring", e.products.names[existing])
	assert.Equal(t, 199.99, e.products.prices[existing])

	// New product got its image attached.
	newID, ok := e.products.byEdge["SKU-2"]
	require.True(t, ok)
	attachment := e.products.images[newID]
	require.NotNil(t, attachment)
	assert.Equal(t, "ring.jpg", attachment.FileName)
	assert.Equal(t, "image/jpeg", attachment.MimeType)

	// No feedback upload for products.
	for name := range e.ft.files {
		assert.False(t, strings.HasPrefix(name, "/edge/Outbox/"), "unexpected upload %s", name)
	}
	seq, _ := e.state.OutboundSeq(context.Background())
	assert.EqualValues(t, 1, seq)
}

func TestProductImportMissingImageIsNotFatal(t *testing.T) {
	e := newTestEnv(t)
	e.seedItemList(t, "a-ItemList.json", time.Now(),
		itemRecord("SKU-1", "Gold Ring", 199.99, "nowhere.jpg"),
	)

	status := e.runFlow(t, FlowProductImport)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 1, status.Stats.Created)

	id := e.products.byEdge["SKU-1"]
	assert.Nil(t, e.products.images[id])
}

// ---- user backfill ----

func TestBackfillExportsUnsyncedAccounts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.users.add("a@example.com")
	e.users.add("b@example.com")
	already := e.users.add("c@example.com")
	require.NoError(t, e.users.SetMeta(ctx, already.ID, models.MetaEdgeSync, "1"))
	e.users.add("") // no email
	e.users.add("e@example.com")

	status := e.runFlow(t, FlowUserBackfill)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 5, status.Stats.Processed)
	assert.Equal(t, 3, status.Stats.Synced)
	assert.Equal(t, 1, status.Stats.AlreadySynced)
	assert.Equal(t, 1, status.Stats.Skipped)

	// One numbered _NEW file per exported account, counter advanced past
	// all three.
	for _, name := range []string{"1_NEW-CustomerList.json", "2_NEW-CustomerList.json", "3_NEW-CustomerList.json"} {
		raw, err := e.ft.Read("/edge/Outbox/" + name)
		require.NoError(t, err, name)
		var list edge.CustomerList
		require.NoError(t, json.Unmarshal(raw, &list))
		assert.Len(t, list.Customers, 1)
	}
	seq, _ := e.state.OutboundSeq(ctx)
	assert.EqualValues(t, 4, seq)

	// Accounts never seen by EDGE get the deterministic web key.
	key, _ := e.users.GetMeta(ctx, a.ID, models.MetaEdgeKey)
	assert.Equal(t, fmt.Sprintf("WEB-CUSTOMER-%d", a.ID), key)
	synced, _ := e.users.GetMeta(ctx, a.ID, models.MetaEdgeSync)
	assert.Equal(t, "1", synced)
}

func TestBackfillSecondRunIsNoop(t *testing.T) {
	e := newTestEnv(t)
	e.users.add("a@example.com")
	e.users.add("b@example.com")

	status := e.runFlow(t, FlowUserBackfill)
	assert.Equal(t, 2, status.Stats.Synced)

	status = e.runFlow(t, FlowUserBackfill)
	assert.Equal(t, 0, status.Stats.Synced)
	assert.Equal(t, 2, status.Stats.AlreadySynced)
}

func TestBackfillEmptyTable(t *testing.T) {
	e := newTestEnv(t)

	status, err := e.coord.StartOrResume(context.Background(), FlowUserBackfill, 0)
	require.NoError(t, err)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 0, status.Stats.Processed)
}

// ---- scheduled surface ----

func TestAdvanceWalksJobWithoutChunkIndex(t *testing.T) {
	e := newTestEnv(t)
	e.seedCustomerList(t, "a-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "a@example.com", "A", "A"),
		customerRecord("C-2", "b@example.com", "B", "B"),
		customerRecord("C-3", "c@example.com", "C", "C"),
	)

	ctx := context.Background()
	status, err := e.coord.Advance(ctx, FlowCustomerImport)
	require.NoError(t, err)
	assert.False(t, status.IsComplete)

	// A second Advance picks up where the stored job left off.
	status, err = e.coord.Advance(ctx, FlowCustomerImport)
	require.NoError(t, err)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 3, status.Stats.Processed)
}

// ---- status reporting ----

func TestLastRunStats(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, ok, err := e.coord.LastRun(ctx, FlowCustomerImport)
	require.NoError(t, err)
	assert.False(t, ok)

	e.seedCustomerList(t, "a-FullCustomerList.json", time.Now(),
		customerRecord("C-1", "a@example.com", "A", "A"),
	)
	e.runFlow(t, FlowCustomerImport)

	stats, ok, err := e.coord.LastRun(ctx, FlowCustomerImport)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Created)

	_, found, err := e.coord.InProgress(ctx, FlowCustomerImport)
	require.NoError(t, err)
	assert.False(t, found)
}
