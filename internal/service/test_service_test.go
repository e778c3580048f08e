package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/generator"
	"github.com/studyvault/studyvault-backend/internal/model"
)

// ─── in-memory fakes ────────────────────────────────────────────────────────

type memFolderRepo struct {
	folders map[uuid.UUID]*model.Folder
}

func (m *memFolderRepo) Create(_ context.Context, f *model.Folder) error {
	f.ID = uuid.New()
	m.folders[f.ID] = f
	return nil
}

func (m *memFolderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *f
	return &cp, nil
}

func (m *memFolderRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Folder, error) {
	var out []model.Folder
	for _, f := range m.folders {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memFolderRepo) Rename(_ context.Context, id uuid.UUID, name string) error {
	m.folders[id].Name = name
	return nil
}

func (m *memFolderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.folders, id)
	return nil
}

type memDocumentRepo struct {
	docs map[uuid.UUID]*model.Document
}

func (m *memDocumentRepo) Create(_ context.Context, d *model.Document) error {
	d.ID = uuid.New()
	m.docs[d.ID] = d
	return nil
}

func (m *memDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (m *memDocumentRepo) ListByFolder(_ context.Context, folderID uuid.UUID) ([]model.Document, error) {
	var out []model.Document
	for _, d := range m.docs {
		if d.FolderID == folderID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDocumentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.DocumentStatus, pageCount int) error {
	m.docs[id].Status = status
	m.docs[id].PageCount = pageCount
	return nil
}

func (m *memDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.docs, id)
	return nil
}

type memChunkRepo struct {
	byDocument map[uuid.UUID][]model.Chunk
}

func (m *memChunkRepo) ReplaceForDocument(_ context.Context, documentID uuid.UUID, chunks []model.Chunk) error {
	m.byDocument[documentID] = chunks
	return nil
}

func (m *memChunkRepo) ListByDocument(_ context.Context, documentID uuid.UUID) ([]model.Chunk, error) {
	return m.byDocument[documentID], nil
}

func (m *memChunkRepo) SampleForFolder(_ context.Context, _ uuid.UUID, documentIDs []uuid.UUID, limit int) ([]model.Chunk, error) {
	var out []model.Chunk
	for docID, chunks := range m.byDocument {
		if len(documentIDs) > 0 {
			found := false
			for _, want := range documentIDs {
				if want == docID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, chunks...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTestRepo struct {
	tests map[uuid.UUID]*model.Test
}

func (m *memTestRepo) Create(_ context.Context, t *model.Test) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.tests[t.ID] = t
	return nil
}

func (m *memTestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	t, ok := m.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *memTestRepo) ListByFolder(_ context.Context, folderID uuid.UUID) ([]model.TestSummary, error) {
	var out []model.TestSummary
	for _, t := range m.tests {
		if t.FolderID != folderID {
			continue
		}
		out = append(out, model.TestSummary{
			ID:            t.ID,
			Type:          t.Type,
			Title:         t.Title,
			FileID:        t.FileID,
			Archived:      t.Archived,
			Strategy:      t.Strategy,
			QuestionCount: len(t.Questions),
			CreatedAt:     t.CreatedAt,
		})
	}
	return out, nil
}

func (m *memTestRepo) ArchiveActiveByFolder(_ context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, t := range m.tests {
		if t.FolderID == folderID && !t.Archived {
			t.Archived = true
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func (m *memTestRepo) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	t, ok := m.tests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Archived = archived
	return nil
}

type memCache struct {
	data map[string]string
}

var errCacheMiss = errors.New("cache miss")

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = string(value)
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type memAttemptRepo struct {
	attempts map[uuid.UUID]*model.Attempt
}

func (m *memAttemptRepo) Create(_ context.Context, a *model.Attempt) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.attempts[a.ID] = a
	return nil
}

func (m *memAttemptRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, ok := m.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	cp.Answers = append([]any(nil), a.Answers...)
	return &cp, nil
}

func (m *memAttemptRepo) ListByTestAndOwner(_ context.Context, testID, ownerID uuid.UUID) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range m.attempts {
		if a.TestID == testID && a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAttemptRepo) UpdateAnswers(_ context.Context, id uuid.UUID, answers []any) (bool, error) {
	a := m.attempts[id]
	if a.Status != model.AttemptStatusInProgress {
		return false, nil
	}
	a.Answers = answers
	return true, nil
}

func (m *memAttemptRepo) Submit(_ context.Context, id uuid.UUID, score, total int, submittedAt time.Time) (bool, error) {
	a := m.attempts[id]
	if a.Status != model.AttemptStatusInProgress {
		return false, nil
	}
	a.Status = model.AttemptStatusSubmitted
	a.Score = &score
	a.Total = &total
	a.SubmittedAt = &submittedAt
	return true, nil
}

type stubGenerator struct {
	questions []model.Question
	calls     int
	gotKinds  []model.QuestionKind
}

func (g *stubGenerator) Generate(_ context.Context, _ []generator.ChunkInput, kinds []model.QuestionKind) []model.Question {
	g.calls++
	g.gotKinds = kinds
	return g.questions
}

// ─── fixture ────────────────────────────────────────────────────────────────

type fixture struct {
	svc      *TestService
	folders  *memFolderRepo
	docs     *memDocumentRepo
	chunks   *memChunkRepo
	tests    *memTestRepo
	attempts *memAttemptRepo
	ai       *stubGenerator
	cache    *memCache
	user     model.UserCtx
	folderID uuid.UUID
	docIDs   []uuid.UUID
}

// newFixture builds a service over a folder holding two parsed documents
// with a handful of chunks each.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ownerID := uuid.New()
	folderID := uuid.New()

	f := &fixture{
		folders:  &memFolderRepo{folders: map[uuid.UUID]*model.Folder{}},
		docs:     &memDocumentRepo{docs: map[uuid.UUID]*model.Document{}},
		chunks:   &memChunkRepo{byDocument: map[uuid.UUID][]model.Chunk{}},
		tests:    &memTestRepo{tests: map[uuid.UUID]*model.Test{}},
		attempts: &memAttemptRepo{attempts: map[uuid.UUID]*model.Attempt{}},
		ai:       &stubGenerator{},
		cache:    &memCache{data: map[string]string{}},
		user:     model.UserCtx{UserID: ownerID.String(), Roles: []string{model.RoleUser}},
		folderID: folderID,
	}
	f.folders.folders[folderID] = &model.Folder{ID: folderID, OwnerID: ownerID, Name: "Networking"}

	texts := [][]string{
		{
			"HTTP is a stateless protocol for the web.",
			"REST builds on HTTP verbs and resources.",
			"TLS secures the transport layer under HTTP.",
			"CDN nodes cache HTTP responses near users.",
			"JSON is the dominant HTTP payload format.",
			"OAuth2 protects HTTP APIs with tokens.",
		},
		{
			"TCP provides ordered, reliable delivery.",
			"UDP trades reliability for latency.",
			"DNS resolves hostnames before connections open.",
			"Kafka streams records between services.",
			"Redis serves cached values in microseconds.",
			"gRPC multiplexes calls over one connection.",
		},
	}
	for i, docTexts := range texts {
		doc := &model.Document{
			ID:           uuid.New(),
			FolderID:     folderID,
			OwnerID:      ownerID,
			OriginalName: []string{"http-basics.pdf", "transport.docx"}[i],
			Status:       model.DocumentStatusParsed,
		}
		f.docs.docs[doc.ID] = doc
		f.docIDs = append(f.docIDs, doc.ID)

		var chunks []model.Chunk
		for j, text := range docTexts {
			chunks = append(chunks, model.Chunk{
				ID: uuid.New(), DocumentID: doc.ID, Index: j, Text: text,
			})
		}
		f.chunks.byDocument[doc.ID] = chunks
	}

	fake := generator.NewFakeFactory(rand.New(rand.NewSource(7)))
	f.svc = NewTestService(f.folders, f.docs, f.chunks, f.tests, f.attempts, f.ai, fake, f.cache, zerolog.Nop())
	return f
}

func (f *fixture) generate(t *testing.T, req model.GenerateFolderTestsRequest) []uuid.UUID {
	t.Helper()
	ids, err := f.svc.GenerateForFolder(context.Background(), f.user, f.folderID, req)
	require.NoError(t, err)
	return ids
}

// ─── generation ─────────────────────────────────────────────────────────────

func TestGenerateForFolder_TopicPerFilePlusFinal(t *testing.T) {
	f := newFixture(t)

	ids := f.generate(t, model.GenerateFolderTestsRequest{})

	// Two topic tests plus one final.
	require.Len(t, ids, 3)

	var topics, finals int
	for _, id := range ids {
		test := f.tests.tests[id]
		switch test.Type {
		case model.TestTypeTopic:
			topics++
			require.NotNil(t, test.FileID)
			assert.Len(t, test.Questions, defaultTopicCount)
			assert.Contains(t, []string{"http-basics", "transport"}, test.Title)
		case model.TestTypeFinal:
			finals++
			assert.Nil(t, test.FileID)
			assert.Equal(t, "Final – Networking", test.Title)
			// Only 12 chunks exist, so the final is capped by supply.
			assert.Len(t, test.Questions, 12)
		}
		assert.Equal(t, model.StrategyFake, test.Strategy)
		assert.False(t, test.Archived)
		for _, q := range test.Questions {
			assert.NoError(t, q.Validate())
		}
	}
	assert.Equal(t, 2, topics)
	assert.Equal(t, 1, finals)
}

func TestGenerateForFolder_ArchivesPreviousActive(t *testing.T) {
	f := newFixture(t)

	first := f.generate(t, model.GenerateFolderTestsRequest{})
	second := f.generate(t, model.GenerateFolderTestsRequest{})

	for _, id := range first {
		assert.True(t, f.tests.tests[id].Archived)
	}
	for _, id := range second {
		assert.False(t, f.tests.tests[id].Archived)
	}
}

func TestGenerateForFolder_DropsCachedPayloadsOfArchived(t *testing.T) {
	f := newFixture(t)
	first := f.generate(t, model.GenerateFolderTestsRequest{})

	// Populate the payload cache with the soon-to-be-archived test.
	_, err := f.svc.GetTest(context.Background(), f.user, first[0])
	require.NoError(t, err)
	require.Contains(t, f.cache.data, config.CacheKey.TestPayloadKey(first[0].String()))

	f.generate(t, model.GenerateFolderTestsRequest{})

	assert.NotContains(t, f.cache.data, config.CacheKey.TestPayloadKey(first[0].String()))
	view, err := f.svc.GetTest(context.Background(), f.user, first[0])
	require.NoError(t, err)
	assert.True(t, view.Archived)
}

func TestGenerateForFolder_KeepsActiveWhenOptedOut(t *testing.T) {
	f := newFixture(t)
	keep := false

	first := f.generate(t, model.GenerateFolderTestsRequest{})
	f.generate(t, model.GenerateFolderTestsRequest{ArchiveExisting: &keep})

	for _, id := range first {
		assert.False(t, f.tests.tests[id].Archived)
	}
}

func TestGenerateForFolder_EmptyFolderFails(t *testing.T) {
	f := newFixture(t)
	emptyID := uuid.New()
	f.folders.folders[emptyID] = &model.Folder{ID: emptyID, OwnerID: uuid.MustParse(f.user.UserID)}

	_, err := f.svc.GenerateForFolder(context.Background(), f.user, emptyID, model.GenerateFolderTestsRequest{})

	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestGenerateForFolder_StrangerForbidden(t *testing.T) {
	f := newFixture(t)
	stranger := model.UserCtx{UserID: uuid.NewString(), Roles: []string{model.RoleUser}}

	_, err := f.svc.GenerateForFolder(context.Background(), stranger, f.folderID, model.GenerateFolderTestsRequest{})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGenerateForFolder_AIStrategyUsesGenerator(t *testing.T) {
	f := newFixture(t)
	truth := true
	f.ai.questions = []model.Question{
		{Kind: model.KindTF, Text: "TCP is connection oriented.", CorrectBool: &truth,
			Source: &model.QuestionSource{ChunkID: "x"}},
	}
	two := 1

	ids := f.generate(t, model.GenerateFolderTestsRequest{TopicCount: &two, FinalCount: &two, Strategy: "ai"})

	require.Len(t, ids, 3)
	for _, id := range ids {
		test := f.tests.tests[id]
		assert.Equal(t, model.StrategyAI, test.Strategy)
		require.Len(t, test.Questions, 1)
		assert.Equal(t, model.KindTF, test.Questions[0].Kind)
	}
	assert.Equal(t, 3, f.ai.calls)
}

func TestGenerateForFolder_AIEmptyFallsBackToFake(t *testing.T) {
	f := newFixture(t)
	// stubGenerator returns nil questions.

	ids := f.generate(t, model.GenerateFolderTestsRequest{Strategy: "ai"})

	require.Len(t, ids, 3)
	for _, id := range ids {
		test := f.tests.tests[id]
		assert.Equal(t, model.StrategyAI, test.Strategy)
		assert.NotEmpty(t, test.Questions)
	}
	assert.Equal(t, 3, f.ai.calls)
}

func TestGenerateForFolder_MixReachesGenerator(t *testing.T) {
	f := newFixture(t)
	four := 4

	f.generate(t, model.GenerateFolderTestsRequest{
		TopicCount: &four,
		FinalCount: &four,
		Strategy:   "ai",
		Mix:        map[string]float64{"tf": 1},
	})

	require.NotEmpty(t, f.ai.gotKinds)
	for _, k := range f.ai.gotKinds {
		assert.Equal(t, model.KindTF, k)
	}
	assert.Len(t, f.ai.gotKinds, 4)
}

// ─── reading tests ──────────────────────────────────────────────────────────

func TestGetTest_RedactsAnswerKey(t *testing.T) {
	f := newFixture(t)
	ids := f.generate(t, model.GenerateFolderTestsRequest{})

	view, err := f.svc.GetTest(context.Background(), f.user, ids[0])
	require.NoError(t, err)

	assert.Equal(t, len(view.Questions), view.QuestionCount)
	for _, q := range view.Questions {
		assert.Nil(t, q.CorrectIndices)
		assert.Nil(t, q.CorrectBool)
		assert.Nil(t, q.ClozeAnswers)
		assert.Nil(t, q.AcceptableAnswers)
	}
}

func TestListTestsForFolder_FiltersArchived(t *testing.T) {
	f := newFixture(t)
	f.generate(t, model.GenerateFolderTestsRequest{})
	f.generate(t, model.GenerateFolderTestsRequest{}) // archives the first batch

	active, err := f.svc.ListTestsForFolder(context.Background(), f.user, f.folderID, false)
	require.NoError(t, err)
	all, err := f.svc.ListTestsForFolder(context.Background(), f.user, f.folderID, true)
	require.NoError(t, err)

	assert.Len(t, active, 3)
	assert.Len(t, all, 6)
}

func TestListTestsForFolder_CachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ids := f.generate(t, model.GenerateFolderTestsRequest{})

	all, err := f.svc.ListTestsForFolder(context.Background(), f.user, f.folderID, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Contains(t, f.cache.data, config.CacheKey.FolderTestsKey(f.folderID.String()))

	// Mutating storage behind the cache's back is not visible...
	f.tests.tests[ids[0]].Title = "renamed behind the cache"
	all, err = f.svc.ListTestsForFolder(context.Background(), f.user, f.folderID, true)
	require.NoError(t, err)
	for _, s := range all {
		assert.NotEqual(t, "renamed behind the cache", s.Title)
	}

	// ...until a test mutation invalidates the listing.
	require.NoError(t, f.svc.SetArchived(context.Background(), f.user, ids[1], true))
	all, err = f.svc.ListTestsForFolder(context.Background(), f.user, f.folderID, true)
	require.NoError(t, err)
	titles := make([]string, 0, len(all))
	for _, s := range all {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "renamed behind the cache")
}

func TestSetArchived_Flips(t *testing.T) {
	f := newFixture(t)
	ids := f.generate(t, model.GenerateFolderTestsRequest{})

	require.NoError(t, f.svc.SetArchived(context.Background(), f.user, ids[0], true))
	assert.True(t, f.tests.tests[ids[0]].Archived)

	require.NoError(t, f.svc.SetArchived(context.Background(), f.user, ids[0], false))
	assert.False(t, f.tests.tests[ids[0]].Archived)
}

// ─── attempts ───────────────────────────────────────────────────────────────

func startAttempt(t *testing.T, f *fixture) (*model.Attempt, *model.Test) {
	t.Helper()
	ids := f.generate(t, model.GenerateFolderTestsRequest{})
	att, err := f.svc.CreateAttempt(context.Background(), f.user, ids[0])
	require.NoError(t, err)
	return att, f.tests.tests[ids[0]]
}

func TestCreateAttempt_SlotsMatchQuestions(t *testing.T) {
	f := newFixture(t)

	att, test := startAttempt(t, f)

	assert.Equal(t, model.AttemptStatusInProgress, att.Status)
	assert.Len(t, att.Answers, len(test.Questions))
	for _, a := range att.Answers {
		assert.Nil(t, a)
	}
}

func TestCreateAttempt_ArchivedTestRejected(t *testing.T) {
	f := newFixture(t)
	ids := f.generate(t, model.GenerateFolderTestsRequest{})
	require.NoError(t, f.svc.SetArchived(context.Background(), f.user, ids[0], true))

	_, err := f.svc.CreateAttempt(context.Background(), f.user, ids[0])

	assert.ErrorIs(t, err, ErrTestArchived)
}

func TestUpdateAnswers_ResolvesAliases(t *testing.T) {
	f := newFixture(t)
	att, _ := startAttempt(t, f)

	q0, q1 := 0, 1
	letter := "C"
	bad := 99
	require.NoError(t, f.svc.UpdateAnswers(context.Background(), f.user, att.ID, model.UpdateAnswersRequest{
		Answers: []model.AnswerUpdate{
			{Q: &q0, Option: &letter},
			{Q: &q1, Value: []int{0, 2}},
			{Q: &bad, Value: 1}, // out of range, silently skipped
		},
	}))

	stored := f.attempts.attempts[att.ID]
	assert.Equal(t, 2, stored.Answers[0])
	assert.Equal(t, []int{0, 2}, stored.Answers[1])
}

func TestUpdateAnswers_AfterSubmitConflicts(t *testing.T) {
	f := newFixture(t)
	att, _ := startAttempt(t, f)
	_, err := f.svc.SubmitAttempt(context.Background(), f.user, att.ID)
	require.NoError(t, err)

	q0 := 0
	err = f.svc.UpdateAnswers(context.Background(), f.user, att.ID, model.UpdateAnswersRequest{
		Answers: []model.AnswerUpdate{{Q: &q0, Value: 1}},
	})

	assert.ErrorIs(t, err, ErrAttemptSubmitted)
}

// staleAttemptRepo reports every attempt as still in progress, standing in
// for a reader that raced a concurrent submission.
type staleAttemptRepo struct {
	*memAttemptRepo
}

func (r *staleAttemptRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, err := r.memAttemptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = model.AttemptStatusInProgress
	return a, nil
}

func TestUpdateAnswers_RacingSubmitConflicts(t *testing.T) {
	f := newFixture(t)
	att, _ := startAttempt(t, f)
	_, err := f.svc.SubmitAttempt(context.Background(), f.user, att.ID)
	require.NoError(t, err)
	frozen := append([]any(nil), f.attempts.attempts[att.ID].Answers...)

	fake := generator.NewFakeFactory(rand.New(rand.NewSource(7)))
	stale := &staleAttemptRepo{memAttemptRepo: f.attempts}
	svc := NewTestService(f.folders, f.docs, f.chunks, f.tests, stale, f.ai, fake, f.cache, zerolog.Nop())

	q0 := 0
	err = svc.UpdateAnswers(context.Background(), f.user, att.ID, model.UpdateAnswersRequest{
		Answers: []model.AnswerUpdate{{Q: &q0, Value: 99}},
	})

	assert.ErrorIs(t, err, ErrAttemptSubmitted)
	assert.Equal(t, frozen, f.attempts.attempts[att.ID].Answers)
}

func TestSubmitAttempt_ScoresAndFreezes(t *testing.T) {
	f := newFixture(t)
	att, test := startAttempt(t, f)

	// Answer every question correctly from the stored key.
	var updates []model.AnswerUpdate
	for i, q := range test.Questions {
		idx := i
		updates = append(updates, model.AnswerUpdate{Q: &idx, Value: canonicalAnswer(q)})
	}
	require.NoError(t, f.svc.UpdateAnswers(context.Background(), f.user, att.ID, model.UpdateAnswersRequest{Answers: updates}))

	result, err := f.svc.SubmitAttempt(context.Background(), f.user, att.ID)
	require.NoError(t, err)

	assert.Equal(t, model.AttemptStatusSubmitted, result.Status)
	require.NotNil(t, result.Score)
	require.NotNil(t, result.Total)
	assert.Equal(t, len(test.Questions), *result.Total)
	assert.Equal(t, *result.Total, *result.Score)
	assert.NotNil(t, result.SubmittedAt)
}

func TestSubmitAttempt_TwiceConflicts(t *testing.T) {
	f := newFixture(t)
	att, _ := startAttempt(t, f)

	_, err := f.svc.SubmitAttempt(context.Background(), f.user, att.ID)
	require.NoError(t, err)
	_, err = f.svc.SubmitAttempt(context.Background(), f.user, att.ID)

	assert.ErrorIs(t, err, ErrAttemptSubmitted)
}

func TestGetAttempt_StrangerForbidden(t *testing.T) {
	f := newFixture(t)
	att, _ := startAttempt(t, f)
	stranger := model.UserCtx{UserID: uuid.NewString(), Roles: []string{model.RoleUser}}

	_, err := f.svc.GetAttempt(context.Background(), stranger, att.ID)

	assert.ErrorIs(t, err, ErrForbidden)
}

// canonicalAnswer derives the full-credit answer for a question.
func canonicalAnswer(q model.Question) any {
	switch q.Kind {
	case model.KindMCQ:
		return q.CorrectIndices[0]
	case model.KindMSQ:
		return q.CorrectIndices
	case model.KindTF:
		return *q.CorrectBool
	case model.KindCloze:
		return q.ClozeAnswers
	case model.KindShort:
		return q.AcceptableAnswers[0]
	case model.KindMatch:
		identity := make([]int, len(q.MatchLeft))
		for i := range identity {
			identity[i] = i
		}
		return identity
	default:
		identity := make([]int, len(q.OrderItems))
		for i := range identity {
			identity[i] = i
		}
		return identity
	}
}

// ─── helpers ────────────────────────────────────────────────────────────────

func TestExpandMix_DefaultSumsToCount(t *testing.T) {
	kinds := expandMix(10, nil)

	assert.Len(t, kinds, 10)
	counts := map[model.QuestionKind]int{}
	for _, k := range kinds {
		counts[k]++
	}
	// The default mix is dominated by multiple choice.
	assert.Equal(t, 4, counts[model.KindMCQ])
	assert.Equal(t, 2, counts[model.KindMSQ])
}

func TestPickDiverse_InterleavesFiles(t *testing.T) {
	var items []generator.ChunkInput
	for i := 0; i < 6; i++ {
		items = append(items, generator.ChunkInput{FileID: "a", Text: "a"})
	}
	items = append(items, generator.ChunkInput{FileID: "b", Text: "b"})

	picked := pickDiverse(items, 4)

	require.Len(t, picked, 4)
	files := map[string]int{}
	for _, p := range picked {
		files[p.FileID]++
	}
	assert.Equal(t, 1, files["b"])
	assert.Equal(t, 3, files["a"])
}
