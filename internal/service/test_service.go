package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/studyvault/studyvault-backend/internal/config"
	"github.com/studyvault/studyvault-backend/internal/generator"
	"github.com/studyvault/studyvault-backend/internal/model"
	"github.com/studyvault/studyvault-backend/internal/scoring"
)

// Test and attempt domain errors.
var (
	ErrNoDocuments      = errors.New("folder has no documents")
	ErrNothingGenerated = errors.New("no questions could be generated from chunks")
	ErrTestArchived     = errors.New("test is archived")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
)

const (
	defaultTopicCount = 5
	defaultFinalCount = 20

	// Upper bound on chunks handed to the model in one request.
	maxPromptChunks = 24

	testPayloadTTL = time.Hour
	folderListTTL  = 10 * time.Minute
)

// defaultMix is the question-kind distribution used when a generation
// request does not specify one. Weighted towards multiple choice.
var defaultMix = map[string]float64{
	"mcq": 40, "msq": 20, "tf": 10, "cloze": 10, "short": 10, "match": 5, "order": 5,
}

// TestRepo is the test persistence surface TestService needs.
type TestRepo interface {
	Create(ctx context.Context, t *model.Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.TestSummary, error)
	ArchiveActiveByFolder(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
}

// AttemptRepo is the attempt persistence surface TestService needs.
type AttemptRepo interface {
	Create(ctx context.Context, a *model.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	ListByTestAndOwner(ctx context.Context, testID, ownerID uuid.UUID) ([]model.Attempt, error)
	UpdateAnswers(ctx context.Context, id uuid.UUID, answers []any) (bool, error)
	Submit(ctx context.Context, id uuid.UUID, score, total int, submittedAt time.Time) (bool, error)
}

// QuestionGenerator is the structured-output generation surface. An empty
// result means the caller should fall back to the synthetic factory.
type QuestionGenerator interface {
	Generate(ctx context.Context, chunks []generator.ChunkInput, kinds []model.QuestionKind) []model.Question
}

// TestService orchestrates test generation, delivery and attempts.
type TestService struct {
	folders  FolderRepo
	docs     DocumentRepo
	chunks   ChunkRepo
	tests    TestRepo
	attempts AttemptRepo
	ai       QuestionGenerator
	fake     *generator.FakeFactory
	cache    Cache
	log      zerolog.Logger
}

// NewTestService creates a new TestService. cache may be nil, disabling the
// payload and listing caches; ai may be nil, forcing the synthetic strategy.
func NewTestService(
	folders FolderRepo,
	docs DocumentRepo,
	chunks ChunkRepo,
	tests TestRepo,
	attempts AttemptRepo,
	ai QuestionGenerator,
	fake *generator.FakeFactory,
	cache Cache,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		folders:  folders,
		docs:     docs,
		chunks:   chunks,
		tests:    tests,
		attempts: attempts,
		ai:       ai,
		fake:     fake,
		cache:    cache,
		log:      log.With().Str("component", "test_service").Logger(),
	}
}

// GenerateForFolder builds one topic test per document plus a folder-wide
// final test. Active tests are archived first unless the request opts out.
// Documents yielding zero questions are skipped; the call fails only when
// nothing at all could be generated.
func (s *TestService) GenerateForFolder(ctx context.Context, user model.UserCtx, folderID uuid.UUID, req model.GenerateFolderTestsRequest) ([]uuid.UUID, error) {
	folder, err := s.ownedFolder(ctx, user, folderID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	topicCount := defaultTopicCount
	if req.TopicCount != nil {
		topicCount = *req.TopicCount
	}
	finalCount := defaultFinalCount
	if req.FinalCount != nil {
		finalCount = *req.FinalCount
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = "fake"
	}

	if req.ArchiveExisting == nil || *req.ArchiveExisting {
		archivedIDs, err := s.tests.ArchiveActiveByFolder(ctx, folderID)
		if err != nil {
			return nil, err
		}
		if len(archivedIDs) > 0 {
			s.dropCachedPayloads(ctx, archivedIDs)
			s.log.Info().Int("count", len(archivedIDs)).Str("folder_id", folderID.String()).Msg("Archived previous tests")
		}
	}

	var createdIDs []uuid.UUID

	// One topic test per document.
	for _, doc := range docs {
		sample, err := s.chunks.SampleForFolder(ctx, folderID, []uuid.UUID{doc.ID}, 2*topicCount)
		if err != nil {
			return nil, err
		}
		qs := s.buildQuestions(ctx, sample, topicCount, strategy, req.Mix)
		if len(qs) == 0 {
			continue
		}

		test := &model.Test{
			OwnerID:   folder.OwnerID,
			FolderID:  folderID,
			FileID:    &doc.ID,
			Type:      model.TestTypeTopic,
			Title:     topicTitle(doc.OriginalName),
			Strategy:  strategyLabel(strategy),
			Questions: qs,
		}
		if err := s.tests.Create(ctx, test); err != nil {
			return nil, err
		}
		createdIDs = append(createdIDs, test.ID)
	}

	// One final test spanning every document.
	sample, err := s.chunks.SampleForFolder(ctx, folderID, nil, 2*finalCount)
	if err != nil {
		return nil, err
	}
	if qs := s.buildQuestions(ctx, sample, finalCount, strategy, req.Mix); len(qs) > 0 {
		test := &model.Test{
			OwnerID:   folder.OwnerID,
			FolderID:  folderID,
			Type:      model.TestTypeFinal,
			Title:     "Final – " + folder.Name,
			Strategy:  strategyLabel(strategy),
			Questions: qs,
		}
		if err := s.tests.Create(ctx, test); err != nil {
			return nil, err
		}
		createdIDs = append(createdIDs, test.ID)
	}

	if len(createdIDs) == 0 {
		return nil, ErrNothingGenerated
	}

	s.invalidateFolder(ctx, folderID)
	s.log.Info().
		Int("tests", len(createdIDs)).
		Str("folder_id", folderID.String()).
		Str("strategy", strategy).
		Msg("Tests generated")
	return createdIDs, nil
}

// buildQuestions produces up to count questions from the sampled chunks,
// via the model when requested and falling back to the synthetic factory.
func (s *TestService) buildQuestions(ctx context.Context, sample []model.Chunk, count int, strategy string, mix map[string]float64) []model.Question {
	if len(sample) == 0 || count <= 0 {
		return nil
	}

	inputs := make([]generator.ChunkInput, len(sample))
	for i, c := range sample {
		inputs[i] = generator.ChunkInput{
			ChunkID: c.ID.String(),
			FileID:  c.DocumentID.String(),
			Text:    c.Text,
		}
	}

	if strategy == "ai" && s.ai != nil {
		picked := pickDiverse(inputs, min(2*count, maxPromptChunks))
		if qs := s.ai.Generate(ctx, picked, expandMix(count, mix)); len(qs) > 0 {
			if len(qs) > count {
				qs = qs[:count]
			}
			return qs
		}
		s.log.Warn().Msg("AI generation produced nothing, falling back to synthetic questions")
	}

	if len(inputs) > count {
		inputs = inputs[:count]
	}
	return s.fake.MakeBatch(inputs, "")
}

// GetTest returns the redacted view of a test, served from Redis when
// cached.
func (s *TestService) GetTest(ctx context.Context, user model.UserCtx, testID uuid.UUID) (*model.TestView, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, config.CacheKey.TestPayloadKey(testID.String())); err == nil {
			view := &model.TestView{}
			if err := json.Unmarshal([]byte(raw), view); err == nil {
				// Cache stores no owner, so the folder check still runs.
				if _, err := s.ownedFolder(ctx, user, view.FolderID); err != nil {
					return nil, err
				}
				return view, nil
			}
		}
	}

	test, err := s.ownedTest(ctx, user, testID)
	if err != nil {
		return nil, err
	}

	view := &model.TestView{
		ID:            test.ID,
		FolderID:      test.FolderID,
		FileID:        test.FileID,
		Type:          test.Type,
		Title:         test.Title,
		Archived:      test.Archived,
		QuestionCount: len(test.Questions),
		Questions:     model.RedactQuestions(test.Questions),
		CreatedAt:     test.CreatedAt,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, config.CacheKey.TestPayloadKey(testID.String()), raw, testPayloadTTL); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache test payload")
			}
		}
	}
	return view, nil
}

// ListTestsForFolder returns the folder's test summaries, optionally
// filtering out archived ones. The unfiltered listing is cached and
// invalidated whenever the folder's tests change.
func (s *TestService) ListTestsForFolder(ctx context.Context, user model.UserCtx, folderID uuid.UUID, includeArchived bool) ([]model.TestSummary, error) {
	if _, err := s.ownedFolder(ctx, user, folderID); err != nil {
		return nil, err
	}
	summaries, err := s.cachedSummaries(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return summaries, nil
	}
	active := summaries[:0]
	for _, t := range summaries {
		if !t.Archived {
			active = append(active, t)
		}
	}
	return active, nil
}

// SetArchived flips a test's archived flag and drops its cached payload.
func (s *TestService) SetArchived(ctx context.Context, user model.UserCtx, testID uuid.UUID, archived bool) error {
	test, err := s.ownedTest(ctx, user, testID)
	if err != nil {
		return err
	}
	if err := s.tests.SetArchived(ctx, testID, archived); err != nil {
		return err
	}
	s.dropCachedPayloads(ctx, []uuid.UUID{testID})
	s.invalidateFolder(ctx, test.FolderID)
	return nil
}

// CreateAttempt opens a new in-progress attempt with one nil answer slot
// per question. Archived tests cannot be attempted.
func (s *TestService) CreateAttempt(ctx context.Context, user model.UserCtx, testID uuid.UUID) (*model.Attempt, error) {
	test, err := s.ownedTest(ctx, user, testID)
	if err != nil {
		return nil, err
	}
	if test.Archived {
		return nil, ErrTestArchived
	}

	ownerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return nil, ErrForbidden
	}

	attempt := &model.Attempt{
		OwnerID: ownerID,
		TestID:  testID,
		Status:  model.AttemptStatusInProgress,
		Answers: make([]any, len(test.Questions)),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// UpdateAnswers applies incremental answer updates to an in-progress
// attempt. Slots outside the question range are ignored, matching how
// clients retry stale updates.
func (s *TestService) UpdateAnswers(ctx context.Context, user model.UserCtx, attemptID uuid.UUID, req model.UpdateAnswersRequest) error {
	attempt, err := s.ownedAttempt(ctx, user, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return ErrAttemptSubmitted
	}

	for _, u := range req.Answers {
		if u.Q == nil {
			continue
		}
		i := *u.Q
		if i < 0 || i >= len(attempt.Answers) {
			continue
		}
		attempt.Answers[i] = u.Resolve()
	}
	ok, err := s.attempts.UpdateAnswers(ctx, attemptID, attempt.Answers)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race with a submission after the status check above.
		return ErrAttemptSubmitted
	}
	return nil
}

// SubmitAttempt scores and freezes an attempt. A second submission, even a
// racing one, is rejected.
func (s *TestService) SubmitAttempt(ctx context.Context, user model.UserCtx, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.ownedAttempt(ctx, user, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAttemptSubmitted
	}

	test, err := s.tests.GetByID(ctx, attempt.TestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	score := scoring.ScoreAll(test.Questions, attempt.Answers)
	total := len(test.Questions)
	now := time.Now()
	ok, err := s.attempts.Submit(ctx, attemptID, score, total, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAttemptSubmitted
	}

	attempt.Status = model.AttemptStatusSubmitted
	attempt.Score = &score
	attempt.Total = &total
	attempt.SubmittedAt = &now
	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int("score", score).
		Int("total", total).
		Msg("Attempt submitted")
	return attempt, nil
}

// GetAttempt returns an attempt after an ownership check.
func (s *TestService) GetAttempt(ctx context.Context, user model.UserCtx, attemptID uuid.UUID) (*model.Attempt, error) {
	return s.ownedAttempt(ctx, user, attemptID)
}

// ListAttempts returns the caller's attempts against a test, newest first.
func (s *TestService) ListAttempts(ctx context.Context, user model.UserCtx, testID uuid.UUID) ([]model.Attempt, error) {
	if _, err := s.ownedTest(ctx, user, testID); err != nil {
		return nil, err
	}
	ownerID, err := uuid.Parse(user.UserID)
	if err != nil {
		return nil, ErrForbidden
	}
	return s.attempts.ListByTestAndOwner(ctx, testID, ownerID)
}

// ─── helpers ────────────────────────────────────────────────────────────────

func (s *TestService) ownedFolder(ctx context.Context, user model.UserCtx, folderID uuid.UUID) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if folder.OwnerID.String() != user.UserID && !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return folder, nil
}

func (s *TestService) ownedTest(ctx context.Context, user model.UserCtx, testID uuid.UUID) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.ownedFolder(ctx, user, test.FolderID); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) ownedAttempt(ctx context.Context, user model.UserCtx, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if attempt.OwnerID.String() != user.UserID && !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return attempt, nil
}

// cachedSummaries serves the folder's full test listing from cache,
// falling back to the repository and repopulating on a miss.
func (s *TestService) cachedSummaries(ctx context.Context, folderID uuid.UUID) ([]model.TestSummary, error) {
	key := config.CacheKey.FolderTestsKey(folderID.String())
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var summaries []model.TestSummary
			if err := json.Unmarshal([]byte(raw), &summaries); err == nil {
				return summaries, nil
			}
		}
	}

	summaries, err := s.tests.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, key, raw, folderListTTL); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache folder listing")
			}
		}
	}
	return summaries, nil
}

func (s *TestService) invalidateFolder(ctx context.Context, folderID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, config.CacheKey.FolderTestsKey(folderID.String())); err != nil {
		s.log.Warn().Err(err).Msg("Failed to drop cached folder listing")
	}
}

// dropCachedPayloads removes the cached redacted views of the given tests.
func (s *TestService) dropCachedPayloads(ctx context.Context, ids []uuid.UUID) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = config.CacheKey.TestPayloadKey(id.String())
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to drop cached test payloads")
	}
}

func strategyLabel(strategy string) string {
	if strategy == "ai" {
		return model.StrategyAI
	}
	return model.StrategyFake
}

func topicTitle(originalName string) string {
	title := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	if title == "" {
		return "Topic"
	}
	return title
}

// expandMix turns a weight map into a per-slot kind list of length count
// using largest-remainder apportionment, so the requested distribution holds
// exactly.
func expandMix(count int, mix map[string]float64) []model.QuestionKind {
	weights := mix
	total := 0.0
	for _, v := range weights {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		weights = defaultMix
		total = 0
		for _, v := range weights {
			total += v
		}
	}

	type share struct {
		kind      model.QuestionKind
		whole     int
		remainder float64
	}
	var shares []share
	assigned := 0
	for _, k := range model.AllQuestionKinds {
		w := weights[string(k)]
		if w <= 0 {
			continue
		}
		exact := float64(count) * w / total
		whole := int(math.Floor(exact))
		shares = append(shares, share{kind: k, whole: whole, remainder: exact - float64(whole)})
		assigned += whole
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].remainder > shares[j].remainder })
	for i := 0; assigned < count && len(shares) > 0; i = (i + 1) % len(shares) {
		shares[i].whole++
		assigned++
	}

	kinds := make([]model.QuestionKind, 0, count)
	for _, sh := range shares {
		for range sh.whole {
			kinds = append(kinds, sh.kind)
		}
	}
	return kinds
}

// pickDiverse interleaves chunks round-robin by source file so one large
// document cannot monopolize the prompt.
func pickDiverse(items []generator.ChunkInput, k int) []generator.ChunkInput {
	if len(items) <= k {
		return items
	}
	byFile := make(map[string][]generator.ChunkInput)
	var order []string
	for _, it := range items {
		if _, seen := byFile[it.FileID]; !seen {
			order = append(order, it.FileID)
		}
		byFile[it.FileID] = append(byFile[it.FileID], it)
	}

	out := make([]generator.ChunkInput, 0, k)
	for len(out) < k {
		added := false
		for _, f := range order {
			arr := byFile[f]
			if len(arr) == 0 {
				continue
			}
			out = append(out, arr[0])
			byFile[f] = arr[1:]
			added = true
			if len(out) == k {
				break
			}
		}
		if !added {
			break
		}
	}
	return out
}
