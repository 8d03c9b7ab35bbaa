package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/entity"
	"github.com/xGihyun/mmu-tabulation-backend/internal/domain/repository"
	apperrors "github.com/xGihyun/mmu-tabulation-backend/internal/pkg/errors"
	"github.com/xGihyun/mmu-tabulation-backend/internal/service/scoresheet"
	"github.com/xGihyun/mmu-tabulation-backend/pkg/metrics"
)

// ============================================================================
// Мок для ScoreStore
// ============================================================================

// MockScoreStore реализует repository.ScoreStore; ReadSnapshot передает в fn сам мок
type MockScoreStore struct {
	mock.Mock
}

func (m *MockScoreStore) ReadSnapshot(ctx context.Context, fn func(reader repository.ScoreReader) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockScoreStore) GetEvent(ctx context.Context, eventID uuid.UUID) (*entity.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *MockScoreStore) ListEvents(ctx context.Context) ([]entity.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Event), args.Error(1)
}

func (m *MockScoreStore) ListCategories(ctx context.Context, eventID uuid.UUID) ([]entity.Category, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockScoreStore) ListCriteria(ctx context.Context, categoryID uuid.UUID) ([]entity.Criterion, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Criterion), args.Error(1)
}

func (m *MockScoreStore) ListJudges(ctx context.Context, eventID uuid.UUID, activeOnly bool) ([]entity.Judge, error) {
	args := m.Called(ctx, eventID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Judge), args.Error(1)
}

func (m *MockScoreStore) ListCandidates(ctx context.Context) ([]entity.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Candidate), args.Error(1)
}

func (m *MockScoreStore) SumScoresByCandidateCategory(ctx context.Context, eventID uuid.UUID) ([]entity.CandidateCategoryTotal, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CandidateCategoryTotal), args.Error(1)
}

func (m *MockScoreStore) ListScores(ctx context.Context, candidateID, categoryID, judgeID uuid.UUID) ([]entity.Score, error) {
	args := m.Called(ctx, candidateID, categoryID, judgeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Score), args.Error(1)
}

func (m *MockScoreStore) ListFlatScores(ctx context.Context, categoryID, criterionID uuid.UUID) ([]entity.FlatScore, error) {
	args := m.Called(ctx, categoryID, criterionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FlatScore), args.Error(1)
}

var _ repository.ScoreStore = (*MockScoreStore)(nil)

func newTestService(store *MockScoreStore) (*TabulationService, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewTabulationService(store, metrics.NewRecorder(registry), "Scores"), registry
}

func floatPtr(v float64) *float64 { return &v }

func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }

func total(candidateID, categoryID uuid.UUID, weight float64, score, max int64) entity.CandidateCategoryTotal {
	return entity.CandidateCategoryTotal{
		CandidateID:     candidateID,
		FirstName:       "Maria",
		LastName:        "Cruz",
		ScoreCategoryID: categoryID,
		CategoryID:      uuidPtr(categoryID),
		Weight:          floatPtr(weight),
		TotalScore:      score,
		TotalMax:        max,
		WeightedScore:   floatPtr(float64(score) * weight),
		WeightedMax:     floatPtr(float64(max) * weight),
	}
}

// observedCount возвращает число наблюдений гистограммы длительности с заданными labels
func observedCount(t *testing.T, registry *prometheus.Registry, operation, status string) uint64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "tabulation_operation_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["operation"] == operation && labels["status"] == status {
				return metric.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

// ============================================================================
// ComputeFinalScores
// ============================================================================

func TestComputeFinalScores_Success(t *testing.T) {
	// Arrange
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	eventID := uuid.New()
	candidate := uuid.New()
	catA, catB := uuid.New(), uuid.New()

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID, Name: "Pageant"}, nil)
	store.On("SumScoresByCandidateCategory", mock.Anything, eventID).Return([]entity.CandidateCategoryTotal{
		total(candidate, catA, 0.6, 80, 100),
		total(candidate, catB, 0.4, 90, 100),
	}, nil)

	// Act
	results, err := svc.ComputeFinalScores(context.Background(), eventID)

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cruz, Maria", results[0].DisplayName)
	assert.InDelta(t, 84.0, results[0].FinalScore, 1e-9)
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationFinalScores, metrics.StatusOK))
	store.AssertExpectations(t)
}

func TestComputeFinalScores_EventNotFound(t *testing.T) {
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	eventID := uuid.New()

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(nil, apperrors.ErrNotFound)

	results, err := svc.ComputeFinalScores(context.Background(), eventID)

	assert.Nil(t, results)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationFinalScores, metrics.StatusNotFound))
	store.AssertNotCalled(t, "SumScoresByCandidateCategory", mock.Anything, mock.Anything)
}

func TestComputeFinalScores_RetrievalFailureNamesCall(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	eventID := uuid.New()
	dbErr := errors.New("connection reset")

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("SumScoresByCandidateCategory", mock.Anything, eventID).Return(nil, dbErr)

	_, err := svc.ComputeFinalScores(context.Background(), eventID)

	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "sum scores by candidate category")
}

func TestComputeFinalScores_RejectsWholeEventOnIntegrityFailure(t *testing.T) {
	// Arrange: один кандидат корректен, у второго M == 0
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	eventID := uuid.New()

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("SumScoresByCandidateCategory", mock.Anything, eventID).Return([]entity.CandidateCategoryTotal{
		total(uuid.New(), uuid.New(), 1, 8, 10),
		total(uuid.New(), uuid.New(), 1, 0, 0),
	}, nil)

	// Act
	results, err := svc.ComputeFinalScores(context.Background(), eventID)

	// Assert
	assert.Nil(t, results)
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
	var aggErr *scoresheet.AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Len(t, aggErr.Failures, 1)
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationFinalScores, metrics.StatusIntegrityError))
}

func TestComputeFinalScores_SnapshotBeginFailure(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)

	store.On("ReadSnapshot", mock.Anything).Return(errors.New("could not begin transaction"))

	_, err := svc.ComputeFinalScores(context.Background(), uuid.New())

	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Contains(t, err.Error(), "read snapshot")
}

// ============================================================================
// RenderReportGrid
// ============================================================================

func TestRenderReportGrid_SumsPerJudgeAndPartitionsByGender(t *testing.T) {
	// Arrange
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	eventID := uuid.New()
	category := entity.Category{ID: uuid.New(), Name: "Swimwear", Weight: 0.5, EventID: eventID}
	judgeA := entity.Judge{ID: uuid.New(), Name: "Judge A"}
	judgeB := entity.Judge{ID: uuid.New(), Name: "Judge B"}
	female := entity.Candidate{ID: uuid.New(), FirstName: "Maria", LastName: "Clara", CandidateNumber: 1, Gender: entity.GenderFemale}
	maleTwo := entity.Candidate{ID: uuid.New(), FirstName: "Jose", LastName: "Rizal", CandidateNumber: 4, Gender: entity.GenderMale}
	maleOne := entity.Candidate{ID: uuid.New(), FirstName: "Juan", LastName: "Luna", CandidateNumber: 2, Gender: entity.GenderMale}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("ListCategories", mock.Anything, eventID).Return([]entity.Category{category}, nil)
	store.On("ListJudges", mock.Anything, eventID, true).Return([]entity.Judge{judgeA, judgeB}, nil)
	store.On("ListCandidates", mock.Anything).Return([]entity.Candidate{female, maleTwo, maleOne}, nil)

	scores := map[uuid.UUID][2][]int{
		maleOne.ID: {{5, 4}, {3}},
		maleTwo.ID: {{10}, {8, 2}},
		female.ID:  {{}, {7}},
	}
	for candidateID, perJudge := range scores {
		for i, judge := range []entity.Judge{judgeA, judgeB} {
			rows := make([]entity.Score, 0, len(perJudge[i]))
			for _, v := range perJudge[i] {
				rows = append(rows, entity.Score{Score: v, Max: 10})
			}
			store.On("ListScores", mock.Anything, candidateID, category.ID, judge.ID).Return(rows, nil)
		}
	}

	// Act
	buf, err := svc.RenderReportGrid(context.Background(), eventID)

	// Assert
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	require.NoError(t, err)
	defer f.Close()

	expected := map[string]string{
		"A1": "Swimwear",
		"C2": "Judge A",
		"D2": "Judge B",
		"F2": "50%",
		"A3": "MALE",
		"B4": "Luna, Juan",
		"C4": "9",
		"D4": "3",
		"E4": "6.00",
		"F4": "3.00",
		"B5": "Rizal, Jose",
		"E5": "10.00",
		"A6": "FEMALE",
		"B7": "Clara, Maria",
		"C7": "0",
		"D7": "7",
		"E7": "3.50",
	}
	for cell, want := range expected {
		got, err := f.GetCellValue("Scores", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationReportGrid, metrics.StatusOK))
	store.AssertExpectations(t)
}

func TestRenderReportGrid_AbortsOnScoreFailure(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	eventID := uuid.New()
	category := entity.Category{ID: uuid.New(), Name: "Talent", Weight: 1}
	judge := entity.Judge{ID: uuid.New(), Name: "Judge A"}
	candidate := entity.Candidate{ID: uuid.New(), FirstName: "Juan", LastName: "Luna", Gender: entity.GenderMale}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("ListCategories", mock.Anything, eventID).Return([]entity.Category{category}, nil)
	store.On("ListJudges", mock.Anything, eventID, true).Return([]entity.Judge{judge}, nil)
	store.On("ListCandidates", mock.Anything).Return([]entity.Candidate{candidate}, nil)
	store.On("ListScores", mock.Anything, candidate.ID, category.ID, judge.ID).Return(nil, errors.New("timeout"))

	buf, err := svc.RenderReportGrid(context.Background(), eventID)

	assert.Nil(t, buf)
	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Contains(t, err.Error(), "list scores")
}

func TestRenderReportGrid_RejectsScoreOutOfRange(t *testing.T) {
	// Arrange: оценка больше максимума
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	eventID := uuid.New()
	category := entity.Category{ID: uuid.New(), Name: "Talent", Weight: 1}
	judge := entity.Judge{ID: uuid.New(), Name: "Judge A"}
	candidate := entity.Candidate{ID: uuid.New(), FirstName: "Juan", LastName: "Luna", Gender: entity.GenderMale}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("ListCategories", mock.Anything, eventID).Return([]entity.Category{category}, nil)
	store.On("ListJudges", mock.Anything, eventID, true).Return([]entity.Judge{judge}, nil)
	store.On("ListCandidates", mock.Anything).Return([]entity.Candidate{candidate}, nil)
	store.On("ListScores", mock.Anything, candidate.ID, category.ID, judge.ID).Return([]entity.Score{
		{ID: uuid.New(), Score: 8, Max: 10},
		{ID: uuid.New(), Score: 12, Max: 10},
	}, nil)

	// Act
	buf, err := svc.RenderReportGrid(context.Background(), eventID)

	// Assert
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
	assert.Contains(t, err.Error(), "out of range")
	assert.Contains(t, err.Error(), candidate.ID.String())
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationReportGrid, metrics.StatusIntegrityError))
}

func TestRenderReportGrid_RejectsExcludedJudgeAmongActive(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	eventID := uuid.New()
	excluded := entity.Judge{ID: uuid.New(), Name: "Judge X", ScoreExclusion: true}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("ListCategories", mock.Anything, eventID).Return([]entity.Category{{ID: uuid.New(), Name: "Talent"}}, nil)
	store.On("ListJudges", mock.Anything, eventID, true).Return([]entity.Judge{excluded}, nil)

	buf, err := svc.RenderReportGrid(context.Background(), eventID)

	assert.Nil(t, buf)
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)
	assert.Contains(t, err.Error(), excluded.ID.String())
	store.AssertNotCalled(t, "ListCandidates", mock.Anything)
}

func TestRenderReportGrid_NoJudgesRendersBlankAverages(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	eventID := uuid.New()
	category := entity.Category{ID: uuid.New(), Name: "Talent", Weight: 1}
	candidate := entity.Candidate{ID: uuid.New(), FirstName: "Juan", LastName: "Luna", CandidateNumber: 1, Gender: entity.GenderMale}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, eventID).Return(&entity.Event{ID: eventID}, nil)
	store.On("ListCategories", mock.Anything, eventID).Return([]entity.Category{category}, nil)
	store.On("ListJudges", mock.Anything, eventID, true).Return([]entity.Judge{}, nil)
	store.On("ListCandidates", mock.Anything).Return([]entity.Candidate{candidate}, nil)

	buf, err := svc.RenderReportGrid(context.Background(), eventID)

	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	require.NoError(t, err)
	defer f.Close()

	average, err := f.GetCellValue("Scores", "C4")
	require.NoError(t, err)
	assert.Empty(t, average)
	store.AssertNotCalled(t, "ListScores", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// ExportFlat
// ============================================================================

func TestExportFlat_OrdersEventsCategoriesCriteria(t *testing.T) {
	// Arrange
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	first := entity.Event{ID: uuid.New(), Name: "Prelims"}
	second := entity.Event{ID: uuid.New(), Name: "Finals"}
	catFirst := entity.Category{ID: uuid.New(), Name: "Talent", Weight: 0.5}
	catSecond := entity.Category{ID: uuid.New(), Name: "Q&A", Weight: 1}
	critOne := entity.Criterion{ID: uuid.New(), Name: "Stage Presence"}
	critTwo := entity.Criterion{ID: uuid.New(), Name: "Skill"}
	critThree := entity.Criterion{ID: uuid.New(), Name: "Answer"}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, second.ID).Return(&second, nil).Once()
	store.On("GetEvent", mock.Anything, first.ID).Return(&first, nil).Once()
	store.On("ListCategories", mock.Anything, second.ID).Return([]entity.Category{catSecond}, nil)
	store.On("ListCategories", mock.Anything, first.ID).Return([]entity.Category{catFirst}, nil)
	store.On("ListCriteria", mock.Anything, catFirst.ID).Return([]entity.Criterion{critOne, critTwo}, nil)
	store.On("ListCriteria", mock.Anything, catSecond.ID).Return([]entity.Criterion{critThree}, nil)
	store.On("ListFlatScores", mock.Anything, catSecond.ID, critThree.ID).Return([]entity.FlatScore{
		{Score: 9, Max: 10, JudgeName: "Judge A", CandidateFirstName: "Maria", CandidateLastName: "Clara", Weight: 1, EventName: "Finals"},
	}, nil)
	store.On("ListFlatScores", mock.Anything, catFirst.ID, critOne.ID).Return([]entity.FlatScore{
		{Score: 7, Max: 10, JudgeName: "Judge B", CandidateFirstName: "Juan", CandidateLastName: "Luna", Weight: 0.5, EventName: "Prelims"},
		{Score: 6, Max: 10, JudgeName: "Judge A", CandidateFirstName: "Juan", CandidateLastName: "Luna", Weight: 0.5, EventName: "Prelims"},
	}, nil)
	store.On("ListFlatScores", mock.Anything, catFirst.ID, critTwo.ID).Return([]entity.FlatScore{}, nil)

	// Act: дубликат second учитывается один раз
	buf, err := svc.ExportFlat(context.Background(), second.ID, first.ID, second.ID)

	// Assert
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(buf)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, scoresheet.FlatHeader, rows[0])
	assert.Equal(t, []string{"Finals", "Q&A", "Answer", "Maria", "", "Clara", "Judge A", "9", "10", "1"}, rows[1])
	assert.Equal(t, []string{"Prelims", "Talent", "Stage Presence", "Juan", "", "Luna", "Judge B", "7", "10", "0.5"}, rows[2])
	assert.Equal(t, "Judge A", rows[3][6])
	store.AssertExpectations(t)
}

func TestExportFlat_AllEventsWhenNoneGiven(t *testing.T) {
	store := new(MockScoreStore)
	svc, _ := newTestService(store)
	event := entity.Event{ID: uuid.New(), Name: "Finals"}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("ListEvents", mock.Anything).Return([]entity.Event{event}, nil)
	store.On("ListCategories", mock.Anything, event.ID).Return([]entity.Category{}, nil)

	buf, err := svc.ExportFlat(context.Background())

	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(buf)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	store.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything)
}

func TestExportFlat_RejectsNilEventID(t *testing.T) {
	store := new(MockScoreStore)
	svc, registry := newTestService(store)

	store.On("ReadSnapshot", mock.Anything).Return(nil)

	buf, err := svc.ExportFlat(context.Background(), uuid.New(), uuid.Nil)

	assert.Nil(t, buf)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NotErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationFlatExport, metrics.StatusInvalid))
	store.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything)
}

func TestExportFlat_AbortsOnCriteriaFailure(t *testing.T) {
	store := new(MockScoreStore)
	svc, registry := newTestService(store)
	event := entity.Event{ID: uuid.New(), Name: "Finals"}
	category := entity.Category{ID: uuid.New(), Name: "Talent"}

	store.On("ReadSnapshot", mock.Anything).Return(nil)
	store.On("GetEvent", mock.Anything, event.ID).Return(&event, nil)
	store.On("ListCategories", mock.Anything, event.ID).Return([]entity.Category{category}, nil)
	store.On("ListCriteria", mock.Anything, category.ID).Return(nil, errors.New("relation does not exist"))

	buf, err := svc.ExportFlat(context.Background(), event.ID)

	assert.Nil(t, buf)
	assert.ErrorIs(t, err, apperrors.ErrRetrieval)
	assert.Contains(t, err.Error(), category.ID.String())
	assert.Equal(t, uint64(1), observedCount(t, registry, metrics.OperationFlatExport, metrics.StatusRetrievalError))
}

func TestPartitionByGender_SortsByNumberWithinBlock(t *testing.T) {
	candidates := []entity.Candidate{
		{CandidateNumber: 5, Gender: entity.GenderFemale},
		{CandidateNumber: 3, Gender: entity.GenderMale},
		{CandidateNumber: 2, Gender: entity.GenderFemale},
		{CandidateNumber: 1, Gender: entity.GenderMale},
	}

	males, females := partitionByGender(candidates)

	require.Len(t, males, 2)
	require.Len(t, females, 2)
	assert.Equal(t, 1, males[0].CandidateNumber)
	assert.Equal(t, 3, males[1].CandidateNumber)
	assert.Equal(t, 2, females[0].CandidateNumber)
	assert.Equal(t, 5, females[1].CandidateNumber)
}
