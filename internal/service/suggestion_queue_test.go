package service

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/util"
	"tutor_desk_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// qNow anchors queue timestamps to the wall clock, since the constructor
// prunes with time.Now before the test can override it.
var qNow = time.Now()

func newQueue(store repository.KVStore) *QueueService {
	q := NewQueueService(store, schedulingConfig())
	q.now = func() time.Time { return qNow }
	return q
}

func suggestionOf(t model.SuggestionType, id string, createdAt time.Time) model.Suggestion {
	tier, score := model.PriorityFor(t)
	return model.Suggestion{
		ID:            id,
		Type:          t,
		Priority:      tier,
		PriorityScore: score,
		Message:       "m",
		Status:        model.SuggestionPending,
		CreatedAt:     createdAt,
	}
}

func TestSyncFromEngineReplacesWorkingSet(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	q.SyncFromEngine([]model.Suggestion{
		suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow),
		suggestionOf(model.SuggestionPattern, "pattern:2", qNow),
	})
	require.Len(t, q.Pending(), 2)

	// Next batch no longer contains the pattern item: it vanishes without a
	// history record.
	q.SyncFromEngine([]model.Suggestion{
		suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow),
	})
	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "payment:1:2026-02", pending[0].ID)
	assert.Empty(t, q.History())
}

func TestSyncFromEnginePreservesExistingRecords(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	first := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	q.SyncFromEngine([]model.Suggestion{first})

	// The regenerated copy carries a fresh CreatedAt; the queue keeps the
	// original so age-based tie-breaks stay stable.
	second := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow.Add(time.Hour))
	q.SyncFromEngine([]model.Suggestion{second})

	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.True(t, pending[0].CreatedAt.Equal(qNow))
}

func TestSyncFromEngineInterruptFlag(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	pre := suggestionOf(model.SuggestionPreSession, "pre_session:31", qNow)
	pay := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)

	assert.False(t, q.SyncFromEngine([]model.Suggestion{pay}))
	assert.True(t, q.SyncFromEngine([]model.Suggestion{pay, pre}))
	// Already pending: no second interrupt.
	assert.False(t, q.SyncFromEngine([]model.Suggestion{pay, pre}))
}

func TestCurrentPicksHighestScoreThenOldest(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	q.SyncFromEngine([]model.Suggestion{
		suggestionOf(model.SuggestionPattern, "pattern:2", qNow),
		suggestionOf(model.SuggestionPayment, "payment:9:2026-02", qNow.Add(time.Minute)),
		suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow),
	})

	current := q.Current()
	require.NotNil(t, current)
	assert.Equal(t, "payment:1:2026-02", current.ID)

	// Nothing pending, nothing current.
	q.SyncFromEngine(nil)
	assert.Nil(t, q.Current())
}

func TestMarkDismissedSuppressesAcrossSyncs(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	q.SyncFromEngine([]model.Suggestion{item})
	require.NoError(t, q.MarkDismissed(item.ID))

	history := q.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.DismissManual, history[0].Reason)

	// The engine keeps regenerating the same id; it must not resurface.
	q.SyncFromEngine([]model.Suggestion{item})
	assert.Empty(t, q.Pending())
}

func TestMarkActionedSuppressesAcrossSyncs(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionEndOfDay, "end_of_day:2026-03-10", qNow)
	q.SyncFromEngine([]model.Suggestion{item})
	_, err := q.MarkActioned(item.ID)
	require.NoError(t, err)

	history := q.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.DismissActioned, history[0].Reason)

	q.SyncFromEngine([]model.Suggestion{item})
	assert.Empty(t, q.Pending())
}

func TestTerminateUnknownID(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	assert.ErrorIs(t, q.MarkDismissed("no-such-id"), util.ErrSuggestionNotFound)
	_, err := q.MarkActioned("no-such-id")
	assert.ErrorIs(t, err, util.ErrSuggestionNotFound)
}

func TestMarkActionedReturnsRecord(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	item.Action = "open_payment:1"
	q.SyncFromEngine([]model.Suggestion{item})

	taken, err := q.MarkActioned(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "open_payment:1", taken.Action)
	assert.Equal(t, model.SuggestionActioned, taken.Status)

	// A second caller finds the id already terminal, never a half-actioned
	// record with an empty action.
	_, err = q.MarkActioned(item.ID)
	assert.ErrorIs(t, err, util.ErrSuggestionNotFound)
}

func TestResolveByCondition(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	item.Related = &model.RelatedEntity{Type: "student", ID: "1", ConditionKey: "payment:1:2026-02"}
	other := suggestionOf(model.SuggestionPattern, "pattern:2", qNow)
	other.Related = &model.RelatedEntity{Type: "student", ID: "2", ConditionKey: "pattern:2"}
	q.SyncFromEngine([]model.Suggestion{item, other})

	assert.Equal(t, 1, q.ResolveByCondition("payment:1:2026-02"))
	assert.Equal(t, 0, q.ResolveByCondition("payment:1:2026-02"))

	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "pattern:2", pending[0].ID)

	history := q.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.DismissConditionResolved, history[0].Reason)
	assert.Equal(t, "1", history[0].SubjectID)
}

func TestResolveByEntity(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionPreSession, "pre_session:31", qNow)
	item.Related = &model.RelatedEntity{Type: "session", ID: "31", ConditionKey: "session:31"}
	q.SyncFromEngine([]model.Suggestion{item})

	assert.Equal(t, 1, q.ResolveByEntity("session", "31"))
	assert.Empty(t, q.Pending())
}

func TestHistoryPersistsAndReloads(t *testing.T) {
	store := repository.NewMemoryKVStore()
	q := newQueue(store)

	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	q.SyncFromEngine([]model.Suggestion{item})
	require.NoError(t, q.MarkDismissed(item.ID))

	raw, err := store.Get(context.Background(), HistoryKey)
	require.NoError(t, err)
	var persisted []model.DismissedSuggestion
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "payment:1:2026-02", persisted[0].ID)
	assert.Equal(t, model.DismissManual, persisted[0].Reason)

	// A fresh queue over the same store keeps suppressing the id.
	reloaded := newQueue(store)
	require.Len(t, reloaded.History(), 1)
	reloaded.SyncFromEngine([]model.Suggestion{item})
	assert.Empty(t, reloaded.Pending())
}

func TestHistoryPruneOnConstruction(t *testing.T) {
	store := repository.NewMemoryKVStore()

	stale := []model.DismissedSuggestion{
		{ID: "payment:1:2026-01", Type: model.SuggestionPayment, DismissedAt: qNow.AddDate(0, 0, -31), Reason: model.DismissManual},
		{ID: "pattern:2", Type: model.SuggestionPattern, DismissedAt: qNow.AddDate(0, 0, -5), Reason: model.DismissManual},
	}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), HistoryKey, string(raw)))

	q := newQueue(store)
	history := q.History()
	require.Len(t, history, 1)
	assert.Equal(t, "pattern:2", history[0].ID)

	// The aged-out id is no longer suppressed.
	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-01", qNow)
	q.SyncFromEngine([]model.Suggestion{item})
	require.Len(t, q.Pending(), 1)
}

func TestHistoryPruneOnMutation(t *testing.T) {
	q := newQueue(repository.NewMemoryKVStore())

	item := suggestionOf(model.SuggestionPayment, "payment:1:2026-02", qNow)
	q.SyncFromEngine([]model.Suggestion{item})
	require.NoError(t, q.MarkDismissed(item.ID))
	require.Len(t, q.History(), 1)

	// 31 days later any mutation drops the entry.
	q.now = func() time.Time { return qNow.AddDate(0, 0, 31) }
	q.SyncFromEngine(nil)
	assert.Empty(t, q.History())
}
