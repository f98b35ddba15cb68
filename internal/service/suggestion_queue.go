package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/util"
	"tutor_desk_backend/pkg/logger"
	"tutor_desk_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// HistoryKey is the fixed KV key the dismissal history lives under.
const HistoryKey = "suggestions:dismissed"

// QueueService reconciles engine batches against the pending working set
// and the dismissal history, and presents at most one suggestion to the
// client. It is constructed once by the composition root and injected
// everywhere it is needed.
//
// The pending set is in-memory only and resets on restart; the engine
// rebuilds it within one tick. Only the history is persisted.
type QueueService struct {
	mu        sync.Mutex
	pending   map[string]*model.Suggestion
	history   []model.DismissedSuggestion // newest first
	store     repository.KVStore
	retention time.Duration
	now       func() time.Time
}

func NewQueueService(store repository.KVStore, cfg *config.Config) *QueueService {
	q := &QueueService{
		pending:   make(map[string]*model.Suggestion),
		store:     store,
		retention: time.Duration(cfg.Scheduling.RetentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
	q.loadHistory()
	q.pruneLocked()
	return q
}

// loadHistory reads the persisted history. Any failure degrades to an
// empty history: the queue is a UX feature, availability wins.
func (q *QueueService) loadHistory() {
	raw, err := q.store.Get(context.Background(), HistoryKey)
	if err != nil {
		if err != repository.ErrKeyNotFound {
			logger.Log.Warn("failed to load suggestion history, starting empty", zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), &q.history); err != nil {
		logger.Log.Warn("corrupt suggestion history, starting empty", zap.Error(err))
		q.history = nil
	}
}

// saveHistory is fire-and-forget: a write failure is logged and the
// in-memory state stays authoritative for the rest of the process.
func (q *QueueService) saveHistory() {
	raw, err := json.Marshal(q.history)
	if err != nil {
		logger.Log.Error("failed to encode suggestion history", zap.Error(err))
		return
	}
	if err := q.store.Set(context.Background(), HistoryKey, string(raw)); err != nil {
		logger.Log.Warn("failed to persist suggestion history", zap.Error(err))
	}
}

func (q *QueueService) pruneLocked() {
	cutoff := q.now().Add(-q.retention)
	kept := q.history[:0]
	for _, entry := range q.history {
		if entry.DismissedAt.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	q.history = kept
}

func (q *QueueService) inHistoryLocked(id string) bool {
	for _, entry := range q.history {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// Current returns the pending suggestion with the highest priority score.
// Ties go to the oldest item, matching the engine's sort direction. Nil
// when nothing is pending.
func (q *QueueService) Current() *model.Suggestion {
	q.mu.Lock()
	defer q.mu.Unlock()

	var best *model.Suggestion
	for _, s := range q.pending {
		if best == nil ||
			s.PriorityScore > best.PriorityScore ||
			(s.PriorityScore == best.PriorityScore && s.CreatedAt.Before(best.CreatedAt)) ||
			(s.PriorityScore == best.PriorityScore && s.CreatedAt.Equal(best.CreatedAt) && s.ID < best.ID) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	copied := *best
	return &copied
}

// Pending returns the working set ordered like the engine output.
func (q *QueueService) Pending() []model.Suggestion {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.Suggestion, 0, len(q.pending))
	for _, s := range q.pending {
		out = append(out, *s)
	}
	sortSuggestions(out)
	return out
}

// History returns the dismissal records, newest first.
func (q *QueueService) History() []model.DismissedSuggestion {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.DismissedSuggestion, len(q.history))
	copy(out, q.history)
	return out
}

// SyncFromEngine reconciles a fresh engine batch with the current state:
// ids already in the (unpruned) history are suppressed, ids already
// pending keep their existing record instead of being reset, and the
// working set is replaced with the result. Returns whether a brand-new
// interrupt-tier item appeared, so the caller can surface it proactively.
func (q *QueueService) SyncFromEngine(batch []model.Suggestion) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pruneLocked()

	next := make(map[string]*model.Suggestion, len(batch))
	interrupt := false
	for i := range batch {
		item := batch[i]
		if q.inHistoryLocked(item.ID) {
			continue
		}
		if existing, ok := q.pending[item.ID]; ok {
			next[item.ID] = existing
			continue
		}
		item.Status = model.SuggestionPending
		next[item.ID] = &item
		if item.Priority == model.InterruptTier {
			interrupt = true
		}
	}
	q.pending = next
	monitoring.SuggestionQueueDepth.Set(float64(len(next)))
	return interrupt
}

// MarkActioned moves a pending suggestion to history as actioned and
// returns the terminated record, so callers get the action string and the
// state change in one step. Terminal: the id stays suppressed until its
// history entry ages out.
func (q *QueueService) MarkActioned(id string) (*model.Suggestion, error) {
	return q.terminate(id, model.SuggestionActioned, model.DismissActioned)
}

// MarkDismissed moves a pending suggestion to history as manually
// dismissed. Terminal.
func (q *QueueService) MarkDismissed(id string) error {
	_, err := q.terminate(id, model.SuggestionDismissed, model.DismissManual)
	return err
}

func (q *QueueService) terminate(id string, status model.SuggestionStatus, reason model.DismissReason) (*model.Suggestion, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	s, ok := q.pending[id]
	if !ok {
		return nil, util.ErrSuggestionNotFound
	}
	s.Status = status
	q.recordLocked(s, reason)
	delete(q.pending, id)
	monitoring.SuggestionQueueDepth.Set(float64(len(q.pending)))
	copied := *s
	return &copied, nil
}

// ResolveByCondition removes every pending suggestion whose related
// condition key matches, recording each as condition_resolved. Used when
// the underlying fact is fixed outside the queue (session confirmed,
// payment marked paid), so the next engine run need not regenerate them.
func (q *QueueService) ResolveByCondition(conditionKey string) int {
	return q.resolve(func(s *model.Suggestion) bool {
		return s.Related != nil && s.Related.ConditionKey == conditionKey
	})
}

// ResolveByEntity removes every pending suggestion tied to the given
// related entity.
func (q *QueueService) ResolveByEntity(entityType, entityID string) int {
	return q.resolve(func(s *model.Suggestion) bool {
		return s.Related != nil && s.Related.Type == entityType && s.Related.ID == entityID
	})
}

func (q *QueueService) resolve(match func(*model.Suggestion) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	resolved := 0
	for id, s := range q.pending {
		if !match(s) {
			continue
		}
		q.recordLocked(s, model.DismissConditionResolved)
		delete(q.pending, id)
		resolved++
	}
	if resolved > 0 {
		monitoring.SuggestionQueueDepth.Set(float64(len(q.pending)))
	}
	return resolved
}

// recordLocked prepends a history entry, prunes, and persists best-effort.
func (q *QueueService) recordLocked(s *model.Suggestion, reason model.DismissReason) {
	subject := ""
	if s.Related != nil {
		subject = s.Related.ID
	}
	entry := model.DismissedSuggestion{
		ID:          s.ID,
		Type:        s.Type,
		Priority:    s.Priority,
		Message:     s.Message,
		DismissedAt: q.now(),
		Reason:      reason,
		SubjectID:   subject,
	}
	q.history = append([]model.DismissedSuggestion{entry}, q.history...)
	q.pruneLocked()
	q.saveHistory()
}

func sortSuggestions(items []model.Suggestion) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
