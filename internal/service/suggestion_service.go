package service

import (
	"time"

	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/pkg/monitoring"
)

// SuggestionService ties the engine to its inputs and the queue: it loads
// the roster and payment snapshots, runs one engine pass and reconciles the
// result. Invoked by the periodic ticker and after mutating API calls.
type SuggestionService struct {
	StudentRepo *repository.StudentRepository
	PaymentRepo *repository.PaymentRepository
	Engine      *EngineService
	Queue       *QueueService
}

func NewSuggestionService(
	studentRepo *repository.StudentRepository,
	paymentRepo *repository.PaymentRepository,
	engine *EngineService,
	queue *QueueService,
) *SuggestionService {
	return &SuggestionService{
		StudentRepo: studentRepo,
		PaymentRepo: paymentRepo,
		Engine:      engine,
		Queue:       queue,
	}
}

// Refresh runs one generate-and-reconcile pass. Returns whether a new
// interrupt-tier suggestion appeared.
func (s *SuggestionService) Refresh(now time.Time) (bool, error) {
	roster, err := s.StudentRepo.ListWithSessions()
	if err != nil {
		return false, err
	}
	payments, err := s.PaymentRepo.ListAll()
	if err != nil {
		return false, err
	}

	batch := s.Engine.Generate(roster, payments, now)

	monitoring.SuggestionEngineRuns.Inc()
	monitoring.SuggestionsGenerated.Add(float64(len(batch)))

	return s.Queue.SyncFromEngine(batch), nil
}
