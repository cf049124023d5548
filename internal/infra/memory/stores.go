// Package memory provides map-backed implementations of every repository the
// quiz service depends on. They are the default for tests and single-node
// demo runs; the redis and postgres packages replace them in production.
package memory

import (
	"context"
	"sort"
	"sync"

	"livequiz-service/internal/domain"
)

// ControlStore keeps control states in memory. Get returns the zero state
// for quizzes with no record yet, matching the document-store semantics of
// "absent means not started".
type ControlStore struct {
	mu     sync.RWMutex
	states map[string]domain.ControlState
}

func NewControlStore() *ControlStore {
	return &ControlStore{states: make(map[string]domain.ControlState)}
}

func (s *ControlStore) Get(_ context.Context, quizID string) (domain.ControlState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[quizID]
	if !ok {
		return domain.ControlState{QuizID: quizID}, nil
	}
	return state, nil
}

func (s *ControlStore) Put(_ context.Context, state domain.ControlState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.QuizID] = state
	return nil
}

// QuestionStore keeps question sets in memory, ordered by creation time.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[string]map[string]domain.Question // quizID -> questionID -> question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]map[string]domain.Question)}
}

func (s *QuestionStore) List(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.questions[quizID]
	out := make([]domain.Question, 0, len(set))
	for _, q := range set {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QuestionStore) Put(_ context.Context, question domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questions[question.QuizID] == nil {
		s.questions[question.QuizID] = make(map[string]domain.Question)
	}
	s.questions[question.QuizID][question.ID] = question
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, quizID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.questions[quizID], questionID)
	return nil
}

// QuizStore keeps quiz metadata (title) in memory.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

func (s *QuizStore) Get(_ context.Context, ownerID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[ownerID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizStore) Put(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.OwnerID] = quiz
	return nil
}

// AnswerLedger keeps answers in memory, keyed by identity. Put overwrites.
type AnswerLedger struct {
	mu      sync.RWMutex
	answers map[domain.AnswerKey]domain.Answer
}

func NewAnswerLedger() *AnswerLedger {
	return &AnswerLedger{answers: make(map[domain.AnswerKey]domain.Answer)}
}

func (l *AnswerLedger) Put(_ context.Context, answer domain.Answer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.answers[answer.AnswerKey] = answer
	return nil
}

func (l *AnswerLedger) Get(_ context.Context, key domain.AnswerKey) (domain.Answer, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	answer, ok := l.answers[key]
	return answer, ok, nil
}

func (l *AnswerLedger) ListByQuestion(_ context.Context, quizID, questionID string) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Answer
	for key, a := range l.answers {
		if key.QuizID == quizID && key.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *AnswerLedger) ListByQuiz(_ context.Context, quizID string) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Answer
	for key, a := range l.answers {
		if key.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *AnswerLedger) DeleteByQuiz(_ context.Context, quizID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.answers {
		if key.QuizID == quizID {
			delete(l.answers, key)
		}
	}
	return nil
}

// ParticipantRegistry keeps joined participants in memory. Records are
// write-once; Put on an existing id is a no-op.
type ParticipantRegistry struct {
	mu           sync.RWMutex
	participants map[string]map[string]domain.Participant // quizID -> participantID -> participant
}

func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{participants: make(map[string]map[string]domain.Participant)}
}

func (r *ParticipantRegistry) Put(_ context.Context, p domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.participants[p.QuizID] == nil {
		r.participants[p.QuizID] = make(map[string]domain.Participant)
	}
	if _, exists := r.participants[p.QuizID][p.ID]; exists {
		return nil
	}
	r.participants[p.QuizID][p.ID] = p
	return nil
}

func (r *ParticipantRegistry) Get(_ context.Context, quizID, participantID string) (domain.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[quizID][participantID]
	return p, ok, nil
}

func (r *ParticipantRegistry) ListByQuiz(_ context.Context, quizID string) ([]domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.participants[quizID]
	out := make([]domain.Participant, 0, len(set))
	for _, p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
