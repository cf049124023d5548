package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"livequiz-service/internal/domain"
)

// ControlRepository stores the per-quiz control state. Get returns the zero
// state (quiz not started, index 0) for a quiz with no record yet.
type ControlRepository interface {
	Get(ctx context.Context, quizID string) (domain.ControlState, error)
	Put(ctx context.Context, state domain.ControlState) error
}

// QuestionRepository stores the authored question set.
// List returns questions in progression order (created-at ascending).
type QuestionRepository interface {
	List(ctx context.Context, quizID string) ([]domain.Question, error)
	Put(ctx context.Context, question domain.Question) error
	Delete(ctx context.Context, quizID, questionID string) error
}

// QuizRepository stores quiz metadata (title). Get returns ErrQuizNotFound
// for an owner with no stored quiz record.
type QuizRepository interface {
	Get(ctx context.Context, ownerID string) (domain.Quiz, error)
	Put(ctx context.Context, quiz domain.Quiz) error
}

// AnswerLedger is the append/overwrite store of submitted answers. Put with
// an existing identity key overwrites; duplicates never accumulate.
type AnswerLedger interface {
	Put(ctx context.Context, answer domain.Answer) error
	Get(ctx context.Context, key domain.AnswerKey) (domain.Answer, bool, error)
	ListByQuestion(ctx context.Context, quizID, questionID string) ([]domain.Answer, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Answer, error)
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// ParticipantRegistry stores joined participants. Records are write-once.
type ParticipantRegistry interface {
	Put(ctx context.Context, participant domain.Participant) error
	Get(ctx context.Context, quizID, participantID string) (domain.Participant, bool, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error)
}

// SessionRepository abstracts how broadcast sessions are tracked (in-memory,
// Redis-backed, etc).
type SessionRepository interface {
	GetOrCreate(quizID string) *Session
	Get(quizID string) (*Session, bool)
	DeleteIfEmpty(quizID string)
}

// ImageRemover is the slice of object storage the authoring flow needs to
// release choice images that are no longer referenced by any question.
type ImageRemover interface {
	Delete(ctx context.Context, url string) error
}

// QuizService contains the quiz use cases: host progression, participant
// join and answer submission, and the aggregation queries.
type QuizService struct {
	control      ControlRepository
	questions    QuestionRepository
	quizzes      QuizRepository
	ledger       AnswerLedger
	participants ParticipantRegistry
	sessions     SessionRepository
	images       ImageRemover
	log          *zap.Logger
	now          func() time.Time
}

func NewQuizService(
	control ControlRepository,
	questions QuestionRepository,
	quizzes QuizRepository,
	ledger AnswerLedger,
	participants ParticipantRegistry,
	sessions SessionRepository,
	log *zap.Logger,
) *QuizService {
	return &QuizService{
		control:      control,
		questions:    questions,
		quizzes:      quizzes,
		ledger:       ledger,
		participants: participants,
		sessions:     sessions,
		log:          log,
		now:          time.Now,
	}
}

// WithClock replaces the service clock; tests use it for deterministic
// AnswerStartAt stamps and countdown checks.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// WithImageStore attaches object storage so that deleting a question, or
// editing one to drop a choice image, releases the stored image. Without a
// store image cleanup is a no-op.
func (s *QuizService) WithImageStore(images ImageRemover) *QuizService {
	s.images = images
	return s
}

// SubscribeControl returns a channel of control state snapshots for a quiz,
// primed with the current state. The caller must invoke cancel to avoid
// leaking the subscription.
func (s *QuizService) SubscribeControl(ctx context.Context, quizID string) (<-chan domain.ControlState, func(), error) {
	state, err := s.control.Get(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	session := s.sessions.GetOrCreate(quizID)
	ch, cancel := session.subscribe(state)
	wrapped := func() {
		cancel()
		s.sessions.DeleteIfEmpty(quizID)
	}
	return ch, wrapped, nil
}

// transition loads the control state, applies one progression action, stores
// the result and broadcasts it. All stored fields not touched by the action
// keep their values (merge semantics).
func (s *QuizService) transition(ctx context.Context, quizID string, apply func(*domain.ControlState) error) (domain.ControlState, error) {
	state, err := s.control.Get(ctx, quizID)
	if err != nil {
		return domain.ControlState{}, err
	}
	state.QuizID = quizID
	if err := apply(&state); err != nil {
		return domain.ControlState{}, err
	}
	if err := s.control.Put(ctx, state); err != nil {
		return domain.ControlState{}, err
	}
	s.log.Info("control transition",
		zap.String("quizId", quizID),
		zap.String("phase", state.Phase().String()),
		zap.Int("questionIndex", state.CurrentQuestionIndex))
	if session, ok := s.sessions.Get(quizID); ok {
		session.broadcast(state)
	}
	return state, nil
}

// StartQuiz opens the session for participants.
func (s *QuizService) StartQuiz(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, (*domain.ControlState).StartQuiz)
}

// StartAnswer opens the answering window, stamping the shared start instant
// from the server clock.
func (s *QuizService) StartAnswer(ctx context.Context, quizID string) (domain.ControlState, error) {
	now := s.now()
	return s.transition(ctx, quizID, func(c *domain.ControlState) error {
		return c.StartAnswer(now)
	})
}

// ShowCounts reveals the live tallies for the current question.
func (s *QuizService) ShowCounts(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, (*domain.ControlState).ShowCounts)
}

// ShowCheck reveals the correct choice for the current question.
func (s *QuizService) ShowCheck(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, (*domain.ControlState).ShowCheck)
}

// NextQuestion advances the question pointer and clears the answer cycle.
func (s *QuizService) NextQuestion(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, (*domain.ControlState).NextQuestion)
}

// ShowResult moves the session to the terminal result phase.
func (s *QuizService) ShowResult(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, (*domain.ControlState).FinishWithResult)
}

// Reset returns the quiz to its initial state. Submitted answers survive a
// reset; ClearAnswers wipes them separately.
func (s *QuizService) Reset(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.transition(ctx, quizID, func(c *domain.ControlState) error {
		c.Reset()
		return nil
	})
}

// ClearAnswers deletes every answer scoped to the quiz.
func (s *QuizService) ClearAnswers(ctx context.Context, quizID string) error {
	if err := s.ledger.DeleteByQuiz(ctx, quizID); err != nil {
		return err
	}
	s.log.Info("answers cleared", zap.String("quizId", quizID))
	return nil
}

// Join registers a participant. When the caller presents a participant id it
// already holds for this quiz (a reload, a reconnect), the existing record is
// returned untouched; participants are write-once.
func (s *QuizService) Join(ctx context.Context, quizID, participantID, name string) (domain.Participant, error) {
	if quizID == "" {
		return domain.Participant{}, domain.ErrQuizNotFound
	}
	if participantID != "" {
		existing, ok, err := s.participants.Get(ctx, quizID, participantID)
		if err != nil {
			return domain.Participant{}, err
		}
		if ok {
			return existing, nil
		}
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Participant{}, domain.ErrEmptyName
	}

	participant := domain.Participant{
		ID:       quizID + "_" + randomSuffix(),
		QuizID:   quizID,
		Name:     trimmed,
		JoinedAt: s.now(),
	}
	if err := s.participants.Put(ctx, participant); err != nil {
		return domain.Participant{}, err
	}
	s.log.Info("participant joined",
		zap.String("quizId", quizID),
		zap.String("participantId", participant.ID))
	return participant, nil
}

// SubmitAnswer records a participant's choice for the current question. The
// identity key (quiz, question, participant) makes a second submission an
// overwrite, never a duplicate. The countdown is enforced with the server
// clock: clients self-gate on expiry, the ledger gate here is authoritative.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, participantID, questionID string, choice int) (domain.Answer, error) {
	if _, ok, err := s.participants.Get(ctx, quizID, participantID); err != nil {
		return domain.Answer{}, err
	} else if !ok {
		return domain.Answer{}, domain.ErrNotJoined
	}

	state, err := s.control.Get(ctx, quizID)
	if err != nil {
		return domain.Answer{}, err
	}
	// IsAnswerStarted stays true through the counts and check reveals; the
	// window closes on advance, result, or countdown expiry.
	if !state.IsAnswerStarted || state.AnswerStartAt == nil {
		return domain.Answer{}, domain.ErrNotAnswering
	}

	questions, err := s.questions.List(ctx, quizID)
	if err != nil {
		return domain.Answer{}, err
	}
	current, ok := domain.CurrentQuestion(state, questions)
	if !ok || current.ID != questionID {
		return domain.Answer{}, domain.ErrQuestionNotCurrent
	}
	if !domain.AnswerOpen(current.Duration, *state.AnswerStartAt, s.now()) {
		return domain.Answer{}, domain.ErrAnswerClosed
	}
	if choice < 1 || choice > len(current.Choices) {
		return domain.Answer{}, domain.ErrChoiceOutOfRange
	}

	answer := domain.Answer{
		AnswerKey: domain.AnswerKey{
			QuizID:        quizID,
			QuestionID:    questionID,
			ParticipantID: participantID,
		},
		Choice:      choice,
		SubmittedAt: s.now(),
	}
	if err := s.ledger.Put(ctx, answer); err != nil {
		return domain.Answer{}, err
	}
	return answer, nil
}

// Answer returns the stored answer for an identity key, if any. Participant
// views use it to restore their submitted state across reconnects.
func (s *QuizService) Answer(ctx context.Context, key domain.AnswerKey) (domain.Answer, bool, error) {
	return s.ledger.Get(ctx, key)
}

// Questions returns the quiz's question set in progression order.
func (s *QuizService) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return s.questions.List(ctx, quizID)
}

// Control returns the current control state snapshot.
func (s *QuizService) Control(ctx context.Context, quizID string) (domain.ControlState, error) {
	return s.control.Get(ctx, quizID)
}

func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to a time-derived suffix; uniqueness only needs to hold
		// within one quiz.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000"))[:4])
	}
	return hex.EncodeToString(b[:])
}
