package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

type fixture struct {
	service *app.QuizService
	now     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	f := &fixture{now: &now}
	f.service = app.NewQuizService(
		memory.NewControlStore(),
		memory.NewQuestionStore(),
		memory.NewQuizStore(),
		memory.NewAnswerLedger(),
		memory.NewParticipantRegistry(),
		memory.NewSessionStore(),
		zap.NewNop(),
	).WithClock(func() time.Time { return *f.now })
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func (f *fixture) seedQuestion(t *testing.T, id string, correct, duration int) {
	t.Helper()
	_, err := f.service.SaveQuestion(context.Background(), "quiz-1", domain.Question{
		ID:     id,
		QuizID: "quiz-1",
		Text:   "Question " + id,
		Choices: []Choice{
			{Text: "A"}, {Text: "B"},
		},
		Answer:   correct,
		Duration: duration,
	})
	if err != nil {
		t.Fatalf("seed question %s: %v", id, err)
	}
	f.advance(time.Second) // keep creation order distinct
}

// Choice aliases the domain type to keep fixtures short.
type Choice = domain.Choice

func (f *fixture) startAnswering(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.service.StartQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if _, err := f.service.StartAnswer(ctx, "quiz-1"); err != nil {
		t.Fatalf("start answer: %v", err)
	}
}

func TestJoinGeneratesScopedID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.service.Join(ctx, "quiz-1", "", "  Alice  ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.Name != "Alice" {
		t.Fatalf("name not trimmed: %q", p.Name)
	}
	if len(p.ID) != len("quiz-1_")+8 || p.ID[:len("quiz-1_")] != "quiz-1_" {
		t.Fatalf("unexpected participant id %q", p.ID)
	}
}

func TestJoinIsIdempotentWithCachedID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Join(ctx, "quiz-1", "", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	again, err := f.service.Join(ctx, "quiz-1", first.ID, "Alice")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("rejoin created a new participant: %q vs %q", again.ID, first.ID)
	}

	ranking, err := f.service.Ranking(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 1 {
		t.Fatalf("expected a single registered participant, got %d", len(ranking))
	}
}

func TestJoinRejectsBlankNameAndMissingQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Join(ctx, "quiz-1", "", "   "); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("blank name: got %v", err)
	}
	if _, err := f.service.Join(ctx, "", "", "Alice"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("missing quiz link: got %v", err)
	}
}

func TestSubmitAnswerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 10)

	p, _ := f.service.Join(ctx, "quiz-1", "", "Alice")

	// Answering has not been opened yet.
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); !errors.Is(err, domain.ErrNotAnswering) {
		t.Fatalf("before answering: got %v", err)
	}

	f.startAnswering(t)

	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", "quiz-1_nobody", "q1", 1); !errors.Is(err, domain.ErrNotJoined) {
		t.Fatalf("unjoined submit: got %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 3); !errors.Is(err, domain.ErrChoiceOutOfRange) {
		t.Fatalf("choice out of range: got %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q9", 1); !errors.Is(err, domain.ErrQuestionNotCurrent) {
		t.Fatalf("stale question: got %v", err)
	}

	answer, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if answer.Choice != 2 {
		t.Fatalf("choice = %d, want 2", answer.Choice)
	}

	stored, ok, err := f.service.Answer(ctx, answer.AnswerKey)
	if err != nil || !ok || stored.Choice != 2 {
		t.Fatalf("stored answer = %+v ok=%v err=%v", stored, ok, err)
	}
}

func TestSubmitAnswerCountdownGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 10)
	p, _ := f.service.Join(ctx, "quiz-1", "", "Alice")
	f.startAnswering(t)

	f.advance(9900 * time.Millisecond)
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); err != nil {
		t.Fatalf("submit at 9.9s: %v", err)
	}

	f.advance(600 * time.Millisecond) // 10.5s after start
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 2); !errors.Is(err, domain.ErrAnswerClosed) {
		t.Fatalf("submit at 10.5s: got %v", err)
	}

	// The earlier answer is untouched by the rejected overwrite.
	stored, ok, _ := f.service.Answer(ctx, domain.AnswerKey{QuizID: "quiz-1", QuestionID: "q1", ParticipantID: p.ID})
	if !ok || stored.Choice != 1 {
		t.Fatalf("stored = %+v ok=%v", stored, ok)
	}
}

func TestResubmitOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 30)
	p, _ := f.service.Join(ctx, "quiz-1", "", "Alice")
	f.startAnswering(t)

	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 2); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	counts, err := f.service.LiveCounts(ctx, "quiz-1", "q1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[0] != 0 || counts[1] != 1 {
		t.Fatalf("expected one answer on choice 2, got %v", counts)
	}
}

func TestAdvanceScopesAnswersToQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 30)
	f.seedQuestion(t, "q2", 2, 30)
	p, _ := f.service.Join(ctx, "quiz-1", "", "Alice")
	f.startAnswering(t)

	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); err != nil {
		t.Fatalf("submit q1: %v", err)
	}

	state, err := f.service.NextQuestion(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.IsAnswerStarted || state.ShowAnswerCounts || state.AnswerStartAt != nil {
		t.Fatalf("advance left answer cycle set: %+v", state)
	}

	// The old question's answer must not count for the new one.
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); !errors.Is(err, domain.ErrNotAnswering) {
		t.Fatalf("submit after advance: got %v", err)
	}
	if _, err := f.service.StartAnswer(ctx, "quiz-1"); err != nil {
		t.Fatalf("restart answering: %v", err)
	}
	counts, err := f.service.LiveCounts(ctx, "quiz-1", "q2")
	if err != nil {
		t.Fatalf("counts q2: %v", err)
	}
	if counts[0] != 0 && counts[1] != 0 {
		t.Fatalf("expected empty counts for q2, got %v", counts)
	}
}

func TestSubscribeControlReceivesTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ch, cancel, err := f.service.SubscribeControl(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if initial.Phase() != domain.PhaseNone {
		t.Fatalf("initial phase = %v", initial.Phase())
	}

	if _, err := f.service.StartQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	update := <-ch
	if update.Phase() != domain.PhaseWaiting {
		t.Fatalf("update phase = %v, want waiting", update.Phase())
	}
}

func TestClearAnswersAndReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 30)
	p, _ := f.service.Join(ctx, "quiz-1", "", "Alice")
	f.startAnswering(t)
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", p.ID, "q1", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	state, err := f.service.Reset(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if state.Phase() != domain.PhaseNone || state.CurrentQuestionIndex != 0 {
		t.Fatalf("reset state: %+v", state)
	}

	// Reset does not touch the ledger; ClearAnswers does.
	counts, _ := f.service.LiveCounts(ctx, "quiz-1", "q1")
	if counts[0] != 1 {
		t.Fatalf("reset wiped the ledger: %v", counts)
	}
	if err := f.service.ClearAnswers(ctx, "quiz-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	counts, _ = f.service.LiveCounts(ctx, "quiz-1", "q1")
	if counts[0] != 0 {
		t.Fatalf("expected cleared ledger, got %v", counts)
	}

	// Ranking still lists the participant, now with zero correct answers.
	ranking, _ := f.service.Ranking(ctx, "quiz-1")
	if len(ranking) != 1 || ranking[0].CorrectCount != 0 {
		t.Fatalf("ranking after clear: %+v", ranking)
	}
}
