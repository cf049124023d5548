package app_test

import (
	"context"
	"testing"
	"time"

	"livequiz-service/internal/domain"
)

func TestLiveCountsBucketsAndSum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 2, 60)
	f.startAnswering(t)

	var ids []string
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		p, err := f.service.Join(ctx, "quiz-1", "", name)
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		ids = append(ids, p.ID)
	}

	choices := []int{2, 2, 1}
	for i, id := range ids {
		if _, err := f.service.SubmitAnswer(ctx, "quiz-1", id, "q1", choices[i]); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	counts, err := f.service.LiveCounts(ctx, "quiz-1", "q1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected bucket per choice, got %v", counts)
	}
	if counts[0]+counts[1] != 3 {
		t.Fatalf("counts must sum to submissions, got %v", counts)
	}
	if counts[1] != 2 || counts[0] != 1 {
		t.Fatalf("expected [1 2], got %v", counts)
	}
}

func TestLiveCountsEmptyAndUnknownQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 60)

	counts, err := f.service.LiveCounts(ctx, "quiz-1", "q1")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 2 || counts[0] != 0 || counts[1] != 0 {
		t.Fatalf("expected all-zero buckets, got %v", counts)
	}

	if _, err := f.service.LiveCounts(ctx, "quiz-1", "q9"); err != domain.ErrQuestionNotFound {
		t.Fatalf("unknown question: got %v", err)
	}
}

// Scenario from the product brief: two questions (q1 correct=1, q2 correct=2).
// A answers both correctly, B gets one. A must rank first with 2.
func TestRankingTwoQuestionScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 60)
	f.seedQuestion(t, "q2", 2, 60)

	a, _ := f.service.Join(ctx, "quiz-1", "", "A")
	f.advance(time.Second)
	b, _ := f.service.Join(ctx, "quiz-1", "", "B")

	f.startAnswering(t)
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", a.ID, "q1", 1); err != nil {
		t.Fatalf("A q1: %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", b.ID, "q1", 2); err != nil {
		t.Fatalf("B q1: %v", err)
	}

	if _, err := f.service.NextQuestion(ctx, "quiz-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := f.service.StartAnswer(ctx, "quiz-1"); err != nil {
		t.Fatalf("start answer q2: %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", a.ID, "q2", 2); err != nil {
		t.Fatalf("A q2: %v", err)
	}
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", b.ID, "q2", 2); err != nil {
		t.Fatalf("B q2: %v", err)
	}

	ranking, err := f.service.Ranking(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranking))
	}
	if ranking[0].ParticipantID != a.ID || ranking[0].CorrectCount != 2 || ranking[0].Rank != 1 {
		t.Fatalf("expected A first with 2, got %+v", ranking[0])
	}
	if ranking[1].ParticipantID != b.ID || ranking[1].CorrectCount != 1 || ranking[1].Rank != 2 {
		t.Fatalf("expected B second with 1, got %+v", ranking[1])
	}
}

func TestRankingIncludesSilentParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 60)

	active, _ := f.service.Join(ctx, "quiz-1", "", "Active")
	f.advance(time.Second)
	if _, err := f.service.Join(ctx, "quiz-1", "", "Silent"); err != nil {
		t.Fatalf("join silent: %v", err)
	}

	f.startAnswering(t)
	if _, err := f.service.SubmitAnswer(ctx, "quiz-1", active.ID, "q1", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ranking, err := f.service.Ranking(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("expected silent participant ranked too, got %d entries", len(ranking))
	}
	if ranking[1].Name != "Silent" || ranking[1].CorrectCount != 0 {
		t.Fatalf("expected Silent with 0, got %+v", ranking[1])
	}
}

func TestRankingTieBreaksByJoinTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedQuestion(t, "q1", 1, 60)

	early, _ := f.service.Join(ctx, "quiz-1", "", "Early")
	f.advance(time.Second)
	late, _ := f.service.Join(ctx, "quiz-1", "", "Late")

	f.startAnswering(t)
	for _, id := range []string{late.ID, early.ID} {
		if _, err := f.service.SubmitAnswer(ctx, "quiz-1", id, "q1", 1); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}

	ranking, err := f.service.Ranking(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if ranking[0].ParticipantID != early.ID {
		t.Fatalf("tie must break by earliest join, got %+v", ranking)
	}
}
