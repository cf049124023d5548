package domain

import (
	"testing"
	"time"
)

func validQuestion() Question {
	return Question{
		ID:     "q1",
		QuizID: "quiz-1",
		Text:   "Which planet is largest?",
		Choices: []Choice{
			{Text: "Jupiter"},
			{Text: "Saturn"},
		},
		Answer:    1,
		Duration:  10,
		CreatedAt: time.Now(),
	}
}

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Question)
		ok     bool
	}{
		{"valid two choices", func(q *Question) {}, true},
		{"valid four choices", func(q *Question) {
			q.Choices = append(q.Choices, Choice{Text: "Mars"}, Choice{Text: "Venus"})
		}, true},
		{"image-only choice", func(q *Question) {
			q.Choices[1] = Choice{ImageURL: "https://img.example/saturn.jpg"}
		}, true},
		{"blank text", func(q *Question) { q.Text = "   " }, false},
		{"three choices", func(q *Question) {
			q.Choices = append(q.Choices, Choice{Text: "Mars"})
		}, false},
		{"empty choice", func(q *Question) { q.Choices[1] = Choice{} }, false},
		{"answer zero", func(q *Question) { q.Answer = 0 }, false},
		{"answer past range", func(q *Question) { q.Answer = 3 }, false},
		{"zero duration", func(q *Question) { q.Duration = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			err := q.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCurrentQuestion(t *testing.T) {
	questions := []Question{validQuestion(), validQuestion()}

	if q, ok := CurrentQuestion(ControlState{CurrentQuestionIndex: 1}, questions); !ok || q.ID != questions[1].ID {
		t.Fatalf("expected second question, got ok=%v", ok)
	}
	if _, ok := CurrentQuestion(ControlState{CurrentQuestionIndex: 2}, questions); ok {
		t.Fatalf("index past end must mean no current question")
	}
	if _, ok := CurrentQuestion(ControlState{CurrentQuestionIndex: -1}, nil); ok {
		t.Fatalf("negative index must mean no current question")
	}
}

func TestDisplayTitleFallback(t *testing.T) {
	if got := (Quiz{Title: "  \t "}).DisplayTitle(); got != DefaultQuizTitle {
		t.Fatalf("blank title: got %q", got)
	}
	if got := (Quiz{Title: "Friday Trivia"}).DisplayTitle(); got != "Friday Trivia" {
		t.Fatalf("got %q", got)
	}
}
