package domain

import (
	"strings"
	"time"
)

// MaxQuestions caps how many questions a single quiz may hold.
const MaxQuestions = 10

// MaxChoices is the widest choice list a question (and a counts bucket) may have.
const MaxChoices = 4

// DefaultQuizTitle is shown when the host saved a blank or whitespace-only title.
const DefaultQuizTitle = "Quiz Night"

// Quiz is the host-owned container for a question set. One quiz per owner
// account in the simplest deployment; OwnerID doubles as the quiz id.
type Quiz struct {
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayTitle returns the stored title, or the fallback when it is blank.
func (q Quiz) DisplayTitle() string {
	if strings.TrimSpace(q.Title) == "" {
		return DefaultQuizTitle
	}
	return q.Title
}

// Choice is one selectable option: text, an image, or both.
type Choice struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Question is a single quiz question. Choices are 1-indexed everywhere a
// choice number appears on the wire (Answer field, submissions, counts).
type Question struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	Text      string    `json:"text"`
	Choices   []Choice  `json:"choices"`
	Answer    int       `json:"answer"`   // 1-based index of the correct choice
	Duration  int       `json:"duration"` // answering window in seconds
	CreatedAt time.Time `json:"createdAt"`
}

// Participant is a joined viewer. Records are created once at join time and
// never mutated or deleted; the final ranking needs them after the session.
type Participant struct {
	ID       string    `json:"id"`
	QuizID   string    `json:"quizId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// AnswerKey is the identity of an answer record. Submitting twice with the
// same key overwrites; duplicates cannot accumulate.
type AnswerKey struct {
	QuizID        string `json:"quizId"`
	QuestionID    string `json:"questionId"`
	ParticipantID string `json:"participantId"`
}

// Answer is one participant's recorded choice for one question.
type Answer struct {
	AnswerKey
	Choice      int       `json:"choice"` // 1-based
	SubmittedAt time.Time `json:"submittedAt"`
}

// RankingEntry is one row of the final ranking. Rank 1 is the best; every
// registered participant appears, answered or not.
type RankingEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	CorrectCount  int    `json:"correctCount"`
	Rank          int    `json:"rank"`
}
