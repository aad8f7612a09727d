package models

import "time"

// AnswerRecord captures the outcome of one question in a quiz run. Appended
// exactly once per question and immutable afterward. SelectedAnswer is nil
// when the countdown expired without a selection.
type AnswerRecord struct {
	QuestionText     string  `json:"question_text"`
	SelectedAnswer   *string `json:"selected_answer"`
	WasCorrect       bool    `json:"was_correct"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// LeaderboardEntry is what a finished session emits for the top-N board.
type LeaderboardEntry struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}
