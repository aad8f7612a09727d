package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

// State of a quiz run. Completed is terminal; only Reset leaves it.
type State string

const (
	StateIdle             State = "idle"
	StateCategorySelected State = "category_selected"
	StateInProgress       State = "in_progress"
	StateAnswerRevealed   State = "answer_revealed"
	StateAwaitingName     State = "awaiting_name"
	StateCompleted        State = "completed"
)

// Mode selects whether questions run against the countdown.
type Mode string

const (
	ModeTimed   Mode = "timed"
	ModeUntimed Mode = "untimed"
)

var (
	// ErrSelectionRequired means the player chose no category.
	ErrSelectionRequired = errors.New("at least one category must be selected")

	// ErrNoQuestionsAvailable means neither the server nor the offline cache
	// could supply questions.
	ErrNoQuestionsAvailable = errors.New("no questions available")

	// ErrInvalidState means the event is not legal in the current state.
	ErrInvalidState = errors.New("event not allowed in current state")

	// ErrVerifyUnavailable means the answer could not be verified right now;
	// the question stays open and the submission can be retried.
	ErrVerifyUnavailable = errors.New("answer verification unavailable")
)

// QuestionSource supplies the question queue for a run.
type QuestionSource interface {
	NextBatch(ctx context.Context, lang string, count int, categories []string) ([]models.SafeQuestion, error)
}

// Verifier checks a submitted answer. The engine treats any error as
// transient and keeps the question open.
type Verifier interface {
	Verify(ctx context.Context, lang, questionText, answer string) (bool, error)
}

// Config tunes a quiz run. Zero values fall back to the defaults below.
//
// Scoring: a correct answer is worth BasePoints, plus BonusPerSecond for
// every second left on the countdown in timed mode. Untimed mode awards
// BasePoints flat.
type Config struct {
	QuestionCount   int // questions per run (default 10)
	QuestionSeconds int // countdown per question in timed mode (default 20)
	BasePoints      int // default 100
	BonusPerSecond  int // default 5, timed mode only
}

func (c Config) withDefaults() Config {
	if c.QuestionCount <= 0 {
		c.QuestionCount = 10
	}
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = 20
	}
	if c.BasePoints <= 0 {
		c.BasePoints = 100
	}
	if c.BonusPerSecond < 0 {
		c.BonusPerSecond = 0
	} else if c.BonusPerSecond == 0 {
		c.BonusPerSecond = 5
	}
	return c
}

// Snapshot is the render-facing view of the session. The engine owns the
// state; a rendering layer only ever reads snapshots.
type Snapshot struct {
	State         State
	Mode          Mode
	Question      models.SafeQuestion
	HasQuestion   bool
	QuestionIndex int
	TimeRemaining int
	Score         int
	CorrectCount  int
	Answered      int
	VerifyPending bool
}

// Engine is the quiz session state machine. Every external event (player
// action, countdown tick, network response) is a method call that runs to
// completion under one mutex, so transitions never interleave. The countdown
// belongs to the current in-progress question only: entering the question
// starts it, and every path out (answer, expiry, reset) cancels it and bumps
// the timer generation so a dangling timer from an earlier question cannot
// fire into a later one.
type Engine struct {
	cfg       Config
	source    QuestionSource
	verifier  Verifier
	countdown Countdown
	now       func() time.Time

	mu            sync.Mutex
	state         State
	lang          string
	mode          Mode
	categories    []string
	queue         []models.SafeQuestion
	current       models.SafeQuestion
	hasCurrent    bool
	questionIndex int
	timeRemaining int
	questionStart time.Time
	answered      bool
	verifyPending bool
	timerGen      int

	score        int
	correctCount int
	history      []models.AnswerRecord
}

func NewEngine(cfg Config, source QuestionSource, verifier Verifier, countdown Countdown) *Engine {
	if countdown == nil {
		countdown = NewTickerCountdown()
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		source:    source,
		verifier:  verifier,
		countdown: countdown,
		now:       time.Now,
		state:     StateIdle,
	}
}

// Choose records the player's language, mode and category selection.
// Selecting nothing fails with ErrSelectionRequired and leaves the session
// in Idle.
func (e *Engine) Choose(lang string, mode Mode, categories []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return fmt.Errorf("%w: choose from %s", ErrInvalidState, e.state)
	}
	if len(categories) == 0 {
		return ErrSelectionRequired
	}

	e.lang = lang
	e.mode = mode
	e.categories = append([]string(nil), categories...)
	e.state = StateCategorySelected
	return nil
}

// Start fetches the question queue and serves the first question. When the
// source comes back empty the session stays in CategorySelected so the
// player can pick different categories or retry.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateCategorySelected {
		return fmt.Errorf("%w: start from %s", ErrInvalidState, e.state)
	}

	queue, err := e.source.NextBatch(ctx, e.lang, e.cfg.QuestionCount, e.categories)
	if err != nil {
		utils.LogError("Question fetch failed: %v", err)
		return ErrNoQuestionsAvailable
	}
	if len(queue) == 0 {
		return ErrNoQuestionsAvailable
	}

	e.queue = queue
	e.questionIndex = 0
	e.score = 0
	e.correctCount = 0
	e.history = nil
	e.state = StateInProgress
	e.serveNextLocked()
	return nil
}

// SubmitAnswer handles an answer selection. Only the first selection per
// question counts: repeat clicks on an answered question, and clicks while a
// verify call is outstanding, are no-ops. A verification failure keeps the
// question open, restarts the countdown from where it stopped, and returns
// ErrVerifyUnavailable so the caller can surface a transient error.
func (e *Engine) SubmitAnswer(ctx context.Context, answer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateAnswerRevealed {
		return nil // already answered, ignore the extra click
	}
	if e.state != StateInProgress {
		return fmt.Errorf("%w: answer from %s", ErrInvalidState, e.state)
	}
	if e.answered || e.verifyPending {
		return nil
	}

	// Freeze the countdown while the answer is in flight. The generation
	// bump makes any already-scheduled tick or expiry a no-op.
	remaining := e.timeRemaining
	e.timerGen++
	e.countdown.Stop()
	e.verifyPending = true

	correct, err := e.verifier.Verify(ctx, e.lang, e.current.Text, answer)
	e.verifyPending = false
	if err != nil {
		utils.LogError("Verify failed for %q: %v", e.current.Text, err)
		if e.mode == ModeTimed {
			e.startCountdownLocked(remaining)
		}
		return fmt.Errorf("%w: %v", ErrVerifyUnavailable, err)
	}

	e.answered = true
	selected := answer
	e.appendRecordLocked(&selected, correct)
	e.state = StateAnswerRevealed
	return nil
}

// Next advances past a revealed answer, either to the following question or
// to the awaiting-name stage once the run's question count is exhausted.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAnswerRevealed {
		return fmt.Errorf("%w: next from %s", ErrInvalidState, e.state)
	}

	if len(e.history) >= e.cfg.QuestionCount || len(e.queue) == 0 {
		e.hasCurrent = false
		e.state = StateAwaitingName
		return nil
	}

	e.questionIndex++
	e.state = StateInProgress
	e.serveNextLocked()
	return nil
}

// Finish completes the run with the player's name and emits the record the
// leaderboard expects. An empty name finishes without emitting one.
func (e *Engine) Finish(name string) (*models.LeaderboardEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingName {
		return nil, fmt.Errorf("%w: finish from %s", ErrInvalidState, e.state)
	}

	e.state = StateCompleted
	if name == "" {
		return nil, nil
	}
	return &models.LeaderboardEntry{Name: name, Score: e.score, Date: e.now()}, nil
}

// Reset returns the session to Idle from any state, cancelling the countdown
// and discarding the run.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timerGen++
	e.countdown.Stop()
	e.state = StateIdle
	e.lang = ""
	e.mode = ""
	e.categories = nil
	e.queue = nil
	e.hasCurrent = false
	e.questionIndex = 0
	e.timeRemaining = 0
	e.answered = false
	e.verifyPending = false
	e.score = 0
	e.correctCount = 0
	e.history = nil
}

// serveNextLocked pops the next question and, in timed mode, hands it a
// fresh countdown.
func (e *Engine) serveNextLocked() {
	e.current = e.queue[0]
	e.queue = e.queue[1:]
	e.hasCurrent = true
	e.answered = false
	e.questionStart = e.now()
	e.timeRemaining = e.cfg.QuestionSeconds
	if e.mode == ModeTimed {
		e.startCountdownLocked(e.cfg.QuestionSeconds)
	}
}

func (e *Engine) startCountdownLocked(seconds int) {
	e.timerGen++
	gen := e.timerGen
	e.timeRemaining = seconds
	e.countdown.Start(seconds,
		func(remaining int) { e.onTick(gen, remaining) },
		func() { e.onExpire(gen) },
	)
}

func (e *Engine) onTick(gen, remaining int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.timerGen || e.state != StateInProgress {
		return
	}
	e.timeRemaining = remaining
}

// onExpire scores the current question as unanswered. The generation and
// state checks make it idempotent: a stale timer, or a second expiry event,
// can never append another record.
func (e *Engine) onExpire(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.timerGen || e.state != StateInProgress || e.answered {
		return
	}

	e.timerGen++
	e.countdown.Stop()
	e.timeRemaining = 0
	e.answered = true
	e.appendRecordLocked(nil, false)
	e.state = StateAnswerRevealed
}

// appendRecordLocked writes the single AnswerRecord for the current question
// and applies the scoring policy.
func (e *Engine) appendRecordLocked(selected *string, correct bool) {
	spent := e.cfg.QuestionSeconds - e.timeRemaining
	if e.mode == ModeUntimed {
		spent = int(e.now().Sub(e.questionStart) / time.Second)
	}

	e.history = append(e.history, models.AnswerRecord{
		QuestionText:     e.current.Text,
		SelectedAnswer:   selected,
		WasCorrect:       correct,
		TimeSpentSeconds: spent,
	})

	if correct {
		e.correctCount++
		points := e.cfg.BasePoints
		if e.mode == ModeTimed {
			points += e.cfg.BonusPerSecond * e.timeRemaining
		}
		e.score += points
	}
}

// Snapshot returns the current render-facing view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		State:         e.state,
		Mode:          e.mode,
		Question:      e.current,
		HasQuestion:   e.hasCurrent,
		QuestionIndex: e.questionIndex,
		TimeRemaining: e.timeRemaining,
		Score:         e.score,
		CorrectCount:  e.correctCount,
		Answered:      len(e.history),
		VerifyPending: e.verifyPending,
	}
}

// State returns the current machine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Score returns the accumulated score.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// CorrectCount returns how many questions were answered correctly.
func (e *Engine) CorrectCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.correctCount
}

// History returns a copy of the per-question records so far.
func (e *Engine) History() []models.AnswerRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.AnswerRecord(nil), e.history...)
}

// TimeRemaining returns the seconds left on the current question.
func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeRemaining
}
