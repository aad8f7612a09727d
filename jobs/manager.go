package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"african-culture-quiz/db"
	"african-culture-quiz/models"
	"african-culture-quiz/quiz"
	"african-culture-quiz/utils"
)

const (
	TypePaymentEvent = "payment:event"
)

// JobManager owns the background work: the asynq queue that absorbs payment
// webhook events so the donation flow never blocks quiz serving, and the
// cron schedule that refreshes the question caches and prunes the
// leaderboard.
type JobManager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	cron   *cron.Cron
}

func NewJobManager(redisURL string, database *db.DB, store *quiz.Store, translations *quiz.Translations) *JobManager {
	addr := strings.TrimPrefix(redisURL, "redis://")
	redisOpt := asynq.RedisClientOpt{
		Addr: addr,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"critical": 6, // payment events
			"default":  3,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			utils.LogError("Job failed: type=%s error=%v", task.Type(), err)
		}),
		Logger: &AsynqLogger{},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePaymentEvent, handlePaymentEvent(database))

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := store.Refresh(); err != nil {
			utils.LogError("Scheduled question refresh failed: %v", err)
		}
		if err := translations.Refresh(); err != nil {
			utils.LogError("Scheduled translation refresh failed: %v", err)
		}
	}); err != nil {
		utils.LogError("Failed to schedule cache refresh: %v", err)
	}
	if _, err := c.AddFunc("@daily", func() {
		if err := database.PruneLeaderboard(db.DefaultLeaderboardSize); err != nil {
			utils.LogError("Scheduled leaderboard prune failed: %v", err)
		}
	}); err != nil {
		utils.LogError("Failed to schedule leaderboard prune: %v", err)
	}

	return &JobManager{
		client: client,
		server: server,
		mux:    mux,
		cron:   c,
	}
}

func (jm *JobManager) Start() error {
	utils.LogStartup("Starting background schedule and job queue worker...")
	jm.cron.Start()
	return jm.server.Run(jm.mux)
}

func (jm *JobManager) Stop() {
	utils.LogShutdown("Stopping background jobs...")
	jm.cron.Stop()
	jm.server.Stop()
	jm.server.Shutdown()
	jm.client.Close()
}

// EnqueuePaymentEvent hands an authenticated webhook event to the queue.
func (jm *JobManager) EnqueuePaymentEvent(event models.WebhookEvent) error {
	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	task := asynq.NewTask(TypePaymentEvent, payloadBytes)
	info, err := jm.client.Enqueue(task,
		asynq.Queue("critical"),
		asynq.MaxRetry(5),
		asynq.Timeout(60*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue payment event: %w", err)
	}

	utils.LogPayment("Queued payment event: job=%s transaction=%s status=%s",
		info.ID, event.TransactionID, event.Status)
	return nil
}

func handlePaymentEvent(database *db.DB) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var event models.WebhookEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			return fmt.Errorf("failed to unmarshal payment event: %w", err)
		}

		utils.LogPayment("Processing payment event: transaction=%s status=%s",
			event.TransactionID, event.Status)

		err := database.UpdateTransactionStatus(event.TransactionID, event.Status, event.Reference)
		if err == db.ErrTransactionNotFound {
			// Unknown transaction will not appear by retrying
			utils.LogError("Payment event for unknown transaction %s", event.TransactionID)
			return fmt.Errorf("unknown transaction %s: %w", event.TransactionID, asynq.SkipRetry)
		}
		if err != nil {
			return fmt.Errorf("failed to apply payment event %s: %w", event.TransactionID, err)
		}

		utils.LogPayment("Transaction %s updated to %s", event.TransactionID, event.Status)
		return nil
	}
}

// AsynqLogger routes asynq's internal logging through the tagged log helpers.
type AsynqLogger struct{}

func (l *AsynqLogger) Debug(args ...interface{}) {
	utils.LogDebug("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	utils.LogInfo("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	utils.LogError("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	utils.LogError("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	utils.LogError("%s", fmt.Sprint(args...))
}
