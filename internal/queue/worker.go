package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/trifonnt/accountd/internal/domain"
	"github.com/trifonnt/accountd/internal/logger"
)

// Worker consumes user change notifications. Downstream consumers are
// expected to replace handleUserChanged with their own processing; the
// default handler logs the event.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(redisOpt asynq.RedisClientOpt, destination string) *Worker {
	if destination == "" {
		destination = TypeUserChanged
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux}
	mux.HandleFunc(destination, w.handleUserChanged)
	return w
}

func (w *Worker) handleUserChanged(ctx context.Context, t *asynq.Task) error {
	var event domain.UserChangedEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		logger.Log.Error("user change payload invalid",
			"component", "queue_worker",
			"error", err)
		return err
	}
	logger.Log.Info("user changed",
		"component", "queue_worker",
		"login", event.Login,
		"email", event.Email,
		"activated", event.Activated,
		"authorities", event.Authorities)
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
