package kitchen

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafeteria-system/internal/common/mq"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/kitchen/repository"
	"cafeteria-system/internal/microservices/kitchen/service"
)

// Broker is the subset of the RabbitMQ client the worker needs.
type Broker interface {
	mq.Getter
	mq.Publisher
}

type Worker struct {
	puller *mq.Puller
	svc    *service.Service
}

// New wires the worker and registers its health checks; call it before serving /health.
func New(db *pgxpool.Pool, broker Broker, retry mq.RetryPolicy, idle time.Duration,
	opts service.Options, sc *ops.ServiceContext) *Worker {
	repo := repository.New(db)
	sc.AddCheck("postgres", repo.KitchenRepo.Ping)
	events := mq.NewQueuePublisher(broker, mq.OrderStatus, sc.Service)

	puller := mq.NewPuller(broker, mq.KitchenJobs, retry, idle, sc.Log)
	puller.OnFailure = func(error) { sc.Metrics.Inc(service.MetricFailures) }
	return &Worker{puller: puller, svc: service.New(repo, events, opts, sc)}
}

// Run pulls kitchen.jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	return w.puller.Run(ctx, w.svc.KitchenService.HandleJob)
}
