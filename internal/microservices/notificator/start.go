package notificator

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/mq"
	"cafeteria-system/internal/common/ops"
	"cafeteria-system/internal/microservices/notificator/handlers"
	"cafeteria-system/internal/microservices/notificator/hub"
	"cafeteria-system/internal/microservices/notificator/service"
)

type Notifier struct {
	hub     *hub.Hub
	puller  *mq.Puller
	svc     *service.Service
	handler *handlers.Handler
}

func New(src mq.Getter, resolver auth.Resolver, writeTimeout time.Duration, retry mq.RetryPolicy,
	idle time.Duration, sc *ops.ServiceContext) *Notifier {
	h := hub.New(writeTimeout, sc.Metrics, sc.Log)
	puller := mq.NewPuller(src, mq.OrderStatus, retry, idle, sc.Log)
	puller.OnFailure = func(error) { sc.Metrics.Inc(hub.MetricPushFailures) }
	return &Notifier{
		hub:     h,
		puller:  puller,
		svc:     service.New(h, sc),
		handler: handlers.New(h, resolver, sc.Log),
	}
}

func (n *Notifier) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", n.handler.WSHandler.Connect)
}

// Run drives the hub actor and the order.status pull loop until ctx is done.
func (n *Notifier) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.hub.Run(gctx) })
	g.Go(func() error { return n.puller.Run(gctx, n.svc.NotificatorService.HandleEvent) })
	return g.Wait()
}
