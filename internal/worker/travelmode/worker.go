package travelmode

import (
	"context"
	"sync"
	"time"

	travelMode "github.com/m04kA/SMC-SlotExchangeService/internal/usecase/travel_mode"
)

// Confirmer один проход автоподтверждения
type Confirmer interface {
	ConfirmStale(ctx context.Context) (*travelMode.ConfirmResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker запускает автоподтверждение режима поездки с фиксированным интервалом
type Worker struct {
	confirmer Confirmer
	interval  time.Duration
	logger    Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New создает воркер
func New(confirmer Confirmer, interval time.Duration, logger Logger) *Worker {
	return &Worker{
		confirmer: confirmer,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start запускает цикл в отдельной горутине
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	w.logger.Info("TravelModeWorker: started, interval=%s", w.interval)
}

// Stop останавливает цикл и ждет завершения текущего прохода
func (w *Worker) Stop() {
	w.once.Do(func() {
		if w.cancel == nil {
			close(w.done)
			return
		}
		w.cancel()
		<-w.done
		w.logger.Info("TravelModeWorker: stopped")
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	result, err := w.confirmer.ConfirmStale(ctx)
	if err != nil {
		w.logger.Error("TravelModeWorker: pass failed: %v", err)
		return
	}
	if result.Failed > 0 {
		w.logger.Warn("TravelModeWorker: %d rooms failed, will retry next tick", result.Failed)
	}
}
