package travelmode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	travelMode "github.com/m04kA/SMC-SlotExchangeService/internal/usecase/travel_mode"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
)

type countingConfirmer struct {
	calls atomic.Int32
	err   error
}

func (c *countingConfirmer) ConfirmStale(context.Context) (*travelMode.ConfirmResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &travelMode.ConfirmResult{}, nil
}

func TestWorker_TicksUntilStopped(t *testing.T) {
	confirmer := &countingConfirmer{}
	w := New(confirmer, 10*time.Millisecond, logger.NewNop())

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return confirmer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	w.Stop()
	stopped := confirmer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, confirmer.calls.Load(), "no passes after Stop")

	w.Stop()
}

func TestWorker_KeepsRunningAfterErrors(t *testing.T) {
	confirmer := &countingConfirmer{err: errors.New("db down")}
	w := New(confirmer, 10*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	assert.Eventually(t, func() bool { return confirmer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	w.Stop()
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := New(&countingConfirmer{}, time.Second, logger.NewNop())
	assert.NotPanics(t, w.Stop)
}
