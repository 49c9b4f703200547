package roomlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrLockTimeout возвращается, когда блокировку комнаты не удалось получить вовремя
var ErrLockTimeout = errors.New("roomlock: timed out waiting for room lock")

// WaitObserver получатель времени ожидания блокировки
type WaitObserver interface {
	ObserveRoomLockWait(duration time.Duration)
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker выдает по одному писателю на комнату.
// Семафоры создаются по требованию и удаляются, когда на них никто не ссылается.
type Locker struct {
	mu       sync.Mutex
	rooms    map[string]*entry
	timeout  time.Duration
	observer WaitObserver
}

// New создает Locker. timeout <= 0 означает ожидание до отмены контекста.
// observer может быть nil.
func New(timeout time.Duration, observer WaitObserver) *Locker {
	return &Locker{
		rooms:    make(map[string]*entry),
		timeout:  timeout,
		observer: observer,
	}
}

// Lock захватывает комнату и возвращает функцию освобождения
func (l *Locker) Lock(ctx context.Context, roomID string) (func(), error) {
	e := l.acquireEntry(roomID)

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	err := e.sem.Acquire(waitCtx, 1)
	if l.observer != nil {
		l.observer.ObserveRoomLockWait(time.Since(start))
	}
	if err != nil {
		l.releaseEntry(roomID)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: room=%s", ErrLockTimeout, roomID)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.releaseEntry(roomID)
		})
	}, nil
}

// Size количество комнат, для которых сейчас хранится семафор
func (l *Locker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

func (l *Locker) acquireEntry(roomID string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rooms[roomID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.rooms[roomID] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.rooms[roomID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.rooms, roomID)
	}
}
