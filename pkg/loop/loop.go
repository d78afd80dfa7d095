// Package loop предоставляет однопоточный цикл выполнения задач.
// Все задачи, переданные в Loop, выполняются строго последовательно
// на одной горутине, что позволяет изменять состояние без блокировок.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"notekeeper/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogLoopStarted = "task loop started"
	LogLoopStopped = "task loop stopped"
	LogTaskPanic   = "task panicked"
)

const defaultQueueSize = 64

var (
	// ErrStopped возвращается, если цикл уже остановлен.
	ErrStopped = errors.New("loop stopped")
	// ErrAlreadyRunning возвращается при повторном вызове Run.
	ErrAlreadyRunning = errors.New("loop already running")
)

// Timer - отменяемый отложенный вызов.
type Timer interface {
	Stop() bool
}

// Loop - очередь задач, выполняемых одной горутиной.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	running atomic.Bool
	once    sync.Once
}

// New создает цикл с очередью заданного размера.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Loop{
		tasks:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}
}

// Run выполняет задачи до отмены ctx или вызова Stop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	log := logger.Log(ctx)
	log.Info(ctx, LogLoopStarted)
	defer log.Info(ctx, LogLoopStopped)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return nil
		case <-l.stopped:
			return nil
		case task := <-l.tasks:
			l.execute(ctx, task)
		}
	}
}

func (l *Loop) execute(ctx context.Context, task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log(ctx).Error(ctx, LogTaskPanic, zap.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Stop завершает цикл. Задачи, оставшиеся в очереди, не выполняются.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stopped) })
}

// Post ставит задачу в очередь без ожидания ее выполнения.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- task:
		return true
	case <-l.stopped:
		return false
	}
}

// Do выполняет fn в цикле и ждет завершения.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("submit task: %w", ctx.Err())
	}

	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("wait task: %w", ctx.Err())
	}
}

// AfterFunc вызывает fn в цикле по истечении d.
// После Stop таймера fn гарантированно не будет вызвана, даже если
// срабатывание уже попало в очередь.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.canceled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

type loopTimer struct {
	timer    *time.Timer
	canceled atomic.Bool
}

func (t *loopTimer) Stop() bool {
	wasActive := !t.canceled.Swap(true)
	return t.timer.Stop() && wasActive
}
