package services

import "time"

// Timer - отменяемый отложенный вызов.
type Timer interface {
	Stop() bool
}

// Scheduler планирует вызов fn через d в общем потоке управления.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc адаптирует функцию к Scheduler.
type SchedulerFunc func(d time.Duration, fn func()) Timer

// AfterFunc вызывает f.
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer { return f(d, fn) }
