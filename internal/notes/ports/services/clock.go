// Package services defines the auxiliary service ports of the notes workspace.
package services

import "time"

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

// ClockFunc адаптирует функцию к Clock.
type ClockFunc func() time.Time

// Now вызывает f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock - системные часы в UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })
