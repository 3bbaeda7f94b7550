package session

import "time"

// Task is a deferred action that may still be cancelled.
type Task interface {
	// Cancel stops the task. It reports false if the task already ran.
	Cancel() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

// After schedules fn with time.AfterFunc.
func (TimerScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

type timerTask struct {
	t *time.Timer
}

func (t timerTask) Cancel() bool {
	return t.t.Stop()
}
