package core

import "time"

// Timer represents a scheduled event in the control loop.
type Timer struct {
	WakeTime time.Time
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps pending timers sorted by wake time. The whole loop runs on
// one execution context, so no locking is required.
type Scheduler struct {
	head *Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule inserts a timer in sorted order by WakeTime. A timer already in
// the list must be canceled before being scheduled again.
func (s *Scheduler) Schedule(t *Timer) {
	if s.head == nil || t.WakeTime.Before(s.head.WakeTime) {
		t.Next = s.head
		s.head = t
		return
	}

	current := s.head
	for current.Next != nil && current.Next.WakeTime.Before(t.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Cancel removes a timer from the schedule. Canceling a timer that is not
// scheduled is a no-op.
func (s *Scheduler) Cancel(t *Timer) {
	if s.head == nil {
		return
	}
	if s.head == t {
		s.head = t.Next
		t.Next = nil
		return
	}

	current := s.head
	for current.Next != nil {
		if current.Next == t {
			current.Next = t.Next
			t.Next = nil
			return
		}
		current = current.Next
	}
}

// NextWake returns the earliest pending wake time, if any timer is scheduled.
func (s *Scheduler) NextWake() (time.Time, bool) {
	if s.head == nil {
		return time.Time{}, false
	}
	return s.head.WakeTime, true
}

// Dispatch runs every timer due at or before now. Handlers returning
// SF_RESCHEDULE are reinserted with their updated WakeTime.
func (s *Scheduler) Dispatch(now time.Time) {
	for s.head != nil && !s.head.WakeTime.After(now) {
		timer := s.head
		s.head = timer.Next
		timer.Next = nil // clear to avoid circular references

		result := timer.Handler(timer)

		if result == SF_RESCHEDULE {
			s.Schedule(timer)
		}
	}
}
