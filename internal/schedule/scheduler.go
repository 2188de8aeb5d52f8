// Package schedule turns daily trading windows into begin and end callbacks.
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/pkg/exception"
)

const clockLayout = time.TimeOnly

// Window is a daily session. An end before the begin crosses midnight.
type Window struct {
	Begin string `json:"begin" yaml:"begin"`
	End   string `json:"end" yaml:"end"`
}

// Config lists the windows and the weekdays they open on, 0 being Sunday.
// No weekdays means Monday to Friday.
type Config struct {
	Windows  []Window `json:"windows" yaml:"windows"`
	WorkDays []int    `json:"work_days" yaml:"work_days"`
}

type window struct {
	begin    time.Duration
	duration time.Duration
}

// Scheduler is polled by one goroutine.
type Scheduler struct {
	windows  []window
	workDays map[time.Weekday]bool
	active   map[int]time.Time
	onBegin  func()
	onEnd    func()
}

func New(cfg Config) (*Scheduler, error) {
	s := &Scheduler{
		windows:  make([]window, 0, len(cfg.Windows)),
		workDays: make(map[time.Weekday]bool),
		active:   make(map[int]time.Time),
	}
	for _, w := range cfg.Windows {
		begin, err := parseClock(w.Begin)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(w.End)
		if err != nil {
			return nil, err
		}
		if end <= begin {
			end += 24 * time.Hour
		}
		s.windows = append(s.windows, window{begin: begin, duration: end - begin})
	}

	days := cfg.WorkDays
	if len(days) == 0 {
		days = []int{1, 2, 3, 4, 5}
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, errors.Wrapf(exception.ErrInvalidConfig, "work day %d", d)
		}
		s.workDays[time.Weekday(d)] = true
	}
	return s, nil
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, errors.Wrapf(exception.ErrInvalidConfig, "clock %q, err: %+v", value, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// Empty reports whether no window is configured.
func (s *Scheduler) Empty() bool {
	return len(s.windows) == 0
}

func (s *Scheduler) SetCallbacks(onBegin, onEnd func()) {
	s.onBegin, s.onEnd = onBegin, onEnd
}

// Active reports whether any window is open.
func (s *Scheduler) Active() bool {
	return len(s.active) != 0
}

// Poll fires the end callback of every window that closed, then the begin
// callback of every window that opened, either today or yesterday.
func (s *Scheduler) Poll(now time.Time) {
	closed := make([]int, 0, len(s.active))
	for i, end := range s.active {
		if !now.Before(end) {
			closed = append(closed, i)
		}
	}
	sort.Ints(closed)
	for _, i := range closed {
		delete(s.active, i)
		logs.Infof("schedule window %d end", i)
		if s.onEnd != nil {
			s.onEnd()
		}
	}

	today := midnight(now)
	yesterday := today.AddDate(0, 0, -1)
	for i, w := range s.windows {
		if _, ok := s.active[i]; ok {
			continue
		}
		for _, day := range []time.Time{yesterday, today} {
			if !s.workDays[day.Weekday()] {
				continue
			}
			begin := day.Add(w.begin)
			end := begin.Add(w.duration)
			if now.Before(begin) || !now.Before(end) {
				continue
			}
			s.active[i] = end
			logs.Infof("schedule window %d begin, end at %s", i, end.Format(time.DateTime))
			if s.onBegin != nil {
				s.onBegin()
			}
			break
		}
	}
}

// Run polls every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	s.Poll(time.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Poll(now)
		}
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
