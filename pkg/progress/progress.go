// Package progress reports how far a long build has come.
package progress

import (
	"log"
	"time"
)

// Timer is told about each phase of a build. Phases started with StartIter
// expect exactly one Next per item.
type Timer interface {
	Start(name string)
	Stop(name string)
	StartIter(name string, total int)
	Next()
}

// Nop ignores everything.
type Nop struct{}

func (Nop) Start(string)          {}
func (Nop) Stop(string)           {}
func (Nop) StartIter(string, int) {}
func (Nop) Next()                 {}

// LogTimer writes phase durations to a logger.
type LogTimer struct {
	logger  *log.Logger
	started map[string]time.Time

	iterName  string
	iterTotal int
	iterDone  int
	iterStart time.Time
}

// NewLogTimer creates a LogTimer. A nil logger uses the standard logger.
func NewLogTimer(logger *log.Logger) *LogTimer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogTimer{logger: logger, started: make(map[string]time.Time)}
}

// Start begins a named phase.
func (t *LogTimer) Start(name string) {
	t.started[name] = time.Now()
}

// Stop ends a named phase and logs how long it took.
func (t *LogTimer) Stop(name string) {
	began, ok := t.started[name]
	if !ok {
		t.logger.Printf("progress: stop of %q without start", name)
		return
	}
	delete(t.started, name)
	t.logger.Printf("%s took %s", name, time.Since(began).Round(time.Millisecond))
}

// StartIter begins a phase of total items.
func (t *LogTimer) StartIter(name string, total int) {
	t.finishIter()
	t.iterName = name
	t.iterTotal = total
	t.iterDone = 0
	t.iterStart = time.Now()
	if total == 0 {
		t.finishIter()
	}
}

// Next marks one item of the current phase as done.
func (t *LogTimer) Next() {
	if t.iterName == "" {
		return
	}
	t.iterDone++
	if t.iterDone >= t.iterTotal {
		t.finishIter()
	}
}

func (t *LogTimer) finishIter() {
	if t.iterName == "" {
		return
	}
	t.logger.Printf("%s (%d/%d) took %s", t.iterName, t.iterDone, t.iterTotal, time.Since(t.iterStart).Round(time.Millisecond))
	t.iterName = ""
}

// Tee forwards every call to each of timers in order.
type Tee []Timer

func (t Tee) Start(name string) {
	for _, timer := range t {
		timer.Start(name)
	}
}

func (t Tee) Stop(name string) {
	for _, timer := range t {
		timer.Stop(name)
	}
}

func (t Tee) StartIter(name string, total int) {
	for _, timer := range t {
		timer.StartIter(name, total)
	}
}

func (t Tee) Next() {
	for _, timer := range t {
		timer.Next()
	}
}
