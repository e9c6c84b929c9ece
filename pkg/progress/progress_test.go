package progress

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogTimerPhases(t *testing.T) {
	var buf bytes.Buffer
	timer := NewLogTimer(log.New(&buf, "", 0))

	timer.Start("build")
	timer.StartIter("lanes", 3)
	timer.Next()
	timer.Next()
	if strings.Contains(buf.String(), "lanes") {
		t.Fatalf("phase logged before it finished: %q", buf.String())
	}
	timer.Next()
	timer.StartIter("empty", 0)
	timer.Stop("build")

	out := buf.String()
	for _, want := range []string{"lanes (3/3) took", "empty (0/0) took", "build took"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestLogTimerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewLogTimer(log.New(&buf, "", 0)).Stop("ghost")
	if !strings.Contains(buf.String(), "without start") {
		t.Fatalf("got %q", buf.String())
	}
}

type counter struct{ starts, iters, nexts, stops int }

func (c *counter) Start(string)          { c.starts++ }
func (c *counter) Stop(string)           { c.stops++ }
func (c *counter) StartIter(string, int) { c.iters++ }
func (c *counter) Next()                 { c.nexts++ }

func TestTeeForwardsToAll(t *testing.T) {
	a, b := &counter{}, &counter{}
	var timer Timer = Tee{a, b, Nop{}}
	timer.Start("x")
	timer.StartIter("y", 2)
	timer.Next()
	timer.Next()
	timer.Stop("x")
	for _, c := range []*counter{a, b} {
		if *c != (counter{starts: 1, iters: 1, nexts: 2, stops: 1}) {
			t.Fatalf("got %+v", *c)
		}
	}
}
