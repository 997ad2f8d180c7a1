package runlog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ytscribe/internal/runlog"
)

func TestHubDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	hub := runlog.NewHub(0, runlog.SinkFunc(func(line string) {
		mu.Lock()
		got = append(got, line)
		mu.Unlock()
	}))

	want := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		line := fmt.Sprintf("line-%03d", i)
		want = append(want, line)
		hub.Notify(line)
	}
	hub.Flush()
	hub.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("delivered %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHubNeverBlocksProducer(t *testing.T) {
	release := make(chan struct{})
	hub := runlog.NewHub(8, runlog.SinkFunc(func(string) {
		<-release
	}))
	defer func() {
		close(release)
		hub.Close()
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			hub.Notify("spam")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked on a stalled consumer")
	}
	if hub.Dropped() == 0 {
		t.Fatal("expected drops when the consumer stalls on a full buffer")
	}
}

func TestHubNotifyAfterCloseIsNoop(t *testing.T) {
	hub := runlog.NewHub(4)
	hub.Close()
	hub.Notify("late") // must not panic
}

func TestFileSinkAppends(t *testing.T) {
	dir := t.TempDir()
	sink := runlog.NewFileSink(dir)

	sink.Append("first")
	sink.Append("second")

	data, err := os.ReadFile(filepath.Join(dir, runlog.LogFileName))
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("unexpected run log contents: %q", data)
	}
}

func TestFileSinkSwallowsFailures(t *testing.T) {
	sink := runlog.NewFileSink(filepath.Join(t.TempDir(), "missing", "deeply"))
	sink.Append("goes nowhere") // must not panic or error
}

func TestHubFansOutToAllSinks(t *testing.T) {
	var a, b strings.Builder
	var mu sync.Mutex
	hub := runlog.NewHub(0,
		runlog.SinkFunc(func(line string) { mu.Lock(); a.WriteString(line); mu.Unlock() }),
		runlog.SinkFunc(func(line string) { mu.Lock(); b.WriteString(line); mu.Unlock() }),
	)
	hub.Notify("x")
	hub.Flush()
	hub.Close()

	mu.Lock()
	defer mu.Unlock()
	if a.String() != "x" || b.String() != "x" {
		t.Fatalf("fan-out mismatch: %q / %q", a.String(), b.String())
	}
}
