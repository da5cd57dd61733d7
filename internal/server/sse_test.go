package server

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBroadcasterFanOut(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "subs"})
	b := NewBroadcaster(nil, gauge)

	a, ok := b.Subscribe("a")
	if !ok {
		t.Fatal("subscribe a refused")
	}
	c, _ := b.Subscribe("c")
	if got := testutil.ToFloat64(gauge); got != 2 {
		t.Errorf("gauge = %v, want 2", got)
	}

	b.Broadcast(Event{Name: "frame", Data: 1})
	for name, ch := range map[string]chan Event{"a": a, "c": c} {
		select {
		case ev := <-ch:
			if ev.Name != "frame" {
				t.Errorf("%s got %q", name, ev.Name)
			}
		default:
			t.Errorf("%s got nothing", name)
		}
	}

	b.Unsubscribe("a")
	if _, open := <-a; open {
		t.Error("unsubscribed channel should be closed")
	}
	if b.ClientCount() != 1 || testutil.ToFloat64(gauge) != 1 {
		t.Errorf("count = %d, gauge = %v", b.ClientCount(), testutil.ToFloat64(gauge))
	}
	b.Unsubscribe("a")
}

func TestBroadcasterDropsForSlowClient(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	ch, _ := b.Subscribe("slow")

	for i := 0; i < clientBuffer+10; i++ {
		b.Broadcast(Event{Name: "frame", Data: i})
	}
	if len(ch) != clientBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), clientBuffer)
	}
	first := <-ch
	if first.Data != 0 {
		t.Errorf("first event = %v, want the oldest", first.Data)
	}
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	ch, _ := b.Subscribe("x")

	b.Close()
	if _, open := <-ch; open {
		t.Error("channel should be closed")
	}
	if _, ok := b.Subscribe("y"); ok {
		t.Error("subscribe after close should be refused")
	}
	b.Unsubscribe("x")
}
