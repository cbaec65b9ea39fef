package telemetry

import (
	"sync"
	"testing"
)

func TestMemoryRecorder(t *testing.T) {
	m := NewMemory()

	m.Count("queue.append", 1, map[string]string{"entity": "plant"})
	m.Count("queue.append", 2, nil)
	m.Count("plant.create", 1, nil)

	snap := m.Snapshot()
	if snap["queue.append"] != 3 {
		t.Errorf("expected queue.append = 3, got %d", snap["queue.append"])
	}
	if snap["plant.create"] != 1 {
		t.Errorf("expected plant.create = 1, got %d", snap["plant.create"])
	}
}

func TestMemoryRecorderConcurrent(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Count("ops", 1, nil)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot()["ops"]; got != 1000 {
		t.Errorf("expected 1000 counted ops, got %d", got)
	}
}

func TestNoopIsSafe(t *testing.T) {
	var n Noop
	n.Count("anything", 1, nil)
}
