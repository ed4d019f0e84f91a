package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeViews struct {
	mu    sync.Mutex
	calls [][2]uint
}

func (f *fakeViews) RecordView(_ context.Context, collectionID, viewerID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]uint{collectionID, viewerID})
	return true, nil
}

type fakeObjects struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeObjects) RemoveObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return f.err
}

func TestPool_RunsQueuedTasks(t *testing.T) {
	views := &fakeViews{}
	objects := &fakeObjects{}
	p := NewPool(10, views, objects)
	p.Start(2)

	p.DispatchRecordView(1, 2)
	p.DispatchRecordView(3, 4)
	p.DispatchDeleteObject("thumbnails/a.png")
	p.DispatchDeleteObject("")
	p.Close()

	if len(views.calls) != 2 {
		t.Errorf("views recorded = %v, want 2 calls", views.calls)
	}
	if len(objects.keys) != 1 || objects.keys[0] != "thumbnails/a.png" {
		t.Errorf("objects removed = %v", objects.keys)
	}
}

func TestPool_DropsWhenFull(t *testing.T) {
	views := &fakeViews{}
	p := NewPool(1, views, nil)

	// No workers yet: the second task does not fit.
	p.DispatchRecordView(1, 1)
	p.DispatchRecordView(2, 2)

	p.Start(1)
	p.Close()

	if len(views.calls) != 1 || views.calls[0] != [2]uint{1, 1} {
		t.Errorf("views recorded = %v, want only the first task", views.calls)
	}
}

func TestPool_DispatchAfterCloseIsIgnored(t *testing.T) {
	views := &fakeViews{}
	p := NewPool(4, views, nil)
	p.Start(1)
	p.Close()

	p.DispatchRecordView(1, 1)
	p.Close()

	if len(views.calls) != 0 {
		t.Errorf("task ran after Close: %v", views.calls)
	}
}

func TestPool_FailuresDoNotStopWorkers(t *testing.T) {
	objects := &fakeObjects{err: errors.New("bucket gone")}
	p := NewPool(4, &fakeViews{}, objects)
	p.Start(1)

	p.DispatchDeleteObject("a")
	p.DispatchDeleteObject("b")
	p.Close()

	if len(objects.keys) != 2 {
		t.Errorf("removals attempted = %v, want both", objects.keys)
	}
}

func TestPool_NilObjectRemoverSkipsDeletes(t *testing.T) {
	p := NewPool(4, &fakeViews{}, nil)
	p.Start(1)
	p.DispatchDeleteObject("a")
	p.Close()
}
