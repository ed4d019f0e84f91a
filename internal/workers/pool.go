// Package workers runs deferred side effects (view recording, object cleanup)
// on a fixed pool of goroutines fed by a buffered channel.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/metrics"
)

// TaskKind names a deferred task.
type TaskKind string

const (
	KindRecordView   TaskKind = "record_view"
	KindDeleteObject TaskKind = "delete_object"
)

// taskTimeout bounds each task's calls to the store or object storage.
const taskTimeout = 10 * time.Second

// Task is one unit of deferred work.
type Task struct {
	Kind         TaskKind
	CollectionID uint
	ViewerID     uint
	ObjectKey    string
}

// ViewRecorder persists first views.
type ViewRecorder interface {
	RecordView(ctx context.Context, collectionID, viewerID uint) (bool, error)
}

// ObjectRemover deletes uploaded objects.
type ObjectRemover interface {
	RemoveObject(ctx context.Context, key string) error
}

// Pool is the deferred task queue. Dispatch never blocks: when the buffer is
// full the task is dropped and counted.
type Pool struct {
	tasks   chan Task
	views   ViewRecorder
	objects ObjectRemover

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool with a buffer of bufferSize tasks. objects may be nil
// when no object storage is configured; delete tasks are then skipped.
func NewPool(bufferSize int, views ViewRecorder, objects ObjectRemover) *Pool {
	return &Pool{
		tasks:   make(chan Task, bufferSize),
		views:   views,
		objects: objects,
	}
}

// Start launches workerCount workers.
func (p *Pool) Start(workerCount int) {
	logging.Info().Int("workers", workerCount).Int("buffer", cap(p.tasks)).Msg("Starting task workers")
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// DispatchRecordView queues the first-view bookkeeping of viewerID on collectionID.
func (p *Pool) DispatchRecordView(collectionID, viewerID uint) {
	p.dispatch(Task{Kind: KindRecordView, CollectionID: collectionID, ViewerID: viewerID})
}

// DispatchDeleteObject queues the removal of an uploaded object.
func (p *Pool) DispatchDeleteObject(key string) {
	if key == "" {
		return
	}
	p.dispatch(Task{Kind: KindDeleteObject, ObjectKey: key})
}

func (p *Pool) dispatch(t Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.Tasks.WithLabelValues(string(t.Kind), "dropped").Inc()
		return
	}
	select {
	case p.tasks <- t:
		metrics.Tasks.WithLabelValues(string(t.Kind), "queued").Inc()
	default:
		metrics.Tasks.WithLabelValues(string(t.Kind), "dropped").Inc()
		logging.Warn().Str("kind", string(t.Kind)).Msg("Task queue full, dropping task")
	}
}

// Close stops accepting tasks, drains the buffer and waits for the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		if err := p.run(t); err != nil {
			metrics.Tasks.WithLabelValues(string(t.Kind), "failed").Inc()
			logging.Error().Err(err).
				Str("kind", string(t.Kind)).
				Uint("collection_id", t.CollectionID).
				Str("object_key", t.ObjectKey).
				Msg("Deferred task failed")
			continue
		}
		metrics.Tasks.WithLabelValues(string(t.Kind), "done").Inc()
	}
}

func (p *Pool) run(t Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	switch t.Kind {
	case KindRecordView:
		recorded, err := p.views.RecordView(ctx, t.CollectionID, t.ViewerID)
		if err != nil {
			return err
		}
		if recorded {
			logging.Debug().Uint("collection_id", t.CollectionID).Uint("viewer_id", t.ViewerID).Msg("View recorded")
		}
	case KindDeleteObject:
		if p.objects == nil {
			logging.Debug().Str("object_key", t.ObjectKey).Msg("No object storage configured, skipping delete")
			return nil
		}
		if err := p.objects.RemoveObject(ctx, t.ObjectKey); err != nil {
			return err
		}
		logging.Info().Str("object_key", t.ObjectKey).Msg("Object deleted")
	}
	return nil
}
