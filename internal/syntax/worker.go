package syntax

import (
	"sync"
	"time"

	"github.com/dshills/keystorm/internal/engine/rope"
)

// snapshotSource is the callback a Worker uses to fetch the rope it should
// parse against. It is provided by the owning Document rather than the
// worker holding a reference to the whole Engine, keeping the dependency
// one-directional.
type snapshotSource func() (r rope.Rope, contentVersion uint64)

// Worker runs a Provider's Reparse loop on a dedicated goroutine so that
// buffer edits, which happen on the main goroutine, never wait on a
// tree-sitter parse. It coalesces bursts of edits: if edits arrive faster
// than debounce, only the most recent snapshot is parsed once the debounce
// window elapses.
type Worker struct {
	provider Provider
	snapshot snapshotSource
	debounce time.Duration

	mu             sync.Mutex
	contentVersion uint64
	dirty          bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewWorker starts a background goroutine that reparses provider whenever
// NotifyEdit is called, debounced by debounce. snapshot must return a
// consistent (rope, content version) pair; it is called only from the
// worker's goroutine.
func NewWorker(provider Provider, snapshot snapshotSource, debounce time.Duration) *Worker {
	w := &Worker{
		provider: provider,
		snapshot: snapshot,
		debounce: debounce,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// NotifyEdit queues an edit against the underlying provider and wakes the
// worker. Never blocks.
func (w *Worker) NotifyEdit(e Edit) {
	w.provider.RecordEdit(e)
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	timer := time.NewTimer(24 * time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-w.done:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			return
		case <-w.notify:
			if !pending {
				pending = true
				timer.Reset(w.debounce)
			}
		case <-timer.C:
			pending = false
			w.mu.Lock()
			dirty := w.dirty
			w.dirty = false
			w.mu.Unlock()
			if !dirty {
				continue
			}
			r, version := w.snapshot()
			newVersion, err := w.provider.Reparse(r)
			if err != nil {
				continue
			}
			w.mu.Lock()
			w.contentVersion = version
			_ = newVersion
			w.mu.Unlock()
		}
	}
}

// ContentVersion returns the content version the most recently installed
// tree was parsed against. Pair it with Provider.TreeVersion to key a
// highlight cache entry.
func (w *Worker) ContentVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contentVersion
}

// Stop terminates the worker's goroutine. Safe to call more than once.
func (w *Worker) Stop() {
	w.once.Do(func() { close(w.done) })
}
