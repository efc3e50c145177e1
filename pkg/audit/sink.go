package audit

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultQueueSize bounds the sink's in-flight event queue.
const DefaultQueueSize = 1024

// Sink delivers audit events asynchronously so the request path never blocks
// on syslog or the audit database. Enqueue never blocks: when the queue is
// full the event is counted as dropped and the drop is logged.
type Sink struct {
	logger *Logger
	store  *Store
	log    *zap.Logger

	events  chan Event
	dropped atomic.Uint64
	failed  atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// NewSink starts the delivery worker. store may be nil, in which case events
// only go to the syslog writer.
func NewSink(logger *Logger, store *Store, log *zap.Logger, queueSize int) *Sink {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sink{
		logger: logger,
		store:  store,
		log:    log,
		events: make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue submits an event for delivery without blocking.
func (s *Sink) Enqueue(event Event) {
	if !IsEnabled() {
		return
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
		s.log.Warn("audit queue full, event dropped",
			zap.String("msgid", event.MessageID()),
			zap.Uint64("dropped_total", s.dropped.Load()),
		)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Failed reports how many events reached the worker but could not be
// persisted to the audit database. Such events still hit the syslog writer.
func (s *Sink) Failed() uint64 {
	return s.failed.Load()
}

// Close stops accepting events, drains the queue, and waits for the worker.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.events)
		<-s.done
	})
}

func (s *Sink) run() {
	defer close(s.done)
	for event := range s.events {
		s.logger.Log(event)
		if s.store == nil {
			continue
		}
		if err := s.store.Save(event); err != nil {
			s.failed.Add(1)
			s.log.Error("failed to persist audit event",
				zap.String("msgid", event.MessageID()),
				zap.Uint64("failed_total", s.failed.Load()),
				zap.Error(err),
			)
		}
	}
}
