package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/DeterminateSystems/ringbuf"
)

var ErrUnknownStream = errors.New("unknown stream")

// Occupancy states, also used as event names.
const (
	StateEmpty   = "empty"
	StatePartial = "partial"
	StateFull    = "full"
)

// Event kinds that are not occupancy states.
const (
	EventCreated   = "created"
	EventOverwrite = "overwrite"
	EventCleared   = "cleared"
)

var now = func() time.Time {
	return time.Now().UTC()
}

func timestamp() string {
	return now().Format(time.RFC3339Nano)
}

type Record struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Payload  string `json:"payload"`
	Received string `json:"received"`
}

type Event struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

type StreamEvent struct {
	Stream string `json:"stream"`
	Event  Event  `json:"event"`
}

func NewEvent(event string) Event {
	return Event{Event: event, Timestamp: timestamp()}
}

// Streams is the set of rings, one per stream name.
type Streams struct {
	mu       sync.RWMutex
	capacity uint16
	broker   *Broker
	metrics  *Metrics
	byName   map[string]*Stream
}

func NewStreams(capacity uint16, broker *Broker, metrics *Metrics) *Streams {
	return &Streams{
		capacity: capacity,
		broker:   broker,
		metrics:  metrics,
		byName:   make(map[string]*Stream),
	}
}

func (s *Streams) Get(name string) (*Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, name)
	}
	return st, nil
}

func (s *Streams) GetOrCreate(name string) *Stream {
	if st, err := s.Get(name); err == nil {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.byName[name]; ok {
		return st
	}
	st := NewStream(name, s.capacity, s.broker, s.metrics)
	s.byName[name] = st
	s.metrics.setStreams(len(s.byName))
	return st
}

func (s *Streams) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Streams) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.byName)
}

// Stream is one fixed-capacity ring of records plus a state machine that
// follows its occupancy. The ring itself is not safe for concurrent use, so
// every access goes through mu.
type Stream struct {
	Name string

	mu      sync.Mutex
	records *ringbuf.Ring[Record, uint16]
	fsm     *fsm.FSM
	broker  *Broker
	metrics *Metrics
}

type StreamSnapshot struct {
	Name    string   `json:"name"`
	State   string   `json:"state"`
	Len     uint16   `json:"len"`
	Cap     uint16   `json:"cap"`
	Records []Record `json:"records"`
}

func NewStream(name string, capacity uint16, broker *Broker, metrics *Metrics) *Stream {
	st := &Stream{
		Name:    name,
		records: ringbuf.New[Record, uint16](capacity),
		broker:  broker,
		metrics: metrics,
	}

	st.fsm = fsm.NewFSM(
		StateEmpty,
		fsm.Events{
			{Name: StatePartial, Src: []string{StateEmpty, StateFull}, Dst: StatePartial},
			{Name: StateFull, Src: []string{StateEmpty, StatePartial}, Dst: StateFull},
			{Name: StateEmpty, Src: []string{StatePartial, StateFull}, Dst: StateEmpty},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				st.publish(e.Dst)
			},
		},
	)

	st.publish(EventCreated)
	return st
}

func (s *Stream) publish(event string) {
	if s.broker == nil {
		return
	}
	dropped := s.broker.Publish(StreamEvent{
		Stream: s.Name,
		Event:  NewEvent(event),
	})
	s.metrics.recordDropped(dropped)
}

func (s *Stream) occupancy() string {
	switch {
	case s.records.IsEmpty():
		return StateEmpty
	case s.records.IsFull():
		return StateFull
	default:
		return StatePartial
	}
}

// track moves the state machine to the ring's current occupancy. Staying in
// the same state is not a transition and publishes nothing.
func (s *Stream) track(ctx context.Context) {
	state := s.occupancy()
	if s.fsm.Is(state) {
		return
	}
	if err := s.fsm.Event(ctx, state); err != nil {
		slog.Error("stream state transition failed", "stream", s.Name, "to", state, "error", err)
	}
}

func endName(front bool) string {
	if front {
		return "front"
	}
	return "back"
}

// Push records payload at the chosen end of the ring. It reports whether an
// existing record had to be overwritten to make room.
func (s *Stream) Push(ctx context.Context, source, payload string, front bool) (rec Record, overwrote bool) {
	rec = Record{
		ID:       uuid.NewString(),
		Source:   source,
		Payload:  payload,
		Received: timestamp(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	if front {
		ok = s.records.PushFront(rec)
	} else {
		ok = s.records.PushBack(rec)
	}
	if !ok {
		s.publish(EventOverwrite)
	}
	s.metrics.recordPush(s.Name, endName(front), !ok, int(s.records.Len()))
	s.track(ctx)
	return rec, !ok
}

// Pop removes a record from the chosen end. ok is false when the stream is
// empty.
func (s *Stream) Pop(ctx context.Context, front bool) (rec Record, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if front {
		rec, ok = s.records.TryPopFront()
	} else {
		rec, ok = s.records.TryPopBack()
	}
	if !ok {
		return rec, false
	}
	s.metrics.recordPop(s.Name, endName(front), int(s.records.Len()))
	s.track(ctx)
	return rec, true
}

func (s *Stream) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records.Clear()
	s.publish(EventCleared)
	s.metrics.setLength(s.Name, 0)
	s.track(ctx)
}

func (s *Stream) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Slice()
}

func (s *Stream) State() string {
	return s.fsm.Current()
}

func (s *Stream) Snapshot() StreamSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StreamSnapshot{
		Name:    s.Name,
		State:   s.fsm.Current(),
		Len:     s.records.Len(),
		Cap:     s.records.Cap(),
		Records: s.records.Slice(),
	}
}

// Dump writes the ring's physical layout, one slot per line.
func (s *Stream) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.DumpFunc(w, func(rec Record) string {
		if rec.ID == "" {
			return "-"
		}
		return fmt.Sprintf("%s %s %q", rec.Received, rec.Source, rec.Payload)
	})
}

func (s *Stream) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.records)
}
