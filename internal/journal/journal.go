// Package journal captures the committed ledger event stream and archives it
// in immutable JSON segments through the blob store abstraction.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cuecore/internal/blob"
	"cuecore/pkg/domain"
)

// Segment is the archived unit: a batch of events in publish order.
type Segment struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Events    []domain.Event `json:"events"`
}

// Journal buffers published events in memory and flushes them to a blob
// store as write-once segments. It implements domain.EventSink.
type Journal struct {
	store  blob.Store
	prefix string

	mu      sync.Mutex
	pending []domain.Event
}

// Option customizes journal construction.
type Option func(*Journal)

// WithPrefix sets the key prefix segments are archived under. The default is
// "journal/".
func WithPrefix(prefix string) Option {
	return func(j *Journal) { j.prefix = prefix }
}

// New returns a journal archiving into store.
func New(store blob.Store, opts ...Option) *Journal {
	j := &Journal{store: store, prefix: "journal/"}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ domain.EventSink = (*Journal)(nil)

// Publish buffers one committed event. Archiving happens on Flush, so a slow
// blob backend never blocks the transaction path.
func (j *Journal) Publish(ev domain.Event) {
	j.mu.Lock()
	j.pending = append(j.pending, ev)
	j.mu.Unlock()
}

// Pending returns the count of buffered, not yet archived events.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush archives all buffered events as one segment and clears the buffer.
// With nothing buffered it is a no-op returning zero Info. On archive failure
// the events are restored to the front of the buffer for the next attempt.
func (j *Journal) Flush(ctx context.Context) (blob.Info, error) {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()
	if len(batch) == 0 {
		return blob.Info{}, nil
	}

	seg := Segment{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Events:    batch,
	}
	payload, err := json.Marshal(seg)
	if err != nil {
		j.restore(batch)
		return blob.Info{}, err
	}
	// Keys sort chronologically so Replay can walk segments in flush order.
	key := fmt.Sprintf("%s%s-%s.json", j.prefix, seg.CreatedAt.Format("20060102T150405.000000000Z"), seg.ID)
	info, err := j.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"events": fmt.Sprintf("%d", len(batch))},
	})
	if err != nil {
		j.restore(batch)
		return blob.Info{}, err
	}
	return info, nil
}

func (j *Journal) restore(batch []domain.Event) {
	j.mu.Lock()
	j.pending = append(batch, j.pending...)
	j.mu.Unlock()
}

// Segments lists archived segment blobs, key ascending.
func (j *Journal) Segments(ctx context.Context) ([]blob.Info, error) {
	return j.store.List(ctx, j.prefix)
}

// ReadSegment loads one archived segment back.
func (j *Journal) ReadSegment(ctx context.Context, key string) (Segment, error) {
	_, rc, err := j.store.Get(ctx, key)
	if err != nil {
		return Segment{}, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return Segment{}, err
	}
	var seg Segment
	if err := json.Unmarshal(b, &seg); err != nil {
		return Segment{}, err
	}
	return seg, nil
}

// Replay streams every archived event, segment by segment in key order, then
// the still-buffered tail, to fn. It stops on the first error.
func (j *Journal) Replay(ctx context.Context, fn func(domain.Event) error) error {
	infos, err := j.Segments(ctx)
	if err != nil {
		return err
	}
	sort.Slice(infos, func(a, b int) bool { return infos[a].Key < infos[b].Key })
	for _, info := range infos {
		seg, err := j.ReadSegment(ctx, info.Key)
		if err != nil {
			return err
		}
		for _, ev := range seg.Events {
			if err := fn(ev); err != nil {
				return err
			}
		}
	}
	j.mu.Lock()
	tail := make([]domain.Event, len(j.pending))
	copy(tail, j.pending)
	j.mu.Unlock()
	for _, ev := range tail {
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}
