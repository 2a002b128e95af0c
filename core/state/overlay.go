package state

import (
	"errors"
	"sort"
	"sync"

	"creatorpay/storage"
)

// ErrOverlayClosed is returned when an overlay is used after Commit or Discard.
var ErrOverlayClosed = errors.New("state: overlay already closed")

// Overlay stages writes on top of a committed database. Reads see staged
// writes first. Nothing reaches the database until Commit, which applies every
// staged write in one batch.
type Overlay struct {
	mu     sync.Mutex
	base   storage.Database
	writes map[string][]byte
	closed bool
}

// NewOverlay opens a staging layer over base.
func NewOverlay(base storage.Database) *Overlay {
	return &Overlay{base: base, writes: make(map[string][]byte)}
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrOverlayClosed
	}
	if v, ok := o.writes[string(key)]; ok {
		o.mu.Unlock()
		return append([]byte(nil), v...), nil
	}
	o.mu.Unlock()
	return o.base.Get(key)
}

func (o *Overlay) Put(key []byte, value []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOverlayClosed
	}
	o.writes[string(key)] = append([]byte(nil), value...)
	return nil
}

// Pending reports the number of staged writes.
func (o *Overlay) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.writes)
}

// Commit flushes staged writes to the base database atomically and closes the
// overlay.
func (o *Overlay) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOverlayClosed
	}
	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	batch := o.base.NewBatch()
	for _, k := range keys {
		batch.Put([]byte(k), o.writes[k])
	}
	if batch.Len() > 0 {
		if err := batch.Write(); err != nil {
			return err
		}
	}
	o.closed = true
	o.writes = nil
	return nil
}

// Discard drops staged writes and closes the overlay.
func (o *Overlay) Discard() {
	o.mu.Lock()
	o.closed = true
	o.writes = nil
	o.mu.Unlock()
}
