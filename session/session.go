// Package session holds the expression rows and the variable environment
// shared by the input side and the render side.
//
// All writes go through one mutex and publish a fresh immutable Snapshot;
// readers load the current snapshot without locking and never observe a
// half-applied change. Every change to the row list recomputes the
// environment.
package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/variables"
)

// DefaultPalette is the color cycle for new rows.
var DefaultPalette = []string{"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e", "#9467bd", "#17becf", "#e377c2"}

// DefaultInboxSize is the number of injections buffered between drains.
const DefaultInboxSize = 64

// Row is one expression input.
type Row struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Color string    `json:"color"`
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	Version   uint64
	Rows      []Row
	Env       variables.Environment
	UpdatedAt time.Time
}

// Texts returns the raw text of every row.
func (s Snapshot) Texts() []string {
	return texts(s.Rows)
}

// SamplerRows converts the rows for a render pass.
func (s Snapshot) SamplerRows() []sampler.Row {
	rows := make([]sampler.Row, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = sampler.Row{Text: row.Text, Color: row.Color}
	}

	return rows
}

// Options configure a Session.
type Options struct {
	Palette   []string
	Range     variables.Range
	InboxSize int
}

// Session is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	inbox   chan string
	palette []string
	colors  int
}

// New creates an empty session.
func New(opts Options) *Session {
	if len(opts.Palette) == 0 {
		opts.Palette = DefaultPalette
	}

	if opts.InboxSize <= 0 {
		opts.InboxSize = DefaultInboxSize
	}

	s := &Session{
		inbox:   make(chan string, opts.InboxSize),
		palette: append([]string(nil), opts.Palette...),
	}
	s.current.Store(&Snapshot{Env: variables.New(opts.Range), UpdatedAt: time.Now()})

	return s
}

// Snapshot returns the current state. The row slice is a copy, so callers
// may modify it freely.
func (s *Session) Snapshot() Snapshot {
	snap := *s.current.Load()
	snap.Rows = cloneRows(snap.Rows)

	return snap
}

// Add appends a row with the next palette color.
func (s *Session) Add(text string) Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := Row{ID: uuid.New(), Text: text, Color: s.nextColor()}

	cur := s.current.Load()
	s.publish(cur, append(cloneRows(cur.Rows), row))

	return row
}

// Update replaces the text of a row.
func (s *Session) Update(id uuid.UUID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()

	rows := cloneRows(cur.Rows)
	for i := range rows {
		if rows[i].ID == id {
			rows[i].Text = text
			s.publish(cur, rows)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrRowNotFound, id)
}

// Remove deletes a row.
func (s *Session) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()

	for i, row := range cur.Rows {
		if row.ID == id {
			rows := make([]Row, 0, len(cur.Rows)-1)
			rows = append(rows, cur.Rows[:i]...)
			rows = append(rows, cur.Rows[i+1:]...)
			s.publish(cur, rows)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrRowNotFound, id)
}

// Replace swaps in a whole row list and applies saved variable values to
// the names the new rows reference. Rows without a color get one from the
// palette.
func (s *Session) Replace(rows []Row, values map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows = cloneRows(rows)
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}

		if rows[i].Color == "" {
			rows[i].Color = s.nextColor()
		}
	}

	cur := s.current.Load()
	env := variables.Recompute(cur.Env, texts(rows))

	for _, name := range env.Names() {
		if v, ok := values[name]; ok {
			env = env.With(name, v)
		}
	}

	s.current.Store(&Snapshot{Version: cur.Version + 1, Rows: rows, Env: env, UpdatedAt: time.Now()})
}

// SetVariable moves a slider. Only names present in the environment can be
// set; the value is clamped and quantized.
func (s *Session) SetVariable(name string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, ok := cur.Env.Get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}

	s.current.Store(&Snapshot{
		Version:   cur.Version + 1,
		Rows:      cur.Rows,
		Env:       cur.Env.With(name, v),
		UpdatedAt: time.Now(),
	})

	return nil
}

// Inject queues an expression from a host process. It never blocks: when
// the inbox is full the expression is rejected with ErrInboxFull.
func (s *Session) Inject(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInjection
	}

	select {
	case s.inbox <- text:
		return nil
	default:
		return ErrInboxFull
	}
}

// Drain applies every queued injection as a new row, exactly as if typed,
// and returns the added rows. Call it between render passes.
func (s *Session) Drain() []Row {
	var added []Row

	for {
		select {
		case text := <-s.inbox:
			added = append(added, s.Add(text))
		default:
			return added
		}
	}
}

// Pending returns the number of queued injections.
func (s *Session) Pending() int {
	return len(s.inbox)
}

func (s *Session) nextColor() string {
	color := s.palette[s.colors%len(s.palette)]
	s.colors++

	return color
}

// publish must be called with mu held.
func (s *Session) publish(cur *Snapshot, rows []Row) {
	s.current.Store(&Snapshot{
		Version:   cur.Version + 1,
		Rows:      rows,
		Env:       variables.Recompute(cur.Env, texts(rows)),
		UpdatedAt: time.Now(),
	})
}

func cloneRows(rows []Row) []Row {
	return append([]Row(nil), rows...)
}

func texts(rows []Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Text
	}

	return out
}
