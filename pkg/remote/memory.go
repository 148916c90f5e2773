package remote

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store with the same row semantics as the
// hosted sheet: creates append a row with the next row number, updates
// and deletes locate rows by rowNumber.
type MemoryStore struct {
	mu     sync.Mutex
	rows   []articles.RawRow
	next   int
	writes []Write

	// FetchErr and WriteErr, when set, are returned instead of doing work.
	FetchErr error
	WriteErr error
}

// Write is one recorded call to MemoryStore.Write.
type Write struct {
	Action  Action
	Payload articles.RawRow
}

// NewMemoryStore returns a store holding rows. Rows without a row number
// are assigned one.
func NewMemoryStore(rows ...articles.RawRow) *MemoryStore {
	s := &MemoryStore{next: 1}
	for _, r := range rows {
		r = r.Clone()
		if n, err := strconv.Atoi(r.Text(articles.ColumnRowNumber)); err == nil && n >= s.next {
			s.next = n + 1
		} else if r.Text(articles.ColumnRowNumber) == "" {
			r.Set(articles.ColumnRowNumber, s.take())
		}
		s.rows = append(s.rows, r)
	}
	return s
}

func (s *MemoryStore) take() json.Number {
	n := s.next
	s.next++
	return json.Number(strconv.Itoa(n))
}

// Fetch returns a copy of the rows.
func (s *MemoryStore) Fetch(ctx context.Context) ([]articles.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	out := make([]articles.RawRow, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

// Write applies a mutation.
func (s *MemoryStore) Write(ctx context.Context, action Action, payload articles.RawRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := EncodeWrite(action, payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, Write{Action: action, Payload: payload.Clone()})
	if s.WriteErr != nil {
		return s.WriteErr
	}

	switch action {
	case ActionCreate:
		row := payload.Clone()
		row.Set(articles.ColumnRowNumber, s.take())
		s.rows = append(s.rows, row)
		return nil
	case ActionUpdate:
		i := s.index(payload.Text(articles.ColumnRowNumber))
		if i < 0 {
			return errors.NewNotFoundError("row", payload.Text(articles.ColumnRowNumber))
		}
		row := payload.Clone()
		s.rows[i] = row
		return nil
	default:
		i := s.index(payload.Text(articles.ColumnRowNumber))
		if i < 0 {
			return errors.NewNotFoundError("row", payload.Text(articles.ColumnRowNumber))
		}
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
		return nil
	}
}

func (s *MemoryStore) index(rowNumber string) int {
	for i, r := range s.rows {
		if r.Text(articles.ColumnRowNumber) == rowNumber {
			return i
		}
	}
	return -1
}

// Writes returns the recorded write calls.
func (s *MemoryStore) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.writes...)
}

// Len returns the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
