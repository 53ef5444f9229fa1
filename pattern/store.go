package pattern

// HistoryLimit bounds the undo stack; the oldest snapshot drops on overflow.
const HistoryLimit = 50

// Store owns the current pattern plus a bounded undo/redo history. It is
// not internally synchronized: the engine loop is the single writer and the
// single reader, so mutation is already serialized.
type Store struct {
	history []Pattern
	index   int
}

// NewStore starts with one empty snapshot so undo at the start is a no-op.
func NewStore() *Store {
	return &Store{history: []Pattern{New()}, index: 0}
}

// Pattern returns the current snapshot.
func (s *Store) Pattern() Pattern {
	return s.history[s.index]
}

// Commit makes p current and records it as an undoable snapshot. Writing
// past a rewound index discards the stale forward branch first.
func (s *Store) Commit(p Pattern) {
	s.history = append(s.history[:s.index+1], p)
	if len(s.history) > HistoryLimit {
		s.history = s.history[len(s.history)-HistoryLimit:]
	}
	s.index = len(s.history) - 1
}

// Apply replaces the current snapshot without touching history. This is the
// viewer path: remote-applied edits are not locally undoable.
func (s *Store) Apply(p Pattern) {
	s.history[s.index] = p
}

// Undo steps back one snapshot. At the oldest snapshot it is a silent no-op.
func (s *Store) Undo() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Redo steps forward one snapshot. At the newest snapshot it is a silent no-op.
func (s *Store) Redo() bool {
	if s.index == len(s.history)-1 {
		return false
	}
	s.index++
	return true
}

// CanUndo reports whether Undo would change state.
func (s *Store) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether Redo would change state.
func (s *Store) CanRedo() bool { return s.index < len(s.history)-1 }

// Depth returns the number of retained snapshots.
func (s *Store) Depth() int { return len(s.history) }
