package storage

// MemStore is an in-memory Store. The tracker tests exercise their services
// through it instead of touching disk.
type MemStore[T any] struct {
	empty func() T
	doc   T
	saved bool

	// Saves counts successful Save calls.
	Saves int
}

// NewMemStore returns a MemStore seeded with the empty default.
func NewMemStore[T any](empty func() T) *MemStore[T] {
	return &MemStore[T]{empty: empty}
}

// Load returns the last saved document, or the empty default before the
// first save.
func (s *MemStore[T]) Load() (T, error) {
	if !s.saved {
		return s.empty(), nil
	}
	return s.doc, nil
}

// Save retains the document in memory.
func (s *MemStore[T]) Save(doc T) error {
	s.doc = doc
	s.saved = true
	s.Saves++
	return nil
}
