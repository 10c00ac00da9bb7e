package world

import "sync"

// NewMemoryStorage returns a MapStorage that keeps snapshots in memory.
func NewMemoryStorage() MapStorage {
	return &memoryMapStorage{
		rows: make(map[int][]TileRecord),
	}
}

type memoryMapStorage struct {
	mu        sync.RWMutex
	rows      map[int][]TileRecord
	header    Header
	hasHeader bool
}

func (m *memoryMapStorage) LoadRow(y int) ([]TileRecord, bool, error) {
	m.mu.RLock()
	records, ok := m.rows[y]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	dup := make([]TileRecord, len(records))
	copy(dup, records)
	return dup, true, nil
}

func (m *memoryMapStorage) SaveRow(y int, records []TileRecord) error {
	m.mu.Lock()
	dup := make([]TileRecord, len(records))
	copy(dup, records)
	m.rows[y] = dup
	m.mu.Unlock()
	return nil
}

func (m *memoryMapStorage) LoadHeader() (Header, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.header, m.hasHeader, nil
}

func (m *memoryMapStorage) SaveHeader(header Header) error {
	m.mu.Lock()
	m.header = header
	m.hasHeader = true
	m.mu.Unlock()
	return nil
}

func (m *memoryMapStorage) Delete(y int) error {
	m.mu.Lock()
	delete(m.rows, y)
	m.mu.Unlock()
	return nil
}

func (m *memoryMapStorage) ForEach(fn func(y int, records []TileRecord) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for y, records := range m.rows {
		dup := make([]TileRecord, len(records))
		copy(dup, records)
		if !fn(y, dup) {
			break
		}
	}
	return nil
}

func (m *memoryMapStorage) Close() error {
	return nil
}
