package store

// MemoryPersister keeps the snapshot in process memory
type MemoryPersister struct {
	Data  []byte
	Saves int
}

// Load returns the last saved snapshot, or Data as seeded
func (m *MemoryPersister) Load() ([]byte, error) {
	return m.Data, nil
}

// Save keeps a copy of data and counts the write
func (m *MemoryPersister) Save(data []byte) error {
	m.Data = append([]byte(nil), data...)
	m.Saves++
	return nil
}
