package dbadmin

import (
	"context"
	"sort"
)

// Memory is an in-memory Provisioner for tests and dry runs.
type Memory struct {
	Databases map[string]bool
	// Err, when set, is returned by every operation.
	Err error

	Created []string
	Dropped []string
}

// NewMemory returns an empty Memory provisioner.
func NewMemory() *Memory {
	return &Memory{Databases: map[string]bool{}}
}

// Create implements Provisioner.
func (m *Memory) Create(_ context.Context, name string) error {
	if m.Err != nil {
		return m.Err
	}
	if !m.Databases[name] {
		m.Databases[name] = true
		m.Created = append(m.Created, name)
	}
	return nil
}

// Drop implements Provisioner.
func (m *Memory) Drop(_ context.Context, name string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Databases[name] {
		delete(m.Databases, name)
		m.Dropped = append(m.Dropped, name)
	}
	return nil
}

// Exists implements Provisioner.
func (m *Memory) Exists(_ context.Context, name string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Databases[name], nil
}

// Names returns the existing databases, sorted.
func (m *Memory) Names() []string {
	names := make([]string, 0, len(m.Databases))
	for n := range m.Databases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
