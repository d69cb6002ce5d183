package store

import (
	"context"
	"sync"
)

var _ Tree = (*Memory)(nil)

// Memory keeps the whole tree in process. Used for tests and STORE_DRIVER=memory.
type Memory struct {
	mu   sync.RWMutex
	root map[string]any
}

func NewMemory() *Memory {
	return &Memory{root: make(map[string]any)}
}

func (m *Memory) Set(ctx context.Context, path string, value any) error {
	segs, err := Split(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	setNode(m.root, segs, v)
	return nil
}

func (m *Memory) Get(ctx context.Context, path string) (any, bool, error) {
	segs, err := Split(path)
	if err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := getNode(m.root, segs)
	return v, ok, nil
}

func (m *Memory) Update(ctx context.Context, values map[string]any) error {
	_, fields, err := splitUpdate(values)
	if err != nil {
		return err
	}
	normalized := make(map[string]any, len(values))
	for p, v := range values {
		n, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[p] = n
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for p, v := range normalized {
		setNode(m.root, fields[p], v)
	}
	return nil
}

func (m *Memory) UpdateExisting(ctx context.Context, parent string, values map[string]any) error {
	parentSegs, _, fields, err := splitGuarded(parent, values)
	if err != nil {
		return err
	}
	normalized := make(map[string]any, len(values))
	for p, v := range values {
		n, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[p] = n
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := getNode(m.root, parentSegs); !ok {
		return ErrNotFound
	}
	for p, v := range normalized {
		setNode(m.root, fields[p], v)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	segs, err := Split(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	deleteNode(m.root, segs)
	return nil
}

func (m *Memory) PushID(ctx context.Context, parent string) (string, error) {
	return newChildID(parent)
}
