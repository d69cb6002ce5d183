package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

var _ Tree = (*Disk)(nil)

// Disk keeps one JSON file per document under basePath/{collection}/{key}.
// It serialises writes in process, so it suits a single server instance.
type Disk struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

func NewDisk(basePath string) *Disk {
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}

func docKey(segs []string) string {
	return segs[0] + "/" + segs[1]
}

func (s *Disk) load(key string) (map[string]any, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	n, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return make(map[string]any), nil
	}
	return n.(map[string]any), nil
}

func (s *Disk) save(key string, doc map[string]any) error {
	if len(doc) == 0 {
		if !s.d.Has(key) {
			return nil
		}
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("failed to erase %s: %w", key, err)
		}
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.d.Write(key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Disk) Set(ctx context.Context, path string, value any) error {
	segs, err := Split(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}
	key := docKey(segs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(segs) == 2 {
		doc, _ := v.(map[string]any)
		if v != nil && doc == nil {
			return fmt.Errorf("%w: document %s must be an object", ErrUnsupportedValue, key)
		}
		return s.save(key, doc)
	}

	doc, err := s.load(key)
	if err != nil {
		return err
	}
	setNode(doc, segs[2:], v)
	return s.save(key, doc)
}

func (s *Disk) Get(ctx context.Context, path string) (any, bool, error) {
	segs, err := Split(path)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(docKey(segs))
	if err != nil {
		return nil, false, err
	}
	v, ok := getNode(doc, segs[2:])
	return v, ok, nil
}

func (s *Disk) Update(ctx context.Context, values map[string]any) error {
	doc, fields, err := splitUpdate(values)
	if err != nil || len(fields) == 0 {
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
	key := doc[0] + "/" + doc[1]

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(key)
	if err != nil {
		return err
	}
	for p, v := range normalized {
		setNode(current, fields[p][2:], v)
	}
	// The whole document is rewritten in one file write.
	return s.save(key, current)
}

func (s *Disk) UpdateExisting(ctx context.Context, parent string, values map[string]any) error {
	parentSegs, doc, fields, err := splitGuarded(parent, values)
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
	key := doc[0] + "/" + doc[1]

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(key)
	if err != nil {
		return err
	}
	if _, ok := getNode(current, parentSegs[2:]); !ok {
		return ErrNotFound
	}
	for p, v := range normalized {
		setNode(current, fields[p][2:], v)
	}
	return s.save(key, current)
}

func (s *Disk) Delete(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *Disk) PushID(ctx context.Context, parent string) (string, error) {
	return newChildID(parent)
}
