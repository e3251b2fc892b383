package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	apperrors "github.com/chuckhq/chuck-hq/src/internal/errors"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

// Status describes how a read produced its document.
type Status int

const (
	// StatusOK means the file existed and parsed.
	StatusOK Status = iota
	// StatusMissing means the file did not exist; the empty default was returned.
	StatusMissing
	// StatusRecovered means the file existed but could not be parsed; the empty default was returned.
	StatusRecovered
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ReadResult reports the outcome of a read alongside the document.
type ReadResult struct {
	Status Status
	// Reason is set when Status is StatusRecovered.
	Reason error
}

// Recovered reports whether the empty default replaced a corrupt document.
func (r ReadResult) Recovered() bool {
	return r.Status == StatusRecovered
}

// KindResolver returns the registered kind of a document file.
type KindResolver func(name string) (config.ResourceKind, bool)

// Option configures a Store.
type Option func(*Store)

// WithKindResolver sets the registry used by Read to pick empty defaults.
func WithKindResolver(resolver KindResolver) Option {
	return func(s *Store) {
		s.kinds = resolver
	}
}

// WithSerializedWrites makes Lock hold a real per-document mutex.
func WithSerializedWrites(enabled bool) Option {
	return func(s *Store) {
		if enabled {
			s.locks = make(map[string]*sync.Mutex)
		}
	}
}

// Store is the only component touching the data directory.
type Store struct {
	dir   string
	kinds KindResolver

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on first write.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of the named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// KindForName returns the kind of the named document. Registered names win;
// otherwise a name whose stem ends in "s" is a collection and anything else
// is a singleton.
func (s *Store) KindForName(name string) config.ResourceKind {
	if s.kinds != nil {
		if kind, ok := s.kinds(name); ok {
			return kind
		}
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(stem, "s") {
		return config.KindCollection
	}
	return config.KindSingleton
}

// Lock serializes read-modify-write cycles on one document when the store was
// created WithSerializedWrites(true). Otherwise it is a no-op.
func (s *Store) Lock(name string) (unlock func()) {
	if s.locks == nil {
		return func() {}
	}

	s.locksMu.Lock()
	m, ok := s.locks[name]
	if !ok {
		m = &sync.Mutex{}
		s.locks[name] = m
	}
	s.locksMu.Unlock()

	m.Lock()
	return m.Unlock
}

// Read loads the named document using KindForName to pick its shape.
func (s *Store) Read(name string) (Document, ReadResult) {
	if s.KindForName(name) == config.KindCollection {
		return s.ReadCollection(name)
	}
	return s.ReadSingleton(name)
}

// ReadCollection loads the named collection document.
func (s *Store) ReadCollection(name string) (Collection, ReadResult) {
	var items Collection
	res := s.load(name, &items, func() error {
		if items == nil {
			return errors.New("document is not an array")
		}
		for i, it := range items {
			if it == nil {
				return fmt.Errorf("element %d is not an object", i)
			}
		}
		return nil
	})
	if res.Status != StatusOK {
		return Collection{}, res
	}
	return items, res
}

// ReadSingleton loads the named singleton document. The document is a
// Singleton, or a List when an array was stored in its place.
func (s *Store) ReadSingleton(name string) (Document, ReadResult) {
	var raw any
	var doc Document
	res := s.load(name, &raw, func() error {
		var ok bool
		if doc, ok = SingletonOf(raw); !ok {
			return errors.New("document is not an object or array")
		}
		return nil
	})
	if res.Status != StatusOK {
		return Singleton{}, res
	}
	return doc, res
}

func (s *Store) load(name string, target any, check func() error) ReadResult {
	path := s.Path(name)

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf("Document %s does not exist, using empty default", path)
		return ReadResult{Status: StatusMissing}
	}
	if err == nil {
		err = decode(content, target)
	}
	if err == nil {
		err = check()
	}
	if err != nil {
		log.Warnf("Failed to load %s, using empty default: %v", path, err)
		return ReadResult{Status: StatusRecovered, Reason: err}
	}
	return ReadResult{Status: StatusOK}
}

// Write replaces the named document on disk.
func (s *Store) Write(name string, doc Document) error {
	var v any = doc
	switch d := doc.(type) {
	case Collection:
		if d == nil {
			v = Collection{}
		}
	case Singleton:
		if d == nil {
			v = Singleton{}
		}
	case List:
		if d == nil {
			v = List{}
		}
	case nil:
		return apperrors.NewStorageError(fmt.Sprintf("refusing to write nil document %s", name), nil)
	}

	content, err := Encode(v)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode %s", name), err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create data directory", err)
	}
	if err := os.WriteFile(s.Path(name), content, 0644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", name), err)
	}
	return nil
}

// Encode renders v as two-space indented JSON followed by a newline. HTML
// characters are not escaped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses exactly one JSON value, keeping numbers as json.Number.
func decode(content []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}
