// Package filestore holds the flat, insertion-ordered set of editor files and
// the current selection.
//
// The store is never empty, names are unique, and the current name is always
// present. Operations that would break one of these rules are ignored rather
// than reported: every mutator returns false and leaves the store untouched.
package filestore

import (
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ChangeFunc receives the serialized mapping after every applied mutation.
// It is called with the store locked, so it must not call back into the
// store and should hand the blob off instead of doing slow work.
type ChangeFunc func(blob string)

// Store is safe for concurrent use. Each operation is atomic.
type Store struct {
	mu       sync.Mutex
	files    *orderedmap.OrderedMap[string, Record]
	current  string
	onChange ChangeFunc
}

// New returns a store seeded with the built-in files.
func New() *Store {
	return fromMap(defaults())
}

// Restore rebuilds a store from a blob produced by Serialize. Absent or
// malformed blobs yield the built-in files.
func Restore(blob string) *Store {
	m, ok := decode(blob)
	if !ok {
		return New()
	}
	return fromMap(m)
}

func fromMap(m *orderedmap.OrderedMap[string, Record]) *Store {
	s := &Store{files: m}
	if _, ok := m.Get(DefaultCurrent); ok {
		s.current = DefaultCurrent
	} else {
		s.current = m.Oldest().Key
	}
	return s
}

func defaults() *orderedmap.OrderedMap[string, Record] {
	m := orderedmap.New[string, Record](len(defaultFiles))
	for _, f := range defaultFiles {
		m.Set(f.name, f.record)
	}
	return m
}

func decode(blob string) (*orderedmap.OrderedMap[string, Record], bool) {
	if strings.TrimSpace(blob) == "" {
		return nil, false
	}
	m := orderedmap.New[string, Record]()
	if err := json.Unmarshal([]byte(blob), m); err != nil {
		return nil, false
	}
	if m.Len() == 0 {
		return nil, false
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if strings.TrimSpace(pair.Key) == "" {
			return nil, false
		}
		rec := pair.Value
		switch rec.Kind {
		case KindFile:
		case "":
			rec.Kind = KindFile
		default:
			return nil, false
		}
		if !rec.Language.Valid() {
			rec.Language = newRecord(pair.Key).Language
		}
		pair.Value = rec
	}
	return m, true
}

// SetOnChange installs the mutation hook. Passing nil removes it.
func (s *Store) SetOnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// changed must be called with s.mu held.
func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange(s.serializeLocked())
	}
}

// Create adds a file whose language and content come from its extension and
// selects it. The name is stored as given. Blank, non-UTF-8 or existing names
// are ignored.
func (s *Store) Create(name string) bool {
	if strings.TrimSpace(name) == "" || !utf8.ValidString(name) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files.Get(name); ok {
		return false
	}
	s.files.Set(name, newRecord(name))
	s.current = name
	s.changed()
	return true
}

// Delete removes a file. The last remaining file cannot be deleted. When the
// current file is removed the first remaining file becomes current.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files.Get(name); !ok {
		return false
	}
	if s.files.Len() <= 1 {
		return false
	}
	s.files.Delete(name)
	if s.current == name {
		s.current = s.files.Oldest().Key
	}
	s.changed()
	return true
}

// Select makes name current. Unknown names are ignored.
func (s *Store) Select(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files.Get(name); !ok {
		return false
	}
	s.current = name
	return true
}

// UpdateContent replaces the content of name. Unknown names and content that
// is not valid UTF-8 are ignored, since the serialized form could not carry it.
func (s *Store) UpdateContent(name, content string) bool {
	if !utf8.ValidString(content) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.files.Get(name)
	if !ok {
		return false
	}
	rec.Content = content
	s.files.Set(name, rec)
	s.changed()
	return true
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Get(name)
}

// Current returns the selected name.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentRecord returns the selected name and its record.
func (s *Store) CurrentRecord() (string, Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, _ := s.files.Get(s.current)
	return s.current, rec
}

// Names lists file names in insertion order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namesLocked()
}

func (s *Store) namesLocked() []string {
	names := make([]string, 0, s.files.Len())
	for pair := s.files.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Len()
}

// Serialize encodes the mapping, without the selection, as JSON. Key order
// follows insertion order.
func (s *Store) Serialize() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serializeLocked()
}

func (s *Store) serializeLocked() string {
	data, err := json.Marshal(s.files)
	if err != nil {
		// Records only hold strings; this cannot happen in practice.
		return ""
	}
	return string(data)
}

// Snapshot returns a copy of the store that later mutations do not affect.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Names:   s.namesLocked(),
		Files:   make(map[string]Record, s.files.Len()),
		Current: s.current,
	}
	for pair := s.files.Oldest(); pair != nil; pair = pair.Next() {
		snap.Files[pair.Key] = pair.Value
	}
	return snap
}

// Snapshot is a read-only view of a Store.
type Snapshot struct {
	Names   []string          `json:"names"`
	Files   map[string]Record `json:"files"`
	Current string            `json:"current"`
}

// File returns the record stored under name.
func (s Snapshot) File(name string) (Record, bool) {
	rec, ok := s.Files[name]
	return rec, ok
}

// CurrentRecord returns the record of the selected file.
func (s Snapshot) CurrentRecord() Record {
	return s.Files[s.Current]
}
