// Package id allocates folder identifiers.
//
// Folder ids live inside persisted layouts next to catalog app ids, so they
// carry a prefix no catalog id uses and a ULID body that stays unique across
// restarts. Ids from one Source sort in allocation order.
package id

import (
	"crypto/rand"
	"errors"
	"io"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix starts every generated folder id
const Prefix = "folder_"

// ErrNotFolderID is returned when a string was not produced by a Source
var ErrNotFolderID = errors.New("id: not a folder id")

// FolderID identifies a folder on a player's home screen
type FolderID string

func (f FolderID) String() string { return string(f) }

// Source hands out folder ids
type Source struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewSource returns a source backed by crypto/rand
func NewSource() *Source {
	return &Source{now: time.Now, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewSeededSource returns a reproducible source for tests and fixtures.
// A nil clock means time.Now.
func NewSeededSource(seed int64, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}
	return &Source{
		now:     now,
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(seed)), 0),
	}
}

// Next allocates a new folder id
func (s *Source) Next() FolderID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FolderID(Prefix + ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String())
}

// Func adapts the source to the plain string allocator the layout engine takes
func (s *Source) Func() func() string {
	return func() string { return s.Next().String() }
}

var (
	shared     *Source
	sharedOnce sync.Once
)

// NewFolderID allocates from the process-wide source
func NewFolderID() FolderID {
	sharedOnce.Do(func() { shared = NewSource() })
	return shared.Next()
}

// IsFolderID reports whether s was produced by a Source
func IsFolderID(s string) bool {
	_, err := parse(s)
	return err == nil
}

// CreatedAt returns the allocation time encoded in a folder id
func CreatedAt(s string) (time.Time, error) {
	u, err := parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

func parse(s string) (ulid.ULID, error) {
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return ulid.ULID{}, ErrNotFolderID
	}
	u, err := ulid.ParseStrict(body)
	if err != nil {
		return ulid.ULID{}, errors.Join(ErrNotFolderID, err)
	}
	return u, nil
}
