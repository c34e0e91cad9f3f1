package id

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNextHasPrefixAndParses(t *testing.T) {
	f := NewSource().Next()

	if !strings.HasPrefix(f.String(), Prefix) {
		t.Fatalf("folder id should start with %q, got %s", Prefix, f)
	}
	if !IsFolderID(f.String()) {
		t.Errorf("IsFolderID should accept %s", f)
	}
}

func TestNextIncreases(t *testing.T) {
	src := NewSource()

	prev := src.Next()
	for i := 0; i < 100; i++ {
		next := src.Next()
		if next <= prev {
			t.Fatalf("ids should increase: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestSeededSourceIsReproducible(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return at }

	a := NewSeededSource(7, clock)
	b := NewSeededSource(7, clock)
	for i := 0; i < 5; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("step %d: %s != %s", i, x, y)
		}
	}
}

func TestFunc(t *testing.T) {
	next := NewSource().Func()
	if !IsFolderID(next()) {
		t.Error("Func should return folder ids")
	}
}

func TestIsFolderID(t *testing.T) {
	cases := map[string]bool{
		"":                               false,
		"phone":                          false,
		"folder_":                        false,
		"folder_not-a-ulid":              false,
		"folder_1":                       false,
		"req_01HQ3K2VQ8X6W2M1Z9B7C5D4E3": false,
		NewFolderID().String():           true,
	}

	for in, want := range cases {
		if got := IsFolderID(in); got != want {
			t.Errorf("IsFolderID(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCreatedAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewSeededSource(1, func() time.Time { return at }).Next()

	got, err := CreatedAt(f.String())
	if err != nil {
		t.Fatalf("CreatedAt: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got, at)
	}

	if _, err := CreatedAt("phone"); !errors.Is(err, ErrNotFolderID) {
		t.Errorf("expected ErrNotFolderID, got %v", err)
	}
	if _, err := CreatedAt("folder_zz"); !errors.Is(err, ErrNotFolderID) {
		t.Errorf("expected ErrNotFolderID for a bad body, got %v", err)
	}
}

func TestNewFolderIDConcurrent(t *testing.T) {
	const workers, per = 8, 50

	var (
		mu  sync.Mutex
		ids []string
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, per)
			for i := 0; i < per; i++ {
				local = append(local, NewFolderID().String())
			}
			mu.Lock()
			ids = append(ids, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			t.Fatalf("duplicate folder id %s", ids[i])
		}
	}
	if len(ids) != workers*per {
		t.Errorf("got %d ids, want %d", len(ids), workers*per)
	}
}
