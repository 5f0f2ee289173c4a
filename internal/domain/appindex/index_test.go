package appindex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/appmeta/internal/ports"
)

const srcGedit = "/usr/share/applications/org.gnome.gedit.desktop"

func geditRecord(icon string) *ports.Record {
	return &ports.Record{
		DisplayName: "Text Editor",
		IconPath:    icon,
		Description: "Edit text files",
		SourceFile:  srcGedit,
	}
}

func TestIndex_ReplaceSharesRecordAcrossKeys(t *testing.T) {
	idx := New(nil, nil)
	rec := geditRecord("gedit")
	idx.Replace(srcGedit, []string{"/usr/bin/gedit", "org.gnome.gedit", "/usr/bin/gedit-real"}, rec)

	for _, k := range []string{"/usr/bin/gedit", "org.gnome.gedit", "/usr/bin/gedit-real"} {
		got, ok := idx.Get(k)
		require.True(t, ok, k)
		assert.Same(t, rec, got, "every key maps to the identical record instance")
	}
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, idx.Sources())
}

func TestIndex_ReplaceIsIdempotentOverwrite(t *testing.T) {
	idx := New(nil, nil)
	keys := []string{"/usr/bin/gedit", "org.gnome.gedit"}
	idx.Replace(srcGedit, keys, geditRecord("old-icon"))
	idx.Replace(srcGedit, keys, geditRecord("new-icon"))

	for _, k := range keys {
		got, ok := idx.Get(k)
		require.True(t, ok)
		assert.Equal(t, "new-icon", got.IconPath)
	}
	assert.Equal(t, 2, idx.Len(), "no duplication")
}

func TestIndex_ReplaceDropsKeysNoLongerDerived(t *testing.T) {
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"/usr/bin/gedit", "org.gnome.gedit"}, geditRecord("a"))
	// Exec changed between parses.
	idx.Replace(srcGedit, []string{"/usr/bin/gnome-text-editor", "org.gnome.gedit"}, geditRecord("b"))

	_, ok := idx.Get("/usr/bin/gedit")
	assert.False(t, ok, "stale exec key must go")
	assert.Equal(t, []string{"/usr/bin/gnome-text-editor", "org.gnome.gedit"}, idx.KeysFor(srcGedit))
}

func TestIndex_LastWriterWinsAcrossSources(t *testing.T) {
	idx := New(nil, nil)
	a := &ports.Record{DisplayName: "A", SourceFile: "/a.desktop"}
	b := &ports.Record{DisplayName: "B", SourceFile: "/b.desktop"}
	idx.Replace("/a.desktop", []string{"/usr/bin/shared", "a"}, a)
	idx.Replace("/b.desktop", []string{"/usr/bin/shared", "b"}, b)

	got, _ := idx.Get("/usr/bin/shared")
	assert.Equal(t, "B", got.DisplayName)

	// Removing A must not take B's claim on the shared key.
	assert.Equal(t, 1, idx.RemoveSource("/a.desktop"))
	got, ok := idx.Get("/usr/bin/shared")
	require.True(t, ok)
	assert.Equal(t, "B", got.DisplayName)

	// Re-parsing A reclaims it.
	idx.Replace("/a.desktop", []string{"/usr/bin/shared", "a"}, a)
	got, _ = idx.Get("/usr/bin/shared")
	assert.Equal(t, "A", got.DisplayName)
	assert.Equal(t, []string{"b"}, idx.KeysFor("/b.desktop"))
}

func TestIndex_RemoveSourceRemovesAllKeys(t *testing.T) {
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"/usr/bin/gedit", "org.gnome.gedit", "/usr/libexec/gedit"}, geditRecord("x"))

	assert.Equal(t, 3, idx.RemoveSource(srcGedit))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Sources())
	assert.Equal(t, 0, idx.RemoveSource(srcGedit), "second remove is a no-op")
}

func TestIndex_RemoveFirstLeavesOtherKeys(t *testing.T) {
	// The narrow delete drops one key per call; the others stay behind until
	// removed. RemoveSource does not have this gap.
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"/usr/bin/gedit", "org.gnome.gedit", "/usr/libexec/gedit"}, geditRecord("x"))

	require.True(t, idx.RemoveFirst(srcGedit))
	assert.Equal(t, 2, idx.Len())
	assert.Len(t, idx.KeysFor(srcGedit), 2)

	require.True(t, idx.RemoveFirst(srcGedit))
	require.True(t, idx.RemoveFirst(srcGedit))
	assert.False(t, idx.RemoveFirst(srcGedit))
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Sources())
}

func TestIndex_ReplaceWithNilRecordClears(t *testing.T) {
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"gedit"}, geditRecord("x"))
	idx.Replace(srcGedit, nil, nil)
	assert.Equal(t, 0, idx.Len())
}

func TestIndex_ReplaceSkipsEmptyKeys(t *testing.T) {
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"", "gedit"}, geditRecord("x"))
	assert.Equal(t, 1, idx.Len())
	_, ok := idx.Get("")
	assert.False(t, ok)
}

func TestIndex_EntriesSortedCopy(t *testing.T) {
	idx := New(nil, nil)
	idx.Replace(srcGedit, []string{"zz", "aa", "mm"}, geditRecord("x"))

	entries := idx.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "aa", entries[0].Key)
	assert.Equal(t, "mm", entries[1].Key)
	assert.Equal(t, "zz", entries[2].Key)

	entries[0].Record.DisplayName = "mutated"
	got, _ := idx.Get("aa")
	assert.Equal(t, "Text Editor", got.DisplayName, "entries are copies")
}

func TestIndex_ConcurrentReadersSeeWholeRecords(t *testing.T) {
	// Readers racing with writers observe either a miss or a record exactly
	// as some writer built it. Run with -race.
	idx := New(nil, nil)
	const writers, readers, rounds = 4, 8, 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			src := fmt.Sprintf("/apps/w%d.desktop", w)
			for i := 0; i < rounds; i++ {
				tag := fmt.Sprintf("%d-%d", w, i)
				rec := &ports.Record{
					DisplayName: "name-" + tag,
					IconPath:    "icon-" + tag,
					Description: "desc-" + tag,
					SourceFile:  src,
				}
				idx.Replace(src, []string{"/usr/bin/shared", fmt.Sprintf("w%d", w)}, rec)
				if i%50 == 0 {
					idx.RemoveSource(src)
				}
			}
		}(w)
	}

	errs := make(chan string, readers)
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				for _, key := range []string{"/usr/bin/shared", "w0", "w3"} {
					rec, ok := idx.Get(key)
					if !ok {
						continue
					}
					tag := rec.DisplayName[len("name-"):]
					if rec.IconPath != "icon-"+tag || rec.Description != "desc-"+tag || rec.SourceFile == "" {
						errs <- fmt.Sprintf("torn record under %s: %+v", key, *rec)
						return
					}
				}
				_ = idx.LookupByPath("/usr/bin/shared", "default")
				_ = idx.Entries()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
