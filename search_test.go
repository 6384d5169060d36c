package zeno_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zenoarc/zeno"
	"github.com/zenoarc/zeno/internal/testutil"
)

// wikiArticles is a multi-namespace fixture in raw sort order.
func wikiArticles() []testutil.TestArticle {
	return []testutil.TestArticle{
		{Namespace: '-', Title: "favicon", Data: []byte("icon")},
		{Namespace: 'A', Title: "Apple", Data: []byte("a1")},
		{Namespace: 'A', Title: "Banana", Data: []byte("a2")},
		{Namespace: 'A', Title: "Cherry", Data: []byte("a3")},
		{Namespace: 'B', Title: "Talk:Apple", Data: []byte("b1")},
		{Namespace: 'I', Title: "apple.png", Data: []byte("i1")},
		{Namespace: 'I', Title: "banana.png", Data: []byte("i2")},
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	f := mustNewReader(t, testutil.BuildContainer(t, fruitArticles()))

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		pos, found, err := f.Find('A', "Banana", false)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint32(1), pos)
	})

	t.Run("miss past the end", func(t *testing.T) {
		t.Parallel()
		pos, found, err := f.Find('A', "Durian", false)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, uint32(3), pos, "insertion point")
	})

	t.Run("miss between entries", func(t *testing.T) {
		t.Parallel()
		pos, found, err := f.Find('A', "Blueberry", false)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, uint32(2), pos, "insertion point")
	})

	t.Run("absent namespace", func(t *testing.T) {
		t.Parallel()
		pos, found, err := f.Find('B', "X", false)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, uint32(0), pos)
	})
}

func TestFindRoundTrip(t *testing.T) {
	t.Parallel()

	f := mustNewReader(t, testutil.BuildContainer(t, wikiArticles()))

	for i := uint32(0); i < f.Count(); i++ {
		d, err := f.Dirent(i)
		require.NoError(t, err)

		pos, found, err := f.Find(d.Namespace, d.Title(), false)
		require.NoError(t, err)
		assert.True(t, found, "ordinal %d (%c %q)", i, d.Namespace, d.Title())
		assert.Equal(t, i, pos, "ordinal %d (%c %q)", i, d.Namespace, d.Title())
	}
}

// countingReader wraps an io.ReadSeeker and counts Read calls.
type countingReader struct {
	io.ReadSeeker
	reads atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads.Add(1)
	return c.ReadSeeker.Read(p)
}

func TestFindAbsentNamespaceNoReads(t *testing.T) {
	t.Parallel()

	cr := &countingReader{ReadSeeker: bytes.NewReader(testutil.BuildContainer(t, fruitArticles()))}
	f, err := zeno.NewReader(cr)
	require.NoError(t, err)

	// Warm the namespace cache, then the miss must not touch the stream.
	_, err = f.Namespaces()
	require.NoError(t, err)
	cr.reads.Store(0)

	pos, found, err := f.Find('Z', "anything", false)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, uint32(0), pos)
	assert.Equal(t, int64(0), cr.reads.Load(), "no entry reads for an absent namespace")
}

func TestNamespaceRange(t *testing.T) {
	t.Parallel()

	f := mustNewReader(t, testutil.BuildContainer(t, wikiArticles()))

	tests := []struct {
		ns    byte
		begin uint32
		end   uint32
	}{
		{'-', 0, 1},
		{'A', 1, 4},
		{'B', 4, 5},
		{'I', 5, 7},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprintf("namespace %c", tc.ns), func(t *testing.T) {
			t.Parallel()
			begin, err := f.NamespaceBegin(tc.ns)
			require.NoError(t, err)
			assert.Equal(t, tc.begin, begin, "begin")

			end, err := f.NamespaceEnd(tc.ns)
			require.NoError(t, err)
			assert.Equal(t, tc.end, end, "end")
		})
	}
}

func TestNamespaces(t *testing.T) {
	t.Parallel()

	t.Run("multiple namespaces", func(t *testing.T) {
		t.Parallel()
		f := mustNewReader(t, testutil.BuildContainer(t, wikiArticles()))

		nss, err := f.Namespaces()
		require.NoError(t, err)
		assert.Equal(t, "-ABI", nss, "each namespace exactly once, in index order")

		again, err := f.Namespaces()
		require.NoError(t, err)
		assert.Equal(t, nss, again, "cached result is stable")
	})

	t.Run("single namespace", func(t *testing.T) {
		t.Parallel()
		f := mustNewReader(t, testutil.BuildContainer(t, fruitArticles()))
		nss, err := f.Namespaces()
		require.NoError(t, err)
		assert.Equal(t, "A", nss)
	})

	t.Run("empty container", func(t *testing.T) {
		t.Parallel()
		f := mustNewReader(t, testutil.BuildContainer(t, nil))
		nss, err := f.Namespaces()
		require.NoError(t, err)
		assert.Empty(t, nss)
	})
}

func TestFindCollated(t *testing.T) {
	t.Parallel()

	t.Run("custom collation", func(t *testing.T) {
		t.Parallel()

		// Case-insensitive archive order; raw byte order would put
		// "apple" last.
		articles := []testutil.TestArticle{
			{Namespace: 'A', Title: "apple", Data: []byte("1")},
			{Namespace: 'A', Title: "Banana", Data: []byte("2")},
			{Namespace: 'A', Title: "CHERRY", Data: []byte("3")},
		}
		fold := func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		}
		f, err := zeno.NewReader(
			bytes.NewReader(testutil.BuildContainerOrdered(t, articles)),
			zeno.WithCollation(fold),
		)
		require.NoError(t, err)

		pos, found, err := f.Find('A', "banana", true)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint32(1), pos)

		pos, found, err = f.Find('A', "cherry", true)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint32(2), pos)

		// Find-after-get round-trips under the collation the archive was
		// sorted with.
		for i := uint32(0); i < f.Count(); i++ {
			d, err := f.Dirent(i)
			require.NoError(t, err)
			pos, found, err := f.Find(d.Namespace, d.Title(), true)
			require.NoError(t, err)
			assert.True(t, found, "ordinal %d", i)
			assert.Equal(t, i, pos, "ordinal %d", i)
		}
	})

	t.Run("default collation on ascii", func(t *testing.T) {
		t.Parallel()

		// All-lowercase ASCII titles order identically under raw bytes
		// and the default collator, so both modes must agree.
		f := mustNewReader(t, testutil.BuildContainer(t, []testutil.TestArticle{
			{Namespace: 'A', Title: "apple", Data: []byte("1")},
			{Namespace: 'A', Title: "banana", Data: []byte("2")},
			{Namespace: 'A', Title: "cherry", Data: []byte("3")},
		}))

		pos, found, err := f.Find('A', "banana", true)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint32(1), pos)
	})
}

func TestConcurrentLookups(t *testing.T) {
	t.Parallel()

	articles := wikiArticles()
	f := mustNewReader(t, testutil.BuildContainer(t, articles))

	var g errgroup.Group
	for n := 0; n < 8; n++ {
		g.Go(func() error {
			for i := uint32(0); i < f.Count(); i++ {
				d, err := f.Dirent(i)
				if err != nil {
					return err
				}
				pos, found, err := f.Find(d.Namespace, d.Title(), false)
				if err != nil {
					return err
				}
				if !found || pos != i {
					return fmt.Errorf("ordinal %d: got (%d, %t)", i, pos, found)
				}
			}
			_, err := f.Namespaces()
			return err
		})
	}
	require.NoError(t, g.Wait())
}
