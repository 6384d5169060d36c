// Package testutil builds valid Zeno containers in memory for tests.
package testutil

import (
	"encoding/binary"
	"slices"
	"strings"
	"testing"

	"github.com/zenoarc/zeno/internal/dirent"
)

// TestArticle holds data for building one test container article.
type TestArticle struct {
	Namespace     byte
	Title         string
	Data          []byte
	MimeType      uint8
	Compression   dirent.Compression
	Redirect      bool
	RedirectIndex uint32
	Parameter     []byte
}

const (
	headerSize = 60

	magic   uint32 = 1439867043
	version uint32 = 3
)

// BuildContainer encodes articles into a complete container image:
// 60-byte header, data region, directory entries, index-pointer table.
// Articles are sorted by (namespace, raw title) first; use
// BuildContainerOrdered when the archive order must be controlled, e.g.
// for collated containers.
func BuildContainer(tb testing.TB, articles []TestArticle) []byte {
	tb.Helper()
	sorted := slices.Clone(articles)
	slices.SortFunc(sorted, func(a, b TestArticle) int {
		if a.Namespace != b.Namespace {
			return int(a.Namespace) - int(b.Namespace)
		}
		return strings.Compare(a.Title, b.Title)
	})
	return BuildContainerOrdered(tb, sorted)
}

// BuildContainerOrdered encodes articles in the given order, which must
// already match the sort order lookups will assume.
func BuildContainerOrdered(tb testing.TB, articles []TestArticle) []byte {
	tb.Helper()

	// Data region directly after the header, one article after another.
	dataPos := uint64(headerSize)
	dataLen := uint64(0)
	for _, a := range articles {
		dataLen += uint64(len(a.Data))
	}

	indexPos := dataPos + dataLen
	dirents := make([]byte, 0, len(articles)*dirent.HeaderSize)
	relative := make([]uint32, len(articles))

	off := dataPos
	for i, a := range articles {
		extra := []byte(a.Title)
		if len(a.Parameter) > 0 {
			extra = append(extra, 0)
			extra = append(extra, a.Parameter...)
		}
		d := dirent.Dirent{
			Offset:        off,
			Size:          uint32(len(a.Data)),
			Compression:   a.Compression,
			MimeType:      a.MimeType,
			Redirect:      a.Redirect,
			Namespace:     a.Namespace,
			RedirectIndex: a.RedirectIndex,
			Extra:         extra,
		}
		relative[i] = uint32(len(dirents))
		dirents = d.Append(dirents)
		off += uint64(len(a.Data))
	}

	indexPtrPos := indexPos + uint64(len(dirents))
	ptrs := make([]byte, 4*len(articles))
	for i, rel := range relative {
		binary.LittleEndian.PutUint32(ptrs[4*i:], rel)
	}

	buf := make([]byte, 0, indexPtrPos+uint64(len(ptrs)))
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0x00:], magic)
	binary.LittleEndian.PutUint32(hdr[0x04:], version)
	binary.LittleEndian.PutUint32(hdr[0x08:], uint32(len(articles)))
	binary.LittleEndian.PutUint64(hdr[0x10:], indexPos)
	binary.LittleEndian.PutUint32(hdr[0x18:], uint32(len(dirents)))
	binary.LittleEndian.PutUint64(hdr[0x20:], indexPtrPos)
	binary.LittleEndian.PutUint32(hdr[0x28:], uint32(len(ptrs)))

	buf = append(buf, hdr[:]...)
	for _, a := range articles {
		buf = append(buf, a.Data...)
	}
	buf = append(buf, dirents...)
	buf = append(buf, ptrs...)
	return buf
}
