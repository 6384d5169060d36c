// Package dirent decodes Zeno directory entries.
//
// A directory entry is a fixed 26-byte header followed by a variable-length
// extra payload. The header carries the location, size and type of one
// article's data; the extra payload carries the article title and, after a
// NUL separator, optional parameter bytes.
package dirent

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed on-disk size of a directory entry header.
const HeaderSize = 26

// Header layout, all integers little-endian.
const (
	offOffset        = 0  // 8 bytes: absolute offset of the article data
	offSize          = 8  // 4 bytes: length of the article data
	offCompression   = 12 // 1 byte
	offMimeType      = 13 // 1 byte
	offRedirect      = 14 // 1 byte: non-zero when the entry is a redirect
	offNamespace     = 15 // 1 byte
	offRedirectIndex = 16 // 4 bytes: ordinal of the redirect target
	offReserved      = 20 // 4 bytes
	offExtraLen      = 24 // 2 bytes: length of the extra payload
)

// Compression identifies the compression tag recorded for an article's data.
// The tag is decoded as metadata only; inflating the data is up to the caller.
type Compression uint8

// Compression tags.
const (
	CompressionDefault Compression = iota
	CompressionNone
	CompressionZip
	CompressionBzip2
	CompressionLzma
)

// Dirent is a decoded directory entry.
//
// Extra holds the raw variable payload: the title, optionally followed by a
// NUL byte and parameter data.
type Dirent struct {
	Offset        uint64
	Size          uint32
	Compression   Compression
	MimeType      uint8
	Redirect      bool
	Namespace     byte
	RedirectIndex uint32
	ExtraLen      uint16
	Extra         []byte
}

// Parse decodes the fixed header from buf. The extra payload is not part of
// the header; callers read ExtraLen further bytes and assign them to Extra.
func Parse(buf []byte) (Dirent, error) {
	if len(buf) < HeaderSize {
		return Dirent{}, fmt.Errorf("dirent header %d bytes, want %d", len(buf), HeaderSize)
	}
	return Dirent{
		Offset:        binary.LittleEndian.Uint64(buf[offOffset:]),
		Size:          binary.LittleEndian.Uint32(buf[offSize:]),
		Compression:   Compression(buf[offCompression]),
		MimeType:      buf[offMimeType],
		Redirect:      buf[offRedirect] != 0,
		Namespace:     buf[offNamespace],
		RedirectIndex: binary.LittleEndian.Uint32(buf[offRedirectIndex:]),
		ExtraLen:      binary.LittleEndian.Uint16(buf[offExtraLen:]),
	}, nil
}

// Title returns the article title from the extra payload: the bytes up to
// the first NUL, or the whole payload when no NUL is present.
func (d *Dirent) Title() string {
	if i := bytes.IndexByte(d.Extra, 0); i >= 0 {
		return string(d.Extra[:i])
	}
	return string(d.Extra)
}

// Parameter returns the parameter bytes following the title's NUL
// terminator, or nil when the payload holds only a title.
func (d *Dirent) Parameter() []byte {
	if i := bytes.IndexByte(d.Extra, 0); i >= 0 {
		return d.Extra[i+1:]
	}
	return nil
}

// Append encodes the entry (header plus extra payload) onto dst and returns
// the extended slice. ExtraLen is taken from len(Extra).
func (d *Dirent) Append(dst []byte) []byte {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[offOffset:], d.Offset)
	binary.LittleEndian.PutUint32(hdr[offSize:], d.Size)
	hdr[offCompression] = byte(d.Compression)
	hdr[offMimeType] = d.MimeType
	if d.Redirect {
		hdr[offRedirect] = 1
	}
	hdr[offNamespace] = d.Namespace
	binary.LittleEndian.PutUint32(hdr[offRedirectIndex:], d.RedirectIndex)
	binary.LittleEndian.PutUint16(hdr[offExtraLen:], uint16(len(d.Extra)))
	dst = append(dst, hdr[:]...)
	return append(dst, d.Extra...)
}
