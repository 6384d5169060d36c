package zeno

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zenoarc/zeno/internal/dirent"
)

// Magic identifies a Zeno container. Version is the only supported format
// revision.
const (
	Magic   uint32 = 1439867043
	Version uint32 = 3
)

const (
	// headerSize is the fixed on-disk size of the container header.
	headerSize = 60

	// readChunkSize bounds a single underlying read when assembling a
	// variable-length region.
	readChunkSize = 256
)

// Container header layout, all integers little-endian.
const (
	hdrMagic       = 0x00 // 4 bytes
	hdrVersion     = 0x04 // 4 bytes
	hdrCount       = 0x08 // 4 bytes
	hdrIndexPos    = 0x10 // 8 bytes
	hdrIndexLen    = 0x18 // 4 bytes
	hdrIndexPtrPos = 0x20 // 8 bytes
	hdrIndexPtrLen = 0x28 // 4 bytes
)

// Compare is a three-way title ordering: negative when a sorts before b,
// zero when equal, positive when a sorts after b.
//
// Implementations passed to WithCollation need not be safe for concurrent
// use; the file serializes comparisons behind its lock.
type Compare func(a, b string) int

// File is an open Zeno container.
//
// The header and article offset table are read once at open and are
// immutable afterwards. Directory entries are read from disk on demand;
// a single mutex serializes every seek+read sequence on the underlying
// stream, so a File is safe for concurrent use.
type File struct {
	mu     sync.Mutex
	r      io.ReadSeeker
	closer io.Closer

	count       uint32
	indexPos    uint64
	indexLen    uint32
	indexPtrPos uint64
	indexPtrLen uint32
	offsets     []uint64

	collate Compare
	logger  *slog.Logger

	nsGroup singleflight.Group
	nsMu    sync.Mutex
	ns      string
	nsSet   bool
}

// Open opens the container at path.
func Open(path string, opts ...Option) (*File, error) {
	r, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("zeno: open container: %w", err)
	}
	f, err := NewReader(r, opts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	f.closer = r
	return f, nil
}

// NewReader opens a container from a seekable byte stream.
//
// The stream is retained for the life of the File and must not be used by
// the caller afterwards; its read position is unspecified between calls.
func NewReader(r io.ReadSeeker, opts ...Option) (*File, error) {
	f := &File{r: r}
	for _, opt := range opts {
		opt(f)
	}
	if f.collate == nil {
		f.collate = collate.New(language.Und).CompareString
	}
	if err := f.readHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewReaderAt opens a container from a random-access source of the given
// size, such as an http.Source.
func NewReaderAt(src io.ReaderAt, size int64, opts ...Option) (*File, error) {
	return NewReader(io.NewSectionReader(src, 0, size), opts...)
}

// Close releases the underlying resource when the File owns one (Open).
// Files created with NewReader or NewReaderAt do not own their source and
// Close is a no-op.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// Count returns the number of articles in the container.
func (f *File) Count() uint32 {
	return f.count
}

// log returns the logger, falling back to a discard logger if nil.
func (f *File) log() *slog.Logger {
	if f.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.logger
}

// readHeader validates the 60-byte header and builds the offset table.
// Runs once from NewReader, before the File is shared; no lock needed.
func (f *File) readHeader() error {
	if _, err := f.r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek header: %v", ErrFormat, err)
	}
	var hdr [headerSize]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		return fmt.Errorf("%w: header too short: %v", ErrFormat, err)
	}

	if m := binary.LittleEndian.Uint32(hdr[hdrMagic:]); m != Magic {
		return fmt.Errorf("%w: bad magic %d, want %d", ErrFormat, m, Magic)
	}
	if v := binary.LittleEndian.Uint32(hdr[hdrVersion:]); v != Version {
		return fmt.Errorf("%w: unsupported version %d, want %d", ErrFormat, v, Version)
	}

	f.count = binary.LittleEndian.Uint32(hdr[hdrCount:])
	f.indexPos = binary.LittleEndian.Uint64(hdr[hdrIndexPos:])
	f.indexLen = binary.LittleEndian.Uint32(hdr[hdrIndexLen:])
	f.indexPtrPos = binary.LittleEndian.Uint64(hdr[hdrIndexPtrPos:])
	f.indexPtrLen = binary.LittleEndian.Uint32(hdr[hdrIndexPtrLen:])

	return f.readOffsets()
}

// readOffsets reads the index-pointer table in one bulk read and resolves
// each relative pointer against the index region start.
func (f *File) readOffsets() error {
	if uint64(f.indexPtrLen) < 4*uint64(f.count) {
		return fmt.Errorf("%w: index pointer table %d bytes, want %d for %d articles",
			ErrFormat, f.indexPtrLen, 4*uint64(f.count), f.count)
	}
	if _, err := f.r.Seek(int64(f.indexPtrPos), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek index pointer table at %d: %v", ErrFormat, f.indexPtrPos, err)
	}
	buf := make([]byte, f.indexPtrLen)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return fmt.Errorf("%w: index pointer table short read: %v", ErrFormat, err)
	}

	f.offsets = make([]uint64, f.count)
	for i := range f.offsets {
		f.offsets[i] = f.indexPos + uint64(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	f.log().Debug("offset table built", "articles", f.count)
	return nil
}

// Dirent reads and decodes the directory entry for the given ordinal.
func (f *File) Dirent(idx uint32) (Dirent, error) {
	if idx >= f.count {
		return Dirent{}, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, idx, f.count)
	}
	return f.readDirentAt(f.offsets[idx])
}

// ReadBytesAt reads exactly n bytes starting at the absolute offset off.
// It never returns fewer than n bytes without failing.
func (f *File) ReadBytesAt(off uint64, n int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readBytesAtNolock(off, n)
}

func (f *File) readBytesAtNolock(off uint64, n int) ([]byte, error) {
	if _, err := f.r.Seek(int64(off), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek data at %d: %v", ErrFormat, off, err)
	}
	return f.readBytesNolock(n)
}

// readBytesNolock accumulates n bytes from the current position in bounded
// chunks. Any failed or stalled read aborts; no partial result escapes.
func (f *File) readBytesNolock(n int) ([]byte, error) {
	data := make([]byte, 0, n)
	var chunk [readChunkSize]byte
	remaining := n
	for remaining > 0 {
		want := remaining
		if want > readChunkSize {
			want = readChunkSize
		}
		got, err := f.r.Read(chunk[:want])
		if got > 0 {
			data = append(data, chunk[:got]...)
			remaining -= got
		}
		if err != nil {
			return nil, fmt.Errorf("%w: data read failed with %d of %d bytes left: %v",
				ErrFormat, remaining, n, err)
		}
		if got == 0 {
			return nil, fmt.Errorf("%w: data read stalled with %d of %d bytes left",
				ErrFormat, remaining, n)
		}
	}
	return data, nil
}

func (f *File) readDirentAt(off uint64) (Dirent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readDirentAtNolock(off)
}

func (f *File) readDirentAtNolock(off uint64) (Dirent, error) {
	if _, err := f.r.Seek(int64(off), io.SeekStart); err != nil {
		return Dirent{}, fmt.Errorf("%w: seek dirent at %d: %v", ErrFormat, off, err)
	}
	return f.readDirentNolock()
}

// readDirentNolock reads the fixed dirent header and its extra payload from
// the current position. Callers hold the lock across the whole sequence so
// the two reads observe a consistent cursor.
func (f *File) readDirentNolock() (Dirent, error) {
	var hdr [dirent.HeaderSize]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		return Dirent{}, fmt.Errorf("%w: dirent header short read: %v", ErrFormat, err)
	}
	d, err := dirent.Parse(hdr[:])
	if err != nil {
		return Dirent{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if d.ExtraLen > 0 {
		extra, err := f.readBytesNolock(int(d.ExtraLen))
		if err != nil {
			return Dirent{}, err
		}
		d.Extra = extra
	}
	return d, nil
}
