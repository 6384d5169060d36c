package zeno

import "github.com/zenoarc/zeno/internal/dirent"

// Re-export types from internal/dirent for the public API.
type (
	// Dirent is a decoded directory entry.
	Dirent = dirent.Dirent

	// Compression identifies the compression tag recorded for an
	// article's data.
	Compression = dirent.Compression
)

// DirentHeaderSize is the fixed on-disk size of a directory entry header.
const DirentHeaderSize = dirent.HeaderSize

// Re-export compression tags.
const (
	CompressionDefault = dirent.CompressionDefault
	CompressionNone    = dirent.CompressionNone
	CompressionZip     = dirent.CompressionZip
	CompressionBzip2   = dirent.CompressionBzip2
	CompressionLzma    = dirent.CompressionLzma
)
