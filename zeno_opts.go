package zeno

import "log/slog"

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for debug output. By default logs are
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(f *File) {
		f.logger = logger
	}
}

// WithCollation sets the title comparison used by collated lookups
// (collate = true). By default titles are collated with Unicode collation
// for the und locale.
//
// The function must impose the same total order the container was sorted
// with. It is only ever invoked while the file lock is held, so it need not
// be safe for concurrent use.
func WithCollation(cmp Compare) Option {
	return func(f *File) {
		f.collate = cmp
	}
}
