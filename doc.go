// Package zeno reads Zeno container archives: compact indexed containers
// that store many named, typed articles addressable by a one-character
// namespace plus a title, with optional locale-aware title ordering.
//
// A container is opened once, its article offset table is built in memory,
// and lookups then binary-search the on-disk directory entries. All access
// to the underlying byte stream is serialized internally; a *File is safe
// for concurrent use.
//
// # Quick Start
//
// Open a container and look up an article:
//
//	f, err := zeno.Open("wikipedia.zeno")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	a, ok, err := f.ArticleByTitle('A', "Göttingen", true)
//	if err != nil || !ok {
//	    return err
//	}
//	data, err := a.Data()
//
// Containers can also be read remotely without downloading them; the http
// subpackage provides a range-request source:
//
//	src, err := zenohttp.NewSource("https://example.org/wikipedia.zeno")
//	if err != nil {
//	    return err
//	}
//	f, err := zeno.NewReaderAt(src, src.Size())
//
// # Sort order
//
// Binary search assumes the container's directory entries are ordered by
// (namespace, title) under the same comparison the caller queries with:
// raw byte order when collate is false, the collation function when collate
// is true. This precondition is not verified at open time; querying an
// archive with the wrong mode returns wrong or missing results rather than
// an error.
package zeno
