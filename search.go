package zeno

import (
	"strings"
)

// Find locates the article with the given namespace and title by binary
// search over the offset table.
//
// When collate is false, titles are compared in raw byte order; when true,
// the collation function configured with WithCollation (default: Unicode
// collation for the und locale) is used. The container must be sorted under
// the matching mode; see the package documentation.
//
// On success, pos is the article's ordinal. When the article is absent,
// found is false and pos is the insertion point: the smallest ordinal whose
// entry compares greater than or equal to the query, or Count() when every
// entry compares less. A lookup miss is not an error.
func (f *File) Find(ns byte, title string, collate bool) (pos uint32, found bool, err error) {
	cmp := strings.Compare
	if collate {
		cmp = f.collate
	}

	nss, err := f.Namespaces()
	if err != nil {
		return 0, false, err
	}
	if strings.IndexByte(nss, ns) < 0 {
		f.log().Debug("namespace not present", "namespace", string(ns))
		return 0, false, nil
	}

	// Hold the lock across the whole probe sequence so repeated dirent
	// reads observe a consistent cursor.
	f.mu.Lock()
	defer f.mu.Unlock()

	l, u := uint32(0), f.count
	probes := 0
	for u-l > 1 {
		probes++
		p := l + (u-l)/2
		d, err := f.readDirentAtNolock(f.offsets[p])
		if err != nil {
			return 0, false, err
		}
		switch c := compareKeys(ns, title, d.Namespace, d.Title(), cmp); {
		case c < 0:
			u = p
		case c > 0:
			l = p
		default:
			f.log().Debug("article found", "namespace", string(ns), "title", title, "probes", probes)
			return p, true, nil
		}
	}

	// The halving loop never probes the lower bound; check it once more
	// before reporting the insertion point.
	d, err := f.readDirentAtNolock(f.offsets[l])
	if err != nil {
		return 0, false, err
	}
	if compareKeys(ns, title, d.Namespace, d.Title(), cmp) == 0 {
		return l, true, nil
	}
	f.log().Debug("article not found", "namespace", string(ns), "title", title, "probes", probes)
	return u, false, nil
}

// compareKeys orders (namespace, title) pairs: namespace first as an
// unsigned byte, then title under cmp.
func compareKeys(ns byte, title string, ens byte, etitle string, cmp Compare) int {
	if ns != ens {
		if ns < ens {
			return -1
		}
		return 1
	}
	return cmp(title, etitle)
}

// NamespaceBegin returns the first ordinal whose entry's namespace is
// greater than or equal to ch: the start of namespace ch's range when the
// namespace is present.
func (f *File) NamespaceBegin(ch byte) (uint32, error) {
	first, err := f.Dirent(0)
	if err != nil {
		return 0, err
	}
	l, u := uint32(0), f.count
	for u-l > 1 {
		m := l + (u-l)/2
		d, err := f.Dirent(m)
		if err != nil {
			return 0, err
		}
		if d.Namespace >= ch {
			u = m
		} else {
			l = m
		}
	}
	// Ordinal 0 is never probed by the loop; it decides between the two
	// remaining candidates.
	if first.Namespace < ch {
		return u, nil
	}
	return l, nil
}

// NamespaceEnd returns one past the last ordinal whose entry's namespace
// equals ch, i.e. the first ordinal of the next namespace, or Count() when
// ch is the last namespace.
func (f *File) NamespaceEnd(ch byte) (uint32, error) {
	l, u := uint32(0), f.count
	for u-l > 1 {
		m := l + (u-l)/2
		d, err := f.Dirent(m)
		if err != nil {
			return 0, err
		}
		if d.Namespace > ch {
			u = m
		} else {
			l = m
		}
	}
	return u, nil
}

// Namespaces returns the distinct namespace characters present in the
// container, in index order.
//
// Discovery walks the index with NamespaceEnd jumps on first call; the
// result is cached for the life of the File and concurrent first calls are
// deduplicated.
func (f *File) Namespaces() (string, error) {
	if s, ok := f.cachedNamespaces(); ok {
		return s, nil
	}
	v, err, _ := f.nsGroup.Do("namespaces", func() (any, error) {
		if s, ok := f.cachedNamespaces(); ok {
			return s, nil
		}
		s, err := f.discoverNamespaces()
		if err != nil {
			return "", err
		}
		f.nsMu.Lock()
		f.ns, f.nsSet = s, true
		f.nsMu.Unlock()
		return s, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

func (f *File) cachedNamespaces() (string, bool) {
	f.nsMu.Lock()
	defer f.nsMu.Unlock()
	return f.ns, f.nsSet
}

// discoverNamespaces seeds from ordinal 0 and repeatedly jumps to the first
// entry past the current namespace's range.
func (f *File) discoverNamespaces() (string, error) {
	if f.count == 0 {
		return "", nil
	}
	d, err := f.Dirent(0)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteByte(d.Namespace)
	for {
		idx, err := f.NamespaceEnd(d.Namespace)
		if err != nil {
			return "", err
		}
		if idx >= f.count {
			break
		}
		if d, err = f.Dirent(idx); err != nil {
			return "", err
		}
		sb.WriteByte(d.Namespace)
	}
	f.log().Debug("namespaces discovered", "namespaces", sb.String())
	return sb.String(), nil
}
