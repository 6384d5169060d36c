package zeno

// Article is one retrievable unit of the container: an ordinal, its decoded
// directory entry and a reference back to the owning File. Articles are
// read-only and independently constructed per lookup.
type Article struct {
	f   *File
	idx uint32
	d   Dirent
}

// Article reads the directory entry at the given ordinal and returns it as
// an Article.
func (f *File) Article(idx uint32) (*Article, error) {
	d, err := f.Dirent(idx)
	if err != nil {
		return nil, err
	}
	return &Article{f: f, idx: idx, d: d}, nil
}

// ArticleByTitle looks up an article by namespace and title. A lookup miss
// returns ok false and no error.
func (f *File) ArticleByTitle(ns byte, title string, collate bool) (a *Article, ok bool, err error) {
	pos, found, err := f.Find(ns, title, collate)
	if err != nil || !found {
		return nil, false, err
	}
	a, err = f.Article(pos)
	if err != nil {
		return nil, false, err
	}
	f.log().Info("article retrieved",
		"namespace", string(ns), "title", title, "size", a.Size(), "mime", a.MimeType())
	return a, true, nil
}

// Ordinal returns the article's position in the offset table.
func (a *Article) Ordinal() uint32 { return a.idx }

// Namespace returns the article's namespace character.
func (a *Article) Namespace() byte { return a.d.Namespace }

// Title returns the article's title.
func (a *Article) Title() string { return a.d.Title() }

// MimeType returns the article's mime-type identifier.
func (a *Article) MimeType() uint8 { return a.d.MimeType }

// Size returns the declared length of the article's data region.
func (a *Article) Size() uint32 { return a.d.Size }

// Compression returns the compression tag recorded for the article's data.
// The data itself is returned as stored; see Data.
func (a *Article) Compression() Compression { return a.d.Compression }

// IsRedirect reports whether the article redirects to another article.
func (a *Article) IsRedirect() bool { return a.d.Redirect }

// Dirent returns the article's decoded directory entry.
func (a *Article) Dirent() Dirent { return a.d }

// Data reads the article's raw data region: exactly Size bytes at the
// entry's data offset, as stored, without decompression.
func (a *Article) Data() ([]byte, error) {
	return a.f.ReadBytesAt(a.d.Offset, int(a.d.Size))
}

// Redirect resolves a redirect article to its target. ok is false when the
// article is not a redirect.
func (a *Article) Redirect() (target *Article, ok bool, err error) {
	if !a.d.Redirect {
		return nil, false, nil
	}
	target, err = a.f.Article(a.d.RedirectIndex)
	if err != nil {
		return nil, false, err
	}
	return target, true, nil
}
