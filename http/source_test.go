package http_test

import (
	"bytes"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/zenoarc/zeno"
	zenohttp "github.com/zenoarc/zeno/http"
	"github.com/zenoarc/zeno/internal/testutil"
)

func serveBytes(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.ServeContent(w, r, "container", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSourceReadAt(t *testing.T) {
	data := []byte("hello world")
	server := serveBytes(t, data)

	src, err := zenohttp.NewSource(server.URL)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if src.Size() != int64(len(data)) {
		t.Fatalf("Size() = %d, want %d", src.Size(), len(data))
	}

	buf := make([]byte, 5)
	n, err := src.ReadAt(buf, 6)
	if err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if n != len(buf) {
		t.Fatalf("ReadAt() n = %d, want %d", n, len(buf))
	}
	if string(buf) != "world" {
		t.Fatalf("ReadAt() got %q, want %q", string(buf), "world")
	}

	edge := make([]byte, 10)
	n, err = src.ReadAt(edge, int64(len(data)-3))
	if err != io.EOF {
		t.Fatalf("ReadAt() error = %v, want io.EOF", err)
	}
	if n != 3 {
		t.Fatalf("ReadAt() n = %d, want 3", n)
	}
	if string(edge[:n]) != "rld" {
		t.Fatalf("ReadAt() got %q, want %q", string(edge[:n]), "rld")
	}
}

func TestSourceRangeUnsupported(t *testing.T) {
	data := []byte("range unsupported")
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method == nethttp.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)

	_, err := zenohttp.NewSource(server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoteContainer(t *testing.T) {
	container := testutil.BuildContainer(t, []testutil.TestArticle{
		{Namespace: 'A', Title: "Apple", Data: []byte("apple data")},
		{Namespace: 'A', Title: "Banana", Data: []byte("banana data")},
		{Namespace: 'A', Title: "Cherry", Data: []byte("cherry data")},
	})
	server := serveBytes(t, container)

	src, err := zenohttp.NewSource(server.URL)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	f, err := zeno.NewReaderAt(src, src.Size())
	if err != nil {
		t.Fatalf("NewReaderAt() error = %v", err)
	}
	if f.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", f.Count())
	}

	a, ok, err := f.ArticleByTitle('A', "Banana", false)
	if err != nil {
		t.Fatalf("ArticleByTitle() error = %v", err)
	}
	if !ok {
		t.Fatal("ArticleByTitle() did not find the article")
	}
	if a.Ordinal() != 1 {
		t.Fatalf("Ordinal() = %d, want 1", a.Ordinal())
	}
	data, err := a.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if string(data) != "banana data" {
		t.Fatalf("Data() = %q, want %q", string(data), "banana data")
	}
}
