// Command zenols inspects Zeno container archives: it lists namespaces,
// looks up articles by title and dumps raw article data.
//
// Usage:
//
//	zenols [flags] <container>
//
// Without flags, zenols prints the container's namespaces and their ordinal
// ranges. With --find or --ordinal it prints one article's directory entry;
// add --data to write the raw article data to stdout.
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/zenoarc/zeno"
)

func main() {
	var (
		namespace = flag.StringP("namespace", "n", "A", "namespace character for --find")
		find      = flag.String("find", "", "look up an article by title")
		collate   = flag.Bool("collate", false, "use collated title comparison")
		ordinal   = flag.Uint32("ordinal", 0, "print the directory entry at this ordinal")
		dump      = flag.Bool("data", false, "write the raw article data to stdout")
		verbose   = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: zenols [flags] <container>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config{
		path:      flag.Arg(0),
		namespace: *namespace,
		find:      *find,
		collate:   *collate,
		ordinal:   *ordinal,
		dump:      *dump,
		doFind:    flag.CommandLine.Changed("find"),
		doOrdinal: flag.CommandLine.Changed("ordinal"),
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("zenols failed", "error", err)
		os.Exit(1)
	}
}

type config struct {
	path      string
	namespace string
	find      string
	collate   bool
	ordinal   uint32
	dump      bool
	doFind    bool
	doOrdinal bool
}

func run(cfg config, logger *slog.Logger) error {
	f, err := zeno.Open(cfg.path, zeno.WithLogger(logger))
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case cfg.doFind:
		if len(cfg.namespace) != 1 {
			return fmt.Errorf("namespace must be a single character, got %q", cfg.namespace)
		}
		a, ok, err := f.ArticleByTitle(cfg.namespace[0], cfg.find, cfg.collate)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("article %c %q not found", cfg.namespace[0], cfg.find)
		}
		return printArticle(a, cfg.dump)

	case cfg.doOrdinal:
		a, err := f.Article(cfg.ordinal)
		if err != nil {
			return err
		}
		return printArticle(a, cfg.dump)

	default:
		return printNamespaces(f)
	}
}

func printArticle(a *zeno.Article, dump bool) error {
	if dump {
		data, err := a.Data()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	fmt.Printf("ordinal    %d\n", a.Ordinal())
	fmt.Printf("namespace  %c\n", a.Namespace())
	fmt.Printf("title      %s\n", a.Title())
	fmt.Printf("mime-type  %d\n", a.MimeType())
	fmt.Printf("size       %d\n", a.Size())
	fmt.Printf("redirect   %t\n", a.IsRedirect())
	return nil
}

func printNamespaces(f *zeno.File) error {
	nss, err := f.Namespaces()
	if err != nil {
		return err
	}
	fmt.Printf("%d articles, %d namespaces\n", f.Count(), len(nss))
	for i := 0; i < len(nss); i++ {
		ch := nss[i]
		begin, err := f.NamespaceBegin(ch)
		if err != nil {
			return err
		}
		end, err := f.NamespaceEnd(ch)
		if err != nil {
			return err
		}
		fmt.Printf("  %c  ordinals [%d, %d)  %d articles\n", ch, begin, end, end-begin)
	}
	return nil
}
