// Command shapecache converts an extra shapes source (GeoJSON, postgres:// or
// s3://) into the SQLite cache the viewer loads quickly.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golangdaddy/citymap/pkg/shapes"
)

func main() {
	os.Exit(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shapecache", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in, out string
	fs.StringVar(&in, "in", "", "extra shapes source: GeoJSON file, postgres:// or s3:// URL")
	fs.StringVar(&out, "out", "", "SQLite cache to write, e.g. shapes.db")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if in == "" || out == "" {
		fmt.Fprintln(stderr, "both -in and -out are required")
		fs.Usage()
		return 2
	}

	n, err := run(context.Background(), in, out)
	if err != nil {
		fmt.Fprintf(stderr, "shapecache: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %d shapes to %s\n", n, out)
	return 0
}

func run(ctx context.Context, in, out string) (int, error) {
	loaded, err := shapes.Load(ctx, in)
	if err != nil {
		return 0, err
	}
	if err := shapes.WriteCache(ctx, out, loaded); err != nil {
		return 0, fmt.Errorf("write cache: %w", err)
	}
	return len(loaded.Shapes), nil
}
