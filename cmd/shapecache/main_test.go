package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golangdaddy/citymap/pkg/shapes"
)

const twoShapes = `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.34,47.62]},"properties":{"kind":"hydrant"}},
{"type":"Feature","geometry":{"type":"LineString","coordinates":[[-122.34,47.62],[-122.339,47.619]]},"properties":{"kind":"curb"}}
]}`

func TestCLIWritesCache(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.geojson")
	out := filepath.Join(dir, "out.db")
	if err := os.WriteFile(in, []byte(twoShapes), 0o600); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-in", in, "-out", out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "wrote 2 shapes") {
		t.Fatalf("stdout = %q", stdout.String())
	}

	cached, err := shapes.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("load cache: %v", err)
	}
	if len(cached.Shapes) != 2 || cached.Shapes[1].Attributes["kind"] != "curb" {
		t.Fatalf("cached = %+v", cached.Shapes)
	}
}

func TestCLIErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("missing flags: exit %d", code)
	}
	missing := filepath.Join(t.TempDir(), "missing.geojson")
	if code := cli([]string{"-in", missing, "-out", filepath.Join(t.TempDir(), "x.db")}, &stdout, &stderr); code != 1 {
		t.Fatalf("missing input: exit %d", code)
	}
}
