package chartconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeChart(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestResolveBasesChain(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "grand.yaml", "a: grand\nb: grand\nc: grand\n")
	writeChart(t, dir, "parent.yaml", "base: grand.yaml\nb: parent\nd: parent\n")
	child := mustParse(t, "base: parent.yaml\na: child\n")

	merged, err := ResolveBases(child, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	got := asMap(t, merged)
	want := map[string]any{"a": "child", "b": "parent", "c": "grand", "d": "parent"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("expected %s=%v, got %v", k, v, got[k])
		}
	}
	if _, ok := got["base"]; ok {
		t.Error("expected base key removed from the merged document")
	}
}

func TestResolveBasesListPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "first.yaml", "shared: first\nonlyfirst: 1\n")
	writeChart(t, dir, "second.yaml", "shared: second\nonlysecond: 2\n")
	child := mustParse(t, "base:\n  - first.yaml\n  - second.yaml\n")

	merged, err := ResolveBases(child, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	got := asMap(t, merged)
	if got["shared"] != "first" {
		t.Errorf("expected the first listed base to win, got %v", got["shared"])
	}
	if got["onlyfirst"] != 1 || got["onlysecond"] != 2 {
		t.Errorf("expected keys from both bases, got %v", got)
	}
}

func TestResolveBasesAbsoluteSkipped(t *testing.T) {
	child := mustParse(t, "base: /does/not/exist.yaml\nkeep: true\n")

	merged, err := ResolveBases(child, t.TempDir())
	if err != nil {
		t.Fatalf("expected absolute base to be skipped, got %v", err)
	}
	got := asMap(t, merged)
	if got["keep"] != true {
		t.Errorf("expected document preserved, got %v", got)
	}
}

func TestResolveBasesMissing(t *testing.T) {
	child := mustParse(t, "base: nowhere.yaml\n")

	_, err := ResolveBases(child, t.TempDir())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveBasesRelativeToIncludingFile(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "common.yaml", "root: common\n")
	writeChart(t, dir, filepath.Join("sub", "mid.yaml"), "base: ../common.yaml\nmid: true\n")
	child := mustParse(t, "base: sub/mid.yaml\n")

	merged, err := ResolveBases(child, dir)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	got := asMap(t, merged)
	if got["root"] != "common" || got["mid"] != true {
		t.Errorf("expected chain across directories, got %v", got)
	}
}

func TestResolveBasesCycle(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "a.yaml", "base: b.yaml\n")
	writeChart(t, dir, "b.yaml", "base: a.yaml\n")
	child := mustParse(t, "base: a.yaml\n")

	_, err := ResolveBases(child, dir)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError for circular chain, got %v", err)
	}
	if !strings.Contains(parseErr.Message, "circular") {
		t.Errorf("expected circular chain message, got %q", parseErr.Message)
	}
}

func TestResolveBasesWithoutBaseKey(t *testing.T) {
	child := mustParse(t, "a: 1\n")

	merged, err := ResolveBases(child, t.TempDir())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := asMap(t, merged); got["a"] != 1 {
		t.Errorf("expected document unchanged, got %v", got)
	}
}

func TestResolveBasesDoesNotMutateInput(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "parent.yaml", "b: parent\n")
	child := mustParse(t, "base: parent.yaml\na: child\n")
	before, err := child.Bytes()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if _, err := ResolveBases(child, dir); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	after, _ := child.Bytes()
	if string(before) != string(after) {
		t.Errorf("resolve mutated the input document:\nbefore: %s\nafter: %s", before, after)
	}
}
