package chartconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEffectivePath(t *testing.T) {
	if got := EffectivePath("/data/avnav.yaml", false); got != "/data/avnav.yaml.normal" {
		t.Errorf("expected normal suffix, got %q", got)
	}
	if got := EffectivePath("/data/avnav.yaml", true); got != "/data/avnav.yaml.offline" {
		t.Errorf("expected offline suffix, got %q", got)
	}
}

func TestPersistWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	doc := mustParse(t, "layers:\n  - name: chart\n")
	dest := filepath.Join(dir, "effective.yaml.normal")

	if err := Persist(doc, dest); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading persisted file: %v", err)
	}
	want, _ := doc.Bytes()
	if string(data) != string(want) {
		t.Errorf("expected %q, got %q", want, data)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temporary file removed")
	}
}

func TestPersistRemovesAlternateMode(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "effective.yaml")
	doc := mustParse(t, "a: 1\n")

	if err := Persist(doc, EffectivePath(base, true)); err != nil {
		t.Fatalf("persist offline failed: %v", err)
	}
	if err := Persist(doc, EffectivePath(base, false)); err != nil {
		t.Fatalf("persist normal failed: %v", err)
	}

	if _, err := os.Stat(EffectivePath(base, false)); err != nil {
		t.Errorf("expected normal file present: %v", err)
	}
	if _, err := os.Stat(EffectivePath(base, true)); !os.IsNotExist(err) {
		t.Error("expected offline file removed after normal persist")
	}
}

func TestPersistIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeChart(t, dir, "parent.yaml", "caches:\n  store:\n    cache: {type: sqlite}\n")
	writeChart(t, dir, "chart.yaml", "base: parent.yaml\nlayers:\n  - name: chart\n    sources: [store]\n")
	base := filepath.Join(dir, "effective.yaml")

	persistOnce := func() []byte {
		merged, _, err := Prepare(PrepareOptions{Path: filepath.Join(dir, "chart.yaml")})
		if err != nil {
			t.Fatalf("prepare failed: %v", err)
		}
		dest := EffectivePath(base, false)
		if err := Persist(merged, dest); err != nil {
			t.Fatalf("persist failed: %v", err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return data
	}

	first := persistOnce()
	second := persistOnce()
	if string(first) != string(second) {
		t.Errorf("expected identical merged content across builds:\nfirst: %s\nsecond: %s", first, second)
	}

	normal, offline := EffectivePath(base, false), EffectivePath(base, true)
	if _, err := os.Stat(normal); err != nil {
		t.Errorf("expected normal file present: %v", err)
	}
	if _, err := os.Stat(offline); !os.IsNotExist(err) {
		t.Error("expected no offline file")
	}
}
