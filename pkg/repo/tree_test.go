package repo

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestBuildTreeEmptyIndex(t *testing.T) {
	r := initTestRepo(t)

	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	h, err := r.BuildTree(stg)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if h != object.EmptyTreeHash {
		t.Errorf("empty index tree = %s, want %s", h, object.EmptyTreeHash)
	}
	if !r.Store.Has(h) {
		t.Error("empty tree object not stored")
	}
}

func TestBuildTreeNestedStructure(t *testing.T) {
	r := initTestRepo(t)
	writeWorkFile(t, r, "a/b/c.txt", "c")
	writeWorkFile(t, r, "a/d.txt", "d")
	if _, err := r.StageDirectory(filepath.Join(r.RootDir, "a")); err != nil {
		t.Fatalf("StageDirectory: %v", err)
	}

	stg, _ := r.ReadStaging()
	rootHash, err := r.BuildTree(stg)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	root, err := r.Store.ReadTree(rootHash)
	if err != nil {
		t.Fatalf("ReadTree root: %v", err)
	}
	if len(root.Entries) != 1 || root.Entries[0].Name != "a" || !root.Entries[0].IsDir() {
		t.Fatalf("root entries = %+v", root.Entries)
	}

	a, err := r.Store.ReadTree(root.Entries[0].Hash)
	if err != nil {
		t.Fatalf("ReadTree a: %v", err)
	}
	if len(a.Entries) != 2 {
		t.Fatalf("a entries = %+v", a.Entries)
	}
	// Sorted by name: "b" before "d.txt".
	if a.Entries[0].Name != "b" || !a.Entries[0].IsDir() {
		t.Errorf("a[0] = %+v, want directory b", a.Entries[0])
	}
	if a.Entries[1].Name != "d.txt" || a.Entries[1].Mode != object.TreeModeFile {
		t.Errorf("a[1] = %+v, want file d.txt", a.Entries[1])
	}

	b, err := r.Store.ReadTree(a.Entries[0].Hash)
	if err != nil {
		t.Fatalf("ReadTree b: %v", err)
	}
	if len(b.Entries) != 1 || b.Entries[0].Name != "c.txt" {
		t.Errorf("b entries = %+v", b.Entries)
	}
}

func TestBuildTreeOrderIndependent(t *testing.T) {
	r1 := initTestRepo(t)
	writeWorkFile(t, r1, "x.txt", "x")
	writeWorkFile(t, r1, "y/z.txt", "z")
	if _, err := r1.StageFile(filepath.Join(r1.RootDir, "x.txt")); err != nil {
		t.Fatal(err)
	}
	if _, err := r1.StageDirectory(filepath.Join(r1.RootDir, "y")); err != nil {
		t.Fatal(err)
	}

	r2 := initTestRepo(t)
	writeWorkFile(t, r2, "x.txt", "x")
	writeWorkFile(t, r2, "y/z.txt", "z")
	if _, err := r2.StageDirectory(filepath.Join(r2.RootDir, "y")); err != nil {
		t.Fatal(err)
	}
	if _, err := r2.StageFile(filepath.Join(r2.RootDir, "x.txt")); err != nil {
		t.Fatal(err)
	}

	stg1, _ := r1.ReadStaging()
	stg2, _ := r2.ReadStaging()
	h1, err := r1.BuildTree(stg1)
	if err != nil {
		t.Fatalf("BuildTree r1: %v", err)
	}
	h2, err := r2.BuildTree(stg2)
	if err != nil {
		t.Fatalf("BuildTree r2: %v", err)
	}
	if h1 != h2 {
		t.Errorf("staging order changed root hash: %s vs %s", h1, h2)
	}
}

func TestBuildTreeRejectsMalformedPaths(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeBlob, []byte("x"))

	for _, bad := range []string{"", "/leading", "trailing/", "a//b"} {
		stg := &Staging{Entries: map[string]object.Hash{bad: h}}
		if _, err := r.BuildTree(stg); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("path %q: err = %v, want ErrInvalidPath", bad, err)
		}
	}
}

func TestBuildTreeRejectsFileDirConflict(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeBlob, []byte("x"))
	stg := &Staging{Entries: map[string]object.Hash{
		"a":   h,
		"a/b": h,
	}}
	if _, err := r.BuildTree(stg); err == nil {
		t.Error("file/directory name conflict accepted")
	}
}

func TestFlattenTreeRoundTrip(t *testing.T) {
	r := initTestRepo(t)
	writeWorkFile(t, r, "a/b/c.txt", "c")
	writeWorkFile(t, r, "a/d.txt", "d")
	writeWorkFile(t, r, "top.txt", "t")
	if _, err := r.StageDirectory(r.RootDir); err != nil {
		t.Fatalf("StageDirectory: %v", err)
	}

	stg, _ := r.ReadStaging()
	rootHash, err := r.BuildTree(stg)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	flat, err := r.FlattenTree(rootHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	got := make(map[string]object.Hash, len(flat))
	for _, e := range flat {
		got[e.Path] = e.BlobHash
	}
	if len(got) != len(stg.Entries) {
		t.Fatalf("flattened %d entries, staged %d", len(got), len(stg.Entries))
	}
	for p, h := range stg.Entries {
		if got[p] != h {
			t.Errorf("path %q: flattened %s, staged %s", p, got[p], h)
		}
	}
}
