package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/grit/pkg/object"
)

func TestHeadSymbolic(t *testing.T) {
	r := initTestRepo(t)
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != "refs/heads/master" {
		t.Errorf("head = %q", head)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "master" {
		t.Errorf("branch = %q", branch)
	}
}

func TestResolveRefFreshRepo(t *testing.T) {
	r := initTestRepo(t)
	_, err := r.ResolveRef("HEAD")
	if !errors.Is(err, ErrRefNotFound) {
		t.Fatalf("err = %v, want ErrRefNotFound", err)
	}
}

func TestUpdateAndResolveRef(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeCommit, []byte("fake commit"))

	if err := r.UpdateRef("refs/heads/master", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	for _, name := range []string{"HEAD", "master", "refs/heads/master"} {
		got, err := r.ResolveRef(name)
		if err != nil {
			t.Fatalf("ResolveRef(%q): %v", name, err)
		}
		if got != h {
			t.Errorf("ResolveRef(%q) = %s, want %s", name, got, h)
		}
	}
}

func TestUpdateRefCASMismatch(t *testing.T) {
	r := initTestRepo(t)
	h1 := object.HashObject(object.TypeCommit, []byte("one"))
	h2 := object.HashObject(object.TypeCommit, []byte("two"))
	wrong := object.HashObject(object.TypeCommit, []byte("wrong"))

	if err := r.UpdateRef("refs/heads/master", h1); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	err := r.UpdateRefCAS("refs/heads/master", h2, wrong)
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("err = %v, want ErrRefCASMismatch", err)
	}

	// The ref was not clobbered.
	got, err := r.ResolveRef("refs/heads/master")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != h1 {
		t.Errorf("ref = %s, want untouched %s", got, h1)
	}

	// With the right expectation the swap goes through.
	if err := r.UpdateRefCAS("refs/heads/master", h2, h1); err != nil {
		t.Fatalf("UpdateRefCAS: %v", err)
	}
	got, _ = r.ResolveRef("refs/heads/master")
	if got != h2 {
		t.Errorf("ref = %s, want %s", got, h2)
	}
}

func TestUpdateRefLeavesNoLockFile(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeCommit, []byte("x"))
	if err := r.UpdateRef("refs/heads/master", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.GritDir, "refs", "heads", "master.lock")); err == nil {
		t.Error("lock file left behind")
	}
}

func TestListRefs(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeCommit, []byte("tip"))
	if err := r.UpdateRef("refs/heads/master", h); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}

	refs, err := r.ListRefs("")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if refs["heads/master"] != h {
		t.Errorf("refs = %v", refs)
	}
}

func TestResolveRefDetachedHead(t *testing.T) {
	r := initTestRepo(t)
	h := object.HashObject(object.TypeCommit, []byte("detached"))
	if err := os.WriteFile(filepath.Join(r.GritDir, "HEAD"), []byte(string(h)+"\n"), 0o644); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}

	got, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != h {
		t.Errorf("detached HEAD = %s, want %s", got, h)
	}
}
