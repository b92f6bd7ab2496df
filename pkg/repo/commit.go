package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/grit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// Commit creates a new commit from the current staging area.
//
//  1. Resolve HEAD to find the parent commit hash (absent for the first commit)
//  2. Build the tree from the staging index
//  3. Refuse a tree identical to the parent's (ErrNothingToCommit)
//  4. Write the commit object
//  5. Advance the active ref to the new commit
//
// The staging index is read but never cleared: it keeps representing the
// next commit's contents across commits.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	return r.CommitWithSigner(message, author, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is provided.
func (r *Repo) CommitWithSigner(message, author string, signer CommitSigner) (object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	treeHash, err := r.BuildTree(stg)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parent object.Hash
	parentHash, err := r.ResolveRef("HEAD")
	switch {
	case err == nil:
		parent = parentHash
	case errors.Is(err, ErrRefNotFound):
		// First commit on this branch.
	default:
		return "", fmt.Errorf("commit: resolve parent: %w", err)
	}

	if parent != "" {
		parentCommit, err := r.Store.ReadCommit(parent)
		if err != nil {
			return "", fmt.Errorf("commit: read parent %s: %w", parent, err)
		}
		if parentCommit.TreeHash == treeHash {
			return "", fmt.Errorf("commit: tree unchanged from parent: %w", ErrNothingToCommit)
		}
	}

	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parent:    parent,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}

	// head is either a ref path ("refs/heads/master") or a detached hash.
	if strings.HasPrefix(head, "refs/") {
		var updateErr error
		if parent == "" {
			updateErr = r.UpdateRefCAS(head, commitHash)
		} else {
			updateErr = r.UpdateRefCAS(head, commitHash, parent)
		}
		if updateErr != nil {
			return "", fmt.Errorf("commit: update ref %q: %w", head, updateErr)
		}
	} else {
		if err := r.UpdateRefCAS("HEAD", commitHash, object.Hash(strings.TrimSpace(head))); err != nil {
			return "", fmt.Errorf("commit: update detached HEAD: %w", err)
		}
	}

	log.WithFields(log.Fields{"commit": commitHash, "tree": treeHash, "parent": parent}).Debug("commit created")
	return commitHash, nil
}

// Log walks the commit history starting from the given hash, following
// parent links, returning up to limit commits newest first along with
// their hashes.
func (r *Repo) Log(start object.Hash, limit int) ([]object.Hash, []*object.CommitObj, error) {
	var hashes []object.Hash
	var commits []*object.CommitObj
	current := start

	for current != "" && len(commits) < limit {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		hashes = append(hashes, current)
		commits = append(commits, c)
		current = c.Parent
	}

	return hashes, commits, nil
}
