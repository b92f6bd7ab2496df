package object

import (
	"encoding/hex"
	"fmt"
)

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// RawLen is the length of a digest in raw bytes.
const RawLen = 20

// HexLen is the length of a hex-encoded digest.
const HexLen = 2 * RawLen

// Raw decodes the hash into its 20 raw digest bytes.
func (h Hash) Raw() ([]byte, error) {
	if len(h) != HexLen {
		return nil, fmt.Errorf("hash %q: want %d hex characters, have %d", h, HexLen, len(h))
	}
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("hash %q: %w", h, err)
	}
	return raw, nil
}

// HashFromRaw encodes 20 raw digest bytes as a Hash.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != RawLen {
		return "", fmt.Errorf("raw hash: want %d bytes, have %d", RawLen, len(raw))
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// KnownType reports whether t is one of the object kinds this store writes.
func KnownType(t ObjectType) bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Name is a single path segment
// and must not contain a slash.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds a set of tree entries. Serialization sorts them by Name,
// so insertion order never affects the tree's hash.
type TreeObj struct {
	Entries []TreeEntry
}

// CommitObj represents a commit pointing to a tree with metadata. Parent is
// empty for the first commit on a branch; history is a backward-linked list.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash
	Author    string
	Timestamp int64
	Signature string
	Message   string
}
