package repo

import (
	"github.com/odvcencio/grit/pkg/object"
)

// ControlDirName is the name of the repository control directory.
const ControlDirName = ".grit"

// Repo represents an opened grit repository. It carries no cached state:
// every operation loads the latest persisted index and refs, transforms
// them, and persists before returning.
type Repo struct {
	RootDir string        // working directory root
	GritDir string        // .grit/ directory
	Store   *object.Store // content-addressed object store
}
