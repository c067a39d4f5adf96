package session

import "github.com/artn/hgfsd/internal/hostfs"

// Attach installs an open descriptor on a freshly allocated or re-opened
// node.
func (n *FileNode) Attach(f hostfs.File) { n.file = f }

// Close closes the node's descriptor, if any, without touching its slot
// or generation — callers still need to call FileTable.Free to actually
// release the handle.
func (n *FileNode) Close() error {
	if n.file == nil {
		return nil
	}
	err := n.file.Close()
	n.file = nil
	return err
}

// RenameAll updates the stored name of every live node currently opened
// under oldName to newName, so a Rename of a currently-open file keeps
// every outstanding handle pointed at the right host path (spec.md §4.7
// "Rename").
func (t *FileTable) RenameAll(oldName, newName string) {
	for _, n := range t.nodes {
		if n.State != NodeUnused && n.Name == oldName {
			n.Name = newName
		}
	}
}
