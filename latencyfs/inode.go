package latencyfs

import "sync"

const rootInode uint64 = 1

// inodeTable hands out stable inode numbers per relative path.
type inodeTable struct {
	mu     sync.Mutex
	next   uint64
	byPath map[string]uint64
}

func newInodeTable() *inodeTable {
	return &inodeTable{
		next:   rootInode,
		byPath: map[string]uint64{"": rootInode},
	}
}

func (t *inodeTable) get(rel string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ino, ok := t.byPath[rel]; ok {
		return ino
	}
	t.next++
	t.byPath[rel] = t.next
	return t.next
}

// forget drops rel and everything below it, so a recreated path gets a new
// inode.
func (t *inodeTable) forget(rel string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prefix := rel + "/"
	for p := range t.byPath {
		if p == rel || (len(p) > len(prefix) && p[:len(prefix)] == prefix) {
			delete(t.byPath, p)
		}
	}
}
