package index

import "hash/fnv"

// A persistent hash trie from package id to entry. with copies only the
// nodes on the path to the key, so publishing a snapshot after an insert
// costs the same regardless of how many packages are indexed.
const (
	trieBits  = 4
	trieWidth = 1 << trieBits
	trieDepth = 32 / trieBits
)

type trieNode struct {
	child [trieWidth]*trieNode
	// bucket holds the entries whose hashes collide; only set at trieDepth.
	bucket []*entry
}

func idHash(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}

func (n *trieNode) get(id string) *entry {
	h := idHash(id)
	for depth := 0; depth < trieDepth; depth++ {
		if n == nil {
			return nil
		}
		n = n.child[h>>(depth*trieBits)&(trieWidth-1)]
	}
	if n == nil {
		return nil
	}
	for _, e := range n.bucket {
		if e.pkg.ID == id {
			return e
		}
	}
	return nil
}

// with returns a trie holding everything in n plus e. The id must not
// already be present.
func (n *trieNode) with(e *entry) *trieNode {
	return n.insert(idHash(e.pkg.ID), 0, e)
}

func (n *trieNode) insert(h uint32, depth int, e *entry) *trieNode {
	var out trieNode
	if n != nil {
		out = *n
	}
	if depth == trieDepth {
		out.bucket = append(append(make([]*entry, 0, len(out.bucket)+1), out.bucket...), e)
		return &out
	}
	i := h >> (depth * trieBits) & (trieWidth - 1)
	out.child[i] = out.child[i].insert(h, depth+1, e)
	return &out
}
