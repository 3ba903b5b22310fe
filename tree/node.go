package tree

import (
	"bytes"
	"encoding/binary"
	"math"
)

// splitRecord is one entry in an internal node's split table: the
// feature it tests, the operator/value that decides the branch, and the
// child node indices it routes to. -1 means "no child for this branch".
type splitRecord struct {
	feature   int // global column
	isBinary  bool
	value     int     // isolated value for binary/nominal splits (1 for true binary)
	op        op      // continuous operator; opNop for binary/nominal
	threshold float64 // continuous threshold
	left      int
	right     int
	nan       int // always -1: no implementation in the corpus this is grounded on ever materializes a third NaN-specific child
}

// treeNode is one entry in the frozen tree's node table: either a LEAF
// (counts only) or an INTERNAL node (one or more split records, plus the
// count vector of samples that reached it).
type treeNode struct {
	leaf   bool
	counts []int
	splits []splitRecord
}

// Tree is the frozen, immutable result of Fit: a node table plus the
// class-id decoding table U. Safe to read from many goroutines during
// Predict.
type Tree struct {
	nodes     []treeNode
	classes   []int // U: compressed id -> original label
	criterion Criterion
	fb, fc    int
}

// NumNodes reports the size of the frozen node table.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// Criterion reports the impurity measure the tree was fit with.
func (t *Tree) Criterion() Criterion { return t.criterion }

// Shape reports the binary/continuous feature counts the tree was fit
// with.
func (t *Tree) Shape() (fb, fc int) { return t.fb, t.fc }

// Classes returns U, the compressed-id-to-original-label decoding table.
func (t *Tree) Classes() []int { return t.classes }

// SetMeta restores the criterion/fb/fc/classes fields the flat-buffer
// wire format does not carry (see UnmarshalBinary). Host-level
// persistence that carries this metadata alongside the buffer (the CLI's
// model envelope does) calls this after UnmarshalBinary to get back a
// fully usable Tree.
func (t *Tree) SetMeta(criterion Criterion, fb, fc int, classes []int) {
	t.criterion = criterion
	t.fb = fb
	t.fc = fc
	t.classes = classes
}

// MarshalBinary encodes the tree as the flat integer buffer layout:
// header offset_of_class_table, then per node
// [encoded_length, ttype, index, n_splits, (feature, threshold_bits,
// left_off, right_off, nan_off) x n_splits, counts x K], then
// class_ids x K. encoded_length counts every word of the node, itself
// included. Child references are word offsets, not node indices: each
// left_off/right_off/nan_off holds the absolute word position at which
// the child node's encoded_length word begins (-1 for no child), and
// decode maps it back to a node index through the node boundaries it
// finds by walking the encoded_length fields.
func (t *Tree) MarshalBinary() ([]byte, error) {
	k := 0
	if len(t.nodes) > 0 {
		k = len(t.nodes[0].counts)
	}

	// word offset (in int32 units, 1-based after the header word) where
	// each node begins; mirrors encode_tree's out_node_slices.
	nodeWordOffset := make([]int32, len(t.nodes)+1)
	offset := int32(1)
	nodeWordOffset[0] = offset
	for i, n := range t.nodes {
		l := int32(4 + len(n.splits)*5 + k) // encoded_length,ttype,index,n_splits + splits + counts
		offset += l
		nodeWordOffset[i+1] = offset
	}
	classOffset := offset

	buf := new(bytes.Buffer)
	writeI32 := func(v int32) { binary.Write(buf, binary.LittleEndian, v) }

	writeI32(classOffset)
	for i, n := range t.nodes {
		encLen := nodeWordOffset[i+1] - nodeWordOffset[i]
		writeI32(encLen)
		ttype := int32(1)
		if n.leaf {
			ttype = 2
		}
		writeI32(ttype)
		writeI32(int32(i))
		writeI32(int32(len(n.splits)))
		for _, s := range n.splits {
			writeI32(int32(s.feature))
			writeI32(thresholdBits(s))
			writeI32(childOffset(s.left, nodeWordOffset))
			writeI32(childOffset(s.right, nodeWordOffset))
			writeI32(childOffset(s.nan, nodeWordOffset))
		}
		for _, c := range n.counts {
			writeI32(int32(c))
		}
	}
	for _, c := range t.classes {
		writeI32(int32(c))
	}

	return buf.Bytes(), nil
}

func thresholdBits(s splitRecord) int32 {
	if s.isBinary {
		return int32(s.value)
	}
	return int32(math.Float32bits(float32(s.threshold)))
}

func childOffset(idx int, nodeWordOffset []int32) int32 {
	if idx == -1 {
		return -1
	}
	return nodeWordOffset[idx]
}

// UnmarshalBinary decodes a buffer produced by MarshalBinary. The tree's
// criterion/fb/fc are not recoverable from the wire format (it encodes
// only the frozen node table and class ids, per spec.md's
// compatibility-relevant layout), and are left zero-valued; callers that
// need them should carry them separately (the CLI's model envelope does,
// see cmd/ambitree/model.go).
func (t *Tree) UnmarshalBinary(data []byte) error {
	if len(data)%4 != 0 {
		return invalidInputf("frozen tree buffer length %d not a multiple of 4", len(data))
	}
	words := make([]int32, len(data)/4)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	if len(words) == 0 {
		return invalidInputf("empty frozen tree buffer")
	}
	classOffset := int(words[0])
	if classOffset > len(words) {
		return invalidInputf("frozen tree class offset %d exceeds buffer length %d", classOffset, len(words))
	}

	// first pass: find node boundaries by walking encoded_length fields,
	// recording each node's starting word offset so split child offsets
	// (which target those same offsets) can be mapped back to indices.
	type bounds struct{ start, length int32 }
	var nodeBounds []bounds
	cursor := int32(1)
	for cursor < int32(classOffset) {
		length := words[cursor]
		nodeBounds = append(nodeBounds, bounds{start: cursor, length: length})
		cursor += length
	}
	offsetToIndex := make(map[int32]int, len(nodeBounds))
	for i, b := range nodeBounds {
		offsetToIndex[b.start] = i
	}

	nodes := make([]treeNode, len(nodeBounds))
	for i, b := range nodeBounds {
		p := b.start
		p++ // encoded_length, already in b.length
		ttype := words[p]
		p++
		p++ // index field, redundant with i
		nSplits := int(words[p])
		p++

		var k int
		splits := make([]splitRecord, nSplits)
		for s := 0; s < nSplits; s++ {
			feature := int(words[p])
			p++
			threshBits := words[p]
			p++
			leftOff := words[p]
			p++
			rightOff := words[p]
			p++
			nanOff := words[p]
			p++

			splits[s] = splitRecord{
				feature: feature,
				left:    offsetOrNeg1(leftOff, offsetToIndex),
				right:   offsetOrNeg1(rightOff, offsetToIndex),
				nan:     offsetOrNeg1(nanOff, offsetToIndex),
			}
			if threshBits == 1 {
				splits[s].isBinary = true
				splits[s].value = 1
			} else {
				splits[s].threshold = float64(math.Float32frombits(uint32(threshBits)))
				splits[s].op = opGE
			}
		}
		k = int(b.length) - 4 - nSplits*5
		counts := make([]int, k)
		for c := 0; c < k; c++ {
			counts[c] = int(words[p])
			p++
		}
		nodes[i] = treeNode{leaf: ttype == 2, counts: counts, splits: splits}
	}

	classes := make([]int, len(words)-classOffset)
	for i := range classes {
		classes[i] = int(words[classOffset+i])
	}

	t.nodes = nodes
	t.classes = classes
	return nil
}

func offsetOrNeg1(off int32, offsetToIndex map[int32]int) int {
	if off == -1 {
		return -1
	}
	idx, ok := offsetToIndex[off]
	if !ok {
		return -1
	}
	return idx
}
