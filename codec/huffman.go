package codec

import (
	"bytes"
	"container/heap"

	"github.com/basaltimg/rastercodec/bitio"
	cio "github.com/basaltimg/rastercodec/container"
)

// Huffman entropy-codes each channel plane independently: a 256-entry
// frequency table is persisted per channel, and the decoder rebuilds
// the identical canonical tree from it rather than from any serialized
// tree structure.
//
// Tree nodes live in a flat arena addressed by index rather than
// pointers, per the module's design notes: no recursion-depth
// surprises building or tearing down the tree, and nothing to leak.
type Huffman struct{}

// Name implements Codec.
func (Huffman) Name() string { return "huffman" }

// Magic implements Codec.
func (Huffman) Magic() string { return "HUFF" }

// hnode is an arena-addressed Huffman tree node. sym is the byte
// value for a leaf, or -1 for an internal node. left/right are arena
// indices, or -1 when absent.
type hnode struct {
	freq        uint64
	sym         int
	left, right int
}

// huffmanHeap orders arena indices by ascending frequency, breaking
// ties by ascending arena index (the order nodes were created in —
// leaves in symbol order, then combined nodes in pop order). This is
// the deterministic tie-break the design notes require: encode and
// decode both build the arena in the same order from the same
// frequency table, so they agree on every tie.
type huffmanHeap struct {
	idx   []int
	nodes []hnode
}

func (h huffmanHeap) Len() int { return len(h.idx) }
func (h huffmanHeap) Less(i, j int) bool {
	a, b := h.idx[i], h.idx[j]
	if h.nodes[a].freq != h.nodes[b].freq {
		return h.nodes[a].freq < h.nodes[b].freq
	}
	return a < b
}
func (h huffmanHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *huffmanHeap) Push(x any)   { h.idx = append(h.idx, x.(int)) }
func (h *huffmanHeap) Pop() any {
	old := h.idx
	n := len(old)
	v := old[n-1]
	h.idx = old[:n-1]
	return v
}

// buildHuffmanTree builds the canonical tree for a 256-entry
// frequency table. Symbols are pushed as leaves in ascending order
// (0..255); when exactly one symbol is live, a synthetic duplicate
// leaf is added so the symbol never gets a zero-length code (§9).
// Returns the arena and the root index, or ErrMalformedStream if no
// symbol has nonzero frequency.
func buildHuffmanTree(freq [256]uint64) ([]hnode, int, error) {
	var nodes []hnode
	h := &huffmanHeap{nodes: nil}
	for sym := 0; sym < 256; sym++ {
		if freq[sym] == 0 {
			continue
		}
		nodes = append(nodes, hnode{freq: freq[sym], sym: sym, left: -1, right: -1})
		h.idx = append(h.idx, len(nodes)-1)
	}
	h.nodes = nodes
	if len(h.idx) == 0 {
		return nil, -1, ErrMalformedStream
	}
	if len(h.idx) == 1 {
		single := h.idx[0]
		dup := hnode{freq: nodes[single].freq, sym: nodes[single].sym, left: -1, right: -1}
		nodes = append(nodes, dup)
		h.nodes = nodes
		dummy := hnode{freq: nodes[single].freq, sym: -1, left: single, right: len(nodes) - 1}
		nodes = append(nodes, dummy)
		h.nodes = nodes
		return nodes, len(nodes) - 1, nil
	}

	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		h.nodes = append(h.nodes, hnode{freq: h.nodes[a].freq + h.nodes[b].freq, sym: -1, left: a, right: b})
		heap.Push(h, len(h.nodes)-1)
	}
	root := heap.Pop(h).(int)
	return h.nodes, root, nil
}

// code is a bit sequence, MSB-first, packed into the low `len` bits
// of value.
type code struct {
	value uint32
	len   int
}

// buildCodeTable derives a symbol -> code mapping from the tree via
// an explicit-stack, iterative pre-order walk (0 for left, 1 for
// right), avoiding recursion entirely.
func buildCodeTable(nodes []hnode, root int) [256]code {
	var table [256]code
	if len(nodes) == 1 {
		// Single synthetic node with no leaves — buildHuffmanTree
		// never returns this shape, but guard anyway.
		return table
	}

	type frame struct {
		node      int
		value     uint32
		depth     int
	}
	stack := []frame{{node: root, value: 0, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodes[f.node]
		if n.left == -1 && n.right == -1 {
			l := f.depth
			if l == 0 {
				l = 1
			}
			table[n.sym] = code{value: f.value, len: l}
			continue
		}
		if n.left != -1 {
			stack = append(stack, frame{node: n.left, value: f.value << 1, depth: f.depth + 1})
		}
		if n.right != -1 {
			stack = append(stack, frame{node: n.right, value: (f.value << 1) | 1, depth: f.depth + 1})
		}
	}
	return table
}

// huffmanEncodePlane returns the bit-packed payload, the total valid
// bit count (excluding flush padding), and the 256-entry frequency
// table the caller persists so the decoder can rebuild the tree.
func huffmanEncodePlane(plane []byte) (payload []byte, validBits uint64, freq [256]uint64, err error) {
	if len(plane) == 0 {
		return nil, 0, freq, ErrEmptyInput
	}
	for _, b := range plane {
		freq[b]++
	}

	nodes, root, buildErr := buildHuffmanTree(freq)
	if buildErr != nil {
		return nil, 0, freq, buildErr
	}
	table := buildCodeTable(nodes, root)

	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, b := range plane {
		c := table[b]
		if err := bw.WriteBits(c.value, c.len); err != nil {
			return nil, 0, freq, err
		}
	}
	validBits = bw.TotalBitsWritten()
	if err := bw.Flush(); err != nil {
		return nil, 0, freq, err
	}
	return buf.Bytes(), validBits, freq, nil
}

// huffmanDecodePlane reconstructs a channel's bytes from its
// persisted frequency table and bit-packed payload.
func huffmanDecodePlane(payload []byte, validBits uint64, freq [256]uint64) ([]byte, error) {
	nodes, root, err := buildHuffmanTree(freq)
	if err != nil {
		return nil, err
	}

	var total uint64
	for _, f := range freq {
		total += f
	}
	out := make([]byte, 0, total)

	br := bitio.NewReader(bytes.NewReader(payload))
	cur := root
	var consumed uint64
	for consumed < validBits {
		bit, ok := br.ReadBit()
		if !ok {
			return nil, ErrMalformedStream
		}
		consumed++
		n := nodes[cur]
		if bit == 0 {
			cur = n.left
		} else {
			cur = n.right
		}
		if cur == -1 {
			return nil, ErrMalformedStream
		}
		leaf := nodes[cur]
		if leaf.left == -1 && leaf.right == -1 {
			out = append(out, byte(leaf.sym))
			cur = root
		}
	}
	return out, nil
}

// Compress implements Codec.
func (c Huffman) Compress(w, h, ch int, planes [][]byte, quality int) ([]byte, error) {
	cw := cio.NewWriter(64 + len(planes)*(256*8+16))
	cw.WriteMagic(c.Magic())
	cw.WriteUint32(uint32(w))
	cw.WriteUint32(uint32(h))
	cw.WriteUint8(uint8(ch))
	cw.WritePad(3)
	for _, plane := range planes {
		payload, validBits, freq, err := huffmanEncodePlane(plane)
		if err != nil {
			return nil, err
		}
		for _, f := range freq {
			cw.WriteUint64(f)
		}
		cw.WriteUint64(validBits)
		cw.WriteUint32(uint32(len(payload)))
		cw.WriteBytes(payload)
	}
	return cw.Bytes(), nil
}

// Decompress implements Codec.
func (c Huffman) Decompress(data []byte) (int, int, int, [][]byte, error) {
	cr := cio.NewReader(data)
	magic, err := cr.ReadMagic()
	if err != nil {
		return 0, 0, 0, nil, err
	}
	if magic != c.Magic() {
		return 0, 0, 0, nil, ErrBadMagic
	}
	w32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	h32, err := cr.ReadUint32()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	chB, err := cr.ReadUint8()
	if err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}
	if err := cr.Skip(3); err != nil {
		return 0, 0, 0, nil, ErrMalformedStream
	}

	planes := make([][]byte, chB)
	for k := range planes {
		var freq [256]uint64
		for i := range freq {
			v, err := cr.ReadUint64()
			if err != nil {
				return 0, 0, 0, nil, ErrMalformedStream
			}
			freq[i] = v
		}
		validBits, err := cr.ReadUint64()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		sz, err := cr.ReadUint32()
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		payload, err := cr.ReadBytes(int(sz))
		if err != nil {
			return 0, 0, 0, nil, ErrMalformedStream
		}
		plane, err := huffmanDecodePlane(payload, validBits, freq)
		if err != nil {
			return 0, 0, 0, nil, err
		}
		planes[k] = plane
	}
	return int(w32), int(h32), int(chB), planes, nil
}
