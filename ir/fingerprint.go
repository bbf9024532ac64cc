package ir

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"lukechampine.com/blake3"
)

// Fingerprint returns a stable content hash of the node as a hex string.
// Two structurally equal nodes have the same fingerprint; cached reference
// targets do not contribute.
func Fingerprint(n *Node) string {
	h := blake3.New(32, nil)
	writeNode(h, n)
	return hex.EncodeToString(h.Sum(nil))
}

func writeNode(h *blake3.Hasher, n *Node) {
	if n == nil {
		h.Write([]byte{0xff})
		return
	}
	h.Write([]byte{byte(n.Type)})
	writeString(h, n.TypeName)
	switch n.Type {
	case NullType:
	case BoolType:
		if n.Bool {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case IntType:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(n.Int64))
		h.Write(b[:])
	case FloatType:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(n.Float64))
		h.Write(b[:])
	case StringType:
		writeString(h, n.String)
	case ReferenceType:
		writeString(h, n.Ref)
	case ObjectType:
		writeLen(h, len(n.Fields))
		for i, f := range n.Fields {
			writeString(h, f)
			writeNode(h, n.Values[i])
		}
	case ArrayType:
		writeLen(h, len(n.Values))
		for _, v := range n.Values {
			writeNode(h, v)
		}
	}
}

func writeString(h *blake3.Hasher, s string) {
	writeLen(h, len(s))
	h.Write([]byte(s))
}

func writeLen(h *blake3.Hasher, n int) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	h.Write(b[:])
}
