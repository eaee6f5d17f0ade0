package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID identifies a node. IDs are derived from the path that created the
// node, so evaluating the same source twice yields the same IDs.
type NodeID [16]byte

// ZeroID is the unset ID.
var ZeroID NodeID

// NewNodeID hashes path into an ID.
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	var id NodeID
	copy(id[:], sum[:])
	return id
}

func (id NodeID) IsZero() bool { return id == ZeroID }

func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first eight hex digits, enough for messages.
func (id NodeID) Short() string { return id.String()[:8] }

// MarshalText lets IDs be used as JSON object keys.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("graph: node id %q has wrong length", b)
	}
	_, err := hex.Decode(id[:], b)
	return err
}
