package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DigestVersion is the version of the output digest format.
const DigestVersion = 2

// FileDigest is the digest of a single output file.
type FileDigest struct {
	Size          int64  `json:"size"`
	ContentDigest string `json:"content_digest"`
}

// OutputDigests are the digests of every output of a build root.
// FileDigests is keyed by path relative to the build root.
type OutputDigests struct {
	Version     int                   `json:"version"`
	FileDigests map[string]FileDigest `json:"file_digests"`
	OutputsUID  string                `json:"outputs_uid"`
}

// SumHashes combines hashes into one, order sensitive.
func SumHashes(hashes ...string) string {
	h := xxhash.New()
	for _, s := range hashes {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ContentUID computes the content uid of a node from its own hash and its dependency nodes,
// in declared dependency order. It returns false when the node has no own hash or any dependency
// has no output digests yet.
func ContentUID(n *Node, deps []*Node) (string, bool) {
	if n.SelfUID == "" {
		return "", false
	}

	hashes := make([]string, 0, len(deps)+1)
	hashes = append(hashes, n.SelfUID)
	for _, d := range deps {
		if d.OutputDigests == nil || d.OutputDigests.OutputsUID == "" {
			return "", false
		}
		hashes = append(hashes, d.OutputDigests.OutputsUID)
	}
	return SumHashes(hashes...), true
}
