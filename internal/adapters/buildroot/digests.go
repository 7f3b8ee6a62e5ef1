package buildroot

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

// largestOutputsShown is the number of outputs listed when the size limit is exceeded.
const largestOutputsShown = 5

func (r *Root) digestsPath() string {
	return filepath.Join(r.path, domain.OutputDigestsFileName)
}

// ReadOutputDigests loads the persisted digests or computes them from the outputs.
// Without hashing a random outputs uid is returned, so dependents never share a content uid.
func (r *Root) ReadOutputDigests(writeIfAbsent bool) (*domain.OutputDigests, error) {
	if d, ok := r.loadDigests(); ok {
		return d, nil
	}
	if !r.computeHash {
		return &domain.OutputDigests{Version: domain.DigestVersion, OutputsUID: "rndhash-" + uuid.NewString()}, nil
	}

	d, err := r.computeDigests()
	if err != nil || d == nil || !writeIfAbsent {
		return d, err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrOutputDigestFailed.Error())
	}
	if err := os.WriteFile(r.digestsPath(), data, domain.FilePerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDigestFailed.Error()), "path", r.digestsPath())
	}
	r.AddOutput(domain.Macro(domain.BuildRoot) + "/" + domain.OutputDigestsFileName)
	return d, nil
}

func (r *Root) loadDigests() (*domain.OutputDigests, bool) {
	data, err := os.ReadFile(r.digestsPath())
	if err != nil {
		return nil, false
	}
	var d domain.OutputDigests
	if err := json.Unmarshal(data, &d); err != nil || d.OutputsUID == "" {
		r.set.logger.Warn("cannot load output digests", "path", r.digestsPath(), "error", err)
		return nil, false
	}
	return &d, true
}

// computeDigests hashes every output. It returns nil when an output is missing.
func (r *Root) computeDigests() (*domain.OutputDigests, error) {
	outputs := r.Outputs()
	digests := make(map[string]domain.FileDigest, len(outputs))
	hashes := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if strings.HasSuffix(out, domain.OutputDigestsFileName) {
			continue
		}
		d, err := fileDigest(out)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDigestFailed.Error()), "path", out)
		}
		rel, err := filepath.Rel(r.path, out)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputDigestFailed.Error()), "path", out)
		}
		digests[filepath.ToSlash(rel)] = d
		hashes = append(hashes, d.ContentDigest)
	}
	return &domain.OutputDigests{
		Version:     domain.DigestVersion,
		FileDigests: digests,
		OutputsUID:  domain.SumHashes(hashes...),
	}, nil
}

func fileDigest(path string) (domain.FileDigest, error) {
	f, err := os.Open(path) //nolint:gosec // G304: outputs of the build root
	if err != nil {
		return domain.FileDigest{}, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return domain.FileDigest{}, err
	}
	return domain.FileDigest{Size: n, ContentDigest: fmt.Sprintf("%016x", h.Sum64())}, nil
}

// validateContent compares persisted digests of the current version with the files on disk.
func (r *Root) validateContent() error {
	cached, ok := r.loadDigests()
	if !ok || cached.Version != domain.DigestVersion {
		return nil
	}
	current, err := r.computeDigests()
	if err != nil {
		return zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error())
	}
	if current == nil || current.OutputsUID != cached.OutputsUID {
		got := "<missing outputs>"
		if current != nil {
			got = current.OutputsUID
		}
		return zerr.With(zerr.With(zerr.With(zerr.Wrap(errors.New("content hash mismatch"), domain.ErrBuildRootIntegrity.Error()),
			"path", r.path), "want", cached.OutputsUID), "got", got)
	}
	return nil
}

type outputSize struct {
	path string
	size int64
}

func validateSize(outputs []string, limit int64) error {
	sizes := make([]outputSize, 0, len(outputs))
	var total int64
	for _, out := range outputs {
		info, err := os.Stat(out)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrBuildRootIntegrity.Error()), "path", out)
		}
		sizes = append(sizes, outputSize{path: out, size: info.Size()})
		total += info.Size()
	}
	if total <= limit {
		return nil
	}

	slices.SortStableFunc(sizes, func(a, b outputSize) int { return cmp.Compare(b.size, a.size) })
	largest := make([]string, 0, largestOutputsShown)
	for _, s := range sizes[:min(largestOutputsShown, len(sizes))] {
		largest = append(largest, s.path+": "+formatSize(s.size))
	}
	msg := fmt.Sprintf("Task output size %d exceeds limit %d, largest outputs are\n%s", total, limit, strings.Join(largest, "\n"))
	return zerr.Wrap(errors.New(msg), domain.ErrOutputsExceedLimit.Error())
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
