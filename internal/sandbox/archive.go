package sandbox

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// maxArchiveBytes aborts output-archive collection once the running total
// of tar-entry payload bytes would exceed this bound (spec.md §4.2 step 10).
const maxArchiveBytes = 32 * 1024 * 1024

// errArchiveTooLarge is returned when the /output archive exceeds
// maxArchiveBytes before extraction finishes.
var errArchiveTooLarge = fmt.Errorf("sandbox: output archive exceeds %d bytes", maxArchiveBytes)

// readArchiveLimited copies r into memory, aborting with errArchiveTooLarge
// once more than maxArchiveBytes has been read (step 10's streamed,
// size-bounded collection).
func readArchiveLimited(r io.Reader) ([]byte, error) {
	limited := io.LimitReader(r, maxArchiveBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(data) > maxArchiveBytes {
		return nil, errArchiveTooLarge
	}
	return data, nil
}

// extractOutputArchive reads a tar stream produced from the container's
// /output directory and returns a map of artifact name to file content,
// skipping anything that isn't a regular file or whose name is absolute
// or contains ".." components, and stripping a leading "output/" path
// component from each retained name (spec.md §4.2 step 11).
func extractOutputArchive(tarData []byte) (map[string][]byte, error) {
	files := make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(tarData))

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := hdr.Name
		if path.IsAbs(name) || containsDotDot(name) {
			continue
		}
		name = strings.TrimPrefix(name, "output/")
		if name == "" {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		files[name] = content
	}
	return files, nil
}

// validateRelPath rejects any file-map key that is absolute or contains a
// ".." component before it is written under a scoped temp directory
// (spec.md §4.2 step 3).
func validateRelPath(name string) error {
	if path.IsAbs(name) {
		return fmt.Errorf("sandbox: path %q must be relative", name)
	}
	if containsDotDot(name) {
		return fmt.Errorf("sandbox: path %q must not contain \"..\" components", name)
	}
	return nil
}

func containsDotDot(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
