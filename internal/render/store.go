package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

const filePrefix = "generated_image_"

var fileNameRegex = regexp.MustCompile(`^generated_image_([1-9][0-9]*)\.jpg$`)

// FileName is the on-disk name for the image at the zero-based index.
func FileName(index int) string {
	return filePrefix + strconv.Itoa(index+1) + ".jpg"
}

// ParseFileName returns the one-based number in a generated image name.
func ParseFileName(name string) (int, bool) {
	m := fileNameRegex.FindStringSubmatch(name)
	if len(m) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BatchDir is where images of batchID live. An empty batch id maps to the
// output directory itself.
func (r *Renderer) BatchDir(batchID string) string {
	return filepath.Join(r.outputDir, batchID)
}

// save writes data through a temp file so readers never see a partial image.
func (r *Renderer) save(batchID string, index int, data []byte) (string, error) {
	dir := r.BatchDir(batchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod image: %w", err)
	}

	path := filepath.Join(dir, FileName(index))
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename image: %w", err)
	}
	return path, nil
}
