package executor

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"agentmarket/internal/domain/model"
)

// maxCollectedFileSize keeps deliverables shippable as JSON.
const maxCollectedFileSize = 100_000

// CollectFiles walks dir and gathers the text files an agent produced.
// Dot-entries and dependency caches are skipped, as are files at or above
// the size ceiling and files that are not valid UTF-8. Collection is
// best-effort: unreadable entries and a missing dir yield a shorter (or
// empty) list, never an error.
func CollectFiles(dir string) []model.FileRecord {
	var files []model.FileRecord
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return filepath.SkipAll
			}
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() >= maxCollectedFileSize {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil || !utf8.Valid(content) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		files = append(files, model.FileRecord{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	return files
}
