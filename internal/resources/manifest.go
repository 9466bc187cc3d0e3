package resources

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"zazasite/internal/domain/content"
)

const ManifestName = "resources.manifest.json"

func WriteManifest(outDir string, entries []content.ManifestEntry) error {
	if entries == nil {
		entries = []content.ManifestEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(outDir, ManifestName), append(data, '\n'))
}

func ReadManifest(outDir string) ([]content.ManifestEntry, error) {
	data, err := os.ReadFile(filepath.Join(outDir, ManifestName))
	if err != nil {
		return nil, err
	}
	var entries []content.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// VerifyManifest returns the manifest paths whose files are missing under outDir.
func VerifyManifest(outDir, publicBase string, entries []content.ManifestEntry) ([]string, error) {
	var missing []string
	for _, e := range entries {
		for _, p := range []string{e.HTML, e.PDF} {
			local := localPath(outDir, publicBase, p)
			if _, err := os.Stat(local); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					missing = append(missing, p)
					continue
				}
				return nil, err
			}
		}
	}
	return missing, nil
}

func localPath(outDir, publicBase, public string) string {
	rel := strings.TrimPrefix(public, strings.TrimRight(publicBase, "/"))
	return filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
