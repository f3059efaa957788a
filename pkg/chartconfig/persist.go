package chartconfig

import (
	"fmt"
	"os"
	"strings"
)

// Suffixes of the two effective configuration files. Exactly one of the pair
// exists after a successful persist.
const (
	NormalSuffix  = ".normal"
	OfflineSuffix = ".offline"
)

// EffectivePath returns the effective configuration path for a mode, built
// from the shared base path.
func EffectivePath(basePath string, offline bool) string {
	if offline {
		return basePath + OfflineSuffix
	}
	return basePath + NormalSuffix
}

// alternatePath returns the other mode's file for an effective path, or ""
// when the path carries no mode suffix.
func alternatePath(path string) string {
	switch {
	case strings.HasSuffix(path, NormalSuffix):
		return strings.TrimSuffix(path, NormalSuffix) + OfflineSuffix
	case strings.HasSuffix(path, OfflineSuffix):
		return strings.TrimSuffix(path, OfflineSuffix) + NormalSuffix
	default:
		return ""
	}
}

// Persist serializes the document to a temporary sibling of destPath and
// renames it into place, so readers only ever observe a complete file. The
// residual temporary name and the alternate mode file are removed best
// effort; a failed write or rename is returned, failed deletes are not.
func Persist(doc *Document, destPath string) error {
	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	tmpPath := destPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %q: %w", destPath, err)
	}
	os.Remove(tmpPath)

	if alt := alternatePath(destPath); alt != "" {
		os.Remove(alt)
	}
	return nil
}
