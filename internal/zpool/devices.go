package zpool

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"
)

var (
	// Stable identifiers as they appear in /dev/disk/by-id. The character
	// class excludes "/" so nested path components never match whole.
	diskIDPattern = regexp.MustCompile(`\b(?:ata-|nvme-|wwn-)[^\s/]+`)
	partSuffix    = regexp.MustCompile(`-part\d+$`)
)

// HarvestDiskIDs extracts every stable disk identifier from pool status text,
// with partition suffixes stripped. The result is deduplicated but unordered;
// callers own ordering.
func HarvestDiskIDs(statusText string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, match := range diskIDPattern.FindAllString(statusText, -1) {
		id := partSuffix.ReplaceAllString(match, "")
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Resolver maps stable by-id identifiers to live device nodes.
type Resolver struct {
	ByIDDir string // normally /dev/disk/by-id
	DevDir  string // normally /dev
}

// Resolve follows the by-id symlink for id and returns the bare device name
// (e.g. "sda"). ok is false when the link or the resolved device node is
// missing; that is a routine skip (pool text can reference detached disks),
// logged at debug level only.
func (r Resolver) Resolve(id string) (dev string, ok bool) {
	link := filepath.Join(r.ByIDDir, id)
	if _, err := os.Stat(link); err != nil {
		log.Debug().Str("id", id).Str("path", link).Msg("by-id path not found, skipping disk")
		return "", false
	}

	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		log.Debug().Str("id", id).Err(err).Msg("could not resolve by-id symlink, skipping disk")
		return "", false
	}

	dev = filepath.Base(target)
	if _, err := os.Stat(filepath.Join(r.DevDir, dev)); err != nil {
		log.Debug().Str("id", id).Str("device", dev).Msg("resolved device node missing, skipping disk")
		return "", false
	}
	return dev, true
}
