package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups kept per client.
const DefaultRetentionCount = 5

// idLayout formats backup IDs. The fractional part keeps IDs taken within
// the same second distinct and sortable.
const idLayout = "20060102T150405.000000000"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the client.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a backed up file no longer matches the
	// hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates none of the requested paths exist.
	ErrNothingToBackUp = errors.New("no files to back up")
)

// Manifest describes one backup. It is stored as manifest.json in the
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Client is the client whose config files were backed up.
	Client string `json:"client"`

	Files []File `json:"files"`

	// ToolVersion is the mcpswitch version that wrote the backup.
	ToolVersion string `json:"mcpswitch_version"`

	// ID is the backup directory name. It is filled in when loading and
	// not stored in the manifest.
	ID string `json:"-"`
}

// File records one backed up file.
type File struct {
	// OriginalPath is the absolute path the file was copied from.
	OriginalPath string `json:"original_path"`

	// RelPath is the file's location inside the backup directory.
	RelPath string `json:"rel_path"`

	SHA256Hash string      `json:"sha256_hash"`
	Mode       fs.FileMode `json:"mode"`
}
