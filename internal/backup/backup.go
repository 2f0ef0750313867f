package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const manifestName = "manifest.json"

// Manager creates, lists, prunes and restores backups.
type Manager struct {
	rootDir        string
	retentionCount int
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetentionCount sets how many backups Once keeps per client.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager rooted at the default backup directory
// unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		logger:         logging.NewDiscard(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root backup directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Backup copies the files at paths into a new backup for client. Paths
// that do not exist are skipped; if none exist, ErrNothingToBackUp is
// returned and no backup directory is left behind.
func (m *Manager) Backup(client string, files []string) (*Manifest, error) {
	if client == "" {
		return nil, errors.New("client is required")
	}
	if len(files) == 0 {
		return nil, errors.New("at least one path is required")
	}

	id, dir, err := m.newBackupDir(client)
	if err != nil {
		return nil, err
	}

	var copied []File
	for _, p := range files {
		src := paths.ResolveTilde(p)
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			continue
		}

		bf, err := backupFile(src, dir)
		if err != nil {
			os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", p)
		}
		copied = append(copied, *bf)
	}

	if len(copied) == 0 {
		os.RemoveAll(dir)
		return nil, ErrNothingToBackUp
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   m.now().UTC(),
		Client:      client,
		Files:       copied,
		ToolVersion: Version,
		ID:          id,
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, manifestName), manifest); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}
	return manifest, nil
}

// newBackupDir creates a fresh, uniquely named backup directory.
func (m *Manager) newBackupDir(client string) (string, string, error) {
	if err := os.MkdirAll(m.clientDir(client), 0o755); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}
	for {
		id := m.now().UTC().Format(idLayout)
		dir := m.backupPath(client, id)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
	}
}

func backupFile(src, dir string) (*File, error) {
	rel := generateRelPath(src)
	dst := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}
	return &File{
		OriginalPath: src,
		RelPath:      rel,
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// Restore copies the files of a backup back to their original locations.
// The current files are backed up first. Every file is verified against
// its recorded hash before anything is overwritten.
func (m *Manager) Restore(client, id string) error {
	manifest, err := m.Get(client, id)
	if err != nil {
		return err
	}
	dir := m.backupPath(client, id)

	for _, bf := range manifest.Files {
		hash, err := hashFile(filepath.Join(dir, bf.RelPath))
		if err != nil {
			return errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		if hash != bf.SHA256Hash {
			return errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}
	}

	current := make([]string, 0, len(manifest.Files))
	for _, bf := range manifest.Files {
		current = append(current, bf.OriginalPath)
	}
	if _, err := m.Backup(client, current); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return errors.Wrap(err, "backing up current files before restore")
	}

	for _, bf := range manifest.Files {
		if err := os.MkdirAll(filepath.Dir(bf.OriginalPath), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", bf.OriginalPath)
		}
		if _, _, err := copyFile(filepath.Join(dir, bf.RelPath), bf.OriginalPath); err != nil {
			return errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}
		if err := os.Chmod(bf.OriginalPath, bf.Mode); err != nil {
			return errors.Wrapf(err, "setting permissions for %s", bf.OriginalPath)
		}
		m.logger.Debug("restored file", "client", client, "path", bf.OriginalPath, "backup", id)
	}
	return nil
}

// List returns the backups for client, newest first.
func (m *Manager) List(client string) ([]Manifest, error) {
	if client == "" {
		return nil, errors.New("client is required")
	}

	entries, err := os.ReadDir(m.clientDir(client))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(client, entry.Name())
		if err != nil {
			m.logger.Debug("skipping unreadable backup", "client", client, "backup", entry.Name(), "error", err)
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune deletes all but the newest keep backups for client.
func (m *Manager) Prune(client string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(client)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(m.backupPath(client, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
		m.logger.Debug("pruned backup", "client", client, "backup", manifests[i].ID)
	}
	return nil
}

// Get loads the manifest of one backup.
func (m *Manager) Get(client, id string) (*Manifest, error) {
	if client == "" {
		return nil, errors.New("client is required")
	}
	if id == "" {
		return nil, errors.New("backup ID is required")
	}

	data, err := os.ReadFile(filepath.Join(m.backupPath(client, id), manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func (m *Manager) backupPath(client, id string) string {
	return filepath.Join(m.clientDir(client), id)
}

func (m *Manager) clientDir(client string) string {
	return filepath.Join(m.rootDir, client)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst and returns the content hash and src's mode.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = info.Mode().Perm()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := out.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}
	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a relative one inside the
// backup directory. Volume colons are dropped.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	clean = strings.TrimLeft(clean, string(filepath.Separator))
	return strings.ReplaceAll(clean, ":", "")
}
