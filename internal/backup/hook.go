package backup

import (
	"sync"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// Once takes at most one backup per client over its lifetime, so a command
// that writes the same file several times only backs it up before the
// first write.
type Once struct {
	mgr  *Manager
	mu   sync.Mutex
	done map[string]bool
}

// NewOnce returns a Once that backs up through mgr.
func NewOnce(mgr *Manager) *Once {
	return &Once{
		mgr:  mgr,
		done: make(map[string]bool),
	}
}

// Ensure backs up paths for client unless that already happened. Missing
// files are skipped and a client with no existing files is not an error.
// Old backups beyond the manager's retention count are pruned. A failed
// backup is retried on the next call.
func (o *Once) Ensure(client string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done[client] {
		return nil
	}

	manifest, err := o.mgr.Backup(client, paths)
	if err != nil {
		if errors.Is(err, ErrNothingToBackUp) {
			o.done[client] = true
			return nil
		}
		return errors.Wrapf(err, "creating backup for %s", client)
	}
	o.done[client] = true
	o.mgr.logger.Debug("backed up client config", "client", client, "backup", manifest.ID, "files", len(manifest.Files))

	if err := o.mgr.Prune(client, o.mgr.retentionCount); err != nil {
		o.mgr.logger.Warn("pruning old backups", "client", client, "error", err)
	}
	return nil
}

// Reset forgets which clients were backed up.
func (o *Once) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = make(map[string]bool)
}
