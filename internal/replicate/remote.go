// Package replicate synchronizes versions between machines through a
// shared folder. The medium offers no locking, so all conflict safety
// lives here: the descriptor manifest is the diffing index, content ids
// are the conflict discriminator, and colliding ordinals are resolved
// by renumbering the local chain, never by overwriting remote versions.
package replicate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"modelvault/internal/models"
	"modelvault/internal/store"
)

// Remote is a handle on the shared-folder medium.
type Remote struct {
	Root string
}

// DescriptorPath returns the manifest path.
func (r *Remote) DescriptorPath() string { return filepath.Join(r.Root, "descriptor.json") }

// TmpDir returns the remote-side staging directory. It lives on the
// remote's filesystem so renames into place stay atomic there.
func (r *Remote) TmpDir() string { return filepath.Join(r.Root, "tmp") }

// LogDir returns the directory of per-machine history bundles.
func (r *Remote) LogDir() string { return filepath.Join(r.Root, "log") }

// BundlePath returns one machine's bundle file.
func (r *Remote) BundlePath(machineID string) string {
	return filepath.Join(r.LogDir(), machineID+".bundle")
}

// VersionDir returns one version's artifact slot on the remote.
func (r *Remote) VersionDir(branch string, ordinal int) string {
	return filepath.Join(r.Root, "artifacts", branch, models.VersionDirName(ordinal))
}

// ensure creates the remote skeleton directories.
func (r *Remote) ensure() error {
	for _, dir := range []string{r.Root, r.TmpDir(), r.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create remote directory %s: %w", dir, err)
		}
	}
	return nil
}

// LoadDescriptor reads the remote manifest, or nil when the remote has
// never been pushed to.
func (r *Remote) LoadDescriptor() (*models.Descriptor, error) {
	data, err := os.ReadFile(r.DescriptorPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read remote descriptor: %w", err)
	}
	var d models.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse remote descriptor: %w", err)
	}
	return &d, nil
}

// SaveDescriptor publishes the manifest atomically through the remote
// staging directory. This is the last step of a push: entries only
// become visible after their artifacts and bundle are in place.
func (r *Remote) SaveDescriptor(d *models.Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode remote descriptor: %w", err)
	}
	if err := r.ensure(); err != nil {
		return err
	}
	return store.WriteFileAtomic(r.TmpDir(), r.DescriptorPath(), append(data, '\n'))
}
