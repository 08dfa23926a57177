package models

import (
	"fmt"
	"sort"
	"time"
)

// Descriptor is the remote's manifest (descriptor.json). Push and pull
// diff against it instead of walking the artifact tree; it is an index,
// never authoritative over local state.
type Descriptor struct {
	ProjectID        string              `json:"project_id"`
	ProjectName      string              `json:"project_name"`
	ArtifactName     string              `json:"artifact_name"`
	ProjectCreatedAt time.Time           `json:"project_created_at,omitempty"`
	UpdatedAt        time.Time           `json:"updated_at"`
	UpdatedBy        string              `json:"updated_by"`
	Branches         []DescriptorBranch  `json:"branches"`
	Versions         []DescriptorVersion `json:"versions"`
}

// DescriptorBranch records a branch known to the remote.
type DescriptorBranch struct {
	Name          string    `json:"name"`
	ParentBranch  string    `json:"parent_branch,omitempty"`
	ParentVersion int       `json:"parent_version,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DescriptorVersion records one pushed version. ContentID is the
// conflict discriminator: two versions with the same branch and ordinal
// but different content ids were created independently on different
// machines. MachineID records which machine pushed the entry.
type DescriptorVersion struct {
	Branch    string    `json:"branch"`
	Ordinal   int       `json:"ordinal"`
	Parent    *int      `json:"parent"`
	ContentID string    `json:"content_id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Analyzed  bool      `json:"analyzed"`
	MachineID string    `json:"machine_id,omitempty"`
}

// HasBranch reports whether the descriptor lists a branch by name.
func (d *Descriptor) HasBranch(name string) bool {
	for _, b := range d.Branches {
		if b.Name == name {
			return true
		}
	}
	return false
}

// FindVersion returns the descriptor entry for branch/ordinal, or nil.
func (d *Descriptor) FindVersion(branch string, ordinal int) *DescriptorVersion {
	for i := range d.Versions {
		v := &d.Versions[i]
		if v.Branch == branch && v.Ordinal == ordinal {
			return v
		}
	}
	return nil
}

// MaxOrdinal returns the highest ordinal recorded for a branch, or 0.
func (d *Descriptor) MaxOrdinal(branch string) int {
	max := 0
	for _, v := range d.Versions {
		if v.Branch == branch && v.Ordinal > max {
			max = v.Ordinal
		}
	}
	return max
}

// BranchVersions returns the descriptor entries for a branch sorted by
// ordinal.
func (d *Descriptor) BranchVersions(branch string) []DescriptorVersion {
	var out []DescriptorVersion
	for _, v := range d.Versions {
		if v.Branch == branch {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// AddVersion appends a version entry, rejecting duplicates.
func (d *Descriptor) AddVersion(v DescriptorVersion) error {
	if existing := d.FindVersion(v.Branch, v.Ordinal); existing != nil {
		return fmt.Errorf("descriptor already has %s/%s", v.Branch, VersionDirName(v.Ordinal))
	}
	d.Versions = append(d.Versions, v)
	return nil
}
