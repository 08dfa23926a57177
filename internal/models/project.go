package models

import "time"

// Project is the replicated project record stored in modelvault.json.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ArtifactName string    `json:"artifact_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocalState holds machine-local bookkeeping stored in local.json.
// It is never copied to the shared medium: each machine keeps its own
// active branch and replication identity.
type LocalState struct {
	MachineID    string    `json:"machine_id"`
	ActiveBranch string    `json:"active_branch"`
	LastPush     time.Time `json:"last_push,omitempty"`
	LastPull     time.Time `json:"last_pull,omitempty"`
}
