package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modelvault/internal/testutil"
)

func TestInfoCommand(t *testing.T) {
	p := testutil.NewTempProject(t, "tower", "tower.edb")
	testutil.Chdir(t, p.Root)

	infoJSON = false
	infoToon = false
	infoSetDescription = ""
	require.NoError(t, runInfo(nil, nil))

	infoJSON = true
	require.NoError(t, runInfo(nil, nil))
	infoJSON = false
}

func TestInfoSetDescription(t *testing.T) {
	p := testutil.NewTempProject(t, "tower", "tower.edb")
	testutil.Chdir(t, p.Root)

	before, err := p.Store.LoadProject()
	require.NoError(t, err)

	infoJSON = false
	infoToon = false
	infoSetDescription = "40-story tower, seismic redesign"
	require.NoError(t, runInfo(nil, nil))
	infoSetDescription = ""

	after, err := p.Store.LoadProject()
	require.NoError(t, err)
	require.Equal(t, "40-story tower, seismic redesign", after.Description)
	require.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}
