package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTypesCommandStructure(t *testing.T) {
	assert.NotNil(t, listTypesCmd)
	assert.Equal(t, "list-types", listTypesCmd.Use)
	assert.NotEmpty(t, listTypesCmd.Short)
	assert.NotEmpty(t, listTypesCmd.Long)
	assert.NotNil(t, listTypesCmd.RunE)
}

func TestListTypesIsAddedToRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "list-types" {
			found = true
			break
		}
	}
	assert.True(t, found, "list-types command should be added to root command")
}

func TestListTypesCommandExample(t *testing.T) {
	assert.Contains(t, listTypesCmd.Long, "Example:")
	assert.Contains(t, listTypesCmd.Long, "refdump list-types")
}

func TestRunListTypes(t *testing.T) {
	// Save original value and restore after test
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	storeRoot := seedTestStore(t)
	cfgFile = storeTestConfig(t, storeRoot, t.TempDir(), nil)

	var buf bytes.Buffer
	setOutputWriter(&buf)
	defer resetOutputWriter()

	err := runListTypes(listTypesCmd, []string{})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Store Census")
	assert.Contains(t, output, "[Type Tags]")
	assert.Contains(t, output, "[Namespaces]")

	// Every tag and namespace in the fixture shows up
	for _, name := range []string{"Weapon", "Material", "Tool", "Skill", "Items", "Skills"} {
		assert.Contains(t, output, name)
	}

	assert.Contains(t, output, "Total: 4 record(s), 4 type(s), 2 namespace(s)")
	assert.NotContains(t, output, "Unreadable records")
}

func TestRunListTypes_MissingConfig(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	cfgFile = "/tmp/nonexistent_refdump_config.yaml"

	err := runListTypes(listTypesCmd, []string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

// ============================================================================
// CLI Execution Tests
// ============================================================================

// TestListtypesCmd_Execute tests the census over a seeded store
func TestListtypesCmd_Execute(t *testing.T) {
	origCfgFile := cfgFile
	defer func() {
		cfgFile = origCfgFile
		rootCmd.SetArgs(nil)
	}()

	storeRoot := seedTestStore(t)
	configFile := storeTestConfig(t, storeRoot, t.TempDir(), nil)

	var buf bytes.Buffer
	setOutputWriter(&buf)
	defer resetOutputWriter()

	rootCmd.SetArgs([]string{"list-types", "--config", configFile})
	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Total: 4 record(s), 4 type(s), 2 namespace(s)")
}
