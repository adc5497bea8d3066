package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/case-diary-api/diary"
)

func execute(args ...string) error {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	return Execute(context.Background())
}

func TestExportRejectsUnknownFilters(t *testing.T) {
	err := execute("export", "--user", "counsel@example.com", "--status", "closed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, diary.ErrInvalidFilter))

	err = execute("export", "--user", "counsel@example.com", "--status", "all", "--date", "tomorrow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, diary.ErrInvalidFilter))
}

func TestImportRequiresFlags(t *testing.T) {
	err := execute("import-local", "--user", "counsel@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestImportMissingFile(t *testing.T) {
	err := execute("import-local", "--user", "counsel@example.com", "--file", t.TempDir()+"/missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "export", "import-local", "digest", "user"} {
		assert.True(t, names[want], want)
	}
}
