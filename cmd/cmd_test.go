package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/docksched/core/model"
)

const list = `[
 {"Id": 10, "Awizacja": "2025-11-20T08:00:00", "Title": "ACME", "Rejestracja": "WX1"},
 {"Id": 11, "Awizacja": "2025-11-20T08:30:00", "Title": "Beta", "Rejestracja": "WX2"},
 {"Id": 12, "Awizacja": "2025-11-21T08:00:00", "Title": "Tomorrow", "Rejestracja": "WX3"}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveJSON(t *testing.T) {
	t.Setenv("K_SCHEDULE__TIMEZONE", "UTC")
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(list), 0o600))

	out, err := execute(t, "resolve", path, "--day", "2025-11-20", "--format", "json")
	require.NoError(t, err)
	var body struct {
		Appointments []model.Appointment `json:"appointments"`
		Shifts       []json.RawMessage   `json:"shifts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Len(t, body.Appointments, 2)
	assert.Equal(t, "09:30", body.Appointments[1].TimeLabel)
	assert.Len(t, body.Shifts, 1)
}

func TestResolveTable(t *testing.T) {
	t.Setenv("K_SCHEDULE__TIMEZONE", "UTC")
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(list), 0o600))

	out, err := execute(t, "resolve", path, "--day", "2025-11-20", "--format", "table")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "TIME"))
	assert.Contains(t, out, "2 appointments, 1 shifted")

	_, err = execute(t, "resolve", path, "--day", "2025-11-20", "--format", "xml")
	assert.Error(t, err)
}

func TestExportEmptyDayToStdout(t *testing.T) {
	t.Setenv("K_PERSIST__BACKEND", "memory")
	out, err := execute(t, "export", "--day", "2025-11-20", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Date,Time,Company")
}
