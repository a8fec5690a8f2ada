package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outbound-dialer/internal/dialer"
	"github.com/sells-group/outbound-dialer/internal/store"
)

func writeLeads(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunBatch_File(t *testing.T) {
	fake, c := newFakeProviders(t)
	path := writeLeads(t, "leads.csv", "name,phone\nAsha,9876543210\n,9123456789\nRavi,+911234567890\n")

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), &out, c, path, "", false))

	assert.Equal(t, []string{"+919876543210", "+911234567890"}, fake.calls())
	assert.Equal(t,
		"Batch calling completed successfully: 2 of 2 leads attempted, 2 succeeded, 0 failed, 1 rows skipped.\n",
		out.String())
}

func TestRunBatch_JSON(t *testing.T) {
	_, c := newFakeProviders(t)
	path := writeLeads(t, "leads.csv", "name,phone\nAsha,9876543210\n")

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), &out, c, path, "", true))

	var res dialer.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.NotNil(t, res.Summary)
	assert.Equal(t, 1, res.Summary.Succeeded)
	assert.NotEmpty(t, res.UploadID)
}

func TestRunBatch_AgentFetchFailureIgnored(t *testing.T) {
	fake, c := newFakeProviders(t)
	fake.agentOK = false
	path := writeLeads(t, "leads.csv", "name,phone\nAsha,9876543210\n")

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), &out, c, path, "", false))
	assert.Len(t, fake.calls(), 1)
}

func TestRunBatch_NoUpload(t *testing.T) {
	fake, c := newFakeProviders(t)

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), &out, c, "", "", false))
	assert.Equal(t, dialer.NoSourceMessage+"\n", out.String())
	assert.Empty(t, fake.calls())
}

func TestRunBatch_Errors(t *testing.T) {
	_, c := newFakeProviders(t)

	tests := []struct {
		name     string
		file     string
		uploadID string
		wantErr  string
	}{
		{name: "both sources", file: "a.csv", uploadID: "x", wantErr: "mutually exclusive"},
		{name: "bad extension", file: "leads.txt", wantErr: "unsupported lead file"},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope.csv"), wantErr: "read lead file"},
		{name: "unknown upload", uploadID: "nope", wantErr: "upload not found"},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (Go <1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			err := runBatch(context.Background(), &bytes.Buffer{}, c, tt.file, tt.uploadID, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunBatch_MissingCredentials(t *testing.T) {
	_, c := newFakeProviders(t)
	c.Twilio.AuthToken = ""
	path := writeLeads(t, "leads.csv", "name,phone\nAsha,9876543210\n")

	err := runBatch(context.Background(), &bytes.Buffer{}, c, path, "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twilio.auth_token")
}

func TestInitStore(t *testing.T) {
	_, c := newFakeProviders(t)

	c.Store.Driver = "memory"
	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)

	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "dialer.db")
	st, err = initStore(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, st)
	require.NoError(t, st.Close())

	c.Store.Driver = "mongo"
	_, err = initStore(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
