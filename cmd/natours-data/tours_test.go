package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tours.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadTours(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantN   int
		wantErr string
	}{
		{
			name: "valid file",
			content: `[{"name":"The Forest Hiker","duration":5,"maxGroupSize":25,"difficulty":"easy",
				"price":397,"summary":"Breathtaking hike","imageCover":"tour-1-cover.jpg",
				"startDates":["2021-04-25T09:00:00.000Z"]}]`,
			wantN: 1,
		},
		{
			name:    "invalid json",
			content: `[{"name":`,
			wantErr: "parse",
		},
		{
			name:    "tour fails validation",
			content: `[{"name":"Short","duration":5,"maxGroupSize":25,"difficulty":"easy","price":397,"summary":"s","imageCover":"c.jpg"}]`,
			wantErr: `tour #0 ("Short")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tours, err := readTours(writeFile(t, tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tours, tt.wantN)
		})
	}
}

func TestReadTours_MissingFile(t *testing.T) {
	_, err := readTours(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadTours_DevData(t *testing.T) {
	tours, err := readTours(filepath.Join("..", "..", defaultToursFile))
	require.NoError(t, err)
	assert.NotEmpty(t, tours)
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"import", "delete", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
