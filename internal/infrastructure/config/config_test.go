package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSanitizeTreeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase",
			input:    "mytree",
			expected: "mytree",
		},
		{
			name:     "uppercase converted",
			input:    "MyTree",
			expected: "mytree",
		},
		{
			name:     "spaces to underscores",
			input:    "beis yaakov",
			expected: "beis_yaakov",
		},
		{
			name:     "hyphens to underscores",
			input:    "levi-family",
			expected: "levi_family",
		},
		{
			name:     "special characters removed",
			input:    "my@tree!",
			expected: "mytree",
		},
		{
			name:     "consecutive underscores collapsed",
			input:    "levi--family",
			expected: "levi_family",
		},
		{
			name:     "leading trailing underscores trimmed",
			input:    "-levi-family-",
			expected: "levi_family",
		},
		{
			name:     "empty string returns default",
			input:    "",
			expected: "default",
		},
		{
			name:     "only special chars returns default",
			input:    "!!!",
			expected: "default",
		},
		{
			name:     "numbers preserved",
			input:    "tree123",
			expected: "tree123",
		},
		{
			name:     "complex mixed input",
			input:    "Levi Family (Branch 2)",
			expected: "levi_family_branch_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeTreeName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, DefaultRulesCollection, cfg.Qdrant.Collection)
}

func TestDefaultConfigYAML_MatchesDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigYAML), &cfg))

	def := Default()
	assert.Equal(t, def.LLM.Model, cfg.LLM.Model)
	assert.Equal(t, def.Embedder.Model, cfg.Embedder.Model)
	assert.Equal(t, def.Qdrant.Collection, cfg.Qdrant.Collection)
}

func TestWriteDefault(t *testing.T) {
	t.Run("creates config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		assert.True(t, Exists(dir))

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, DefaultRulesCollection, cfg.Qdrant.Collection)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteDefault(dir))
		assert.ErrorContains(t, WriteDefault(dir), "already exists")
	})
}

func TestConfigDir(t *testing.T) {
	result := ConfigDir("/home/user/project")
	assert.Equal(t, "/home/user/project/.yichus", result)
}

func TestConfigFilePath(t *testing.T) {
	result := ConfigFilePath("/home/user/project")
	assert.Equal(t, "/home/user/project/.yichus/config.yaml", result)
}

func TestSQLitePath(t *testing.T) {
	result := SQLitePath("/home/user/project")
	assert.Equal(t, "/home/user/project/.yichus/yichus.db", result)
}

func TestTreesConfig(t *testing.T) {
	t.Run("get from empty config", func(t *testing.T) {
		cfg := &TreesConfig{}
		_, err := cfg.Get("beis-yaakov")
		assert.ErrorContains(t, err, "no trees configured")
	})

	t.Run("get missing tree lists available", func(t *testing.T) {
		cfg := &TreesConfig{}
		cfg.Add("beis-yaakov", TreeEntry{ID: "t1"})
		_, err := cfg.Get("levi")
		require.Error(t, err)
		assert.ErrorContains(t, err, `tree "levi" not found`)
		assert.ErrorContains(t, err, "beis-yaakov")
	})

	t.Run("add and get", func(t *testing.T) {
		cfg := &TreesConfig{}
		cfg.Add("beis-yaakov", TreeEntry{ID: "t1", Description: "test tree"})

		entry, err := cfg.Get("beis-yaakov")
		require.NoError(t, err)
		assert.Equal(t, "t1", entry.ID)
		assert.Equal(t, "test tree", entry.Description)
		assert.True(t, cfg.Exists("beis-yaakov"))
	})

	t.Run("remove", func(t *testing.T) {
		cfg := &TreesConfig{}
		cfg.Add("beis-yaakov", TreeEntry{ID: "t1"})
		cfg.Remove("beis-yaakov")
		assert.False(t, cfg.Exists("beis-yaakov"))
	})

	t.Run("save and load round-trip", func(t *testing.T) {
		dir := t.TempDir()

		cfg := &TreesConfig{}
		cfg.Add("beis-yaakov", TreeEntry{ID: "t1", Description: "first"})
		cfg.Add("levi", TreeEntry{ID: "t2"})
		require.NoError(t, cfg.Save(dir))

		loaded, err := LoadTrees(dir)
		require.NoError(t, err)
		assert.Equal(t, cfg.Trees, loaded.Trees)
		assert.True(t, TreesExists(dir))
	})

	t.Run("load missing file returns empty config", func(t *testing.T) {
		loaded, err := LoadTrees(t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, loaded.Trees)
		assert.Empty(t, loaded.Trees)
	})
}
