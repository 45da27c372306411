package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"COSTUMEDESK_ADDR", "LOG_LEVEL", "REQUEST_TIMEOUT", "GEMINI_MODEL", "CHAT_MEMORY_MAX_MESSAGES", "REDIS_URL", "CHAT_ORIGIN_PATTERNS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultModel, cfg.Gemini.Model)
	assert.Equal(t, DefaultMemoryMessages, cfg.ChatMemory.MaxMessages)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.ChatOriginPatterns)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("COSTUMEDESK_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CHAT_MEMORY_TTL", "90m")
	t.Setenv("CHAT_MEMORY_MAX_MESSAGES", "not-a-number")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CHAT_ORIGIN_PATTERNS", "costumes.example.com, *.halloween.test,,")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 90*time.Minute, cfg.ChatMemory.TTL)
	assert.Equal(t, DefaultMemoryMessages, cfg.ChatMemory.MaxMessages)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, []string{"costumes.example.com", "*.halloween.test"}, cfg.ChatOriginPatterns)
}

func setCostumeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COSTUME_ID", "C-100")
	t.Setenv("COSTUME_NAME", "Vampire Cape")
	t.Setenv("COSTUME_TYPE", "classic")
	t.Setenv("COSTUME_MINAGE", "5")
	t.Setenv("COSTUME_MAXAGE", "99")
	t.Setenv("COSTUME_OWNERFIRSTNAME", "Jane")
	t.Setenv("COSTUME_OWNERLASTNAME", "Doe")
}

func TestSeedFromEnv(t *testing.T) {
	t.Run("reads the single record snapshot", func(t *testing.T) {
		setCostumeEnv(t)

		seeds, err := LoadCostumeSeed("")
		require.NoError(t, err)
		require.Len(t, seeds, 1)
		assert.Equal(t, CostumeSeed{
			ID: "C-100", Name: "Vampire Cape", Type: "classic",
			MinAge: 5, MaxAge: 99, OwnerFirstName: "Jane", OwnerLastName: "Doe",
		}, seeds[0])
	})

	t.Run("missing id means no seed", func(t *testing.T) {
		t.Setenv("COSTUME_ID", "")
		_, err := SeedFromEnv()
		assert.ErrorIs(t, err, ErrNoSeed)
	})

	t.Run("bad age is an error", func(t *testing.T) {
		setCostumeEnv(t)
		t.Setenv("COSTUME_MAXAGE", "ninety")
		_, err := SeedFromEnv()
		assert.ErrorContains(t, err, "COSTUME_MAXAGE")
	})
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("parses costumes", func(t *testing.T) {
		path := filepath.Join(dir, "costumes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
costumes:
  - id: C-100
    name: Vampire Cape
    type: classic
    minage: 5
    maxage: 99
    ownerfirstname: Jane
    ownerlastname: Doe
  - id: C-200
    name: Rock Star
    type: music
    minage: 12
    maxage: 60
    ownerfirstname: Jeremy
    ownerlastname: Stone
`), 0o600))

		seeds, err := LoadCostumeSeed(path)
		require.NoError(t, err)
		require.Len(t, seeds, 2)
		assert.Equal(t, "C-200", seeds[1].ID)
		assert.Equal(t, 12, seeds[1].MinAge)
	})

	t.Run("empty document", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("costumes: []\n"), 0o600))
		_, err := LoadSeedFile(path)
		assert.ErrorIs(t, err, ErrNoSeed)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("costumes: [\n"), 0o600))
		_, err := LoadSeedFile(path)
		assert.ErrorContains(t, err, "parse costume seed")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
