package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlend/core/core"
)

func TestNew(t *testing.T) {
	t.Run("level parsing", func(t *testing.T) {
		log := New("debug", "stdout", 0)
		assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

		log = New("", "stdout", 0)
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

		log = New("nonsense", "stderr", 0)
		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lend.log")
		log := New("info", path, 7)
		log.Info().Str("market", "BTC Market").Msg("market created")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "market created")
	})

	t.Run("satisfies the core log contract", func(t *testing.T) {
		log := New("info", "stdout", 0)
		var _ core.Log = &log
	})
}
