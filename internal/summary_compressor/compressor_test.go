package summary_compressor

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

func newTestCompressor() *Compressor {
	return New(Config{
		Logger: logger.NewLogger(logger.Config{
			Level:   logger.ErrorLevel,
			Service: "test",
			Output:  io.Discard,
		}),
	})
}

func turn(role, content string) models.Turn {
	return models.Turn{Role: role, Content: content}
}

func TestCompressNarrativeNamesPersona(t *testing.T) {
	compressor := newTestCompressor()

	summary, _ := compressor.Compress([]models.Turn{
		turn(models.RoleUser, "hello"),
		turn(models.RoleAssistant, "hi there"),
	}, "Sherlock Holmes")

	assert.True(t, strings.HasPrefix(summary, "Recent conversation with Sherlock Holmes covered: "))
	assert.Contains(t, summary, "user: hello")
	assert.Contains(t, summary, "assistant: hi there")
	assert.True(t, strings.HasSuffix(summary, "..."))
}

func TestCompressNarrativeTruncatesLongWindows(t *testing.T) {
	compressor := newTestCompressor()

	window := make([]models.Turn, 6)
	for i := range window {
		window[i] = turn(models.RoleUser, strings.Repeat("words ", 50))
	}

	summary, _ := compressor.Compress(window, "Ada")
	body := strings.TrimPrefix(summary, "Recent conversation with Ada covered: ")
	assert.Len(t, []rune(body), 303)
}

func TestCompressCapturesNameCaseFolded(t *testing.T) {
	compressor := newTestCompressor()

	_, facts := compressor.Compress([]models.Turn{
		turn(models.RoleUser, "my name is Sam"),
		turn(models.RoleAssistant, "nice to meet you"),
	}, "Ada")

	assert.Contains(t, facts, "User's name: sam")
}

func TestCompressWorkAndLocationFacts(t *testing.T) {
	compressor := newTestCompressor()

	_, facts := compressor.Compress([]models.Turn{
		turn(models.RoleUser, "I work at a bakery downtown"),
		turn(models.RoleAssistant, "sounds lovely"),
		turn(models.RoleUser, "I live near the river"),
	}, "Ada")

	require.Len(t, facts, 2)
	assert.Equal(t, "Work/Job mentioned: I work at a bakery downtown", facts[0])
	assert.Equal(t, "Location mentioned: I live near the river", facts[1])
}

func TestCompressIgnoresAssistantTurns(t *testing.T) {
	compressor := newTestCompressor()

	_, facts := compressor.Compress([]models.Turn{
		turn(models.RoleAssistant, "my name is HAL and i live in a datacenter"),
	}, "HAL")

	assert.Empty(t, facts)
}

func TestCompressBoundsKeyFacts(t *testing.T) {
	compressor := newTestCompressor()

	// Each turn yields three facts, so six turns would give far more than 5.
	window := make([]models.Turn, 6)
	for i := range window {
		window[i] = turn(models.RoleUser, "my name is sam, i work remotely and i live abroad")
	}

	_, facts := compressor.Compress(window, "Ada")
	assert.Len(t, facts, 5)
}

func TestCompressFactSnippetLength(t *testing.T) {
	compressor := newTestCompressor()

	long := "i work on " + strings.Repeat("z", 200)
	_, facts := compressor.Compress([]models.Turn{turn(models.RoleUser, long)}, "Ada")

	require.Len(t, facts, 1)
	assert.Equal(t, "Work/Job mentioned: "+long[:100], facts[0])
}

func TestNewPanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() {
		New(Config{})
	})
}
