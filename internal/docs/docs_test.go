package docs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopicsAreSortedAndReadable(t *testing.T) {
	topics := Topics()
	require.Equal(t, []string{"backup", "keys", "output", "storage", "web"}, topics)
	for _, topic := range topics {
		body, ok := Get(topic)
		require.True(t, ok, topic)
		require.Contains(t, body, "# ")
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" KEYS ")
	require.True(t, ok)
	require.Contains(t, body, "ctrl+s")

	for _, bad := range []string{"", "nope", "../docs", "content/keys"} {
		_, ok := Get(bad)
		require.False(t, ok, bad)
	}
}
