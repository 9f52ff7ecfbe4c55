package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	html := `<html><head><style>p{color:red}</style></head>
	<body><p>Hello there</p><div>Second line</div><script>alert(1)</script></body></html>`

	text, err := Convert(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Hello there")
	assert.Contains(t, text, "Second line")
	assert.NotContains(t, text, "alert", "script content is dropped")
	assert.NotContains(t, text, "color", "style content is dropped")
}

func TestConvert_Empty(t *testing.T) {
	text, err := Convert("")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestConvert_StripsInvisibleCharacters(t *testing.T) {
	text, err := Convert("<p>a​b</p>")
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "one two", Snippet("<p>one</p><p>two</p>", 100))
	assert.Equal(t, "one t", Snippet("<p>one two</p>", 5))
	assert.Equal(t, "", Snippet("", 10))
}
