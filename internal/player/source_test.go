package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicehocane/watch/internal/domain"
)

func TestClassifySourceWidget(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?t=42"},
		{"watch query param", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"bare host query param", "https://youtube.com/watch?v=dQw4w9WgXcQ&list=abc"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"embed path", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ClassifySource(tt.url)
			require.NoError(t, err)
			assert.Equal(t, SourceWidget, src.Kind)
			assert.Equal(t, "dQw4w9WgXcQ", src.VideoID)
		})
	}
}

func TestClassifySourceMedia(t *testing.T) {
	src, err := ClassifySource("https://cdn.example.com/movies/night.mp4")
	require.NoError(t, err)
	assert.Equal(t, SourceMedia, src.Kind)
	assert.Equal(t, "https://cdn.example.com/movies/night.mp4", src.URL)
	assert.Empty(t, src.VideoID)
}

func TestClassifySourceUnplayable(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"widget host without id", "https://www.youtube.com/feed/subscriptions"},
		{"widget host empty v param", "https://www.youtube.com/watch?v="},
		{"not a url", "::::"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ"},
		{"unsupported scheme", "ftp://example.com/video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClassifySource(tt.url)
			assert.ErrorIs(t, err, domain.ErrUnplayableSource)
		})
	}
}
