package portrait_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/murderai/cmd/cli/portrait"
	"github.com/myrjola/murderai/internal/casefile"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	lib, err := casefile.Embedded()
	require.NoError(t, err)
	c := lib.Case(casefile.Medium)
	suspect, ok := c.Suspect("suspect_2")
	require.True(t, ok)

	prompt := portrait.Prompt(c, suspect)
	require.Contains(t, prompt, "James Porter")
	require.Contains(t, prompt, `"Shutdown at NovaTech"`)
	require.NotContains(t, prompt, suspect.Motive)
}

func TestDraw(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	var request openai.ImageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ImageResponse{ //nolint:exhaustruct // test
			Created: 1,
			Data: []openai.ImageResponseDataInner{
				{B64JSON: base64.StdEncoding.EncodeToString(buf.Bytes())}, //nolint:exhaustruct // test
			},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	got, err := portrait.Draw(context.Background(), openai.NewClientWithConfig(cfg), "a suspect")
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
	require.Equal(t, "a suspect", request.Prompt)
	require.Equal(t, openai.CreateImageResponseFormatB64JSON, request.ResponseFormat)
}
