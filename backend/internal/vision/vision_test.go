package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess_ShapeAndScale(t *testing.T) {
	tensor := Preprocess(solidImage(40, 20, color.RGBA{R: 255, G: 0, B: 51, A: 255}), 8)

	require.Len(t, tensor, 1)
	require.Len(t, tensor[0], 8)
	require.Len(t, tensor[0][0], 8)
	require.Len(t, tensor[0][0][0], 3)

	px := tensor[0][3][5]
	assert.InDelta(t, 1.0, px[0], 0.001)
	assert.InDelta(t, 0.0, px[1], 0.001)
	assert.InDelta(t, 0.2, px[2], 0.001)
	for _, row := range tensor[0] {
		for _, p := range row {
			for _, v := range p {
				assert.True(t, v >= 0 && v <= 1)
			}
		}
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(4, 4, color.White)))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = Decode(strings.NewReader("not an image"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument))
}

func TestTopK(t *testing.T) {
	top := TopK([]float64{0.1, 0.5, 0.05, 0.3, 0.05}, []string{"soup", "pizza", "salad", "sushi"}, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "pizza", top[0].Label)
	assert.Equal(t, "sushi", top[1].Label)
	assert.Equal(t, "soup", top[2].Label)

	ties := TopK([]float64{0.2, 0.2, 0.2, 0.2}, nil, 3)
	assert.Equal(t, []string{"class_0", "class_1", "class_2"}, []string{ties[0].Label, ties[1].Label, ties[2].Label})

	assert.Len(t, TopK([]float64{0.9}, []string{"cake"}, 3), 1)
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple_pie\n baby_back_ribs \n\nbaklava\n"), 0o600))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple_pie", "baby_back_ribs", "", "baklava"}, labels)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestServingClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/food101:predict", r.URL.Path)

		var req struct {
			Instances [][][][]float64 `json:"instances"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Instances, 1) {
			assert.Len(t, req.Instances[0], 4)
			assert.Len(t, req.Instances[0][0][0], 3)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": [][]float64{{0.05, 0.7, 0.2, 0.05}},
		})
	}))
	defer server.Close()

	c := NewServingClassifier(server.URL, "food101", 4, []string{"a", "b", "c", "d"}, server.Client(), zap.NewNop())
	top, err := c.Classify(context.Background(), solidImage(10, 10, color.Black))
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Label)
	assert.InDelta(t, 0.7, top[0].Probability, 1e-9)
	assert.Equal(t, "c", top[1].Label)
}

func TestServingClassifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewServingClassifier(server.URL, "food101", 4, nil, server.Client(), zap.NewNop())
	_, err := c.Classify(context.Background(), solidImage(4, 4, color.Black))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream))
}

type fakeDescriber struct {
	reply  string
	err    error
	prompt string
	url    string
}

func (f *fakeDescriber) DescribeImage(ctx context.Context, systemPrompt, userMsg, imageURL string) (string, error) {
	f.prompt = userMsg
	f.url = imageURL
	return f.reply, f.err
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	llm := &fakeDescriber{reply: `{"predictions":[{"label":"salad","probability":0.2},{"label":"pizza","probability":0.75},{"label":"pasta","probability":0.03},{"label":"soup","probability":0.02}]}`}
	c := NewOpenAIClassifier(llm, 16, []string{"pizza", "salad"}, zap.NewNop())

	top, err := c.Classify(context.Background(), solidImage(32, 32, color.White))
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "pizza", top[0].Label)
	assert.Equal(t, "salad", top[1].Label)
	assert.True(t, strings.HasPrefix(llm.url, "data:image/jpeg;base64,"))
	assert.Contains(t, llm.prompt, "pizza, salad")
}

func TestOpenAIClassifier_Failures(t *testing.T) {
	c := NewOpenAIClassifier(&fakeDescriber{err: errors.New("rate limited")}, 16, nil, zap.NewNop())
	_, err := c.Classify(context.Background(), solidImage(4, 4, color.White))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream))

	c = NewOpenAIClassifier(&fakeDescriber{reply: "I think it's pizza"}, 16, nil, zap.NewNop())
	_, err = c.Classify(context.Background(), solidImage(4, 4, color.White))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Classify(context.Background(), solidImage(1, 1, color.White))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUpstream))
}
