package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/constants"
	apperrors "recipe-graph/backend/pkg/errors"
)

// ImageDescriber sends an image and instruction to a multimodal model
type ImageDescriber interface {
	DescribeImage(ctx context.Context, systemPrompt, userMsg, imageURL string) (string, error)
}

const classifySystemPrompt = `You identify food in photos. Reply with JSON only, shaped as
{"predictions":[{"label":"<dish or ingredient>","probability":<0..1>}]}
with at most three entries ordered by probability.`

// OpenAIClassifier asks a multimodal chat model to label the image
type OpenAIClassifier struct {
	llm    ImageDescriber
	size   int
	labels []string
	logger *zap.Logger
}

// NewOpenAIClassifier creates a classifier. When labels are given the model
// is asked to choose among them.
func NewOpenAIClassifier(llm ImageDescriber, size int, labels []string, log *zap.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{llm: llm, size: size, labels: labels, logger: log}
}

// Classify returns the model's top predictions for img
func (c *OpenAIClassifier) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Resize(img, c.size), &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	prompt := "What food is in this photo?"
	if len(c.labels) > 0 {
		prompt += " Choose labels from: " + strings.Join(c.labels, ", ") + "."
	}

	content, err := c.llm.DescribeImage(ctx, classifySystemPrompt, prompt, dataURL)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("image classification", err)
	}

	var out struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		c.logger.Warn("Unparseable classification reply", zap.String("content", content), zap.Error(err))
		return nil, apperrors.NewUpstreamFailure("image classification", fmt.Errorf("unparseable model reply: %w", err))
	}

	probs := make([]float64, len(out.Predictions))
	labels := make([]string, len(out.Predictions))
	for i, p := range out.Predictions {
		probs[i] = p.Probability
		labels[i] = strings.TrimSpace(p.Label)
	}
	return TopK(probs, labels, constants.TopPredictions), nil
}
