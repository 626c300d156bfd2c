package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"recipe-graph/backend/internal/constants"
	apperrors "recipe-graph/backend/pkg/errors"
)

// ServingClassifier calls a TensorFlow Serving REST predict endpoint
type ServingClassifier struct {
	baseURL    string
	model      string
	size       int
	labels     []string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewServingClassifier creates a classifier for the named model. size is the
// model's square input edge.
func NewServingClassifier(baseURL, model string, size int, labels []string, httpClient *http.Client, log *zap.Logger) *ServingClassifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ServingClassifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		size:       size,
		labels:     labels,
		httpClient: httpClient,
		logger:     log,
	}
}

type predictRequest struct {
	Instances Tensor `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// Classify returns the top predictions for img
func (c *ServingClassifier) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	payload, err := json.Marshal(predictRequest{Instances: Preprocess(img, c.size)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tensor: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("image classification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewUpstreamFailure("image classification",
			fmt.Errorf("model server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewUpstreamFailure("image classification", fmt.Errorf("failed to decode predictions: %w", err))
	}
	if len(out.Predictions) == 0 {
		return nil, apperrors.NewUpstreamFailure("image classification", fmt.Errorf("empty predictions"))
	}

	top := TopK(out.Predictions[0], c.labels, constants.TopPredictions)
	c.logger.Debug("Image classified", zap.String("model", c.model), zap.Int("classes", len(out.Predictions[0])))
	return top, nil
}
