package vision

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"strings"

	apperrors "recipe-graph/backend/pkg/errors"
)

// Prediction is one label with its probability
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier scores an image against its label set
type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]Prediction, error)
}

// TopK returns the k highest probabilities with their labels. Equal
// probabilities keep class order. Classes without a label are named by index.
func TopK(probs []float64, labels []string, k int) []Prediction {
	predictions := make([]Prediction, len(probs))
	for i, p := range probs {
		label := fmt.Sprintf("class_%d", i)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		predictions[i] = Prediction{Label: label, Probability: p}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})
	if k >= 0 && len(predictions) > k {
		predictions = predictions[:k]
	}
	return predictions
}

// LoadLabels reads one class label per line; blank lines keep their index
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}
	return labels, nil
}

// Disabled is used when no classifier is configured
type Disabled struct{}

// Classify always fails
func (Disabled) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	return nil, apperrors.NewUpstreamFailure("image classification", fmt.Errorf("no classifier configured"))
}
