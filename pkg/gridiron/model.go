package gridiron

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/richard-senior/gridiron/internal/logger"
)

// SpreadModel predicts the home point differential for a matchup feature
// vector. Positive output means the home team is expected to win by that many
// points
type SpreadModel interface {
	Predict(features []float64) (float64, error)
}

// Compile-time check to ensure V1Model implements SpreadModel
var _ SpreadModel = (*V1Model)(nil)

/**
* V1Model is a small feed forward network over the five matchup features:
* a 5x5 linear layer, a ReLU, then a 5x1 linear layer. The weights are
* trained offline and loaded from a JSON export, so prediction here is a
* handful of multiplications and entirely deterministic
 */
type V1Model struct {
	Hidden     [][]float64 `json:"fc1_weight"` // 5x5
	HiddenBias []float64   `json:"fc1_bias"`   // 5
	Output     [][]float64 `json:"fc2_weight"` // 1x5
	OutputBias []float64   `json:"fc2_bias"`   // 1
}

const v1InputSize = 5

// LoadV1Model reads model weights from a JSON file
func LoadV1Model(path string) (*V1Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model weights: %w", err)
	}
	return ParseV1Model(data)
}

// ParseV1Model parses model weights from raw JSON
func ParseV1Model(data []byte) (*V1Model, error) {
	model := &V1Model{}
	if err := json.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model weights: %w", err)
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	logger.Debug("Loaded spread model weights")
	return model, nil
}

func (m *V1Model) validate() error {
	if len(m.Hidden) != v1InputSize || len(m.HiddenBias) != v1InputSize {
		return &InvalidInputError{Reason: fmt.Sprintf("hidden layer must be %dx%d with %d biases", v1InputSize, v1InputSize, v1InputSize)}
	}
	for i, row := range m.Hidden {
		if len(row) != v1InputSize {
			return &InvalidInputError{Reason: fmt.Sprintf("hidden layer row %d has %d weights, want %d", i, len(row), v1InputSize)}
		}
	}
	if len(m.Output) != 1 || len(m.Output[0]) != v1InputSize || len(m.OutputBias) != 1 {
		return &InvalidInputError{Reason: fmt.Sprintf("output layer must be 1x%d with 1 bias", v1InputSize)}
	}
	return nil
}

// Predict runs the network forward over one feature vector
func (m *V1Model) Predict(features []float64) (float64, error) {
	if len(features) != v1InputSize {
		return 0, &InvalidInputError{Reason: fmt.Sprintf("expected %d features, got %d", v1InputSize, len(features))}
	}
	for i, f := range features {
		if !isFinite(f) {
			return 0, &InvalidInputError{Reason: fmt.Sprintf("non finite feature at index %d", i)}
		}
	}

	hidden := make([]float64, v1InputSize)
	for i := 0; i < v1InputSize; i++ {
		sum := m.HiddenBias[i]
		for j := 0; j < v1InputSize; j++ {
			sum += m.Hidden[i][j] * features[j]
		}
		// ReLU
		if sum > 0 {
			hidden[i] = sum
		}
	}

	out := m.OutputBias[0]
	for j := 0; j < v1InputSize; j++ {
		out += m.Output[0][j] * hidden[j]
	}

	return out, nil
}
