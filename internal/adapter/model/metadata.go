// Package model bridges to the trained classifier: it loads the model
// metadata written at training time and calls the scoring service over
// HTTP. Feature ordering always comes from the metadata, never from
// code, so a retrained model with reordered features keeps working.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes a trained model artifact.
type Metadata struct {
	TrainedAt      string   `json:"trained_at"`
	Features       []string `json:"features"`
	SensorFeatures []string `json:"sensor_features"`
	TrainRows      int      `json:"n_train"`
	TestRows       int      `json:"n_test"`
	ROCAUC         float64  `json:"roc_auc"`
	PRAUC          float64  `json:"pr_auc"`
}

// LoadMetadata reads and validates a metadata JSON file.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parse model metadata: %w", err)
	}
	if len(m.Features) == 0 {
		return Metadata{}, fmt.Errorf("model metadata %s lists no features", path)
	}
	return m, nil
}

// Vector arranges named feature values into the order the model was
// trained with. A feature the caller cannot supply is an error, not a
// zero fill.
func (m Metadata) Vector(values map[string]float64) ([]float64, error) {
	vec := make([]float64, 0, len(m.Features))
	for _, name := range m.Features {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("model metadata requires unknown feature %q", name)
		}
		vec = append(vec, v)
	}
	return vec, nil
}
