package learn

import (
	"encoding/json"
	"fmt"
)

// Model is a fitted text vectoriser and ridge regression for one topic.
type Model struct {
	Vectoriser *Vectoriser `json:"vectoriser"`
	Ridge      *Ridge      `json:"ridge"`
}

// Score vectorises text and returns its regression score.
func (m *Model) Score(text string) float64 {
	return m.Ridge.Predict(m.Vectoriser.Transform(text))
}

// Encode serialises the model.
func (m *Model) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return data, nil
}

// DecodeModel restores a model produced by Encode.
func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Vectoriser == nil || m.Ridge == nil {
		return nil, fmt.Errorf("decode model: incomplete payload")
	}
	if len(m.Vectoriser.Terms) != len(m.Vectoriser.IDF) || len(m.Ridge.Weights) != len(m.Vectoriser.Terms) {
		return nil, fmt.Errorf("decode model: dimension mismatch")
	}
	m.Vectoriser.termIndex()
	return &m, nil
}
