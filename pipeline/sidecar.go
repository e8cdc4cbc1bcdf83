package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SidecarExt is appended to the texture path to name its metadata file.
const SidecarExt = ".yaml"

// Sidecar is the metadata written next to every saved texture.
type Sidecar struct {
	JobID          string    `yaml:"job_id"`
	Kind           string    `yaml:"kind"`
	Backend        string    `yaml:"backend,omitempty"`
	Model          string    `yaml:"model,omitempty"`
	Prompt         string    `yaml:"prompt,omitempty"`
	NegativePrompt string    `yaml:"negative_prompt,omitempty"`
	Input          string    `yaml:"input,omitempty"`
	Width          int       `yaml:"width"`
	Height         int       `yaml:"height"`
	Steps          int       `yaml:"steps,omitempty"`
	Guidance       float64   `yaml:"guidance,omitempty"`
	Seed           *int64    `yaml:"seed,omitempty"`
	Retried        bool      `yaml:"retried,omitempty"`
	Stages         []string  `yaml:"stages,omitempty"`
	Feather        int       `yaml:"feather,omitempty"`
	Palette        []string  `yaml:"palette,omitempty"`
	CreatedAt      time.Time `yaml:"created_at"`
}

// SidecarPath returns the metadata path for a texture.
func SidecarPath(texturePath string) string {
	return texturePath + SidecarExt
}

// WriteSidecar writes s as YAML to path.
func WriteSidecar(path string, s *Sidecar) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", path, err)
	}
	return nil
}

// ReadSidecar reads the YAML metadata at path.
func ReadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar %s: %w", path, err)
	}
	var s Sidecar
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar %s: %w", path, err)
	}
	return &s, nil
}
