package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShaderDesc names the vertex and pixel programs of a shader file.
type ShaderDesc struct {
	Name   string `yaml:"name"`
	Vertex string `yaml:"vertex"`
	Pixel  string `yaml:"pixel"`
}

// LoadShaderDesc loads a *.shader.yaml file.
func LoadShaderDesc(path string) (*ShaderDesc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader: %w", err)
	}
	var d ShaderDesc
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse shader: %w", err)
	}
	if d.Vertex == "" || d.Pixel == "" {
		return nil, fmt.Errorf("shader %s: both vertex and pixel programs are required", path)
	}
	if d.Name == "" {
		d.Name = path
	}
	return &d, nil
}
