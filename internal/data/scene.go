package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneFile is the on-disk description of a scene.
type SceneFile struct {
	Name     string      `yaml:"name"`
	Camera   CameraDef   `yaml:"camera"`
	Skybox   *SkyboxDef  `yaml:"skybox,omitempty"`
	Entities []EntityDef `yaml:"entities"`
}

type CameraDef struct {
	Position [3]float32 `yaml:"position"`
	Rotation [2]float32 `yaml:"rotation"` // pitch, yaw in radians
}

type SkyboxDef struct {
	Mesh   string     `yaml:"mesh"`
	Shader string     `yaml:"shader"`
	Color  [4]float32 `yaml:"color"`
}

// EntityDef describes one entity and the components to attach to it.
type EntityDef struct {
	GUID     string     `yaml:"guid,omitempty"`
	Name     string     `yaml:"name"`
	Mesh     string     `yaml:"mesh,omitempty"`
	Shader   string     `yaml:"shader,omitempty"`
	Texture  string     `yaml:"texture,omitempty"`
	Color    [4]float32 `yaml:"color,omitempty"`
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"`
	Scale    [3]float32 `yaml:"scale"`
	Body     *BodyDef   `yaml:"body,omitempty"`
	Script   string     `yaml:"script,omitempty"`
}

// BodyDef attaches a rigid body and, optionally, a steering behaviour.
type BodyDef struct {
	Velocity    [3]float32 `yaml:"velocity"`
	Box         *BoxDef    `yaml:"box,omitempty"` // defaults to the mesh bounds
	Steering    string     `yaml:"steering,omitempty"`
	Target      string     `yaml:"target,omitempty"` // entity name
	Speed       float32    `yaml:"speed,omitempty"`
	MinTurnMs   float32    `yaml:"min_turn_ms,omitempty"`
	MaxTurnMs   float32    `yaml:"max_turn_ms,omitempty"`
	MaxOffAngle float32    `yaml:"max_off_angle,omitempty"`
}

type BoxDef struct {
	Center  [3]float32 `yaml:"center"`
	Extents [3]float32 `yaml:"extents"`
}

// LoadSceneFile loads and validates a scene YAML file.
func LoadSceneFile(path string) (*SceneFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene decodes scene YAML. Zero scales are read as 1.
func ParseScene(raw []byte) (*SceneFile, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	for i := range sf.Entities {
		if sf.Entities[i].Scale == ([3]float32{}) {
			sf.Entities[i].Scale = [3]float32{1, 1, 1}
		}
	}
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Validate checks names are unique and steering targets exist.
func (sf *SceneFile) Validate() error {
	names := make(map[string]bool, len(sf.Entities))
	for _, e := range sf.Entities {
		if e.Name == "" {
			return fmt.Errorf("scene %q: entity without a name", sf.Name)
		}
		if names[e.Name] {
			return fmt.Errorf("scene %q: duplicate entity %q", sf.Name, e.Name)
		}
		names[e.Name] = true
		if e.Mesh != "" && e.Shader == "" {
			return fmt.Errorf("scene %q: entity %q has a mesh but no shader", sf.Name, e.Name)
		}
	}
	for _, e := range sf.Entities {
		if e.Body != nil && e.Body.Target != "" && !names[e.Body.Target] {
			return fmt.Errorf("scene %q: entity %q targets unknown %q", sf.Name, e.Name, e.Body.Target)
		}
	}
	return nil
}

// Count returns the number of entities.
func (sf *SceneFile) Count() int { return len(sf.Entities) }

// Marshal encodes the scene back to YAML.
func (sf *SceneFile) Marshal() ([]byte, error) {
	return yaml.Marshal(sf)
}

// SaveSceneFile writes sf to path.
func SaveSceneFile(path string, sf *SceneFile) error {
	raw, err := sf.Marshal()
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
