package scene

import (
	"errors"
	"fmt"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/gmath"
	"github.com/emberforge/ember/internal/physics"
	"github.com/emberforge/ember/internal/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resources is the part of the rendering system the builder needs.
type Resources interface {
	CreateMesh(path string) (*render.Mesh, error)
	CreateShader(path string) (*render.Shader, error)
	CreateTexture(path string) (*render.Texture, error)
	CreateMaterial(shader *render.Shader, opts render.MaterialOptions) (*render.Material, error)
	SetSkybox(sb *render.Skybox)
}

// ScriptHost attaches a script component to an entity.
type ScriptHost interface {
	Attach(id ecs.EntityID, name string, t *component.Transform, path string) error
}

// Builder instantiates scene files.
type Builder struct {
	res     Resources
	scripts ScriptHost
	phys    config.PhysicsConfig
	skybox  bool
	log     *zap.Logger
}

// NewBuilder returns a builder. scripts may be nil, in which case script
// references are skipped with a warning.
func NewBuilder(res Resources, scripts ScriptHost, phys config.PhysicsConfig, log *zap.Logger) *Builder {
	return &Builder{res: res, scripts: scripts, phys: phys, skybox: true, log: log}
}

// SetSkyboxEnabled turns skybox creation on or off. A disabled skybox is
// still kept on the scene so snapshots carry it.
func (b *Builder) SetSkyboxEnabled(on bool) { b.skybox = on }

var white = [4]float32{1, 1, 1, 1}

// Build creates every entity of sf in s. A failing resource or script does
// not stop the build: the entity is created without it and the failures are
// returned together.
func (b *Builder) Build(s *Scene, sf *data.SceneFile) error {
	var errs []error
	s.SetCamera(sf.Camera)
	switch {
	case sf.Skybox == nil:
	case !b.skybox:
		b.log.Debug("skybox disabled", zap.String("mesh", sf.Skybox.Mesh))
		s.SetSkybox(sf.Skybox)
	default:
		if err := b.buildSkybox(sf.Skybox); err != nil {
			errs = append(errs, fmt.Errorf("skybox: %w", err))
		} else {
			s.SetSkybox(sf.Skybox)
		}
	}

	byName := make(map[string]*Entity, len(sf.Entities))
	for _, def := range sf.Entities {
		e, err := b.buildEntity(s, def)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", def.Name, err))
		}
		byName[def.Name] = e
	}
	// Bodies go last so steering targets can be resolved by name.
	for _, def := range sf.Entities {
		if def.Body == nil {
			continue
		}
		if err := b.attachBody(s, byName[def.Name], def.Body, byName); err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", def.Name, err))
		}
	}
	for _, def := range sf.Entities {
		if def.Script == "" {
			continue
		}
		if b.scripts == nil {
			b.log.Warn("scripting disabled, script ignored", zap.String("entity", def.Name))
			continue
		}
		e := byName[def.Name]
		if err := b.scripts.Attach(e.id, e.Name, &e.Transform, def.Script); err != nil {
			errs = append(errs, fmt.Errorf("entity %q: %w", def.Name, err))
		}
	}
	b.log.Info("scene built", zap.String("scene", sf.Name),
		zap.Int("entities", s.Len()), zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

func (b *Builder) buildSkybox(def *data.SkyboxDef) error {
	mesh, err := b.res.CreateMesh(def.Mesh)
	if err != nil {
		return err
	}
	shader, err := b.res.CreateShader(def.Shader)
	if err != nil {
		return err
	}
	mat, err := b.res.CreateMaterial(shader, render.MaterialOptions{Color: colorOr(def.Color)})
	if err != nil {
		return err
	}
	b.res.SetSkybox(&render.Skybox{Mesh: mesh, Material: mat})
	return nil
}

func (b *Builder) buildEntity(s *Scene, def data.EntityDef) (*Entity, error) {
	e := s.CreateEntity(def.Name)
	if def.GUID != "" {
		if id, err := uuid.Parse(def.GUID); err == nil {
			e.GUID = id
		} else {
			b.log.Warn("bad entity guid, generated a new one", zap.String("entity", def.Name), zap.Error(err))
		}
	}
	e.Transform.Position = mgl32.Vec3(def.Position)
	e.Transform.Rotation = mgl32.Vec3(def.Rotation)
	e.Transform.Scale = mgl32.Vec3(def.Scale)
	e.Transform.UpdateWorld()
	e.Assets = AssetRefs{Mesh: def.Mesh, Shader: def.Shader, Texture: def.Texture, Script: def.Script, Color: def.Color}

	if def.Mesh == "" {
		return e, nil
	}
	mesh, err := b.res.CreateMesh(def.Mesh)
	if err != nil {
		return e, err
	}
	shader, err := b.res.CreateShader(def.Shader)
	if err != nil {
		return e, err
	}
	opts := render.MaterialOptions{Color: colorOr(def.Color)}
	if def.Texture != "" {
		tex, err := b.res.CreateTexture(def.Texture)
		if err != nil {
			return e, err
		}
		opts.Texture = tex
	}
	mat, err := b.res.CreateMaterial(shader, opts)
	if err != nil {
		return e, err
	}
	e.Mesh, e.Material = mesh, mat
	return e, nil
}

// attachBody adds a RigidBody and, when requested, a Steering component.
// An explicit box is taken as is; a box derived from the mesh is scaled by
// the entity's scale.
func (b *Builder) attachBody(s *Scene, e *Entity, def *data.BodyDef, byName map[string]*Entity) error {
	box := gmath.AABB{Extents: mgl32.Vec3{0.5, 0.5, 0.5}}
	switch {
	case def.Box != nil:
		box = gmath.AABB{Center: mgl32.Vec3(def.Box.Center), Extents: mgl32.Vec3(def.Box.Extents)}
	case e.Mesh != nil:
		box = e.Mesh.Bounds()
		fallthrough
	default:
		sc := e.Transform.Scale
		box.Center = mulVec(box.Center, sc)
		box.Extents = mulVec(box.Extents, sc)
	}
	rb := physics.NewRigidBody(&e.Transform, box)
	rb.SetVelocity(mgl32.Vec3(def.Velocity))
	m := s.Components()
	if _, err := ecs.Add(m, e.id, rb); err != nil {
		return err
	}

	mode, err := physics.ParseSteerMode(def.Steering)
	if err != nil {
		return err
	}
	if mode == physics.SteerNone {
		return nil
	}
	st := physics.Steering{
		Mode:  mode,
		Speed: def.Speed,
		Swarm: physics.SwarmParams{
			Speed:       def.Speed,
			MinTurnMs:   orDefault(def.MinTurnMs, b.phys.MinTurnMs),
			MaxTurnMs:   orDefault(def.MaxTurnMs, b.phys.MaxTurnMs),
			MaxOffAngle: orDefault(def.MaxOffAngle, b.phys.MaxOffAngle),
		},
	}
	if t, ok := byName[def.Target]; ok {
		st.Target = t.id
	}
	_, err = ecs.Add(m, e.id, st)
	return err
}

func colorOr(c [4]float32) mgl32.Vec4 {
	if c == ([4]float32{}) {
		c = white
	}
	return mgl32.Vec4(c)
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
