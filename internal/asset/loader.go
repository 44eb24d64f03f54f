// Package asset reads meshes, shaders and textures from disk for the
// rendering system. Paths starting with "builtin:" name generated
// resources that need no file.
package asset

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/render"
	"go.uber.org/zap"
)

const builtinPrefix = "builtin:"

var ErrUnknownBuiltin = errors.New("unknown builtin asset")

// Loader implements the render loader interfaces over a root directory.
type Loader struct {
	root string
	log  *zap.Logger
}

func NewLoader(root string, log *zap.Logger) *Loader {
	return &Loader{root: root, log: log}
}

// Loaders returns l wired into every render loader slot.
func (l *Loader) Loaders() render.Loaders {
	return render.Loaders{Mesh: l, Shader: l, Texture: l}
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.root == "" {
		return path
	}
	return filepath.Join(l.root, path)
}

func (l *Loader) LoadMesh(path string) (render.MeshData, error) {
	if name, ok := strings.CutPrefix(path, builtinPrefix); ok {
		switch name {
		case "cube":
			return Cube(), nil
		case "quad":
			return Quad(), nil
		case "sphere":
			return Sphere(12, 16), nil
		}
		return render.MeshData{}, fmt.Errorf("mesh %s: %w", path, ErrUnknownBuiltin)
	}
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return render.MeshData{}, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()
	md, err := ParseOBJ(f)
	if err != nil {
		return render.MeshData{}, fmt.Errorf("mesh %s: %w", path, err)
	}
	l.log.Debug("mesh loaded", zap.String("path", path),
		zap.Int("vertices", len(md.Vertices)), zap.Int("indices", len(md.Indices)))
	return md, nil
}

var builtinShaders = map[string][2]string{
	"unlit":    {"transform", "unlit"},
	"lit":      {"transform", "lambert"},
	"textured": {"transform", "textured"},
	"sky":      {"transform", "sky"},
}

func (l *Loader) LoadShader(path string) (render.ShaderSource, error) {
	if name, ok := strings.CutPrefix(path, builtinPrefix); ok {
		p, found := builtinShaders[name]
		if !found {
			return render.ShaderSource{}, fmt.Errorf("shader %s: %w", path, ErrUnknownBuiltin)
		}
		return render.ShaderSource{Name: name, Vertex: []byte(p[0]), Pixel: []byte(p[1])}, nil
	}
	d, err := data.LoadShaderDesc(l.resolve(path))
	if err != nil {
		return render.ShaderSource{}, err
	}
	return render.ShaderSource{Name: d.Name, Vertex: []byte(d.Vertex), Pixel: []byte(d.Pixel)}, nil
}

func (l *Loader) LoadTexture(path string) (render.Image, error) {
	if name, ok := strings.CutPrefix(path, builtinPrefix); ok {
		if name == "checker" {
			return Checker(8, 8), nil
		}
		return render.Image{}, fmt.Errorf("texture %s: %w", path, ErrUnknownBuiltin)
	}
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return render.Image{}, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()
	src, format, err := image.Decode(f)
	if err != nil {
		return render.Image{}, fmt.Errorf("decode texture %s: %w", path, err)
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	l.log.Debug("texture loaded", zap.String("path", path), zap.String("format", format),
		zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return render.Image{Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}, nil
}
