package render

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Constant buffer slots shared by the engine and every backend.
const (
	SlotFrame  = 0
	SlotObject = 1
)

// FrameConstants is uploaded once per frame. Layout: view (64 bytes),
// projection (64), camera position xyz + total seconds (16).
type FrameConstants struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3
	Time       float32
}

const FrameConstantsSize = 144

// ObjectConstants is uploaded per draw. Layout: world (64), colour (16).
type ObjectConstants struct {
	World mgl32.Mat4
	Color mgl32.Vec4
}

const ObjectConstantsSize = 80

func putFloats(dst []byte, fs ...float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

func getFloats(src []byte, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}

func (c FrameConstants) Encode() []byte {
	b := make([]byte, 0, FrameConstantsSize)
	b = putFloats(b, c.View[:]...)
	b = putFloats(b, c.Projection[:]...)
	b = putFloats(b, c.CameraPos[:]...)
	return putFloats(b, c.Time)
}

// DecodeFrameConstants reads the layout written by Encode. Short input
// yields the zero value.
func DecodeFrameConstants(b []byte) FrameConstants {
	var c FrameConstants
	if len(b) < FrameConstantsSize {
		return c
	}
	f := getFloats(b, FrameConstantsSize/4)
	copy(c.View[:], f[0:16])
	copy(c.Projection[:], f[16:32])
	copy(c.CameraPos[:], f[32:35])
	c.Time = f[35]
	return c
}

func (c ObjectConstants) Encode() []byte {
	b := make([]byte, 0, ObjectConstantsSize)
	b = putFloats(b, c.World[:]...)
	return putFloats(b, c.Color[:]...)
}

func DecodeObjectConstants(b []byte) ObjectConstants {
	var c ObjectConstants
	if len(b) < ObjectConstantsSize {
		return c
	}
	f := getFloats(b, ObjectConstantsSize/4)
	copy(c.World[:], f[0:16])
	copy(c.Color[:], f[16:20])
	return c
}

// ConstantBuffer is a device buffer plus the hash of its last upload, so
// unchanged contents are not sent again.
type ConstantBuffer struct {
	buf    Buffer
	hash   uint64
	loaded bool
}

func NewConstantBuffer(dev Device, size int) (*ConstantBuffer, error) {
	buf, err := dev.CreateBuffer(BufferDesc{Size: size, Bind: BindConstantBuffer}, nil)
	if err != nil {
		return nil, err
	}
	return &ConstantBuffer{buf: buf}, nil
}

func (c *ConstantBuffer) Buffer() Buffer { return c.buf }

// Upload writes data unless it matches the previous upload. It reports
// whether the device was touched.
func (c *ConstantBuffer) Upload(ctx Context, data []byte) bool {
	h := xxhash.Sum64(data)
	if c.loaded && h == c.hash {
		return false
	}
	ctx.UpdateBuffer(c.buf, data)
	c.hash = h
	c.loaded = true
	return true
}

func (c *ConstantBuffer) Release() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
}
