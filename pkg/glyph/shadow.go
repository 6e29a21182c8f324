package glyph

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"openglhelper"
)

const shadowVertexShaderSource = `
#version 460 core
layout (location = 0) in uvec2 aPos;
uniform vec3 uAtlasSize;
void main() {
	vec2 ndc = (vec2(aPos) / uAtlasSize.xy) * 2.0 - 1.0;
	gl_Position = vec4(ndc.x, ndc.y, 0.0, 1.0);
}
`

const shadowFragmentShaderSource = `
#version 460 core
out float FragColor;
void main() {
	FragColor = 1.0;
}
`

// shadowVertex is one corner of a padded glyph quad, in atlas texel
// coordinates.
type shadowVertex struct {
	X, Y uint32
}

// Shadow is the shadow pass's own framebuffer: a single-channel
// texture that newly inserted glyph quads are stamped into, and that
// is never cleared between chunks. Not clearing is what makes a
// glyph's shadow persist across every chunk that reuses its atlas
// slot, rather than needing to be redrawn every frame.
type Shadow struct {
	size    int
	texture uint32
	fbo     uint32

	shader *openglhelper.Shader
	vao    *openglhelper.VertexArrayObject
	vbo    uint32

	pending []shadowVertex
}

func newShadow(size int) (*Shadow, error) {
	shader, err := openglhelper.NewShader(shadowVertexShaderSource, shadowFragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compiling shadow shader: %w", err)
	}

	s := &Shadow{size: size, shader: shader}
	s.allocate(size)

	s.vao = openglhelper.NewVAO()
	s.vao.Bind()
	gl.GenBuffers(1, &s.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.VertexAttribIPointer(0, 2, gl.UNSIGNED_INT, 8, nil)
	gl.EnableVertexAttribArray(0)
	s.vao.Unbind()

	return s, nil
}

func (s *Shadow) allocate(size int) {
	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(size), int32(size), 0, gl.RED, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)

	gl.GenFramebuffers(1, &s.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.texture, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// grow doubles the shadow framebuffer to newSize, preserving existing
// shadow content by copying it into the new texture.
func (s *Shadow) grow(newSize int) error {
	oldTex, oldSize := s.texture, s.size

	var newTex uint32
	gl.GenTextures(1, &newTex)
	gl.BindTexture(gl.TEXTURE_2D, newTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(newSize), int32(newSize), 0, gl.RED, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.CopyImageSubData(oldTex, gl.TEXTURE_2D, 0, 0, 0, 0, newTex, gl.TEXTURE_2D, 0, 0, 0, 0, int32(oldSize), int32(oldSize), 1)

	var newFBO uint32
	gl.GenFramebuffers(1, &newFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, newFBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, newTex, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.DeleteFramebuffers(1, &s.fbo)
	gl.DeleteTextures(1, &oldTex)

	s.texture, s.fbo, s.size = newTex, newFBO, newSize
	return nil
}

// newGlyph records a freshly inserted glyph's padded quad for the
// next draw call.
func (s *Shadow) newGlyph(item Item) {
	x0, y0 := uint32(item.TexCoords[0]), uint32(item.TexCoords[1])
	x1, y1 := x0+uint32(item.TexSize[0]), y0+uint32(item.TexSize[1])
	s.pending = append(s.pending,
		shadowVertex{x0, y0}, shadowVertex{x1, y0},
		shadowVertex{x0, y1}, shadowVertex{x1, y1},
	)
}

// draw stamps every pending glyph quad into the shadow framebuffer
// without clearing it first, then clears the pending list. It is a
// no-op if nothing new was inserted since the last draw.
func (s *Shadow) draw() {
	glyphs := len(s.pending) / 4
	if glyphs == 0 {
		return
	}

	indices := generateIndices(glyphs)

	// The element buffer binding is VAO state, so bind the VAO first.
	s.vao.Bind()

	var ibo uint32
	gl.GenBuffers(1, &ibo)
	defer gl.DeleteBuffers(1, &ibo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STREAM_DRAW)

	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(s.pending)*int(unsafe.Sizeof(shadowVertex{})), gl.Ptr(s.pending), gl.STREAM_DRAW)

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.Viewport(0, 0, int32(s.size), int32(s.size))
	gl.Disable(gl.BLEND)

	s.shader.Use()
	s.shader.SetVec3("uAtlasSize", mgl32.Vec3{float32(s.size), float32(s.size), 0})

	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, nil)
	s.vao.Unbind()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	s.pending = s.pending[:0]
}
