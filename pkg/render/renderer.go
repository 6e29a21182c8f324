// Package render implements the two-pass compositor that turns a
// worker's prepared glyph vertex buffers into pixels on screen: first
// into an offscreen, transparency-cleared target sized to the
// overlay's own screen geometry, then composited onto the real
// window framebuffer through a single alpha-blended fullscreen quad
// modulated by an opacity uniform.
//
// The window, shader and buffer wrappers below follow the same
// openglhelper abstractions the original renderer used for voxel
// chunks; what changed is what gets drawn into them.
package render

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"openglhelper"

	"github.com/fifth-light/danmaku-renderer/pkg/glyph"
)

const mainVertexShaderSource = `
#version 460 core
layout (location = 0) in uint aTime;
layout (location = 1) in uint aTrackType;
layout (location = 2) in uint aTrack;
layout (location = 3) in uint aLineWidth;
layout (location = 4) in ivec2 aOffset;
layout (location = 5) in uvec2 aTexCoord;
layout (location = 6) in vec3 aColor;

uniform vec2 uScreenSize;
uniform uint uCurrentTimeMs;
uniform uint uLifetimeMs;
uniform float uLineHeight;
uniform vec2 uAtlasSize;

out vec2 vTexCoord;
out vec3 vColor;

void main() {
	// Lifetime check first, before any (uCurrentTimeMs - aTime) subtraction:
	// both are unsigned, so evaluating that subtraction for a comment whose
	// time hasn't arrived yet (now < t0) would underflow.
	bool notYetActive = uCurrentTimeMs < aTime;
	bool expired = !notYetActive && (uCurrentTimeMs - aTime) >= uLifetimeMs;
	if (notYetActive || expired) {
		gl_Position = vec4(2.0, 2.0, 2.0, 1.0);
		vTexCoord = vec2(0.0);
		vColor = vec3(0.0);
		return;
	}

	vec2 pos = vec2(aOffset);
	float track = float(aTrack);
	if (aTrackType == 0u) {
		// Scroll: enters at the right edge and exits past the left edge
		// over one lifetime, at a speed derived from its own width so a
		// wider comment takes just as long to fully leave the screen.
		float speed = (uScreenSize.x + float(aLineWidth)) / float(uLifetimeMs);
		float elapsed = float(uCurrentTimeMs - aTime);
		pos.x += uScreenSize.x - speed * elapsed;
		pos.y += (track + 1.0) * uLineHeight;
	} else if (aTrackType == 1u) {
		// Top: centered horizontally, stacking down from the top.
		pos.x += (uScreenSize.x - float(aLineWidth)) / 2.0;
		pos.y += (track + 1.0) * uLineHeight;
	} else {
		// Bottom: centered horizontally, stacking up from the bottom.
		pos.x += (uScreenSize.x - float(aLineWidth)) / 2.0;
		pos.y += uScreenSize.y - track * uLineHeight;
	}

	vec2 ndc = (pos / uScreenSize) * 2.0 - 1.0;
	gl_Position = vec4(ndc.x, -ndc.y, 0.0, 1.0);

	vTexCoord = vec2(aTexCoord) / uAtlasSize;
	vColor = aColor;
}
`

const mainFragmentShaderSource = `
#version 460 core
in vec2 vTexCoord;
in vec3 vColor;
out vec4 FragColor;

uniform sampler2D uAtlas;
uniform sampler2D uShadow;

void main() {
	float coverage = texture(uAtlas, vTexCoord).r;
	float shadow = texture(uShadow, vTexCoord).r;
	vec3 withShadow = mix(vec3(0.0), vColor, coverage);
	FragColor = vec4(withShadow, max(coverage, shadow * 0.6));
}
`

const copyVertexShaderSource = `
#version 460 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aTexCoord;
out vec2 vTexCoord;
void main() {
	gl_Position = vec4(aPos, 0.0, 1.0);
	vTexCoord = aTexCoord;
}
`

const copyFragmentShaderSource = `
#version 460 core
in vec2 vTexCoord;
out vec4 FragColor;
uniform sampler2D uSource;
uniform float uOpacity;
void main() {
	vec4 c = texture(uSource, vTexCoord);
	FragColor = vec4(c.rgb, c.a * uOpacity);
}
`

// Params configures the renderer's composited output.
type Params struct {
	ScreenWidth  int
	ScreenHeight int
	LifetimeMs   uint32
	// LineHeight is the pixel distance between adjacent track baselines,
	// in the same units as ScreenWidth/ScreenHeight.
	LineHeight float64
	// Opacity scales the whole overlay's alpha when composited onto the
	// window, from fully transparent (0) to the source alpha unchanged (1).
	Opacity float32
}

// Renderer draws a sequence of glyph.VertexBuffers into an offscreen
// target and composites that target onto a window.
type Renderer struct {
	window *openglhelper.Window
	params Params

	mainShader *openglhelper.Shader
	copyShader *openglhelper.Shader

	targetTexture uint32
	targetFBO     uint32

	vao        *openglhelper.VertexArrayObject
	vbo        uint32
	vboCap     int
	indexCache *glyph.IndexBuffer
	ibo        uint32

	copyVAO *openglhelper.VertexArrayObject
	copyVBO uint32
	copyIBO uint32

	textures *glyph.TextureManager
}

// copyQuadVertices is the fullscreen quad's 4 corners in NDC, each
// paired with the matching texture coordinate.
var copyQuadVertices = [16]float32{
	-1, 1, 0, 1,
	1, 1, 1, 1,
	-1, -1, 0, 0,
	1, -1, 1, 0,
}

var copyQuadIndices = [6]uint32{0, 2, 1, 1, 2, 3}

// New builds a Renderer that draws into window, using textures as its
// glyph atlas source.
func New(window *openglhelper.Window, textures *glyph.TextureManager, params Params) (*Renderer, error) {
	mainShader, err := openglhelper.NewShader(mainVertexShaderSource, mainFragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("render: compiling main shader: %w", err)
	}
	copyShader, err := openglhelper.NewShader(copyVertexShaderSource, copyFragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("render: compiling copy shader: %w", err)
	}

	r := &Renderer{
		window:     window,
		params:     params,
		mainShader: mainShader,
		copyShader: copyShader,
		indexCache: glyph.NewIndexBuffer(),
		textures:   textures,
	}

	r.allocateTarget(params.ScreenWidth, params.ScreenHeight)
	r.setupMainVAO()
	r.setupCopyQuad()
	window.GLFWWindow().SetFramebufferSizeCallback(r.framebufferSizeCallback)

	return r, nil
}

func (r *Renderer) allocateTarget(width, height int) {
	gl.GenTextures(1, &r.targetTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.targetTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenFramebuffers(1, &r.targetFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.targetFBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.targetTexture, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (r *Renderer) setupMainVAO() {
	r.vao = openglhelper.NewVAO()
	r.vao.Bind()
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(unsafe.Sizeof(glyph.Vertex{}))
	gl.VertexAttribIPointer(0, 1, gl.UNSIGNED_INT, stride, gl.PtrOffset(0))
	gl.VertexAttribIPointer(1, 1, gl.UNSIGNED_INT, stride, gl.PtrOffset(4))
	gl.VertexAttribIPointer(2, 1, gl.UNSIGNED_INT, stride, gl.PtrOffset(8))
	gl.VertexAttribIPointer(3, 1, gl.UNSIGNED_INT, stride, gl.PtrOffset(12))
	gl.VertexAttribIPointer(4, 2, gl.INT, stride, gl.PtrOffset(16))
	gl.VertexAttribIPointer(5, 2, gl.UNSIGNED_INT, stride, gl.PtrOffset(24))
	gl.VertexAttribPointer(6, 3, gl.FLOAT, false, stride, gl.PtrOffset(32))
	for i := uint32(0); i < 7; i++ {
		gl.EnableVertexAttribArray(i)
	}

	gl.GenBuffers(1, &r.ibo)
	r.vao.Unbind()
}

func (r *Renderer) setupCopyQuad() {
	r.copyVAO = openglhelper.NewVAO()
	r.copyVAO.Bind()

	gl.GenBuffers(1, &r.copyVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.copyVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(copyQuadVertices)*4, gl.Ptr(&copyQuadVertices[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, gl.PtrOffset(0))
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.EnableVertexAttribArray(0)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &r.copyIBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.copyIBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(copyQuadIndices)*4, gl.Ptr(&copyQuadIndices[0]), gl.STATIC_DRAW)

	r.copyVAO.Unbind()
}

// RenderBuffers draws previous, current and next (any of which may be
// nil, or hold zero glyphs) into the offscreen target, clearing it to
// fully transparent first.
func (r *Renderer) RenderBuffers(currentTimeMs uint32, buffers ...*glyph.VertexBuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.targetFBO)
	gl.Viewport(0, 0, int32(r.params.ScreenWidth), int32(r.params.ScreenHeight))
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.mainShader.Use()
	r.setScreenSizeUniform()
	gl.Uniform1ui(r.uniformLoc(r.mainShader, "uCurrentTimeMs"), currentTimeMs)
	gl.Uniform1ui(r.uniformLoc(r.mainShader, "uLifetimeMs"), r.params.LifetimeMs)
	r.mainShader.SetFloat("uLineHeight", float32(r.params.LineHeight))
	r.setAtlasSizeUniform()

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.textures.Texture())
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, r.textures.ShadowTexture())
	r.mainShader.SetInt("uShadow", 1)

	r.vao.Bind()
	for _, vb := range buffers {
		if vb == nil || len(vb.Vertices) == 0 {
			continue
		}
		r.drawVertexBuffer(vb)
	}
	r.vao.Unbind()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (r *Renderer) drawVertexBuffer(vb *glyph.VertexBuffer) {
	size := len(vb.Vertices) * int(unsafe.Sizeof(glyph.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if size > r.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vb.Vertices), gl.STREAM_DRAW)
		r.vboCap = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vb.Vertices))
	}

	glyphCount := vb.GlyphCount()
	if r.indexCache.EnsureSize(glyphCount) {
		indices := r.indexCache.Indices()
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ibo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	} else {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ibo)
	}

	gl.DrawElements(gl.TRIANGLES, int32(glyphCount*6), gl.UNSIGNED_INT, nil)
}

// Render composites the offscreen target onto the window's real
// framebuffer through a single alpha-blended fullscreen quad.
func (r *Renderer) Render() {
	width, height := r.window.Size()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))

	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.copyShader.Use()
	r.copyShader.SetFloat("uOpacity", r.params.Opacity)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.targetTexture)

	r.copyVAO.Bind()
	gl.DrawElements(gl.TRIANGLES, int32(len(copyQuadIndices)), gl.UNSIGNED_INT, nil)
	r.copyVAO.Unbind()

	r.window.SwapBuffers()
	r.window.PollEvents()
}

// ShouldClose reports whether the underlying window wants to close.
func (r *Renderer) ShouldClose() bool { return r.window.ShouldClose() }

func (r *Renderer) setScreenSizeUniform() {
	gl.Uniform2f(r.uniformLoc(r.mainShader, "uScreenSize"), float32(r.params.ScreenWidth), float32(r.params.ScreenHeight))
}

// setAtlasSizeUniform reads the atlas texture's current (always
// square) dimension back from the GPU rather than threading its size
// through every call site, since it changes whenever the atlas grows.
func (r *Renderer) setAtlasSizeUniform() {
	var dim int32
	gl.BindTexture(gl.TEXTURE_2D, r.textures.Texture())
	gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_WIDTH, &dim)
	size := float32(dim)
	gl.Uniform2f(r.uniformLoc(r.mainShader, "uAtlasSize"), size, size)
}

func (r *Renderer) uniformLoc(shader *openglhelper.Shader, name string) int32 {
	return gl.GetUniformLocation(shader.ID, gl.Str(name+"\x00"))
}

// framebufferSizeCallback keeps the window's tracked size current; it
// does not resize the overlay's own target texture, which is sized
// from danmaku screen parameters rather than the window.
func (r *Renderer) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	r.window.OnResize(width, height)
}
