package shader

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"

	"github.com/gogpu/naga"
)

//go:embed assets/compute.wgsl
var computeTemplate string

//go:embed assets/render.wgsl
var renderTemplate string

// ShaderType identifies whether a shader is the graph's compute shader or its render shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point that fills the point buffer.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeRender indicates a shader containing a @vertex and a @fragment entry point that draws the points.
	ShaderTypeRender
)

// String returns the lowercase name of the shader type.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeRender:
		return "render"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

var (
	computeEntryRe   = regexp.MustCompile(`@compute\s+@workgroup_size\(([^)]*)\)\s*fn\s+(\w+)`)
	vertexEntryRe    = regexp.MustCompile(`@vertex\s*fn\s+(\w+)`)
	fragmentEntryRe  = regexp.MustCompile(`@fragment\s*fn\s+(\w+)`)
	workgroupFieldRe = regexp.MustCompile(`\d+`)
)

// shader is the implementation of the Shader interface.
type shader struct {
	key           string
	source        string
	shaderType    ShaderType
	entryPoints   map[string]string
	workGroupSize [3]uint32

	pp PreProcessor
}

// Shader is a pre-processed WGSL program along with the metadata the renderer needs to
// build its pipeline: entry points, workgroup size, and binding declarations.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the GPU label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the type of the shader.
	//
	// Returns:
	//   - ShaderType: ShaderTypeCompute or ShaderTypeRender
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for a pipeline stage: "compute", "vertex" or "fragment".
	//
	// Parameters:
	//   - stage: the stage name
	//
	// Returns:
	//   - string: the entry point function name, or an empty string if the stage is absent
	EntryPoint(stage string) string

	// WorkgroupSize returns the workgroup size of the compute entry point. Render shaders
	// report [0, 0, 0].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Declarations returns the binding declarations parsed from the shader source.
	//
	// Returns:
	//   - []Annotation: the group annotations, in source order
	Declarations() []Annotation

	// Validate compiles the shader to SPIR-V with naga. The renderer treats a failure as a
	// warning, since the GPU driver performs its own validation.
	//
	// Returns:
	//   - error: the compilation error, if any
	Validate() error
}

var _ Shader = &shader{}

// NewShader creates the built-in graph shader of the given type.
//
// Parameters:
//   - shaderType: ShaderTypeCompute or ShaderTypeRender
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if the type is unknown or the template fails to process
func NewShader(shaderType ShaderType) (Shader, error) {
	switch shaderType {
	case ShaderTypeCompute:
		return NewShaderFromSource("graph_compute", shaderType, computeTemplate)
	case ShaderTypeRender:
		return NewShaderFromSource("graph_render", shaderType, renderTemplate)
	default:
		return nil, fmt.Errorf("unknown shader type %v", shaderType)
	}
}

// NewShaderFromSource creates a Shader from annotated WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the type of shader, which decides the entry points that must be present
//   - source: the annotated WGSL source
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if pre-processing fails or a required entry point is missing
func NewShaderFromSource(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:         key,
		shaderType:  shaderType,
		entryPoints: make(map[string]string),
		pp:          NewPreProcessor(),
	}

	processed, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = processed

	switch shaderType {
	case ShaderTypeCompute:
		m := computeEntryRe.FindStringSubmatch(processed)
		if m == nil {
			return nil, fmt.Errorf("shader %s: no @compute entry point", key)
		}
		s.entryPoints["compute"] = m[2]
		s.workGroupSize = parseWorkgroupSize(m[1])
	case ShaderTypeRender:
		vm := vertexEntryRe.FindStringSubmatch(processed)
		fm := fragmentEntryRe.FindStringSubmatch(processed)
		if vm == nil || fm == nil {
			return nil, fmt.Errorf("shader %s: render shaders need both @vertex and @fragment entry points", key)
		}
		s.entryPoints["vertex"] = vm[1]
		s.entryPoints["fragment"] = fm[1]
	default:
		return nil, fmt.Errorf("shader %s: unknown shader type %v", key, shaderType)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint(stage string) string {
	return s.entryPoints[stage]
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Validate() error {
	if _, err := naga.Compile(s.source); err != nil {
		return fmt.Errorf("shader %s: %w", s.key, err)
	}
	return nil
}

// parseWorkgroupSize reads up to three dimensions from the inside of @workgroup_size(...).
// Missing dimensions default to 1.
func parseWorkgroupSize(args string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	for i, f := range workgroupFieldRe.FindAllString(args, 3) {
		n, err := strconv.ParseUint(f, 10, 32)
		if err == nil {
			size[i] = uint32(n)
		}
	}
	return size
}
