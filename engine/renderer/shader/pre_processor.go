// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with generated WGSL declarations
// or injected sources, and collects the binding declarations the renderer wires buffers to.
//
// The pre-processor maintains two registries:
//   - sourceRegistry: maps AnnotationArg keys to embedded WGSL sources and, for structs, their
//     WGSL type names. Used by @oxy:include (to inject the source) and @oxy:group (to resolve
//     the type name in the generated declaration).
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// registryEntry pairs an embedded WGSL source with the WGSL type name it defines.
type registryEntry struct {
	// Source is the raw WGSL text injected by @oxy:include.
	Source string

	// Type is the WGSL struct name emitted in @oxy:group declarations. Empty for function libraries.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	sourceRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group annotations during a Process call. Reset at the start of each call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// replacing them with generated declarations or injected sources while collecting
// the binding declarations for downstream resource wiring.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and replaces every @oxy: annotation with
	// its WGSL output. A source included more than once is injected only the first time.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if an annotation is malformed or two declarations share a group and binding
	Process(source string) (string, error)

	// Declarations returns the group annotations collected during the most recent call to
	// Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the graph, camera, point and surface
// library sources registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		sourceRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgGraphParams:    {Source: graph.GPUGraphParamsSource, Type: "GraphParams"},
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgPoint:          {Source: grid.GPUPointSource, Type: "Point"},
			annotationArgSurfaceLibrary: {Source: surface.WGSLLibrarySource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			AnnotationArgStorageTypeUniform:   "var<uniform>",
			AnnotationArgStorageTypeRead:      "var<storage, read>",
			AnnotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := map[AnnotationArg]bool{}
	bound := map[[2]int]int{}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			entry, ok := p.sourceRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(entry.Source, "\n"))
		case AnnotationTypeBindingGroup:
			slot := [2]int{*a.Group, *a.Binding}
			if prev, ok := bound[slot]; ok {
				return "", fmt.Errorf("line %d: @group(%d) @binding(%d) already declared on line %d", i+1, slot[0], slot[1], prev)
			}
			bound[slot] = i + 1

			entry := p.sourceRegistry[a.StructType()]
			wgslType := entry.Type
			if a.IsArray() {
				wgslType = fmt.Sprintf("array<%s>", entry.Type)
			}

			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, p.addressSpaceRegistry[a.AddressSpace()], a.VarName(), wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
