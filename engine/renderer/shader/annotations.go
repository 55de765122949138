// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that inject registered WGSL sources and declare buffer bindings. The parsed
// binding declarations are what the renderer uses to build bind group layouts and to
// match each binding to the graph buffer it expects.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL source (a struct definition or a
	// function library) at the annotation site. It produces no declaration.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include surface_library
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration and
	// records it in the PreProcessor's declarations list.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 1 storage_read_write points array<point>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include or group).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include: [0] = registered source name (e.g. "camera")
	//   - group:   [0] = address space, [1] = var name, [2] = type (e.g. "array<point>")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group is the @group index for group annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group annotations. Nil for include annotations.
	Binding *int
}

// AddressSpace returns the address space argument of a group annotation.
func (a Annotation) AddressSpace() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup {
		return ""
	}
	return a.Args[0]
}

// VarName returns the WGSL variable name declared by a group annotation.
func (a Annotation) VarName() string {
	if a.Type != AnnotationTypeBindingGroup {
		return ""
	}
	return string(a.Args[1])
}

// StructType returns the registered struct bound by a group annotation, with any array<>
// wrapper removed.
func (a Annotation) StructType() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup {
		return ""
	}
	elem, _ := arrayElement(string(a.Args[2]))
	return AnnotationArg(elem)
}

// IsArray reports whether a group annotation binds a runtime-sized array.
func (a Annotation) IsArray() bool {
	if a.Type != AnnotationTypeBindingGroup {
		return false
	}
	_, ok := arrayElement(string(a.Args[2]))
	return ok
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Registered source arguments ────────────────────────────────────────────────

const (
	// AnnotationArgGraphParams identifies the GraphParams per-frame uniform struct.
	// Source: engine/graph/assets/graph_params.wgsl
	AnnotationArgGraphParams AnnotationArg = "graph_params"

	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgPoint identifies the Point storage element written by the compute pass.
	// Source: engine/grid/assets/point.wgsl
	AnnotationArgPoint AnnotationArg = "point"

	// annotationArgSurfaceLibrary identifies the surface function library. It can be included
	// but not bound, as it declares functions rather than a struct.
	// Source: engine/surface/assets/surface_library.wgsl
	annotationArgSurfaceLibrary AnnotationArg = "surface_library"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// AnnotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	AnnotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// AnnotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	AnnotationArgStorageTypeRead AnnotationArg = "storage_read"

	// AnnotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	AnnotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// validStructTypes lists the registered structs accepted as the type of a group annotation.
var validStructTypes = []AnnotationArg{
	AnnotationArgGraphParams,
	AnnotationArgCamera,
	AnnotationArgPoint,
}

// validIncludes lists every registered source accepted by an include annotation.
var validIncludes = append(slices.Clone(validStructTypes), annotationArgSurfaceLibrary)

// validAddressSpaces lists the address spaces accepted by a group annotation.
var validAddressSpaces = []AnnotationArg{
	AnnotationArgStorageTypeUniform,
	AnnotationArgStorageTypeRead,
	AnnotationArgStorageTypeReadWrite,
}

// arrayElement strips an array<...> wrapper. The bool reports whether one was present.
func arrayElement(typeArg string) (string, bool) {
	inner, ok := strings.CutPrefix(typeArg, "array<")
	if !ok {
		return typeArg, false
	}
	return strings.TrimSuffix(inner, ">"), true
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validIncludes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown source %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires exactly five arguments (group, binding, address space, var name, type)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation", lineNum, args[2])
		}
		space := AnnotationArg(args[3])
		if !slices.Contains(validAddressSpaces, space) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		elem, isArray := arrayElement(args[5])
		if !slices.Contains(validStructTypes, AnnotationArg(elem)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, elem)
		}
		if isArray && space == AnnotationArgStorageTypeUniform {
			return nil, fmt.Errorf("line %d: runtime-sized array %q cannot live in the uniform address space", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{space, AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
