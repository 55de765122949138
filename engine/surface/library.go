package surface

import (
	_ "embed"
)

// WGSLLibrarySource defines surface_eval and surface_morph, the shader counterparts of
// Evaluate and MorphWeighted. surface_eval selects a surface by its Kind index.
//
//go:embed assets/surface_library.wgsl
var WGSLLibrarySource string
