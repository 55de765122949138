package camera

import "github.com/Carmen-Shannon/oxy-graph/common"

// CameraBuilderOption is a functional option for configuring a Camera during construction.
type CameraBuilderOption func(*camera)

// WithRadius sets the initial distance from the target. It is clamped to the radius bounds.
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraBuilderOption: functional option to set the radius
func WithRadius(radius float32) CameraBuilderOption {
	return func(c *camera) {
		c.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraBuilderOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraBuilderOption {
	return func(c *camera) {
		c.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraBuilderOption: functional option to set the elevation
func WithElevation(elevation float32) CameraBuilderOption {
	return func(c *camera) {
		c.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - target: the orbit target
//
// Returns:
//   - CameraBuilderOption: functional option to set the target position
func WithTarget(target common.Point3) CameraBuilderOption {
	return func(c *camera) {
		c.target = target
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - lo: closest allowed distance
//   - hi: farthest allowed distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the radius bounds
func WithRadiusBounds(lo, hi float32) CameraBuilderOption {
	return func(c *camera) {
		c.minRadius = lo
		c.maxRadius = hi
	}
}

// WithOrbitSpeed sets the angle, in radians, of a single orbit step.
//
// Parameters:
//   - speed: radians per orbit step
//
// Returns:
//   - CameraBuilderOption: functional option to set the orbit speed
func WithOrbitSpeed(speed float32) CameraBuilderOption {
	return func(c *camera) {
		c.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the distance moved per scroll unit.
//
// Parameters:
//   - speed: distance per scroll unit
//
// Returns:
//   - CameraBuilderOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraBuilderOption {
	return func(c *camera) {
		c.zoomSpeed = speed
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *camera) {
		c.fov = fov
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *camera) {
		c.near = near
		c.far = far
	}
}
