package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-graph/common"
)

// camera is the implementation of the Camera interface.
// Position is derived from spherical coordinates around the target: radius (distance),
// azimuth (yaw around +Y) and elevation (pitch above the horizontal plane).
type camera struct {
	mu *sync.Mutex

	target common.Point3
	up     common.Point3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32

	fov  float32
	near float32
	far  float32
}

// Camera is an orbit camera looking at the graph. It owns the perspective settings and
// produces the GPU camera uniform for a given viewport aspect ratio.
type Camera interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - common.Point3: the eye position
	Position() common.Point3

	// Target returns the point the camera orbits and looks at.
	//
	// Returns:
	//   - common.Point3: the orbit target
	Target() common.Point3

	// Orbit rotates the camera around the target. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: change in yaw, radians
	//   - dElevation: change in pitch, radians
	Orbit(dAzimuth, dElevation float32)

	// OrbitLeft rotates the camera one orbit step to the left.
	OrbitLeft()

	// OrbitRight rotates the camera one orbit step to the right.
	OrbitRight()

	// OrbitUp raises the camera one orbit step.
	OrbitUp()

	// OrbitDown lowers the camera one orbit step.
	OrbitDown()

	// Zoom moves the camera toward (positive delta) or away from the target. The radius is
	// clamped to the configured bounds.
	//
	// Parameters:
	//   - delta: zoom amount in scroll units, scaled by the zoom speed
	Zoom(delta float32)

	// Radius returns the distance from the target.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Azimuth returns the yaw around +Y in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the pitch above the horizontal plane in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// ViewProjectionMatrix computes the combined view-projection matrix (column-major).
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix(aspect float32) [16]float32

	// Uniform builds the GPU camera uniform for the current orbit state.
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready for upload
	Uniform(aspect float32) GPUCameraUniform
}

var _ Camera = &camera{}

// NewCamera creates a new orbit Camera looking at the origin from four units away.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &camera{
		mu:     &sync.Mutex{},
		up:     common.Point3{Y: 1},
		radius: 4,

		azimuth:   0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.5,
		maxRadius:    20,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed: 0.03,
		zoomSpeed:  0.25,

		fov:  60 * (math.Pi / 180),
		near: 0.01,
		far:  100,
	}
	for _, option := range options {
		option(c)
	}
	c.radius = clamp(c.radius, c.minRadius, c.maxRadius)
	c.elevation = clamp(c.elevation, c.minElevation, c.maxElevation)
	return c
}

func (c *camera) Position() common.Point3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *camera) Target() common.Point3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *camera) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += dAzimuth
	c.elevation = clamp(c.elevation+dElevation, c.minElevation, c.maxElevation)
}

func (c *camera) OrbitLeft() {
	c.Orbit(-c.orbitSpeed, 0)
}

func (c *camera) OrbitRight() {
	c.Orbit(c.orbitSpeed, 0)
}

func (c *camera) OrbitUp() {
	c.Orbit(0, c.orbitSpeed)
}

func (c *camera) OrbitDown() {
	c.Orbit(0, -c.orbitSpeed)
}

func (c *camera) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
}

func (c *camera) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *camera) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *camera) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}

func (c *camera) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *camera) ViewProjectionMatrix(aspect float32) [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection(aspect)
}

func (c *camera) Uniform(aspect float32) GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj: c.viewProjection(aspect),
		Position: c.position().Array(),
	}
}

// position computes the eye from the spherical coordinates. Caller must hold the mutex.
func (c *camera) position() common.Point3 {
	cosElev := common.Cos(c.elevation)
	return c.target.Add(common.Point3{
		X: c.radius * cosElev * common.Sin(c.azimuth),
		Y: c.radius * common.Sin(c.elevation),
		Z: c.radius * cosElev * common.Cos(c.azimuth),
	})
}

// viewProjection builds projection * view. Caller must hold the mutex.
func (c *camera) viewProjection(aspect float32) [16]float32 {
	if !(aspect > 0) {
		aspect = 1
	}
	var view, proj, vp [16]float32
	common.LookAt(view[:], c.position(), c.target, c.up)
	common.Perspective(proj[:], c.fov, aspect, c.near, c.far)
	common.Mul4(vp[:], proj[:], view[:])
	return vp
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
