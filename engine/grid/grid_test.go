package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

type fieldFunc func(u, v, t float32) common.Point3

func (f fieldFunc) Evaluate(u, v, t float32) common.Point3 { return f(u, v, t) }

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-5
}

func TestNewRejectsOutOfRange(t *testing.T) {
	for _, res := range []int{-1, 0, 9, 1001, 5000} {
		if _, err := New(res); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("New(%d) error = %v, want ErrInvalidResolution", res, err)
		}
	}
	for _, res := range []int{MinResolution, 64, 100, MaxResolution} {
		if _, err := New(res); err != nil {
			t.Errorf("New(%d) = %v", res, err)
		}
	}
}

func TestGridContract(t *testing.T) {
	tests := []struct {
		res        int
		step       float32
		workgroups uint32
		bounds     float32
	}{
		{10, 0.2, 2, 2.2},
		{16, 0.125, 2, 2.125},
		{100, 0.02, 13, 2.02},
		{1000, 0.002, 125, 2.002},
	}

	for _, tt := range tests {
		g, err := New(tt.res)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.res, err)
		}
		if !approx(g.Step(), tt.step) {
			t.Errorf("res %d: Step = %v, want %v", tt.res, g.Step(), tt.step)
		}
		if g.WorkgroupCount() != tt.workgroups {
			t.Errorf("res %d: WorkgroupCount = %d, want %d", tt.res, g.WorkgroupCount(), tt.workgroups)
		}
		if !approx(g.Bounds(), tt.bounds) {
			t.Errorf("res %d: Bounds = %v, want %v", tt.res, g.Bounds(), tt.bounds)
		}
		if g.PointCount() != tt.res*tt.res {
			t.Errorf("res %d: PointCount = %d", tt.res, g.PointCount())
		}
		if g.WorkgroupCount()*WorkgroupSize < uint32(tt.res) {
			t.Errorf("res %d: dispatch does not cover the grid", tt.res)
		}
	}
}

func TestCoordsAreCellCentresSymmetricAboutZero(t *testing.T) {
	g, _ := New(10)
	if !approx(g.Coord(0), -0.9) || !approx(g.Coord(9), 0.9) {
		t.Errorf("edge coords = %v, %v, want -0.9, 0.9", g.Coord(0), g.Coord(9))
	}
	for i := range g.Resolution() {
		j := g.Resolution() - 1 - i
		if !approx(g.Coord(i), -g.Coord(j)) {
			t.Errorf("Coord(%d) = %v not mirrored by Coord(%d) = %v", i, g.Coord(i), j, g.Coord(j))
		}
	}
	if g.Index(3, 2) != 23 {
		t.Errorf("Index(3, 2) = %d, want 23", g.Index(3, 2))
	}
}

func TestEvaluatorMatchesDirectEvaluation(t *testing.T) {
	e, err := NewEvaluator(WithResolution(24), WithWorkers(4))
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	defer e.Release()

	g := e.Grid()
	dst := make([]common.Point3, g.PointCount())
	field := fieldFunc(func(u, v, t float32) common.Point3 {
		return surface.Morph(u, v, t, surface.Ripple, surface.Torus, 0.35)
	})

	if err := e.Evaluate(field, 1.25, dst); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	for y := range g.Resolution() {
		for x := range g.Resolution() {
			want := surface.Morph(g.Coord(x), g.Coord(y), 1.25, surface.Ripple, surface.Torus, 0.35)
			if got := dst[g.Index(x, y)]; got != want {
				t.Fatalf("point (%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestEvaluatorRepeatedCalls(t *testing.T) {
	e, err := NewEvaluator(WithResolution(MinResolution), WithWorkers(2))
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	defer e.Release()

	dst := make([]common.Point3, e.Grid().PointCount())
	for frame := 0; frame < 20; frame++ {
		ts := float32(frame) * 0.1
		field := fieldFunc(func(u, v, t float32) common.Point3 { return surface.Evaluate(surface.Wave, u, v, t) })
		if err := e.Evaluate(field, ts, dst); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		last := dst[len(dst)-1]
		want := surface.Evaluate(surface.Wave, e.Grid().Coord(MinResolution-1), e.Grid().Coord(MinResolution-1), ts)
		if last != want {
			t.Fatalf("frame %d: last point = %+v, want %+v", frame, last, want)
		}
	}
}

func TestEvaluatorRejectsShortDestination(t *testing.T) {
	e, err := NewEvaluator(WithResolution(MinResolution))
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	defer e.Release()

	field := fieldFunc(func(u, v, t float32) common.Point3 { return common.Point3{} })
	if err := e.Evaluate(field, 0, make([]common.Point3, 5)); err == nil {
		t.Error("Evaluate accepted a destination shorter than the grid")
	}
}

func TestNewEvaluatorRejectsBadResolution(t *testing.T) {
	if _, err := NewEvaluator(WithResolution(2)); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("NewEvaluator(res 2) error = %v, want ErrInvalidResolution", err)
	}
}
