// Package stream publishes the animated graph to the outside world. A Streamer samples the
// surface on the CPU at a low resolution and fans each Snapshot out to its sinks: an MQTT
// topic and a WebSocket hub.
package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// SnapshotVersion is the first byte of every binary snapshot.
const SnapshotVersion = 1

// snapshotHeaderSize is the size of the fixed binary header preceding the points.
const snapshotHeaderSize = 17

const flagTransitioning = 1 << 0

// ErrClosed is returned when publishing to a sink or streamer that has been closed.
var ErrClosed = errors.New("stream closed")

// Snapshot is one published frame of the graph.
type Snapshot struct {
	// Time is the graph time in seconds.
	Time float32

	// Frame is the animator frame the snapshot was taken from.
	Frame graph.Frame

	// Tint is the palette colour of the frame.
	Tint [3]uint8

	// Resolution is the number of sampled points per edge. Zero when no points were sampled.
	Resolution int

	// Points holds Resolution² positions in grid index order.
	Points []common.Point3
}

// MarshalBinary encodes the snapshot as little-endian bytes: version, current kind, target
// kind, flags, time, weight, RGB tint, resolution (u16), then three f32 per point.
//
// Returns:
//   - []byte: the encoded snapshot
//   - error: an error if the resolution does not fit or does not match the points
func (s Snapshot) MarshalBinary() ([]byte, error) {
	if s.Resolution < 0 || s.Resolution > math.MaxUint16 {
		return nil, fmt.Errorf("snapshot resolution %d out of range", s.Resolution)
	}
	if len(s.Points) != s.Resolution*s.Resolution {
		return nil, fmt.Errorf("snapshot has %d points, resolution %d needs %d", len(s.Points), s.Resolution, s.Resolution*s.Resolution)
	}

	data := make([]byte, snapshotHeaderSize, snapshotHeaderSize+len(s.Points)*12)
	data[0] = SnapshotVersion
	data[1] = byte(s.Frame.Current)
	data[2] = byte(s.Frame.Target)
	if s.Frame.Transitioning {
		data[3] |= flagTransitioning
	}
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(s.Time))
	binary.LittleEndian.PutUint32(data[8:], math.Float32bits(s.Frame.Weight))
	copy(data[12:15], s.Tint[:])
	binary.LittleEndian.PutUint16(data[15:], uint16(s.Resolution))

	for _, p := range s.Points {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(p.X))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(p.Y))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(p.Z))
	}
	return data, nil
}

// UnmarshalBinary decodes a snapshot written by MarshalBinary. Progress is not part of the
// binary form and decodes as zero.
//
// Parameters:
//   - data: the encoded snapshot
//
// Returns:
//   - error: an error if the data is truncated, has an unknown version or unknown kinds
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) < snapshotHeaderSize {
		return fmt.Errorf("snapshot truncated: %d bytes", len(data))
	}
	if data[0] != SnapshotVersion {
		return fmt.Errorf("unknown snapshot version %d", data[0])
	}
	current, err := surface.FromIndex(int(data[1]))
	if err != nil {
		return err
	}
	target, err := surface.FromIndex(int(data[2]))
	if err != nil {
		return err
	}

	res := int(binary.LittleEndian.Uint16(data[15:]))
	if want := snapshotHeaderSize + res*res*12; len(data) != want {
		return fmt.Errorf("snapshot length %d, resolution %d needs %d", len(data), res, want)
	}

	*s = Snapshot{
		Time: math.Float32frombits(binary.LittleEndian.Uint32(data[4:])),
		Frame: graph.Frame{
			Current:       current,
			Target:        target,
			Transitioning: data[3]&flagTransitioning != 0,
			Weight:        math.Float32frombits(binary.LittleEndian.Uint32(data[8:])),
		},
		Tint:       [3]uint8{data[12], data[13], data[14]},
		Resolution: res,
		Points:     make([]common.Point3, res*res),
	}
	for i := range s.Points {
		off := snapshotHeaderSize + i*12
		s.Points[i] = common.Point3{
			X: math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
		}
	}
	return nil
}

// snapshotJSON is the JSON shape sent to WebSocket clients.
type snapshotJSON struct {
	Time          float32      `json:"time"`
	Current       string       `json:"current"`
	Target        string       `json:"target"`
	Transitioning bool         `json:"transitioning"`
	Progress      float32      `json:"progress"`
	Weight        float32      `json:"weight"`
	Tint          string       `json:"tint"`
	Resolution    int          `json:"resolution"`
	Points        [][3]float32 `json:"points"`
}

// MarshalJSON encodes the snapshot with surface names and a "#rrggbb" tint.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Time:          s.Time,
		Current:       s.Frame.Current.String(),
		Target:        s.Frame.Target.String(),
		Transitioning: s.Frame.Transitioning,
		Progress:      s.Frame.Progress,
		Weight:        s.Frame.Weight,
		Tint:          fmt.Sprintf("#%02x%02x%02x", s.Tint[0], s.Tint[1], s.Tint[2]),
		Resolution:    s.Resolution,
		Points:        make([][3]float32, len(s.Points)),
	}
	for i, p := range s.Points {
		out.Points[i] = p.Array()
	}
	return json.Marshal(out)
}

// Sink receives snapshots from a Streamer.
type Sink interface {
	// Publish delivers one snapshot. It may block until the snapshot is delivered. The
	// snapshot's Points are reused after Publish returns.
	Publish(s Snapshot) error

	// Close releases the sink. Publish must not be called afterwards.
	Close() error
}
