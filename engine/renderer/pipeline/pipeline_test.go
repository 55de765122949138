package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestRenderPipelineLayout(t *testing.T) {
	s, err := shader.NewShader(shader.ShaderTypeRender)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	p, err := NewPipeline("graph_render", s, WithCullMode(wgpu.CullModeNone))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.Type() != PipelineTypeRender {
		t.Errorf("Type = %v, want render", p.Type())
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("CullMode = %v, want none", p.CullMode())
	}
	if p.Pipeline().(*wgpu.RenderPipeline) != nil {
		t.Error("render pipeline set before registration")
	}

	desc := p.BindGroupLayoutDescriptor()
	want := []wgpu.BufferBindingType{
		wgpu.BufferBindingTypeUniform,
		wgpu.BufferBindingTypeUniform,
		wgpu.BufferBindingTypeReadOnlyStorage,
	}
	if len(desc.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(desc.Entries), len(want))
	}
	for i, e := range desc.Entries {
		if e.Binding != uint32(i) || e.Buffer.Type != want[i] {
			t.Errorf("entry %d = binding %d type %v, want binding %d type %v", i, e.Binding, e.Buffer.Type, i, want[i])
		}
		if e.Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
			t.Errorf("entry %d visibility = %v, want vertex|fragment", i, e.Visibility)
		}
	}
}

func TestComputePipelineLayout(t *testing.T) {
	s, err := shader.NewShader(shader.ShaderTypeCompute)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	p, err := NewPipeline("graph_compute", s)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.Type() != PipelineTypeCompute || p.Visibility() != wgpu.ShaderStageCompute {
		t.Errorf("Type/Visibility = %v/%v, want compute", p.Type(), p.Visibility())
	}
	desc := p.BindGroupLayoutDescriptor()
	if len(desc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(desc.Entries))
	}
	if desc.Entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform || desc.Entries[1].Buffer.Type != wgpu.BufferBindingTypeStorage {
		t.Errorf("entry types = %v/%v, want uniform/storage", desc.Entries[0].Buffer.Type, desc.Entries[1].Buffer.Type)
	}
}

func TestNewPipelineRejectsInvalidShaders(t *testing.T) {
	if _, err := NewPipeline("none", nil); err == nil {
		t.Error("NewPipeline accepted a nil shader")
	}

	src := "//@oxy:include graph_params\n//@oxy:group 1 0 storage_uniform params graph_params\n@compute @workgroup_size(1) fn main() {}\n"
	s, err := shader.NewShaderFromSource("group1", shader.ShaderTypeCompute, src)
	if err != nil {
		t.Fatalf("NewShaderFromSource: %v", err)
	}
	if _, err := NewPipeline("group1", s); !errors.Is(err, ErrUnsupportedGroup) {
		t.Errorf("NewPipeline error = %v, want ErrUnsupportedGroup", err)
	}
}

func TestPipelineOptions(t *testing.T) {
	s, err := shader.NewShader(shader.ShaderTypeRender)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	tests := []struct {
		name      string
		opts      []PipelineBuilderOption
		test      bool
		write     bool
		cull      wgpu.CullMode
		frontFace wgpu.FrontFace
	}{
		{"defaults", nil, true, true, wgpu.CullModeBack, wgpu.FrontFaceCCW},
		{"read-only depth", []PipelineBuilderOption{WithDepth(true, false)}, true, false, wgpu.CullModeBack, wgpu.FrontFaceCCW},
		{"double sided cw", []PipelineBuilderOption{WithCullMode(wgpu.CullModeNone), WithFrontFace(wgpu.FrontFaceCW)}, true, true, wgpu.CullModeNone, wgpu.FrontFaceCW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline("graph_render", s, tt.opts...)
			if err != nil {
				t.Fatalf("NewPipeline: %v", err)
			}
			if p.DepthTestEnabled() != tt.test || p.DepthWriteEnabled() != tt.write {
				t.Errorf("depth = %v/%v, want %v/%v", p.DepthTestEnabled(), p.DepthWriteEnabled(), tt.test, tt.write)
			}
			if p.CullMode() != tt.cull || p.FrontFace() != tt.frontFace {
				t.Errorf("cull/front = %v/%v, want %v/%v", p.CullMode(), p.FrontFace(), tt.cull, tt.frontFace)
			}
			if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.WriteMask() != wgpu.ColorWriteMaskAll {
				t.Errorf("topology/mask = %v/%v", p.Topology(), p.WriteMask())
			}
		})
	}
}
