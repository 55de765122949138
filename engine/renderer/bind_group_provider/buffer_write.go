package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Valid reports whether the write has somewhere to land and something to write.
//
// Returns:
//   - bool: true if the provider has a buffer at the binding and there is data to write
func (w BufferWrite) Valid() bool {
	return w.Provider != nil && w.Provider.Buffer(w.Binding) != nil && len(w.Data) > 0
}
