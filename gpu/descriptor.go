package gpu

// BufferDescriptor describes how to create a Buffer.
type BufferDescriptor struct {
	Label      string
	Size       uint64
	Usage      BufferUsage
	Properties MemoryPropertyFlags
}

// ImageDescriptor describes how to create an Image. Layers > 1 models the
// "single layered image per octave" storage choice for a scale-space
// octave (§3); Layers == 0 is normalized to 1.
type ImageDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Layers uint32
	Format Format
}

// KernelDescriptor names a compiled compute program by its stable logical
// name in the Registry (§4.1/§9 "exposes them by stable logical name").
type KernelDescriptor struct {
	Label string
	Name  string
}

// Barrier describes the memory barrier a caller must apply before its next
// access to a resource, returned by BarrierAndUpdate. It carries no real
// VkMemoryBarrier payload since the softgpu backend serializes dispatch
// through a single worker queue instead of a hardware pipeline; a real
// Vulkan backend would translate this into the matching
// VkImageMemoryBarrier/VkBufferMemoryBarrier.
type Barrier struct {
	SrcAccess AccessFlags
	DstAccess AccessFlags
	SrcLayout ImageLayout // only meaningful for images
	DstLayout ImageLayout
}
