package gpu

// AccessFlags describes how a resource was (or will be) accessed by a
// dispatched kernel or a transfer, the Go-native equivalent of
// VkAccessFlags. BarrierAndUpdate compares the resource's current mask
// against the requested one to decide whether a barrier is needed.
type AccessFlags uint32

const (
	AccessNone AccessFlags = 0
	// AccessTransferRead/Write cover staging copies in and out of an
	// Image/Buffer.
	AccessTransferRead AccessFlags = 1 << iota
	AccessTransferWrite
	// AccessShaderRead/Write cover storage-buffer/storage-image access by
	// a dispatched kernel.
	AccessShaderRead
	AccessShaderWrite
	// AccessHostRead/Write cover a host-visible staging mapping being read
	// or written directly by the CPU.
	AccessHostRead
	AccessHostWrite
)

// iota above starts counting from AccessNone (line 0), so
// AccessTransferRead is 1<<1 and the mask tops out at AccessHostWrite =
// 1<<6; this just needs to be internally consistent, since no wire format
// or external ABI depends on the concrete bit positions.

// ImageLayout is the Go-native equivalent of VkImageLayout. Pyramid images
// alternate between Undefined (at creation) and General (once a kernel or
// transfer has touched them) per §5.
type ImageLayout int

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutGeneral
	ImageLayoutTransferSrc
	ImageLayoutTransferDst
)

// Format identifies the texel format of an Image.
type Format int

const (
	// FormatR8Unorm is the staged 8-bit grayscale input format.
	FormatR8Unorm Format = iota
	// FormatR32Float backs fp32 scale-space planes.
	FormatR32Float
	// FormatR16Float backs fp16 scale-space planes (PrecisionFloat16).
	FormatR16Float
)

// BytesPerTexel returns the per-pixel size of a Format.
func (f Format) BytesPerTexel() int {
	switch f {
	case FormatR8Unorm:
		return 1
	case FormatR16Float:
		return 2
	case FormatR32Float:
		return 4
	default:
		return 4
	}
}

// MemoryPropertyFlags mirrors VkMemoryPropertyFlagBits: the bits a caller
// requires a memory type to satisfy (§4.1 "first memory type matching the
// requested property bits").
type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal MemoryPropertyFlags = 1 << iota
	MemoryPropertyHostVisible
	MemoryPropertyHostCoherent
)

// BufferUsage mirrors VkBufferUsageFlagBits for the subset of usages this
// module needs.
type BufferUsage uint32

const (
	BufferUsageStorage BufferUsage = 1 << iota
	BufferUsageUniform
	BufferUsageTransferSrc
	BufferUsageTransferDst
)
