package gpu

// Buffer and Image are typed wrappers around device resources that
// remember their own current access mask (and, for images, layout), so
// that BarrierAndUpdate can compute the correct memory barrier without a
// global state tracker. This is the direct Go translation of the original
// implementation's VulkanUtils::Buffer/Image
// (getBufferMemoryBarrierAndUpdate / getImageMemoryBarrierAndUpdate).
//
// Resource state is not safe for concurrent access: callers serialize
// externally per §5.

// Buffer is a GPU buffer allocation plus its current access mask.
type Buffer struct {
	desc   BufferDescriptor
	raw    BufferStorage
	access AccessFlags
}

// NewBuffer is called by backend packages (gpu/softgpu and, eventually, a
// real driver backend) to wrap a freshly allocated resource.
func NewBuffer(desc BufferDescriptor, raw BufferStorage) *Buffer {
	return &Buffer{desc: desc, raw: raw, access: AccessNone}
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.desc.Size }

// Label returns the buffer's debug label.
func (b *Buffer) Label() string { return b.desc.Label }

// Usage returns the buffer's usage flags.
func (b *Buffer) Usage() BufferUsage { return b.desc.Usage }

// Access returns the buffer's current access mask.
func (b *Buffer) Access() AccessFlags { return b.access }

// Storage exposes the backend-specific payload for direct reads/writes by
// a Queue implementation.
func (b *Buffer) Storage() BufferStorage { return b.raw }

// BarrierAndUpdate returns the barrier a caller must apply before the next
// access reaches dstAccess, and records dstAccess as the buffer's new
// state. Calling an operation without first applying the returned barrier
// is a programmer error (§4.1); this module's CommandBuffer recording
// always pairs the two.
func (b *Buffer) BarrierAndUpdate(dstAccess AccessFlags) Barrier {
	barrier := Barrier{SrcAccess: b.access, DstAccess: dstAccess}
	b.access = dstAccess
	return barrier
}

// Image is a 2-D, optionally layered GPU image plus its current access
// mask and layout.
type Image struct {
	desc   ImageDescriptor
	raw    ImageStorage
	access AccessFlags
	layout ImageLayout
}

// NewImage wraps a freshly allocated image resource.
func NewImage(desc ImageDescriptor, raw ImageStorage) *Image {
	layers := desc.Layers
	if layers == 0 {
		layers = 1
		desc.Layers = 1
	}
	return &Image{desc: desc, raw: raw, access: AccessNone, layout: ImageLayoutUndefined}
}

// Width, Height, Layers and Format describe the image's fixed shape.
func (img *Image) Width() uint32     { return img.desc.Width }
func (img *Image) Height() uint32    { return img.desc.Height }
func (img *Image) Layers() uint32    { return img.desc.Layers }
func (img *Image) Format() Format    { return img.desc.Format }
func (img *Image) Label() string     { return img.desc.Label }
func (img *Image) Access() AccessFlags { return img.access }
func (img *Image) Layout() ImageLayout { return img.layout }

// Storage exposes the backend-specific payload.
func (img *Image) Storage() ImageStorage { return img.raw }

// BarrierAndUpdate returns the barrier for a transition to
// (dstAccess, dstLayout) and records the new state.
func (img *Image) BarrierAndUpdate(dstAccess AccessFlags, dstLayout ImageLayout) Barrier {
	barrier := Barrier{
		SrcAccess: img.access,
		DstAccess: dstAccess,
		SrcLayout: img.layout,
		DstLayout: dstLayout,
	}
	img.access = dstAccess
	img.layout = dstLayout
	return barrier
}
