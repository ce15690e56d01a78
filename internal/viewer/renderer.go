package viewer

import "github.com/luzcry/showroom/internal/assets"

// Renderer owns the GPU-side presentation of one mounted model. The
// controller calls Mount/Unmount as loads resolve and forwards flag changes;
// the frame loop drives drawing separately.
//
// Mount replaces any previously mounted model and must release its resources
// first. Implementations that need a specific thread for GPU work defer the
// upload to their frame call, so Mount itself may run off the main thread.
type Renderer interface {
	Mount(m *assets.Model) error
	Unmount()
	SetWireframe(on bool)
	SetAutoRotate(on bool)
	Close()
}
