// Package engine owns the OpenGL side of model presentation: binding
// initialization, shader compilation and the offscreen model renderer.
package engine

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/logger"
)

var (
	acquireOnce sync.Once
	acquireErr  error
)

// Acquire initializes the OpenGL bindings exactly once per process. The
// first call must run on the thread that owns a current GL context; later
// calls from anywhere return the recorded result.
func Acquire() error {
	acquireOnce.Do(func() {
		if err := gl.Init(); err != nil {
			acquireErr = fmt.Errorf("initialize OpenGL: %w", err)
			return
		}
		version := gl.GoStr(gl.GetString(gl.VERSION))
		logger.Named("engine").Info("OpenGL initialized", zap.String("version", version))
	})
	return acquireErr
}
