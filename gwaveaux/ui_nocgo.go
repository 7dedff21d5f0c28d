//go:build tinygo || !cgo

package gwaveaux

import (
	"errors"

	"github.com/soypat/gwave/app"
)

func ui(a *app.App, cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
