// Package tools bundles the stock tool implementations: calculator, text
// transformation and analysis, mock weather, the countdown streaming
// demonstration, and the remote-forwarding proxy.
package tools

import (
	"github.com/callwire/callwire"
	"github.com/callwire/callwire/cache"
)

// RegisterAll registers every bundled tool on r. results backs the proxy's
// client-side result cache and may be nil.
func RegisterAll(r *callwire.Registry, results *cache.ResultCache) error {
	if err := RegisterCalculator(r); err != nil {
		return err
	}
	if err := RegisterText(r); err != nil {
		return err
	}
	if err := RegisterWeather(r); err != nil {
		return err
	}
	if err := RegisterCountdown(r); err != nil {
		return err
	}
	return NewProxy(results).Register(r)
}
