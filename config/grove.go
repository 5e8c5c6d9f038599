package config

import (
	core_config "github.com/grovetools/core/config"
)

// ApplyGroveExtension overlays the speechprep section of the user's grove
// configuration onto cfg. It reports whether a grove config was found.
func ApplyGroveExtension(cfg *Config) bool {
	coreCfg, err := core_config.LoadDefault()
	if err != nil {
		return false
	}
	overlay := *cfg
	if err := coreCfg.UnmarshalExtension(ExtensionKey, &overlay); err != nil {
		return false
	}
	*cfg = overlay
	return true
}
