package httpapi

import (
	"net/http"
	"path/filepath"

	"internhunt-engine/internal/config"
)

type ConfigHandler struct {
	Cfg         *config.Config
	UserCfgPath string
}

// Get serves the running configuration with credentials redacted.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Cfg.Redacted())
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(*h.Cfg)
	writeJSON(w, vr)
}
