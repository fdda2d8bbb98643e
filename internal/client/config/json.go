package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/admagic/internal/flagx"
	"github.com/dmitrijs2005/admagic/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals go
// through timex.Duration so they may be written as "60s" or as integer
// nanoseconds.
type JsonConfig struct {
	APIBaseURL         string         `json:"api_base_url"`
	DatabasePath       string         `json:"database_path"`
	RevalidateInterval timex.Duration `json:"revalidate_interval"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	Ephemeral          *bool          `json:"ephemeral"`
}

// parseJson overlays Config with values from the file named by -c or
// -config. Keys missing from the file keep their current value. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RevalidateInterval.Duration != 0 {
		cfg.RevalidateInterval = jc.RevalidateInterval.Duration
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Ephemeral != nil {
		cfg.Ephemeral = *jc.Ephemeral
	}
}
