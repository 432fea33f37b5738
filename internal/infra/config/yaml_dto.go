package config

// YAMLConfig mirrors kcatflux.yaml. Pointer fields distinguish "absent" from zero.
type YAMLConfig struct {
	KcatFlux YAMLKcatFlux `yaml:"kcatflux"`
}

type YAMLKcatFlux struct {
	Directory YAMLDirectory `yaml:"directory"`
	Cache     YAMLCache     `yaml:"cache"`
	Mapping   YAMLMapping   `yaml:"mapping"`
	Kcat      YAMLKcat      `yaml:"kcat"`
	Paths     YAMLPaths     `yaml:"paths"`
}

type YAMLDirectory struct {
	ContactEmail string `yaml:"contact_email"`
	APIKey       string `yaml:"api_key"`
	Tool         string `yaml:"tool"`
	BaseURL      string `yaml:"base_url"`

	Timeout     string      `yaml:"timeout"`
	MaxRetries  *int        `yaml:"max_retries"`
	MinInterval string      `yaml:"min_interval"`
	Backoff     YAMLBackoff `yaml:"backoff"`
}

type YAMLBackoff struct {
	Initial    string   `yaml:"initial"`
	Max        string   `yaml:"max"`
	Multiplier *float64 `yaml:"multiplier"`
}

type YAMLCache struct {
	Path string `yaml:"path"`
}

type YAMLMapping struct {
	KeyColumn  string `yaml:"key_column"`
	Depth      *int   `yaml:"depth"`
	RankedOnly *bool  `yaml:"ranked_only"`
}

type YAMLKcat struct {
	MinBiGGAccuracy *float64 `yaml:"min_bigg_accuracy"`
}

type YAMLPaths struct {
	ReportsDir string `yaml:"reports_dir"`
}
