package config

// ChromeConfig defines how the headless browser is launched and supervised
type ChromeConfig struct {
	BinaryPath       string   `json:"binary_path,omitempty" yaml:"binary_path,omitempty" validate:"omitempty,fileexists"`
	DebugPort        int      `json:"debug_port,omitempty" yaml:"debug_port,omitempty" validate:"gte=1,lte=65535"`
	UserDataDir      string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	ExtraFlags       []string `json:"extra_flags,omitempty" yaml:"extra_flags,omitempty"`
	StartTimeoutSecs int      `json:"start_timeout_secs,omitempty" yaml:"start_timeout_secs,omitempty" validate:"gte=0"`
	KillTimeoutSecs  int      `json:"kill_timeout_secs,omitempty" yaml:"kill_timeout_secs,omitempty" validate:"gte=0"`
}

// NewDefaultChromeConfig creates default chrome supervision configuration.
// BinaryPath empty means auto-discovery; UserDataDir empty means a throwaway
// temp profile.
func NewDefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		BinaryPath:       "",
		DebugPort:        DefaultChromePort,
		UserDataDir:      "",
		ExtraFlags:       nil,
		StartTimeoutSecs: DefaultChromeStartTimeoutSecs,
		KillTimeoutSecs:  DefaultChromeKillTimeoutSecs,
	}
}
