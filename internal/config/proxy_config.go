package config

// ProxyConfig defines the reverse proxy site that fronts the browser's
// debugging endpoint
type ProxyConfig struct {
	ListenPort  int    `json:"listen_port,omitempty" yaml:"listen_port,omitempty" validate:"gte=1,lte=65535"`
	ChromePort  int    `json:"chrome_port,omitempty" yaml:"chrome_port,omitempty" validate:"gte=1,lte=65535"`
	HealthPath  string `json:"health_path,omitempty" yaml:"health_path,omitempty" validate:"omitempty,startswith=/"`
	SitePath    string `json:"site_path,omitempty" yaml:"site_path,omitempty"`
	NginxBinary string `json:"nginx_binary,omitempty" yaml:"nginx_binary,omitempty"`
}

// NewDefaultProxyConfig creates default proxy site configuration
func NewDefaultProxyConfig() ProxyConfig {
	return ProxyConfig{
		ListenPort:  DefaultProxyListenPort,
		ChromePort:  DefaultChromePort,
		HealthPath:  DefaultProxyHealthPath,
		SitePath:    DefaultProxySitePath,
		NginxBinary: DefaultNginxBinary,
	}
}
