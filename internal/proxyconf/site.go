package proxyconf

import (
	"strings"
	"text/template"

	"github.com/chromegate/chromegate/internal/config"
	"github.com/chromegate/chromegate/internal/errorwrapper"
)

// siteTemplate is the nginx server block fronting the browser's debugging
// endpoint. It answers the health path locally and forwards everything else
// to the loopback debugging port, keeping WebSocket upgrades intact.
const siteTemplate = `server {
    listen {{ .ListenPort }};
    server_name _;

    location = {{ .HealthPath }} {
        access_log off;
        add_header Content-Type text/plain;
        return 200 'healthy';
    }

    location / {
        proxy_pass http://127.0.0.1:{{ .ChromePort }};
        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
        # The debugging endpoint rejects requests with a non-local Host.
        proxy_set_header Host localhost;
        proxy_read_timeout 86400;
    }
}
`

var siteTmpl = template.Must(template.New("site").Parse(siteTemplate))

// siteData carries the values substituted into the site template.
type siteData struct {
	ListenPort int
	ChromePort int
	HealthPath string
}

// renderSite produces the nginx site for the given proxy configuration.
func renderSite(cfg config.ProxyConfig) (string, error) {
	data := siteData{
		ListenPort: cfg.ListenPort,
		ChromePort: cfg.ChromePort,
		HealthPath: cfg.HealthPath,
	}
	if data.HealthPath == "" {
		data.HealthPath = config.DefaultProxyHealthPath
	}

	var b strings.Builder
	if err := siteTmpl.Execute(&b, data); err != nil {
		return "", errorwrapper.WrapError(err, "failed to render proxy site")
	}
	return b.String(), nil
}
