package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// DeployCmd renders deployment artifacts for the configured toolkit.
type DeployCmd struct {
	Output string `short:"o" help:"Output directory for generated files." default:"deploy" type:"path"`
	Name   string `help:"Service name used in the generated artifacts." default:"tvara"`
	Port   int    `help:"Service port in the generated artifacts. Overrides the config serve section."`
}

type deployData struct {
	Name       string
	ConfigFile string
	Port       int
	Metrics    bool
	EnvVars    []string
}

var dockerfileTmpl = template.Must(template.New("dockerfile").Parse(`FROM golang:1.23-alpine AS build
WORKDIR /src
COPY . .
RUN go build -o /out/tvara ./cmd/tvara

FROM alpine:3.20
RUN adduser -D -u 10001 {{.Name}}
USER {{.Name}}
COPY --from=build /out/tvara /usr/local/bin/tvara
COPY {{.ConfigFile}} /etc/tvara/config.yaml
EXPOSE {{.Port}}
ENTRYPOINT ["tvara", "serve", "--config", "/etc/tvara/config.yaml", "--port", "{{.Port}}"{{if .Metrics}}, "--metrics"{{end}}]
`))

var composeTmpl = template.Must(template.New("compose").Parse(`services:
  {{.Name}}:
    build: .
    ports:
      - "{{.Port}}:{{.Port}}"
{{- if .EnvVars}}
    environment:
{{- range .EnvVars}}
      - {{.}}
{{- end}}
{{- end}}
    restart: unless-stopped
`))

var systemdTmpl = template.Must(template.New("systemd").Parse(`[Unit]
Description={{.Name}} agent service
After=network-online.target
Wants=network-online.target

[Service]
ExecStart=/usr/local/bin/tvara serve --config /etc/tvara/config.yaml --port {{.Port}}{{if .Metrics}} --metrics{{end}}
EnvironmentFile=-/etc/tvara/{{.Name}}.env
Restart=on-failure
RestartSec=5
DynamicUser=yes

[Install]
WantedBy=multi-user.target
`))

func (c *DeployCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	port := cfg.Serve.Port
	if c.Port != 0 {
		port = c.Port
	}
	if port == 0 {
		port = 8080
	}

	var envVars []string
	for _, cc := range collectConnectors(cfg.Agents) {
		if cc.TokenEnv != "" {
			envVars = append(envVars, cc.TokenEnv)
		}
	}

	data := deployData{
		Name:       c.Name,
		ConfigFile: filepath.Base(cli.Config),
		Port:       port,
		Metrics:    cfg.Serve.Metrics,
		EnvVars:    envVars,
	}

	if err := os.MkdirAll(c.Output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name string
		tmpl *template.Template
	}{
		{"Dockerfile", dockerfileTmpl},
		{"docker-compose.yml", composeTmpl},
		{c.Name + ".service", systemdTmpl},
	}

	for _, f := range files {
		path := filepath.Join(c.Output, f.name)
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := f.tmpl.Execute(out, data); err != nil {
			out.Close()
			return fmt.Errorf("render %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	return nil
}
