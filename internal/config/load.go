package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads a config file on top of DefaultConfig. The format follows the
// extension: .yaml/.yml for YAML, .json/.jsonc for JSON with comments.
func Load(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(filepath.Ext(file), data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", file, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext on top of DefaultConfig.
func Parse(ext string, data []byte) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := jsonc.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// Fetch downloads the config file at src into dir and returns its local
// path. src is any go-getter address: a local path, an http(s) URL, or a
// forced getter such as git::https://host/repo//biomes/hills.yaml.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}

	dst := filepath.Join(dir, sourceName(src))
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch config %s: %w", src, err)
	}
	return dst, nil
}

// LoadSource loads src directly when it names an existing local file and
// fetches it into cacheDir first otherwise.
func LoadSource(ctx context.Context, src, cacheDir string) (*Config, error) {
	if fi, err := os.Stat(src); err == nil && !fi.IsDir() {
		return Load(src)
	}
	local, err := Fetch(ctx, src, cacheDir)
	if err != nil {
		return nil, err
	}
	return Load(local)
}

// sourceName returns the file name a go-getter address points at.
func sourceName(src string) string {
	s := src
	if i := strings.Index(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	}
	if i := strings.LastIndex(s, "//"); i >= 0 {
		s = s[i+2:]
	}
	name := path.Base(filepath.ToSlash(s))
	if name == "." || name == "/" {
		return "config.yaml"
	}
	return name
}
