package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"strings"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/voxel-terrain/internal/config"
)

func main() {
	var (
		base = flag.String("base", "", "git repository holding the presets (required)")
		dir  = flag.String("dir", "presets", "preset directory inside the repository")
		ref  = flag.String("ref", "main", "git ref to download")
		out  = flag.String("o", "./presets", "output dir path")
	)
	flag.Parse()

	if *base == "" {
		flag.Usage()
		panic("preset repository (-base) required")
	}
	if *out == "" {
		panic("output dir path required")
	}

	log.Default().Printf("start downloading presets %s", *out)

	src := fmt.Sprintf("git::%s//%s?ref=%s", *base, *dir, *ref)
	valid, err := install(context.Background(), src, *out)
	if err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading presets %s (%d valid)", *out, valid)
}

// install downloads src next to out, validates it and only then replaces
// out. A failed download or a directory without valid presets leaves out
// untouched.
func install(ctx context.Context, src, out string) (int, error) {
	out, err := filepath.Abs(out)
	if err != nil {
		return 0, err
	}
	parent := filepath.Dir(out)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return 0, err
	}
	// Staging beside out keeps the final rename on one filesystem.
	tmp, err := os.MkdirTemp(parent, ".presets-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmp)

	staged := filepath.Join(tmp, "presets")
	getters := maps.Clone(get.Getters)
	getters["file"] = &get.FileGetter{Copy: true}
	client := &get.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     staged,
		Pwd:     parent,
		Mode:    get.ClientModeDir,
		Getters: getters,
	}
	if err := client.Get(); err != nil {
		return 0, fmt.Errorf("download presets: %w", err)
	}

	valid, err := validate(staged)
	if err != nil {
		return 0, err
	}
	if valid == 0 {
		return 0, fmt.Errorf("no valid presets in %s", src)
	}

	if err := os.RemoveAll(out); err != nil {
		return 0, err
	}
	if err := os.Rename(staged, out); err != nil {
		return 0, err
	}
	return valid, nil
}

// validate counts the presets in dir that load and pass Validate, logging
// the ones that would fail at generation time.
func validate(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	valid := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json" && ext != ".jsonc") {
			continue
		}
		cfg, err := config.Load(filepath.Join(dir, e.Name()))
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			log.Default().Printf("skip preset %s: %v", e.Name(), err)
			continue
		}
		valid++
	}
	return valid, nil
}
