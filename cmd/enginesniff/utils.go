package enginesniff

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/config"
	"github.com/enginesniff/enginesniff/internal/report"
	"github.com/enginesniff/enginesniff/internal/types"
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickFloat(cli float64, local, global *float64) float64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// loadConfigs returns the global and local config files. A missing file
// yields a zero value; any other failure is returned.
func loadConfigs(localRoot string) (gcfg, lcfg config.FileConfig, err error) {
	gcfg, err = config.LoadGlobal()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return gcfg, lcfg, fmt.Errorf("global config: %w", err)
	}
	if localRoot != "" {
		lcfg, err = config.LoadLocal(localRoot)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return gcfg, lcfg, fmt.Errorf("local config: %w", err)
		}
	}
	return gcfg, lcfg, nil
}

// resolveEngines loads the engine set named by the flag or config files.
// A relative path from the local config is taken relative to localRoot.
func resolveEngines(localRoot string, lcfg, gcfg config.FileConfig) ([]types.EngineConfig, error) {
	path := flagEngines
	if path == "" && lcfg.Engines != nil && *lcfg.Engines != "" {
		path = *lcfg.Engines
		if !filepath.IsAbs(path) && localRoot != "" {
			path = filepath.Join(localRoot, path)
		}
	}
	if path == "" {
		path = pickString("", nil, gcfg.Engines)
	}
	if path == "" {
		return config.DefaultEngines(), nil
	}
	engines, err := config.LoadEngines(path)
	if err != nil {
		return nil, err
	}
	return engines, nil
}

type outputFormat int

const (
	formatTable outputFormat = iota
	formatText
	formatJSON
)

func writeReport(w io.Writer, rep classify.Report, format outputFormat, opts report.PrintOptions) error {
	switch format {
	case formatJSON:
		if err := report.WriteJSON(w, rep, opts.Explain); err != nil {
			return fmt.Errorf("json error: %w", err)
		}
	case formatText:
		report.PrintText(w, rep, opts)
	default:
		report.PrintTable(w, rep, opts)
	}
	return nil
}
