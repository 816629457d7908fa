package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/LiMingML/ToolProject/heatmap"
	json5 "github.com/KevinWang15/go-json5"
)

const (
	defaultConfigPath = "config.json"
	defaultDataPath   = "data/Co_loading_calculated-after HNO3.txt"
)

// Config is the validated content of the configuration file.
type Config struct {
	FilePath      string
	Sep           string
	Region        []int // nil selects the default region
	Unit          string
	ColorbarLabel string
	ShowValues    bool
	Windows       []int
	DPI           int
	FontSize      float64
	Output        string
}

// ConfigError reports a configuration file that cannot be read, parsed or
// validated. Key names the offending entry when there is one.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DefaultConfig is what every key falls back to. The region is deliberately
// left unset so the default-region rule applies.
func DefaultConfig() Config {
	return Config{
		FilePath:   defaultDataPath,
		Sep:        heatmap.DefaultDelimiter,
		Unit:       "Co loading",
		ShowValues: true,
		Windows:    append([]int(nil), heatmap.DefaultWindows...),
		DPI:        100,
		FontSize:   10,
	}
}

// defaultConfigTable is written out when the GUI finds no configuration file.
func defaultConfigTable() map[string]interface{} {
	return map[string]interface{}{
		"sep":      heatmap.DefaultDelimiter,
		"filepath": defaultDataPath,
		"region":   []interface{}{140.0, 120.0, 85.0, 100.0},
	}
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LoadConfig reads and validates the json5 file at path. A missing file is a
// *ConfigError that unwraps to fs.ErrNotExist.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	cfg, _, err := ParseConfig(data, path)
	return cfg, err
}

// LoadConfigOrDefault is LoadConfig, except that a missing file yields
// DefaultConfig.
func LoadConfigOrDefault(path string) (cfg Config, found bool, err error) {
	cfg, err = LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), false, nil
	}
	return cfg, err == nil, err
}

// ParseConfig parses json5 text and merges it over DefaultConfig key by key.
// It also returns the raw table so callers can save it back unchanged.
func ParseConfig(data []byte, path string) (Config, map[string]interface{}, error) {
	var jsonTable map[string]interface{}
	if err := json5.Unmarshal(data, &jsonTable); err != nil {
		return Config{}, nil, &ConfigError{Path: path, Err: fmt.Errorf("format error: %w", err)}
	}
	if jsonTable == nil {
		return Config{}, nil, &ConfigError{Path: path, Err: errors.New("not a json object")}
	}

	cfg := DefaultConfig()
	if key, err := validateConfigTable(jsonTable, &cfg); err != nil {
		return Config{}, nil, &ConfigError{Path: path, Key: key, Err: err}
	}
	return cfg, jsonTable, nil
}

// validateConfigTable fills cfg from jsonTable. On failure it returns the key
// at fault.
func validateConfigTable(jsonTable map[string]interface{}, cfg *Config) (string, error) {
	if v, ok := getLeafValue(jsonTable, "filepath"); ok {
		s, ok := v.(string)
		if !ok {
			return "filepath", errors.New("is not a string")
		}
		if s == "" {
			return "filepath", errors.New("is empty")
		}
		cfg.FilePath = s
	}

	if v, ok := getLeafValue(jsonTable, "sep"); ok {
		s, ok := v.(string)
		if !ok {
			return "sep", errors.New("is not a string")
		}
		cfg.Sep = s
	}

	if v, ok := getLeafValue(jsonTable, "region"); ok && v != nil {
		region, err := intList(v)
		if err != nil {
			return "region", err
		}
		if len(region) != 4 {
			return "region", fmt.Errorf("needs 4 values [x, y, width, height], got %d", len(region))
		}
		cfg.Region = region
	}

	for _, key := range []string{"unit", "colorbar_label", "output"} {
		v, ok := getLeafValue(jsonTable, key)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return key, errors.New("is not a string")
		}
		switch key {
		case "unit":
			cfg.Unit = s
		case "colorbar_label":
			cfg.ColorbarLabel = s
		case "output":
			cfg.Output = s
		}
	}

	if v, ok := getLeafValue(jsonTable, "show_values"); ok {
		b, ok := v.(bool)
		if !ok {
			return "show_values", errors.New("is not a bool")
		}
		cfg.ShowValues = b
	}

	if v, ok := getLeafValue(jsonTable, "windows"); ok {
		windows, err := intList(v)
		if err != nil {
			return "windows", err
		}
		for _, w := range windows {
			if w < 1 {
				return "windows", fmt.Errorf("%w: got %d", heatmap.ErrInvalidWindow, w)
			}
		}
		if len(windows) > 0 {
			cfg.Windows = windows
		}
	}

	if v, ok := getLeafValue(jsonTable, "dpi"); ok {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) || f < 1 {
			return "dpi", errors.New("is not a positive integer")
		}
		cfg.DPI = int(f)
	}

	if v, ok := getLeafValue(jsonTable, "font_size"); ok {
		f, ok := v.(float64)
		if !ok || f <= 0 {
			return "font_size", errors.New("is not a positive number")
		}
		cfg.FontSize = f
	}

	return "", nil
}

// intList converts a decoded json array of whole numbers.
func intList(v interface{}) ([]int, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("is not an array")
	}
	out := make([]int, len(arr))
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("element %d is not an integer", i)
		}
		out[i] = int(f)
	}
	return out, nil
}

// SaveConfigTable writes jsonTable as indented JSON, which every json5 reader
// accepts.
func SaveConfigTable(path string, jsonTable map[string]interface{}) error {
	data, err := json.MarshalIndent(jsonTable, "", "    ")
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// Request turns the configuration into a pipeline request.
func (c Config) Request() (heatmap.Request, error) {
	req := heatmap.Request{
		DataPath:   c.FilePath,
		Delimiter:  c.Sep,
		Windows:    c.Windows,
		HideValues: !c.ShowValues,
		OutputPath: c.Output,
		Render:     heatmap.DefaultRenderConfig(),
	}
	if c.Region != nil {
		r, err := heatmap.RegionFromSlice(c.Region)
		if err != nil {
			return heatmap.Request{}, err
		}
		req.Region = &r
	}

	req.Render.UnitLabel = heatmap.ParseUnit(c.Unit).Label()
	if c.ColorbarLabel != "" {
		req.Render.UnitLabel = c.ColorbarLabel
	}
	if c.DPI > 0 {
		req.Render.DPI = c.DPI
	}
	if c.FontSize > 0 {
		req.Render.FontSize = c.FontSize
	}
	return req, nil
}
