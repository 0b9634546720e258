package fbxview

import (
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const DefaultConfigPath = "~/.fbxview.toml"

type Config struct {
	Convert ConvertConfig `toml:"converter"`
	Reader  ReaderConfig  `toml:"reader"`
	Render  RenderConfig  `toml:"render"`
	Log     LogConfig     `toml:"log"`
}

type ConvertConfig struct {
	// Command is the external dump tool, e.g. "readFbxInfo.exe {input}".
	Command string `toml:"command"`
	Dir     string `toml:"dir"`

	// InProcess uses the built-in FBX reader instead of Command.
	InProcess bool `toml:"in_process"`
	Overwrite bool `toml:"overwrite"`
}

type ReaderConfig struct {
	Pairing string `toml:"pairing"` // "counter" or "id"
	Color   string `toml:"color"`
}

type RenderConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Margin     int     `toml:"margin"`
	Background string  `toml:"background"`
	LineWidth  float64 `toml:"line_width"`

	// Underlay is an image drawn beneath the wireframe.
	Underlay string `toml:"underlay"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			Command:   "readFbxInfo.exe " + InputPlaceholder,
			InProcess: true,
		},
		Reader: ReaderConfig{
			Pairing: "counter",
			Color:   DefaultColor,
		},
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			Margin:     20,
			Background: "w",
			LineWidth:  1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads a TOML file over the defaults. "~" is expanded.
func LoadConfig(path string) (*Config, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", p)
	}
	return cfg, nil
}

func (cfg *Config) Save(path string) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

func (cfg *Config) Converter() Converter {
	c := cfg.Convert
	if c.InProcess || c.Command == "" {
		return NewFbxConverter()
	}
	dir := c.Dir
	if d, err := homedir.Expand(dir); err == nil {
		dir = d
	}
	return NewExecConverter(c.Command, dir)
}

func (cfg *Config) TreeReader() (*TreeReader, error) {
	p, err := PairingFor(cfg.Reader.Pairing)
	if err != nil {
		return nil, err
	}
	tr := &TreeReader{Pairing: p}
	if cfg.Reader.Color != "" {
		tr.Options = append(tr.Options, WithColor(cfg.Reader.Color))
	}
	return tr, nil
}

func (cfg *Config) Canvas() (*Canvas, error) {
	r := cfg.Render
	cv := NewCanvas(r.Width, r.Height)
	cv.Margin = r.Margin
	cv.LineWidth = r.LineWidth
	if c, ok := ParseColor(r.Background); ok {
		cv.Background = c
	}
	if r.Underlay != "" {
		p, err := homedir.Expand(r.Underlay)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cv.Underlay, err = readImage(f, FormatOf(p)); err != nil {
			return nil, errors.Wrapf(err, "underlay %s", p)
		}
	}
	return cv, nil
}

// Logger builds a text logger at the configured level.
func (cfg *Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
}
