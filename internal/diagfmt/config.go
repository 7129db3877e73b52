package diagfmt

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
)

// Chars holds the border and connector glyphs. Any subset can be overridden;
// zero values fall back to the defaults.
type Chars struct {
	SourceBorderTopLeft   rune // ┌
	SourceBorderTop       rune // ─
	SourceBorderLeft      rune // │
	SourceBorderLeftBreak rune // ·
	NoteBullet            rune // =
	SingleCaret           rune // ^ single-line underline
	MultiTopLeft          rune // ╭
	MultiTop              rune // ─
	MultiLeft             rune // │
	MultiBottomLeft       rune // ╰
	MultiBottom           rune // ─
	MultiCap              rune // ^ cap ending a multi-line underline
}

// DefaultChars returns the box-drawing glyph set.
func DefaultChars() Chars {
	return Chars{
		SourceBorderTopLeft:   '┌',
		SourceBorderTop:       '─',
		SourceBorderLeft:      '│',
		SourceBorderLeftBreak: '·',
		NoteBullet:            '=',
		SingleCaret:           '^',
		MultiTopLeft:          '╭',
		MultiTop:              '─',
		MultiLeft:             '│',
		MultiBottomLeft:       '╰',
		MultiBottom:           '─',
		MultiCap:              '^',
	}
}

// ASCIIChars returns a seven-bit-safe glyph set for dumb terminals and logs.
func ASCIIChars() Chars {
	return Chars{
		SourceBorderTopLeft:   '/',
		SourceBorderTop:       '-',
		SourceBorderLeft:      '|',
		SourceBorderLeftBreak: '.',
		NoteBullet:            '=',
		SingleCaret:           '^',
		MultiTopLeft:          '/',
		MultiTop:              '-',
		MultiLeft:             '|',
		MultiBottomLeft:       '\\',
		MultiBottom:           '-',
		MultiCap:              '^',
	}
}

// Styles maps style roles to colors. A nil entry renders unstyled.
type Styles struct {
	Bug        *color.Color
	Error      *color.Color
	Warning    *color.Color
	Note       *color.Color
	Help       *color.Color
	Secondary  *color.Color
	Border     *color.Color
	Gutter     *color.Color
	NoteBullet *color.Color
}

// DefaultStyles returns the standard scheme: severities bold in their
// conventional colors, structure in blue.
func DefaultStyles() *Styles {
	return &Styles{
		Bug:        color.New(color.FgRed, color.Bold),
		Error:      color.New(color.FgRed, color.Bold),
		Warning:    color.New(color.FgYellow, color.Bold),
		Note:       color.New(color.FgGreen, color.Bold),
		Help:       color.New(color.FgCyan, color.Bold),
		Secondary:  color.New(color.FgBlue),
		Border:     color.New(color.FgBlue),
		Gutter:     color.New(color.FgBlue),
		NoteBullet: color.New(color.FgBlue),
	}
}

func (s *Styles) role(role StyleRole) *color.Color {
	switch role {
	case StyleBug:
		return s.Bug
	case StyleError:
		return s.Error
	case StyleWarning:
		return s.Warning
	case StyleNote:
		return s.Note
	case StyleHelp:
		return s.Help
	case StyleSecondary:
		return s.Secondary
	case StyleBorder:
		return s.Border
	case StyleGutter:
		return s.Gutter
	case StyleNoteBullet:
		return s.NoteBullet
	}
	return nil
}

// Config carries everything the renderer needs besides the diagnostic itself.
// It is read-only during rendering.
type Config struct {
	Styles *Styles
	Chars  Chars
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Styles: DefaultStyles(),
		Chars:  DefaultChars(),
	}
}

// tomlConfig is the on-disk shape. Every field is optional; unset fields keep
// their defaults.
type tomlConfig struct {
	ASCII  bool                     `toml:"ascii"`
	Chars  map[string]string        `toml:"chars"`
	Styles map[string]tomlStyleSpec `toml:"styles"`
}

type tomlStyleSpec struct {
	Fg   string `toml:"fg"`
	Bold bool   `toml:"bold"`
}

// LoadConfig reads a TOML config file and applies it over the defaults.
//
//	ascii = true
//
//	[chars]
//	single-caret = "~"
//
//	[styles.error]
//	fg = "magenta"
//	bold = true
func LoadConfig(path string) (*Config, error) {
	var raw tomlConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if raw.ASCII {
		cfg.Chars = ASCIIChars()
	}

	for name, val := range raw.Chars {
		runes := []rune(val)
		if len(runes) != 1 {
			return nil, fmt.Errorf("config %s: chars.%s must be a single character, got %q", path, name, val)
		}
		if err := setChar(&cfg.Chars, name, runes[0]); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	for name, spec := range raw.Styles {
		c, err := buildStyle(spec)
		if err != nil {
			return nil, fmt.Errorf("config %s: styles.%s: %w", path, name, err)
		}
		if err := setStyle(cfg.Styles, name, c); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	return cfg, nil
}

func setChar(chars *Chars, name string, r rune) error {
	switch name {
	case "source-border-top-left":
		chars.SourceBorderTopLeft = r
	case "source-border-top":
		chars.SourceBorderTop = r
	case "source-border-left":
		chars.SourceBorderLeft = r
	case "source-border-left-break":
		chars.SourceBorderLeftBreak = r
	case "note-bullet":
		chars.NoteBullet = r
	case "single-caret":
		chars.SingleCaret = r
	case "multi-top-left":
		chars.MultiTopLeft = r
	case "multi-top":
		chars.MultiTop = r
	case "multi-left":
		chars.MultiLeft = r
	case "multi-bottom-left":
		chars.MultiBottomLeft = r
	case "multi-bottom":
		chars.MultiBottom = r
	case "multi-cap":
		chars.MultiCap = r
	default:
		return fmt.Errorf("unknown char %q", name)
	}
	return nil
}

func setStyle(styles *Styles, name string, c *color.Color) error {
	switch name {
	case "bug":
		styles.Bug = c
	case "error":
		styles.Error = c
	case "warning":
		styles.Warning = c
	case "note":
		styles.Note = c
	case "help":
		styles.Help = c
	case "secondary":
		styles.Secondary = c
	case "border":
		styles.Border = c
	case "gutter":
		styles.Gutter = c
	case "note-bullet":
		styles.NoteBullet = c
	default:
		return fmt.Errorf("unknown style %q", name)
	}
	return nil
}

func buildStyle(spec tomlStyleSpec) (*color.Color, error) {
	attrs := make([]color.Attribute, 0, 2)
	if spec.Fg != "" {
		fg, err := parseColorName(spec.Fg)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, fg)
	}
	if spec.Bold {
		attrs = append(attrs, color.Bold)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	return color.New(attrs...), nil
}

func parseColorName(name string) (color.Attribute, error) {
	switch name {
	case "black":
		return color.FgBlack, nil
	case "red":
		return color.FgRed, nil
	case "green":
		return color.FgGreen, nil
	case "yellow":
		return color.FgYellow, nil
	case "blue":
		return color.FgBlue, nil
	case "magenta":
		return color.FgMagenta, nil
	case "cyan":
		return color.FgCyan, nil
	case "white":
		return color.FgWhite, nil
	}
	return 0, fmt.Errorf("unknown color %q", name)
}
