package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads configuration content as JSONC: JSON with // and /* */
// comments and trailing commas tolerated. Unknown keys are errors so
// typos fail loudly. Empty content is valid and yields the base config.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, err
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, err
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// jsoncConfig overlays parsed values onto defaults; pointer fields
// distinguish "absent" from zero values.
type jsoncConfig struct {
	Sockets *jsoncSockets `json:"sockets"`
	Matrix  *jsoncMatrix  `json:"matrix"`
	Keys    *jsoncKeys    `json:"keys"`
	Log     *jsoncLog     `json:"log"`
}

type jsoncSockets struct {
	Kscan  *string `json:"kscan"`
	Events *string `json:"events"`
}

type jsoncMatrix struct {
	Columns *int `json:"columns"`
}

type jsoncKeys struct {
	PressMS    *int `json:"press_ms"`
	IntervalMS *int `json:"interval_ms"`
}

type jsoncLog struct {
	Level      *string `json:"level"`
	MaxSizeMB  *int    `json:"max_size_mb"`
	MaxBackups *int    `json:"max_backups"`
	MaxAgeDays *int    `json:"max_age_days"`
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.Sockets != nil {
		if payload.Sockets.Kscan != nil {
			cfg.Sockets.Kscan = strings.TrimSpace(*payload.Sockets.Kscan)
		}
		if payload.Sockets.Events != nil {
			cfg.Sockets.Events = strings.TrimSpace(*payload.Sockets.Events)
		}
	}

	if payload.Matrix != nil && payload.Matrix.Columns != nil {
		cfg.Matrix.Columns = *payload.Matrix.Columns
	}

	if payload.Keys != nil {
		if payload.Keys.PressMS != nil {
			cfg.Keys.PressMS = *payload.Keys.PressMS
		}
		if payload.Keys.IntervalMS != nil {
			cfg.Keys.IntervalMS = *payload.Keys.IntervalMS
		}
	}

	if payload.Log != nil {
		if payload.Log.Level != nil {
			cfg.Log.Level = strings.ToLower(strings.TrimSpace(*payload.Log.Level))
		}
		if payload.Log.MaxSizeMB != nil {
			cfg.Log.MaxSizeMB = *payload.Log.MaxSizeMB
		}
		if payload.Log.MaxBackups != nil {
			cfg.Log.MaxBackups = *payload.Log.MaxBackups
		}
		if payload.Log.MaxAgeDays != nil {
			cfg.Log.MaxAgeDays = *payload.Log.MaxAgeDays
		}
	}
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}
