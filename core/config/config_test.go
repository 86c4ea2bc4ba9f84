package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, "sh> ", cfg.Prompt)
	assert.Equal(t, "hsh_history", cfg.HistoryFile)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Configuration)
		wantErr string
	}{
		"default": {
			mutate: func(*Configuration) {},
		},
		"bad-color": {
			mutate:  func(c *Configuration) { c.Color = "sometimes" },
			wantErr: "color",
		},
		"no-prompt": {
			mutate:  func(c *Configuration) { c.Prompt = "" },
			wantErr: "prompt",
		},
		"bad-limit": {
			mutate:  func(c *Configuration) { c.HistoryLimit = -2 },
			wantErr: "history_limit",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestShouldColor(t *testing.T) {
	cfg := defaultConfig()

	cfg.Color = ColorAuto
	assert.True(t, cfg.ShouldColor(true))
	assert.False(t, cfg.ShouldColor(false))

	cfg.Color = ColorAlways
	assert.True(t, cfg.ShouldColor(false))

	cfg.Color = ColorNever
	assert.False(t, cfg.ShouldColor(true))
}

func TestOpenAppLog(t *testing.T) {
	cfg := Default(afero.NewMemMapFs())
	cfg.AppLog = "app.log"

	fd, err := cfg.OpenAppLog()
	assert.Nil(t, err)
	_, err = fd.Write([]byte("{}\n"))
	assert.Nil(t, err)
	assert.Nil(t, fd.Close())

	contents, err := afero.ReadFile(cfg.Fs(), "app.log")
	assert.Nil(t, err)
	assert.Equal(t, "{}\n", string(contents))
}
