package config

import (
	_ "embed"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

// PipeFail selects how a pipeline's status is computed.
type PipeFail string

const (
	// PipeFailLast uses the status of the last command.
	PipeFailLast PipeFail = "last"
	// PipeFailAny uses the status of the rightmost command that failed.
	PipeFailAny PipeFail = "any"
)

type Configuration struct {
	ShellName        string   `json:"shell_name" validate:"required"`
	Interactive      bool     `json:"interactive"`
	MaxFunctionDepth int      `json:"max_function_depth" validate:"gte=1"`
	PipeFail         PipeFail `json:"pipefail" validate:"oneof=last any"`
	WorkerPoolSize   int      `json:"worker_pool_size" validate:"gte=1,lte=1024"`
	DefaultPath      string   `json:"default_path" validate:"required"`
	LogLevel         string   `json:"log_level" validate:"oneof=debug info warn error"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// PipeFailAny reports whether any failing pipeline member fails the pipeline.
func (c *Configuration) PipeFailAny() bool {
	return c.PipeFail == PipeFailAny
}

// Level converts LogLevel for slog.
func (c *Configuration) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// Default returns the built in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
