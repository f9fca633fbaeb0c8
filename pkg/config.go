package toy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
)

type RecoveryPolicy string

const (
	// RecoverySkip drops exactly one token after a failed unit and continues.
	RecoverySkip RecoveryPolicy = "skip"
	// RecoverySkipParse drops one token only when a unit failed to parse. A
	// unit that parsed but failed lowering already consumed its tokens.
	RecoverySkipParse RecoveryPolicy = "skip-parse"
	// RecoveryAbort stops compiling at the first failed unit.
	RecoveryAbort RecoveryPolicy = "abort"
)

type Config struct {
	ModuleName   string
	Recovery     RecoveryPolicy
	Extern       bool
	CheckArity   bool
	StrictParams bool
	Verify       bool
	Optimize     bool
	Precedence   map[string]int
}

var DefaultConfig = Config{
	ModuleName: "toy",
	Recovery:   RecoverySkip,
	CheckArity: true,
	Verify:     true,
	Optimize:   true,
	Precedence: defaultPrecedence,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

func LoadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer f.Close()

	err = DecodeConfig(bufio.NewReader(f), cfg)
	// Add file name to errors that have a line number.
	if _, ok := errors.Cause(err).(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}

	return err
}

func DecodeConfig(r io.Reader, cfg *Config) error {
	// A table in the file replaces the current one instead of extending it.
	prev := cfg.Precedence
	cfg.Precedence = nil

	if err := tomlSettings.NewDecoder(r).Decode(cfg); err != nil {
		cfg.Precedence = prev
		return err
	}

	if cfg.Precedence == nil {
		cfg.Precedence = prev
	}

	return cfg.Validate()
}

func EncodeConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

func (c *Config) Validate() error {
	switch c.Recovery {
	case RecoverySkip, RecoverySkipParse, RecoveryAbort:
	default:
		return fmt.Errorf("unknown recovery policy %q", c.Recovery)
	}

	_, err := c.PrecedenceTable()
	return err
}

func (c *Config) PrecedenceTable() (*PrecedenceTable, error) {
	if c.Precedence == nil {
		return DefaultPrecedence(), nil
	}

	return NewPrecedenceTable(c.Precedence)
}
