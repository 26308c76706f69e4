package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

//go:embed schema.cue
var schemaCUE string

// Validate checks the configuration against the embedded CUE schema and
// verifies the restock table builds into a schedule.
func (c Config) Validate() error {
	if c.Restock.Times == nil {
		c.Restock.Times = []inventory.RestockTime{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("compile config value: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}

	if _, err := c.Schedule(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
