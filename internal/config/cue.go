package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ParseCUE compiles a CUE configuration, unifies it with the #Run schema
// (which supplies defaults and closes the struct), decodes and validates it.
func ParseCUE(raw []byte, filename string) (Run, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Run{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	user := ctx.CompileBytes(raw, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Run{}, cueError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Run")).Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Run{}, cueError(err)
	}

	var run Run
	if err := v.Decode(&run); err != nil {
		return Run{}, cueError(err)
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// cueError converts the first CUE error to an Error with position info.
func cueError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Code: ErrCodeSchema, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{Code: ErrCodeSchema, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
