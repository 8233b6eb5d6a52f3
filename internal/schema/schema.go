// Package schema validates the persisted documents against an embedded CUE
// schema. Loading stays lenient; this is the strict view used by the doctor
// command to explain why a file was ignored.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var source string

// Kind names a schema definition.
type Kind string

const (
	KindGoals   Kind = "#Goals"
	KindConfig  Kind = "#Config"
	KindCheckIn Kind = "#CheckIn"
)

// Issue is one schema violation.
type Issue struct {
	Message string
	Pos     token.Pos
}

func (i Issue) String() string {
	if i.Pos.IsValid() {
		return fmt.Sprintf("%d:%d: %s", i.Pos.Line(), i.Pos.Column(), i.Message)
	}
	return i.Message
}

// Error reports every violation found in one document.
type Error struct {
	File   string
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: %s", e.File, e.Issues[0])
	}
	return fmt.Sprintf("%s: %d problems, first: %s", e.File, len(e.Issues), e.Issues[0])
}

// Validator holds the compiled schema. It is not safe for concurrent use.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

// Validate checks data, a JSON document named file, against kind.
func (v *Validator) Validate(kind Kind, file string, data []byte) error {
	def := v.schema.LookupPath(cue.ParsePath(string(kind)))
	if !def.Exists() {
		return fmt.Errorf("unknown schema %s", kind)
	}

	expr, err := cuejson.Extract(file, data)
	if err != nil {
		return newError(file, err)
	}
	doc := v.ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return newError(file, err)
	}
	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return newError(file, err)
	}
	return nil
}

// ValidateFile reads path and validates it. A missing file is reported as
// os.ErrNotExist so callers can treat it as "not created yet".
func (v *Validator) ValidateFile(kind Kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return v.Validate(kind, filepath.Base(path), data)
}

func newError(file string, err error) *Error {
	out := &Error{File: file}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := e.Path(); len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
		out.Issues = append(out.Issues, Issue{Message: msg, Pos: e.Position()})
	}
	if len(out.Issues) == 0 {
		out.Issues = []Issue{{Message: err.Error()}}
	}
	return out
}

// IsSchemaError reports whether err carries schema violations.
func IsSchemaError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
