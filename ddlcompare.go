// Package ddlcompare parses CREATE TABLE declarations and computes the
// migration script that turns one schema into another.
//
//	src := ddlcompare.Parse(sourceSQL)
//	dst := ddlcompare.Parse(destSQL)
//	res, err := ddlcompare.Compare(src, dst, ddlcompare.Options{DetectDrops: true})
//
// The script never touches a database; it is plain text meant to be
// reviewed and applied by other tools.
package ddlcompare

import (
	"fmt"

	"github.com/rivaiamin/ddl-compare/diff"
	"github.com/rivaiamin/ddl-compare/generator"
	"github.com/rivaiamin/ddl-compare/parser"
	"github.com/rivaiamin/ddl-compare/schema"
)

type (
	Options = diff.Options
	Stats   = diff.Stats
)

// Result is a rendered comparison.
type Result struct {
	Script     string           `json:"script" yaml:"script"`
	Stats      Stats            `json:"stats" yaml:"stats"`
	Operations []diff.Operation `json:"-" yaml:"-"`
}

// Parse turns declaration text into a schema. It never fails: text without
// any CREATE TABLE statement yields an empty schema.
func Parse(text string) *schema.Schema {
	return parser.Parse(text)
}

// Compare computes the operations that turn dest into source and renders
// them as a migration script.
func Compare(source, dest *schema.Schema, opts Options) (*Result, error) {
	res := diff.Compare(source, dest, opts)
	script, err := generator.Script(res.Operations)
	if err != nil {
		return nil, fmt.Errorf("rendering script: %w", err)
	}
	return &Result{Script: script, Stats: res.Stats, Operations: res.Operations}, nil
}

// CompareText parses both declaration texts and compares them.
func CompareText(source, dest string, opts Options) (*Result, error) {
	return Compare(Parse(source), Parse(dest), opts)
}
