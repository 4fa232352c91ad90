// Package pgerrors implements the error taxonomy shared by every stage of
// the schema pipeline: lexing, parsing, assembly, introspection, planning
// and artifact I/O all report failures as one of these concrete kinds so
// the CLI can render them uniformly.
package pgerrors

import (
	"fmt"
	"strings"
)

// IOError wraps a file read/write failure with its path and cause.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("IO error when reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports a well-formed file with the wrong shape (bad JSON schema).
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error when reading %s: %s", e.Path, e.Message)
}

// LexicalError reports a tokenization failure at a specific source position.
type LexicalError struct {
	LineText   string
	LineNumber int
	ColStart   int
	ColEnd     int
}

func (e *LexicalError) Error() string {
	end := e.ColEnd
	if end < e.ColStart {
		end = e.ColStart
	}
	return fmt.Sprintf("lexical error encountered on line %d:\n  %s\n  %s%s",
		e.LineNumber, e.LineText, strings.Repeat(" ", e.ColStart), strings.Repeat("^", end-e.ColStart+1))
}

// ParseError reports one syntax error produced while parsing a single file.
// Multiple ParseErrors from the same file are aggregated by the caller.
type ParseError struct {
	File       string
	LineText   string
	LineNumber int
	ColStart   int
	ColEnd     int
	Message    string
}

func (e *ParseError) Error() string {
	end := e.ColEnd
	if end < e.ColStart {
		end = e.ColStart
	}
	return fmt.Sprintf("SQL syntax error encountered in %s on line %d: %s\n  %s\n  %s%s",
		e.File, e.LineNumber, e.Message, e.LineText,
		strings.Repeat(" ", e.ColStart), strings.Repeat("^", end-e.ColStart+1))
}

// ProjectError reports a manifest-level semantic error (e.g. a missing
// required field or an invalid script glob).
type ProjectError struct {
	Message string
}

func (e *ProjectError) Error() string { return fmt.Sprintf("project error: %s", e.Message) }

// PackageReadError reports a failure opening or unarchiving a package file.
type PackageReadError struct {
	Path string
	Err  error
}

func (e *PackageReadError) Error() string {
	return fmt.Sprintf("couldn't read package file %s: %v", e.Path, e.Err)
}

func (e *PackageReadError) Unwrap() error { return e.Err }

// PackageInternalReadError reports a failure decoding one entry inside a
// package archive.
type PackageInternalReadError struct {
	EntryName string
	Err       error
}

func (e *PackageInternalReadError) Error() string {
	return fmt.Sprintf("couldn't read part of the package file: %s: %v", e.EntryName, e.Err)
}

func (e *PackageInternalReadError) Unwrap() error { return e.Err }

// QueryTarget names one of the five introspection catalog queries.
type QueryTarget string

const (
	QueryExtensions QueryTarget = "extensions"
	QuerySchemas    QueryTarget = "schemas"
	QueryTypes      QueryTarget = "types"
	QueryFunctions  QueryTarget = "functions"
	QueryTables     QueryTarget = "tables"
)

// PackageQueryError reports a failed catalog query during introspection,
// tagged distinctly per query target as required by spec.md §4.5.
type PackageQueryError struct {
	Target QueryTarget
	Err    error
}

func (e *PackageQueryError) Error() string {
	return fmt.Sprintf("couldn't query %s: %v", e.Target, e.Err)
}

func (e *PackageQueryError) Unwrap() error { return e.Err }

// PackageFunctionArgsInspectError reports a failure parsing a function's
// argument descriptor during introspection.
type PackageFunctionArgsInspectError struct {
	Args string
	Err  error
}

func (e *PackageFunctionArgsInspectError) Error() string {
	return fmt.Sprintf("couldn't inspect function args: %s: %v", e.Args, e.Err)
}

func (e *PackageFunctionArgsInspectError) Unwrap() error { return e.Err }

// PackageFunctionReturnTypeInspectError reports a failure parsing a
// function's return-type descriptor during introspection.
type PackageFunctionReturnTypeInspectError struct {
	ReturnType string
	Err        error
}

func (e *PackageFunctionReturnTypeInspectError) Error() string {
	return fmt.Sprintf("couldn't inspect function return type: %s: %v", e.ReturnType, e.Err)
}

func (e *PackageFunctionReturnTypeInspectError) Unwrap() error { return e.Err }

// GenerationError reports a fatal failure building the dependency graph or
// computing a change-set plan (cycle, unresolved reference, policy violation).
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string { return fmt.Sprintf("error generating package: %s", e.Message) }

// DatabaseError reports a live-database failure unrelated to a specific query.
type DatabaseError struct {
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("database error: %s", e.Message)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// DatabaseExecuteError reports a failed live execution, carrying the query text.
type DatabaseExecuteError struct {
	Query string
	Err   error
}

func (e *DatabaseExecuteError) Error() string {
	return fmt.Sprintf("database error executing: %s: %v", e.Query, e.Err)
}

func (e *DatabaseExecuteError) Unwrap() error { return e.Err }

// Multiple is an ordered aggregation of independent errors from a single
// phase (e.g. every file-level parse failure collected by the assembler).
// It implements Unwrap() []error so callers can use errors.As/errors.Is
// through the aggregate.
type Multiple struct {
	Errors []error
}

func (e *Multiple) Error() string {
	var b strings.Builder
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "--- error %d ---\n%s\n", i, err)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Multiple) Unwrap() []error { return e.Errors }
