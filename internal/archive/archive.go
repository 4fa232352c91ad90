// Package archive implements the portable package artifact of spec.md §6.3:
// a zip file holding one JSON document per declared entity plus the
// computed build order, so a Package can be built once and published many
// times without re-parsing source. archive/zip and encoding/json are used
// directly — no example repo in the retrieval pack wires a packaging
// format, so there is no third-party codec to follow instead (see
// DESIGN.md).
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/declpg/declpg/internal/graph"
	"github.com/declpg/declpg/internal/pgerrors"
	"github.com/declpg/declpg/internal/schema"
)

const orderEntry = "order.json"

// WriteTo serializes pkg as a zip artifact to w.
func WriteTo(w io.Writer, pkg *schema.Package) error {
	zw := zip.NewWriter(w)

	for _, e := range pkg.Extensions {
		if err := writeJSON(zw, fmt.Sprintf("extensions/%s.json", e.Name), e); err != nil {
			return err
		}
	}
	for _, s := range pkg.Schemas {
		if err := writeJSON(zw, fmt.Sprintf("schemas/%s.json", s.Name), s); err != nil {
			return err
		}
	}
	for _, t := range pkg.Types {
		if err := writeJSON(zw, fmt.Sprintf("types/%s.json", t.QName.String()), t); err != nil {
			return err
		}
	}
	for _, t := range pkg.Tables {
		if err := writeJSON(zw, fmt.Sprintf("tables/%s.json", t.QName.String()), t); err != nil {
			return err
		}
	}
	for _, f := range pkg.Functions {
		if err := writeJSON(zw, fmt.Sprintf("functions/%s.json", f.QName.String()), f); err != nil {
			return err
		}
	}
	for _, s := range pkg.Scripts {
		if err := writeJSON(zw, fmt.Sprintf("scripts/%s-%s.json", s.Stage, s.Name), s); err != nil {
			return err
		}
	}
	if pkg.Order != nil {
		if err := writeJSON(zw, orderEntry, orderedIDs(pkg.Order)); err != nil {
			return err
		}
	}

	return zw.Close()
}

// WriteFile writes pkg's zip artifact to path.
func WriteFile(path string, pkg *schema.Package) error {
	f, err := os.Create(path)
	if err != nil {
		return &pgerrors.IOError{Path: path, Err: err}
	}
	defer f.Close()
	if err := WriteTo(f, pkg); err != nil {
		return &pgerrors.IOError{Path: path, Err: err}
	}
	return nil
}

// FromPath reads and decodes the zip artifact at path back into a Package.
// Zero-size entries and unrecognized top-level directories are ignored, so
// this reader can load artifacts from newer writers that add directories.
func FromPath(path string) (*schema.Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &pgerrors.PackageReadError{Path: path, Err: err}
	}
	defer zr.Close()

	pkg := schema.New()
	var orderIDs []string

	for _, f := range zr.File {
		if f.UncompressedSize64 == 0 {
			continue
		}
		switch {
		case f.Name == orderEntry:
			if err := readJSON(f, &orderIDs); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
		case strings.HasPrefix(f.Name, "extensions/"):
			var e schema.Extension
			if err := readJSON(f, &e); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddExtension(&e)
		case strings.HasPrefix(f.Name, "schemas/"):
			var s schema.Schema
			if err := readJSON(f, &s); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddSchema(&s)
		case strings.HasPrefix(f.Name, "types/"):
			var t schema.Type
			if err := readJSON(f, &t); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddType(&t)
		case strings.HasPrefix(f.Name, "tables/"):
			var t schema.Table
			if err := readJSON(f, &t); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddTable(&t)
		case strings.HasPrefix(f.Name, "functions/"):
			var fn schema.Function
			if err := readJSON(f, &fn); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddFunction(&fn)
		case strings.HasPrefix(f.Name, "scripts/"):
			var s schema.Script
			if err := readJSON(f, &s); err != nil {
				return nil, &pgerrors.PackageInternalReadError{EntryName: f.Name, Err: err}
			}
			pkg.AddScript(&s)
		}
	}

	if len(orderIDs) > 0 {
		pkg.Order = resolveOrder(pkg, orderIDs)
	}
	return pkg, nil
}

func writeJSON(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return &pgerrors.GenerationError{Message: fmt.Sprintf("creating archive entry %s: %v", name, err)}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}

func orderedIDs(order []graph.Node) []string {
	ids := make([]string, len(order))
	for i, n := range order {
		ids[i] = n.ID()
	}
	return ids
}

// resolveOrder re-links the recorded node IDs back to graph.Node values by
// recomputing the dependency graph and matching IDs — the archive stores
// identity strings, not full Node structs, to keep the format stable across
// internal Node field changes.
func resolveOrder(pkg *schema.Package, ids []string) []graph.Node {
	if err := pkg.GenerateDependencyGraph(); err != nil {
		return nil
	}
	byID := make(map[string]graph.Node, len(pkg.Order))
	for _, n := range pkg.Order {
		byID[n.ID()] = n
	}
	out := make([]graph.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
