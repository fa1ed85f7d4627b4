// Package validation enforces the import layering of the hazcat module:
// the domain model is a leaf, the calculation packages stay free of storage
// and transport, and concrete backends are reached only through their
// facades.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// ModulePath is the import path prefix of every package in the module.
const ModulePath = "hazcat"

// Rule forbids packages under Scope (minus Except) from importing anything
// under Forbidden. All entries are import path prefixes.
type Rule struct {
	Name      string
	Scope     []string
	Except    []string
	Forbidden []string
}

// Error is one import that breaks a rule.
type Error struct {
	Package string
	Import  string
	Rule    string
}

func (e Error) String() string {
	return fmt.Sprintf("%s imports %s (%s)", e.Package, e.Import, e.Rule)
}

func under(prefix string) string { return ModulePath + "/" + prefix }

// Rules is the layering of the module.
var Rules = []Rule{
	{
		Name:      "domain model is a leaf",
		Scope:     []string{under("pkg/domain")},
		Forbidden: []string{under("internal"), under("cmd")},
	},
	{
		Name: "calculation packages stay free of storage and transport",
		Scope: []string{
			under("internal/refdata"), under("internal/nuclide"), under("internal/dcf"),
			under("internal/threshold"), under("internal/facility"), under("internal/pointsource"),
		},
		Forbidden: []string{
			under("internal/core"), under("internal/infra"), under("internal/adapters"),
			under("internal/config"), under("cmd"),
		},
	},
	{
		Name:      "persistence backends are opened by core",
		Scope:     []string{ModulePath},
		Except:    []string{under("internal/core"), under("internal/infra/persistence")},
		Forbidden: []string{under("internal/infra/persistence")},
	},
	{
		Name:      "blob backends are reached through internal/blob",
		Scope:     []string{ModulePath},
		Except:    []string{under("internal/blob"), under("internal/infra/blob")},
		Forbidden: []string{under("internal/infra/blob")},
	},
	{
		Name:      "libraries do not import commands",
		Scope:     []string{under("internal"), under("pkg")},
		Forbidden: []string{under("cmd")},
	},
}

// ImportGraph maps a package path to the paths it imports.
type ImportGraph map[string][]string

// LoadImportGraph loads patterns (test files included) from dir and records
// their direct imports.
func LoadImportGraph(dir string, patterns ...string) (ImportGraph, error) {
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedImports,
		Dir:   dir,
		Tests: true,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	graph := make(ImportGraph, len(pkgs))
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Errorf("%s: %s", pkg.PkgPath, e.Msg))
		}
		path := basePath(pkg.PkgPath)
		seen := make(map[string]struct{}, len(graph[path]))
		for _, imp := range graph[path] {
			seen[imp] = struct{}{}
		}
		for imp := range pkg.Imports {
			if _, dup := seen[imp]; dup || imp == path {
				continue
			}
			seen[imp] = struct{}{}
			graph[path] = append(graph[path], imp)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return graph, nil
}

// basePath folds test variants onto the package they test: the generated
// "p.test" main and the external "p_test" package both count as p.
func basePath(path string) string {
	path = strings.TrimSuffix(path, ".test")
	return strings.TrimSuffix(path, "_test")
}

func matches(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Check returns every import in graph that breaks one of rules, sorted.
func Check(graph ImportGraph, rules []Rule) []Error {
	var out []Error
	for pkg, imports := range graph {
		for _, rule := range rules {
			if !matches(pkg, rule.Scope) || matches(pkg, rule.Except) {
				continue
			}
			for _, imp := range imports {
				if matches(imp, rule.Forbidden) {
					out = append(out, Error{Package: pkg, Import: imp, Rule: rule.Name})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		if out[i].Import != out[j].Import {
			return out[i].Import < out[j].Import
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}
