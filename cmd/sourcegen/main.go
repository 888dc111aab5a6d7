// Command sourcegen generates a typed alias, constructor and loader accessor
// for one dataloader source instantiation, so application code never has to
// spell out the generic type arguments by hand.
//
// Run it from the package the file should be generated into:
//
//	//go:generate go run github.com/UnAfraid/dataloader/cmd/sourcegen -name UserSource -keyType string -valueType *github.com/you/project/model.User
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/imports"
)

func main() {
	name := flag.String("name", "", "name of the generated source type, e.g. UserSource")
	fileName := flag.String("fileName", "", "output file name, defaults to the snake case of -name plus _gen.go")
	groupType := flag.String("groupType", "string", "grouping key type")
	keyType := flag.String("keyType", "string", "item key type")
	valueType := flag.String("valueType", "", "value type, e.g. *github.com/you/project/model.User")
	flag.Parse()

	if *name == "" || *valueType == "" {
		flag.Usage()
		os.Exit(2)
	}

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := generate(wd, *name, *fileName, *groupType, *keyType, *valueType); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

var sourceTemplate = template.Must(template.New("source").Parse(`// Code generated by github.com/UnAfraid/dataloader/cmd/sourcegen, DO NOT EDIT.

package {{.Package}}

import (
	"fmt"

	"github.com/UnAfraid/dataloader"
{{- range .Imports}}
	"{{.}}"
{{- end}}
)

// {{.Name}} batches and memoizes {{.ValueType}} lookups keyed by {{.KeyType}}
// within {{.GroupType}} groups.
type {{.Name}} = dataloader.BatchSource[{{.GroupType}}, {{.KeyType}}, {{.ValueType}}]

// {{.Name}}Config configures a {{.Name}}.
type {{.Name}}Config = dataloader.SourceConfig[{{.GroupType}}, {{.KeyType}}, {{.ValueType}}]

// New{{.Name}} creates a {{.Name}} from config.
func New{{.Name}}(config {{.Name}}Config) *{{.Name}} {
	return dataloader.NewSource(config)
}

// {{.Name}}FromLoader resolves the source registered under name on l.
func {{.Name}}FromLoader(l *dataloader.Loader, name string) (*{{.Name}}, error) {
	source, err := l.Source(name)
	if err != nil {
		return nil, err
	}
	{{.VarName}}, ok := source.(*{{.Name}})
	if !ok {
		return nil, fmt.Errorf("dataloader: source %q is %T, not a {{.Name}}", name, source)
	}
	return {{.VarName}}, nil
}
`))

type templateData struct {
	Package   string
	Name      string
	VarName   string
	GroupType string
	KeyType   string
	ValueType string
	Imports   []string
}

func generate(wd, name, fileName, groupType, keyType, valueType string) error {
	destination, err := loadPackage(wd, ".")
	if err != nil {
		return errors.Wrap(err, "failed to load the destination package")
	}

	data := templateData{
		Package: destination.Name,
		Name:    name,
		VarName: strcase.ToLowerCamel(name),
	}

	for _, ref := range []struct {
		raw    string
		target *string
	}{
		{groupType, &data.GroupType},
		{keyType, &data.KeyType},
		{valueType, &data.ValueType},
	} {
		parsed, err := parseTypeRef(ref.raw)
		if err != nil {
			return err
		}
		local, importPath, err := parsed.local(wd, destination.PkgPath)
		if err != nil {
			return err
		}
		*ref.target = local
		if importPath != "" {
			data.Imports = append(data.Imports, importPath)
		}
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "failed to render the source template")
	}

	if fileName == "" {
		fileName = strcase.ToSnake(name) + "_gen.go"
	}
	filePath := filepath.Join(wd, fileName)

	formatted, err := imports.Process(filePath, buf.Bytes(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to format the generated file")
	}

	return os.WriteFile(filePath, formatted, 0o644)
}

// typeRef is one parsed -groupType/-keyType/-valueType argument: optional
// *, [] and map modifiers in front of either a builtin name or a fully
// qualified import path dot type name.
type typeRef struct {
	modifiers  string
	importPath string
	name       string
}

func parseTypeRef(raw string) (*typeRef, error) {
	if raw == "" {
		return nil, errors.New("empty type reference")
	}

	ref := &typeRef{}
	rest := raw
	for {
		if strings.HasPrefix(rest, "*") {
			ref.modifiers += "*"
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, "[]") {
			ref.modifiers += "[]"
			rest = rest[2:]
			continue
		}
		break
	}

	if rest == "" {
		return nil, errors.Errorf("type reference %q names no type", raw)
	}

	if dot := strings.LastIndex(rest, "."); dot >= 0 && strings.Contains(rest[:dot], "/") {
		ref.importPath = rest[:dot]
		ref.name = rest[dot+1:]
	} else if strings.Contains(rest, "/") {
		return nil, errors.Errorf("type reference %q must be a builtin or a full import path dot type name", raw)
	} else {
		ref.name = rest
	}
	return ref, nil
}

// local renders the reference as it should appear in the destination package
// and returns the import path the generated file needs, if any.
func (t *typeRef) local(wd, destinationPkgPath string) (string, string, error) {
	if t.importPath == "" {
		return t.modifiers + t.name, "", nil
	}
	if t.importPath == destinationPkgPath {
		return t.modifiers + t.name, "", nil
	}

	pkg, err := loadPackage(wd, t.importPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to load package %q", t.importPath)
	}
	return t.modifiers + pkg.Name + "." + t.name, t.importPath, nil
}

func loadPackage(wd, pattern string) (*packages.Package, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName,
		Dir:  wd,
	}, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != 1 {
		return nil, errors.Errorf("expected one package for %q, found %d", pattern, len(pkgs))
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, pkgs[0].Errors[0]
	}
	if pkgs[0].Name == "" {
		return nil, errors.Errorf("could not determine the package name for %q", pattern)
	}
	return pkgs[0], nil
}
