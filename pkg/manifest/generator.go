package manifest

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/formatter"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/types"
)

// manifestTemplate renders the generated manifest module. Routes use
// positional aliases $0, $1, ... and islands $$0, $$1, ... so the two
// lists can never shadow each other's imports.
var manifestTemplate = template.Must(template.New("manifest").Parse(`// DO NOT EDIT. This file is generated by atoll.
// It enumerates the project's routes and islands so the server and the
// client bundle agree on what exists. Changes here are overwritten on the
// next dev cycle; edit the files under routes/ and islands/ instead.

{{range .Routes}}import * as {{.Alias}} from "{{.Import}}";
{{end}}{{range .Islands}}import * as {{.Alias}} from "{{.Import}}";
{{end}}
const manifest = {
  routes: {
{{range .Routes}}    "{{.Key}}": {{.Alias}},
{{end}}  },
  islands: {
{{range .Islands}}    "{{.Key}}": {{.Alias}},
{{end}}  },
  baseUrl: import.meta.url,
};

export default manifest;
`))

// importEntry is one import statement plus its lookup-table entry.
type importEntry struct {
	Alias  string
	Import string
	Key    string
}

// templateData feeds manifestTemplate.
type templateData struct {
	Routes  []importEntry
	Islands []importEntry
}

// Generator renders the manifest module, formats it and writes it to the
// output directory.
type Generator struct {
	fs        types.FS
	formatter formatter.Formatter
}

// NewGenerator creates a Generator writing through fsys and formatting
// through f.
func NewGenerator(fsys types.FS, f formatter.Formatter) *Generator {
	return &Generator{fs: fsys, formatter: f}
}

// Generate writes the manifest module for m into outDir and returns the
// path of the written file. projectRoot anchors the generated import
// specifiers so they resolve regardless of where outDir lives.
//
// A formatter failure is fatal: the alternative is silently persisting
// unformatted or truncated generated source.
func (g *Generator) Generate(ctx context.Context, outDir, projectRoot string, m types.Manifest) (string, error) {
	logger := logging.GetLogger("manifest.generate")

	relRoot, err := filepath.Rel(outDir, projectRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrManifestGenerate, "cannot relate output dir to project root").
			WithDetail("outDir", outDir).
			WithDetail("projectRoot", projectRoot)
	}
	relRoot = filepath.ToSlash(relRoot)

	data := templateData{
		Routes:  importEntries(m.Routes, relRoot, paths.RoutesDirName, "$"),
		Islands: importEntries(m.Islands, relRoot, paths.IslandsDirName, "$$"),
	}

	var buf bytes.Buffer
	if err := manifestTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, errors.ErrManifestGenerate, "failed to render manifest module")
	}

	formatted, err := g.formatter.Format(ctx, buf.Bytes())
	if err != nil {
		return "", err
	}

	if err := g.fs.MkdirAll(outDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "cannot create output directory").
			WithDetail("path", outDir)
	}

	outPath := filepath.Join(outDir, paths.ManifestFileName)
	if err := g.fs.WriteFile(outPath, formatted, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrManifestWrite, "cannot write manifest module").
			WithDetail("path", outPath)
	}

	logger.Info().
		Int("routes", len(m.Routes)).
		Int("islands", len(m.Islands)).
		Str("path", outPath).
		Msg("Generated manifest")

	return outPath, nil
}

// importEntries builds the import list for one source category. relRoot
// is the slash path from the output dir back to the project root and
// subDir the scanned directory name under the root.
func importEntries(files []string, relRoot, subDir, aliasPrefix string) []importEntry {
	entries := make([]importEntry, 0, len(files))
	for i, file := range files {
		entries = append(entries, importEntry{
			Alias:  aliasPrefix + strconv.Itoa(i),
			Import: toSpecifier(path.Join(relRoot, subDir, file)),
			Key:    toSpecifier(file),
		})
	}
	return entries
}

// toSpecifier turns a relative slash path into an import specifier.
// Specifiers are never bare: they are prefixed with "./" unless already
// parent-relative, because the framework's runtime looks routes up by
// exactly this form.
func toSpecifier(p string) string {
	p = filepath.ToSlash(p)
	if strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		return p
	}
	return "./" + p
}
