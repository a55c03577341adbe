package bundler

import (
	"bytes"
	"encoding/json"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/types"
)

// depsHeader precedes the persisted snapshot module.
const depsHeader = `// DO NOT EDIT. This file is generated by atoll.
// It records which modules each bundle depends on so the server can emit
// preload links. Overwritten on every dev cycle.

`

// WriteSnapshot persists the dependency snapshot as a runtime-loadable
// module at path.
func WriteSnapshot(fsys types.FS, path string, snapshot types.DependencySnapshot) error {
	logger := logging.GetLogger("bundler.deps")

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize dependency snapshot")
	}

	var buf bytes.Buffer
	buf.WriteString(depsHeader)
	buf.WriteString("export default ")
	buf.Write(payload)
	buf.WriteString(" as Record<string, string[]>;\n")

	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write dependency snapshot").
			WithDetail("path", path)
	}

	logger.Debug().Str("path", path).Int("bundles", len(snapshot)).Msg("Persisted dependency snapshot")
	return nil
}
