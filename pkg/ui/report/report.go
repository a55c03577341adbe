// Package report renders project scan results for the terminal. A rich
// renderer styles output with pterm for interactive use; a plain
// renderer produces stable text for pipes and tests.
package report

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/types"
)

// Renderer formats scan results and errors as display strings.
type Renderer interface {
	RenderManifest(m types.Manifest, islands []types.Island) string
	RenderError(err error) string
}

// TerminalRenderer renders with pterm styling for interactive terminals.
type TerminalRenderer struct{}

// NewTerminalRenderer creates a renderer with rich terminal output.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderManifest renders the collected routes and islands.
func (r *TerminalRenderer) RenderManifest(m types.Manifest, islands []types.Island) string {
	var result strings.Builder

	header := pterm.NewStyle(pterm.FgCyan, pterm.Bold)

	result.WriteString(header.Sprintf("Routes (%d)", len(m.Routes)) + "\n")
	if len(m.Routes) == 0 {
		result.WriteString(pterm.Gray("  none") + "\n")
	}
	for _, route := range m.Routes {
		result.WriteString(fmt.Sprintf("  %s %s\n", pterm.Info.Prefix.Text, route))
	}

	result.WriteString("\n" + header.Sprintf("Islands (%d)", len(islands)) + "\n")
	if len(islands) == 0 {
		result.WriteString(pterm.Gray("  none") + "\n")
		return strings.TrimRight(result.String(), "\n")
	}

	data := pterm.TableData{{"ID", "Module"}}
	for _, island := range islands {
		data = append(data, []string{island.ID, island.URL})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		// Degrade to the plain layout rather than dropping output
		for _, island := range islands {
			result.WriteString(fmt.Sprintf("  %s  %s\n", island.ID, island.URL))
		}
		return strings.TrimRight(result.String(), "\n")
	}
	result.WriteString(table)

	return strings.TrimRight(result.String(), "\n")
}

// RenderError renders an error message with its code when available.
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %s",
		pterm.Error.Prefix.Text,
		pterm.Error.MessageStyle.Sprint(errors.GetErrorCode(err)),
		err.Error())
}

// PlainRenderer renders without any styling.
type PlainRenderer struct{}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderManifest renders the collected routes and islands as plain text.
func (r *PlainRenderer) RenderManifest(m types.Manifest, islands []types.Island) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Routes (%d):\n", len(m.Routes)))
	for _, route := range m.Routes {
		result.WriteString(fmt.Sprintf("  %s\n", route))
	}

	result.WriteString(fmt.Sprintf("Islands (%d):\n", len(islands)))
	for _, island := range islands {
		result.WriteString(fmt.Sprintf("  %s  %s\n", island.ID, island.URL))
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderError renders a plain error message.
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
