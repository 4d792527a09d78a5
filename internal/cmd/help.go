package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostops/terminate/internal/constants"
	"github.com/hostops/terminate/internal/ui"
)

var rootLong = `Terminate is a diagnostics and recovery tool for LANDesk administrators. It
either reports on (tags) or stops (kills) a named process on client computers.

If KILL is specified, every process that matches the name and started more
than TTL minutes ago is force stopped. If TAG is specified, each matching
process that is old enough is reported to LANDesk inventory.

Notes:
  Parameters are case insensitive. The process name can be given with or
  without the .exe suffix. A run needs both TARGET and a non-zero TTL;
  otherwise this help is shown and nothing is touched.

  Output goes to the console and is appended to ` + constants.FileDiagLog + ` in the temp
  directory, which resolves to Windows\Temp when run as a LANDesk task.

  TAG uses miniscan.exe to send custom data to the core server, so custom
  data must be enabled. Values are sent at these two custom data paths:
    ` + constants.FieldProcessName + `
    ` + constants.FieldProcessAge

// colorizedHelpFunc wraps Cobra's default help with semantic coloring.
func colorizedHelpFunc(cmd *cobra.Command, args []string) {
	var output strings.Builder

	if cmd.Long != "" {
		output.WriteString(cmd.Long)
		output.WriteString("\n\n")
	} else if cmd.Short != "" {
		output.WriteString(cmd.Short)
		output.WriteString("\n\n")
	}

	output.WriteString(cmd.UsageString())

	fmt.Fprint(cmd.OutOrStdout(), colorizeHelpOutput(output.String()))
}

var (
	sectionHeaderRE = regexp.MustCompile(`(?m)^(Notes|Examples|Flags|Usage|Global Flags|Aliases|Available Commands):`)
	cmdLineRE       = regexp.MustCompile(`(?m)^(  )([a-z][a-z0-9]*(?:-[a-z0-9]+)*)(\s{2,})(.*)$`)
	flagLineRE      = regexp.MustCompile(`(?m)^(\s+)(-\w,\s+--[\w-]+|--[\w-]+)(\s+)(string|int|duration|bool)?(\s*.*)$`)
	exampleLineRE   = regexp.MustCompile(`(?m)^(  )(terminate .*)$`)
	defaultRE       = regexp.MustCompile(`(\(default[^)]*\))`)
)

// colorizeHelpOutput applies semantic colors to help text
// - Section headers (Examples:, Flags:) get accent color
// - Command names and example invocations get subtle styling
// - Flag names get command styling, types and defaults get muted
func colorizeHelpOutput(help string) string {
	result := sectionHeaderRE.ReplaceAllStringFunc(help, func(match string) string {
		return ui.RenderAccent(match)
	})

	result = exampleLineRE.ReplaceAllStringFunc(result, func(match string) string {
		parts := exampleLineRE.FindStringSubmatch(match)
		return parts[1] + ui.RenderCommand(parts[2])
	})

	result = cmdLineRE.ReplaceAllStringFunc(result, func(match string) string {
		parts := cmdLineRE.FindStringSubmatch(match)
		if len(parts) != 5 {
			return match
		}
		return parts[1] + ui.RenderCommand(parts[2]) + parts[3] + parts[4]
	})

	result = flagLineRE.ReplaceAllStringFunc(result, func(match string) string {
		parts := flagLineRE.FindStringSubmatch(match)
		if len(parts) < 6 {
			return match
		}
		indent, flags, spacing, typeStr, desc := parts[1], parts[2], parts[3], parts[4], parts[5]

		desc = defaultRE.ReplaceAllStringFunc(desc, func(m string) string {
			return ui.RenderMuted(m)
		})
		if typeStr != "" {
			return indent + ui.RenderCommand(flags) + spacing + ui.RenderMuted(typeStr) + desc
		}
		return indent + ui.RenderCommand(flags) + spacing + desc
	})

	return result
}

func init() {
	rootCmd.SetHelpFunc(colorizedHelpFunc)
}
