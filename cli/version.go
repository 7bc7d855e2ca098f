package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slatebar/slate/version"
)

// SetVersionTemplate enables `--version` on the root command, rendering the
// build metadata baked in by the linker.
func SetVersionTemplate(cmd *cobra.Command, info version.Info) {
	cmd.Version = info.Version
	cmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
  Commit:    %s
  Built:     %s
  Platform:  %s
`, info.Commit, info.BuildDate, info.Platform))
}
