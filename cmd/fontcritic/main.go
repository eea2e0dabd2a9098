package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/dshills/fontcritic/internal/profiles/designspace"
	_ "github.com/dshills/fontcritic/internal/profiles/googlefonts"
	_ "github.com/dshills/fontcritic/internal/profiles/opentype"
	_ "github.com/dshills/fontcritic/internal/profiles/universal"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fontcritic",
		Short:         "Run quality checks on font files and their sidecar metadata",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringSlice("plugins", nil, "Extra plugins: embedded names or paths to .so files (comma separated)")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newListChecksCmd())
	root.AddCommand(newProfilesCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
