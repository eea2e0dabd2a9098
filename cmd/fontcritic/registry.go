package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/fontcritic/internal/registry"
)

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// Exit codes.
const (
	exitThreshold = 1
	exitConfig    = 3
	exitInvalid   = 5
)

// buildRegistry loads every embedded plugin, then the requested extras.
func buildRegistry(extra []string) (*registry.Registry, error) {
	b := registry.NewBuilder()
	refs := append(registry.EmbeddedNames(), extra...)
	if err := b.LoadAll(refs); err != nil {
		return nil, exitError(exitConfig, "failed to load plugins: %v", err)
	}
	reg, err := b.Freeze()
	if err != nil {
		return nil, exitError(exitConfig, "invalid check registry: %v", err)
	}
	return reg, nil
}

func pluginsFlag(cmd *cobra.Command) []string {
	plugins, _ := cmd.Flags().GetStringSlice("plugins")
	return plugins
}

func newListChecksCmd() *cobra.Command {
	var profileName string
	cmd := &cobra.Command{
		Use:   "list-checks",
		Short: "List registered checks, or the checks of one profile in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(pluginsFlag(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if profileName == "" {
				for _, c := range reg.Checks() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.AppliesTo, c.Title)
				}
				return nil
			}
			res, err := reg.Resolve(profileName)
			if err != nil {
				return exitError(exitConfig, "failed to resolve profile: %v", err)
			}
			section := ""
			for _, e := range res.Entries {
				if e.Section != section {
					section = e.Section
					fmt.Fprintf(w, "%s\n", section)
				}
				c, _ := reg.Check(e.CheckID)
				fmt.Fprintf(w, "  %s\t%s\n", c.ID, c.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profileName, "profile", "", "Only list the checks of this profile")
	return cmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List registered profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(pluginsFlag(cmd))
			if err != nil {
				return err
			}
			for _, name := range reg.Profiles() {
				p, _ := reg.Profile(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, p.Description)
			}
			return nil
		},
	}
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
