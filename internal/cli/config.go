package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/galvo/pkg/config"
)

// configCommand creates the config command. Its output is a valid
// parameter file.
func (c *CLI) configCommand() *cobra.Command {
	var (
		path string
		keys bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective render parameters",
		Long: `Print the effective render parameters as TOML.

Without --config the built-in defaults are printed. The output can be
edited and passed back to render with --config. Numeric values may also be
written as quoted arithmetic, e.g. on_speed = "2/90".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if keys {
				for _, k := range config.Keys() {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			params, err := loadParams(path)
			if err != nil {
				return err
			}
			c.Logger.Debug("loaded parameters", "file", path)
			return config.Dump(out, params)
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "render parameter file (TOML)")
	cmd.Flags().BoolVar(&keys, "keys", false, "list the parameter names only")

	return cmd
}
