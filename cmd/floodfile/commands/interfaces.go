package commands

import (
	"fmt"

	"github.com/jrdwe/floodfile/pkg/channel"
	"github.com/spf13/cobra"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List network interfaces usable as a floodfile bind target",
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := channel.UsableInterfaces()
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no usable interfaces found")
			return nil
		}
		for _, c := range candidates {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d address(es)\n", c.Name, c.HardwareAddr, len(c.Addresses))
		}
		return nil
	},
}
