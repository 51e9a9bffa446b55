package commands

import (
	"fmt"
	"time"

	"github.com/jrdwe/floodfile/pkg/session"
	"github.com/spf13/cobra"
)

var shareInterfaceFlag string

var shareCmd = &cobra.Command{
	Use:   "share <path>",
	Short: "Advertise a file to peers on the broadcast domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		ifaceName, err := resolveInterface(shareInterfaceFlag, cfg)
		if err != nil {
			return err
		}
		s, err := startSession(ifaceName, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		s.Send(session.AdvertiseFile{Path: args[0]})
		fmt.Fprintf(cmd.OutOrStdout(), "advertising %s on %s\n", args[0], ifaceName)

		// Give the send a moment to go out and report any send failure
		// before the process exits.
		select {
		case evt := <-s.Events():
			if alert, ok := evt.(session.AlertUser); ok {
				fmt.Fprintln(cmd.OutOrStdout(), alert.Text)
			}
		case <-time.After(500 * time.Millisecond):
		}
		return nil
	},
}

func init() {
	shareCmd.Flags().StringVar(&shareInterfaceFlag, "interface", "", "network interface to bind (default: prompt or config)")
}
