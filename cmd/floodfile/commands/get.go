package commands

import (
	"fmt"
	"time"

	"github.com/jrdwe/floodfile/pkg/session"
	"github.com/spf13/cobra"
)

var getInterfaceFlag string
var getTimeoutFlag time.Duration

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Request a file previously advertised by a peer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		ifaceName, err := resolveInterface(getInterfaceFlag, cfg)
		if err != nil {
			return err
		}
		s, err := startSession(ifaceName, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		s.Send(session.RequestFile{Path: args[0]})
		fmt.Fprintf(cmd.OutOrStdout(), "requesting %s on %s, waiting up to %s\n", args[0], ifaceName, getTimeoutFlag)

		select {
		case evt := <-s.Events():
			if alert, ok := evt.(session.AlertUser); ok {
				fmt.Fprintln(cmd.OutOrStdout(), alert.Text)
			}
		case <-time.After(getTimeoutFlag):
			fmt.Fprintln(cmd.OutOrStdout(), "timed out waiting for a response")
		}
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&getInterfaceFlag, "interface", "", "network interface to bind (default: prompt or config)")
	getCmd.Flags().DurationVar(&getTimeoutFlag, "timeout", 10*time.Second, "how long to wait for the file to arrive")
}
