// Package commands implements floodfile's CLI command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "floodfile",
	Short: "Peer-to-peer file sharing tunneled inside broadcast ARP frames",
	Long: `floodfile shares files between peers on the same Ethernet broadcast
domain by smuggling application datagrams inside ARP request frames.
There is no IP, TCP, or UDP involved, and no central server: the local
broadcast domain is the rendezvous.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command; its child commands are registered in
// init. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/floodfile/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(interfacesCmd)
}
