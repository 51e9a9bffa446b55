package commands

import (
	"context"
	"fmt"

	"github.com/jrdwe/floodfile/internal/cli/prompt"
	"github.com/jrdwe/floodfile/internal/metrics"
	"github.com/jrdwe/floodfile/pkg/session"
	"github.com/spf13/cobra"
)

var serveInterfaceFlag string
var serveMetricsAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive floodfile session",
	Long: `serve hosts the terminal UI loop: it binds a network interface, starts
the session, and repeatedly prompts for an action (share a file, request a
file, switch interface, change storage directory) until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAndLogger()
		if err != nil {
			return err
		}

		ifaceName, err := resolveInterface(serveInterfaceFlag, cfg)
		if err != nil {
			return err
		}

		// Enable metrics before startSession opens the Channel: ChannelMetrics
		// is constructed once at Channel-open time and stays nil for the
		// Channel's whole lifetime if metrics aren't enabled by then.
		if serveMetricsAddrFlag != "" {
			metrics.Init()
			metricsServer := metrics.StartServer(serveMetricsAddrFlag)
			defer metricsServer.Shutdown(context.Background())
			fmt.Fprintf(cmd.OutOrStdout(), "metrics exposed at http://%s/metrics\n", serveMetricsAddrFlag)
		}

		s, err := startSession(ifaceName, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		go printEvents(cmd, s)

		fmt.Fprintf(cmd.OutOrStdout(), "bound to %s, storage dir %s\n", ifaceName, cfg.StorageDir)
		return runMenuLoop(cmd, s)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveInterfaceFlag, "interface", "", "network interface to bind (default: prompt or config)")
	serveCmd.Flags().StringVar(&serveMetricsAddrFlag, "metrics-addr", "", "expose Prometheus metrics at this address (e.g. :9090); disabled by default")
}

func printEvents(cmd *cobra.Command, s *session.Session) {
	for evt := range s.Events() {
		switch e := evt.(type) {
		case session.NewFile:
			fmt.Fprintf(cmd.OutOrStdout(), "\n[new file available] %s\n", e.Path)
		case session.AlertUser:
			fmt.Fprintf(cmd.OutOrStdout(), "\n[alert] %s\n", e.Text)
		}
	}
}

func runMenuLoop(cmd *cobra.Command, s *session.Session) error {
	for {
		action, err := prompt.SelectString("Action", []string{"share", "request", "switch interface", "set storage dir", "quit"})
		if prompt.IsAborted(err) || action == "quit" {
			return nil
		}
		if err != nil {
			return err
		}

		switch action {
		case "share":
			path, err := prompt.InputRequired("Path to share")
			if prompt.IsAborted(err) {
				continue
			}
			if err != nil {
				return err
			}
			s.Send(session.AdvertiseFile{Path: path})

		case "request":
			path, err := prompt.InputRequired("Path to request")
			if prompt.IsAborted(err) {
				continue
			}
			if err != nil {
				return err
			}
			s.Send(session.RequestFile{Path: path})

		case "switch interface":
			name, err := prompt.InputRequired("Interface name")
			if prompt.IsAborted(err) {
				continue
			}
			if err != nil {
				return err
			}
			s.Send(session.ChangeInterface{Name: name})

		case "set storage dir":
			dir, err := prompt.InputRequired("Storage directory")
			if prompt.IsAborted(err) {
				continue
			}
			if err != nil {
				return err
			}
			s.Send(session.UpdateLocalPath{Path: dir})
		}
	}
}
