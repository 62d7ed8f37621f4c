// Package cli wires the cobra command tree for the HireSafe client.
package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/ui"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/version"
)

var (
	flagDomain   string
	flagName     string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
	flagInsecure bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "hiresafe",
	Short:   "Video meetings and proctored technical interviews from the terminal",
	Long:    `HireSafe is a command-line client for peer-to-peer video calls using WebRTC. It supports open meeting rooms of any size and two-person interview rooms with a shared code editor and malpractice alerts. Media flows directly between peers; the server only brokers room membership and relays negotiation messages.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDomain, "domain", "d", "", "Custom server domain")
	pf.StringVarP(&flagName, "name", "n", "", "Display name shown to other members")
	pf.StringVar(&flagSTUN, "stun", "", "Custom STUN server")
	pf.StringVar(&flagTURN, "turn", "", "Custom TURN server")
	pf.StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	pf.StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
	pf.BoolVarP(&flagRelay, "relay", "r", false, "Force relay mode through TURN")
	pf.BoolVar(&flagInsecure, "insecure", false, "Use ws/http instead of wss/https")
}
