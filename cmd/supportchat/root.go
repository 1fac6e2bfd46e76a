package supportchat

import (
	"github.com/ysy950803/supportchat/internal/supportchat"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().BoolVar(&Daemon, "daemon", false, "log to file instead of stderr")
	rootCmd.Flags().StringVar(&ConfigPath, "config", "", "config file path")
	rootCmd.Flags().StringVar(&HTTPAddr, "addr", "", "http listen address")
	rootCmd.PersistentPreRun = initLog
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var rootCmd = &cobra.Command{
	Use:     "supportchat",
	Short:   "support chat state service",
	Long:    `supportchat serves the support operator's chat-state API and hosts the client state store plumbing.`,
	Example: `supportchat --addr 127.0.0.1:5040`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PreRun: prepareRoot,
	Run:    Root,
}

func prepareRoot(cmd *cobra.Command, args []string) {
	if Daemon {
		initFileLog(cmd, args)
	}
}

func Root(cmd *cobra.Command, args []string) {
	m := supportchat.New()
	if HTTPAddr != "" {
		m.SetHTTPAddr(HTTPAddr)
	}

	if err := m.Run(ConfigPath); err != nil {
		log.Err(err).Msg("failed to run supportchat instance")
	}
}
