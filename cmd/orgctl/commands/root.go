package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jra3/orgctl/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "orgctl",
	Short: "Command-line toolkit for plain-text org outline files",
	Long: `orgctl reads, queries, and surgically edits org-mode outline files:
headlines, TODO state, scheduling, tags, properties, clock logs, and
logbook notes, backed by a persistent full-text index and a
roam-compatible knowledge graph.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orgctl.yaml)")
	rootCmd.PersistentFlags().Int("deadline-warning-days", 0, "override deadline-warning-days")
	viper.BindPFlag("deadline-warning-days", rootCmd.PersistentFlags().Lookup("deadline-warning-days"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".orgctl")
		}
	}

	viper.SetEnvPrefix("ORGCTL")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "orgctl: config: %v\n", err)
		loaded = config.DefaultConfig()
	}
	if viper.IsSet("deadline-warning-days") && viper.GetInt("deadline-warning-days") != 0 {
		loaded.DeadlineWarningDays = viper.GetInt("deadline-warning-days")
	}
	cfg = loaded
}
