package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "snowlift",
	Short: "Move regional sales data into Snowflake",
	Long: "Snowlift - extracts reports from the per-country SQL Server instances,\n" +
		"stages them as normalized CSV files and loads them into Snowflake.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.snowlift")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay for now
	}
}
