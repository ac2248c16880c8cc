package main

import (
	"log"
	"os"

	"github.com/aurwrite/aurwrite/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	initConfig()

	rootCmd := &cobra.Command{
		Use:   "aurwrite",
		Short: "Audio to Story Remix",
	}

	cmd, err := pkg.NewCommand()
	if err != nil {
		log.Fatalln(err)
	}
	rootCmd.AddCommand(
		cmd,
	)

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// initConfig loads app.env from the working directory or the user's home,
// then lets environment variables override it.
func initConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	} else {
		log.Println("cannot resolve home directory:", err)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Println("cannot read app.env:", err)
		}
	}
}
