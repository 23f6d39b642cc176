package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/VIISON/scs-commander/internal/utils"
	"github.com/VIISON/scs-commander/pkg/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = ` ____    ____   ____
/ ___|  / ___| / ___|
\___ \ | |     \___ \
 ___) || |___   ___) |
|____/  \____| |____/   commander

`
)

// errUsage marks argument and flag mistakes so Execute can exit with a
// different code than a failed release run.
var errUsage = errors.New("usage error")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scs-commander",
	Short: "Publish and manage plugins in the Shopware Community Store.",
	Long: LOGO + `scs-commander uploads plugin binaries to your Shopware Community Store
producer account, fills in the release metadata from the plugin archive and
requests the store review, all from your command line.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Usage mistakes exit with code 2, failed runs with code 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scs-commander.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("endpoint", "", store.DEFAULT_ENDPOINT, "Base URL of the Shopware account API")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file in the working directory feeds the SCS_* variables.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Log.Debugf("Skipping .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".scs-commander")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("scs")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.scs-commander.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("username", "")
	viper.SetDefault("password", "")
	viper.SetDefault("endpoint", store.DEFAULT_ENDPOINT)
	viper.SetDefault("proxy", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// newStoreClient builds an API client from the persistent flags.
func newStoreClient(cmd *cobra.Command) (*store.Client, error) {
	endpoint, _ := cmd.Flags().GetString("endpoint")
	if endpoint == store.DEFAULT_ENDPOINT && viper.GetString("endpoint") != "" {
		endpoint = viper.GetString("endpoint")
	}

	client := store.NewClient(endpoint)

	proxy, _ := cmd.Flags().GetString("proxy")
	if proxy == "" {
		proxy = viper.GetString("proxy")
	}
	if proxy != "" {
		if err := client.SetProxy(proxy); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// credentials resolves the Shopware ID and password from flags, config and
// environment, prompting on the terminal as a last resort.
func credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		username = viper.GetString("username")
	}
	if username == "" {
		return "", "", fmt.Errorf("%w: no Shopware ID given, use --username or set SCS_USERNAME", errUsage)
	}

	password := viper.GetString("password")
	if password == "" {
		var err error
		password, err = utils.PromptPassword(fmt.Sprintf("Password for %s: ", username))
		if err != nil {
			return "", "", fmt.Errorf("reading password: %v", err)
		}
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: no password given, set SCS_PASSWORD or enter it at the prompt", errUsage)
	}

	return username, password, nil
}
