package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/azalea-mc/azalea/core"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azalea",
	Short: "A command line tool for managing Minecraft modpacks from Modrinth",
}

// Execute starts the root command for azalea
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Add adds a new command as a subcommand to azalea
func Add(newCommand *cobra.Command) {
	rootCmd.AddCommand(newCommand)
}

// Root returns the root command, for documentation generation
func Root() *cobra.Command {
	return rootCmd
}

// CatalogFactory builds the catalog backend used by commands
type CatalogFactory func(httpClient *http.Client, logger *log.Logger) core.Catalog

var catalogFactory CatalogFactory

// UseCatalog registers the catalog backend; backend packages call this from init
func UseCatalog(f CatalogFactory) {
	catalogFactory = f
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/azalea/config.toml)")

	rootCmd.PersistentFlags().String("pack-dir", ".", "The directory containing the modpack")
	_ = viper.BindPFlag("pack-dir", rootCmd.PersistentFlags().Lookup("pack-dir"))

	rootCmd.PersistentFlags().BoolP("non-interactive", "y", false, "Never prompt, accepting the default answer")
	_ = viper.BindPFlag("non-interactive", rootCmd.PersistentFlags().Lookup("non-interactive"))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("http.timeout", 20*time.Second)
	viper.SetDefault("http.retries", 3)
	viper.SetDefault("concurrency", 4)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := core.GetAzaleaConfigDir()
		if err == nil {
			viper.AddConfigPath(dir)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("azalea")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	err := viper.ReadInConfig()
	if err == nil {
		Logger().Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Printf("Failed to read config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}

	if ua := viper.GetString("user-agent"); ua != "" {
		core.UserAgent = ua
	}
}

var logger *log.Logger

// Logger returns the logger for diagnostics, which are written to stderr
func Logger() *log.Logger {
	if logger == nil {
		level, err := log.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			level = log.InfoLevel
		}
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "azalea",
			Level:  level,
		})
	}
	return logger
}

// Context returns a context that is cancelled on interrupt
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func HTTPClient() *http.Client {
	return core.NewHTTPClient(core.HTTPOptions{
		Timeout: viper.GetDuration("http.timeout"),
		Retries: viper.GetInt("http.retries"),
		Logger:  Logger(),
	})
}

// Catalog returns the registered catalog backend
func Catalog(httpClient *http.Client) (core.Catalog, error) {
	if catalogFactory == nil {
		return nil, errors.New("no catalog backend is registered")
	}
	return core.NewCachingCatalog(catalogFactory(httpClient, Logger())), nil
}

// PackDir returns the absolute path of the pack directory
func PackDir() string {
	dir := viper.GetString("pack-dir")
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func LoadPack() (core.Pack, error) {
	return core.LoadPack(PackDir())
}

// NewManager loads the pack and returns a manager connected to the catalog backend
func NewManager() (*core.Manager, error) {
	pack, err := LoadPack()
	if err != nil {
		return nil, err
	}
	httpClient := HTTPClient()
	catalog, err := Catalog(httpClient)
	if err != nil {
		return nil, err
	}
	m := core.NewManager(pack, core.NewDirStore(pack), catalog, core.LoaderMeta{Client: httpClient}, Logger())
	if c := viper.GetInt("concurrency"); c > 0 {
		m.Concurrency = c
	}
	return m, nil
}
