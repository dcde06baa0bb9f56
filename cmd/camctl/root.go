package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/camctl/camctl/internal/app"
	"github.com/camctl/camctl/internal/camera"
	"github.com/camctl/camctl/pkg/cgi"
	"github.com/camctl/camctl/pkg/creds"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "camctl",
	Short: "Control PTZ cameras over their CGI and VISCA interfaces",
	Long: `Connect to PTZ cameras, read and change settings, move the head,
take snapshots and send raw VISCA commands.

Target a camera with --host or with --camera, a name from the config file.`,
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

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.camctl.yaml)")
	flags.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flags.String("host", "", "camera address, host or host:port")
	flags.String("camera", "", "camera name from the config file")
	flags.StringP("username", "u", "", "camera username")
	flags.StringP("password", "p", "", "camera password")
	flags.Duration("timeout", cgi.DefaultTimeout, "HTTP request timeout")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn, error")

	for _, name := range []string{"host", "camera", "username", "password", "timeout", "log-level"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and CAMCTL_* environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".camctl")
	}

	viper.SetEnvPrefix("camctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
	}
}

func newService() *camera.Service {
	s := camera.NewService()

	logger := app.NewLogger("", viper.GetString("log-level"))
	s.Log = logger
	s.PTZ.Log = logger
	s.PTZ.CGI.Log = logger
	s.PTZ.CGI.UserAgent = app.UserAgent
	s.Visca.Log = logger
	s.Discoverer.Log = logger

	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		s.PTZ.CGI.Timeout = timeout
	}
	if port := viper.GetInt("visca.port"); port > 0 {
		s.ViscaPort = port
	}

	var cameras map[string]camera.Config
	if err := viper.UnmarshalKey("cameras", &cameras); err == nil {
		for name, config := range cameras {
			s.AddCamera(name, config)
		}
	}

	return s
}

// run executes the command against the target from flags and prints the result
func run(cmd *camera.Command) *camera.Result {
	cmd.Camera = viper.GetString("camera")
	cmd.Host = viper.GetString("host")
	cmd.Username = viper.GetString("username")
	cmd.Password = viper.GetString("password")

	// hide the flag password in logs
	creds.AddSecret(cmd.Password)

	return finish(newService().Execute(cmd))
}

// finish prints the whole result with --json, exits on failure
func finish(res *camera.Result) *camera.Result {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		if !res.Success {
			os.Exit(1)
		}
		return res
	}

	if !res.Success {
		fmt.Fprintln(os.Stderr, "Error:", res.Error)
		os.Exit(1)
	}

	return res
}

func printResult(res *camera.Result) {
	if jsonOutput || res.Data == nil {
		if !jsonOutput {
			fmt.Println("OK")
		}
		return
	}

	if config, ok := res.Data.(cgi.Config); ok {
		printConfig(config)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res.Data)
}

func printConfig(config cgi.Config) {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("%s=%v\n", key, config[key])
	}
}

func rawArgs(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
