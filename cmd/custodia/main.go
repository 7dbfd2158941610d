package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evidchain/custodia/internal/custody"
	"github.com/evidchain/custodia/internal/evidence"
	"github.com/evidchain/custodia/internal/fabric"
	"github.com/evidchain/custodia/internal/ledgerview"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile     string
	networkPath string
	orgFlag     string
	userFlag    string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "custodia",
	Short: "Secure evidence ledger client",
	Long: `custodia is the command-line client for a multi-organization
evidence chain-of-custody network.

Run it without arguments for the interactive shell: pick an organization
and an enrolled user, then create, transfer, and audit evidence items.
Every state change is a committed ledger transaction; the ledger view
reconstructs the full audit trail anchored at the genesis block.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".custodia"))
			viper.AddConfigPath(".")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("custodia")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		home, _ := os.UserHomeDir()
		viper.SetDefault("network_path", filepath.Join(home, "fabric-samples", "test-network"))
		viper.SetDefault("channel", "mychannel")
		viper.SetDefault("chaincode", "chainofcustody")
		viper.SetDefault("settle_seconds", 3)
		viper.SetDefault("merge_workers", 4)
		viper.SetDefault("org_display_names", map[string]string{
			"org1": "Police Department",
			"org2": "Forensics Lab",
		})
		viper.SetDefault("serve.port", 8080)
		viper.SetDefault("serve.cors_origins", []string{})
		viper.SetDefault("serve.rate_limit_rps", 20)

		_ = viper.ReadInConfig()

		if networkPath == "" {
			networkPath = viper.GetString("network_path")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.custodia/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&networkPath, "network", "", "Fabric test-network path (default ~/fabric-samples/test-network)")
	rootCmd.PersistentFlags().StringVar(&orgFlag, "org", "org1", "Organization short name for scripted commands")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "Admin", "Enrolled user for scripted commands")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the CLI logger: quiet by default, debug with --verbose.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// clients bundles everything a command needs for one identity.
type clients struct {
	cfg      fabric.Config
	gateway  *fabric.Gateway
	fetcher  *evidence.Fetcher
	custody  *custody.Service
	merger   *ledgerview.Merger
	resolver *ledgerview.GenesisResolver
	logger   *zap.Logger
}

// newClients resolves the identity and wires the component stack.
func newClients(orgName, user string) (*clients, error) {
	orgs, err := fabric.DiscoverOrgs(networkPath)
	if err != nil {
		return nil, fmt.Errorf("no Fabric network found: %w", err)
	}
	orgDomain, ok := orgs[orgName]
	if !ok {
		return nil, fmt.Errorf("unknown organization %q (have: %s)", orgName, strings.Join(orgNames(orgs), ", "))
	}

	cfg, err := fabric.NewConfig(
		networkPath,
		viper.GetString("channel"),
		viper.GetString("chaincode"),
		orgName, orgDomain, user,
		viper.GetInt("settle_seconds"),
	)
	if err != nil {
		return nil, err
	}

	logger := newLogger()
	gw := fabric.NewGateway(cfg, logger)
	fetcher := evidence.NewFetcher(gw, logger)

	return &clients{
		cfg:      cfg,
		gateway:  gw,
		fetcher:  fetcher,
		custody:  custody.NewService(gw, time.Duration(cfg.SettleSeconds)*time.Second, logger),
		merger:   ledgerview.NewMerger(fetcher, viper.GetInt("merge_workers"), logger),
		resolver: ledgerview.NewGenesisResolver(cfg, logger),
		logger:   logger,
	}, nil
}

func orgNames(orgs map[string]string) []string {
	names := make([]string, 0, len(orgs))
	for name := range orgs {
		names = append(names, name)
	}
	return names
}

// displayName maps an org short name to its configured friendly name.
func displayName(org string) string {
	names := viper.GetStringMapString("org_display_names")
	if friendly, ok := names[org]; ok {
		return friendly
	}
	return org
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the custodia version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("custodia %s\n", version)
	},
}
