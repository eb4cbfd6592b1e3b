package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/Layr-Labs/abi-tool/internal/config"
	"github.com/Layr-Labs/abi-tool/internal/logger"
	"github.com/Layr-Labs/abi-tool/internal/metrics"
	"github.com/Layr-Labs/abi-tool/internal/shutdown"
	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "abitool",
		Short: "Convert smart contract ABIs between source, JSON, minified JSON and signature lists",
		Example: `  abitool --cmd format --in Token.sol --itype sol --otype json_mini
  abitool --cmd format --in erc20.json --itype json --otype ethers --out ./abis
  abitool --cmd fetch --addr 0x29a954e9e7f12936db89b183ecdf879fbbb99f14 --conf abitool.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			switch cfg.Command {
			case config.Command_Format, config.Command_Fetch:
			default:
				return abiErrors.Newf("cli", abiErrors.ErrInput, "unknown command %q, expected %s or %s", cfg.Command, config.Command_Format, config.Command_Fetch)
			}
			cmd.SilenceUsage = true
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	initConfig(rootCmd)

	rootCmd.Flags().StringP("cmd", "c", "", `Command to run: "format" or "fetch"`)
	rootCmd.Flags().StringP("in", "i", "", "Path of the input file")
	rootCmd.Flags().StringP("itype", "d", "", "Input type: sol, json or json_mini")
	rootCmd.Flags().StringP("otype", "t", "", "Output type: json, json_mini, ethers or all (case-insensitive, default all)")
	rootCmd.Flags().StringP("out", "o", "", "Output directory (default <cwd>/tmp)")
	rootCmd.Flags().StringP("addr", "a", "", "Contract address to fetch the ABI of")
	rootCmd.Flags().StringP("conf", "f", "", "YAML config holding etherscan_api_key (default $ETHERSCAN_API_KEY)")
	_ = rootCmd.MarkFlagRequired("cmd")

	rootCmd.PersistentFlags().Bool("debug", false, `"true" or "false"`)

	rootCmd.PersistentFlags().String("solc.path", config.DefaultSolcPath, "Compiler binary used for sol input")
	rootCmd.PersistentFlags().String("solc.version", "", `solc release to install and use through solc-select, e.g. "0.8.20"`)
	rootCmd.PersistentFlags().Duration("solc.timeout", 0, "Kill the compiler after this long (0 disables)")
	rootCmd.PersistentFlags().Int("solc.max-banner-lines", config.DefaultSolcMaxBannerLines, "Non-ABI lines tolerated before the ABI line of the compiler output")

	rootCmd.PersistentFlags().Bool("unique-names", false, "Add seconds, milliseconds and a random token to artifact names")
	rootCmd.PersistentFlags().Bool("manifest", false, "Record every artifact in manifest.csv next to it")
	rootCmd.PersistentFlags().Bool("progress", false, "Show download progress while fetching")

	rootCmd.PersistentFlags().String("abi-source", config.AbiSource_Etherscan, `Where fetch reads ABIs from: "etherscan" or "ipfs"`)
	rootCmd.PersistentFlags().String("etherscan.url", config.DefaultEtherscanUrl, "Etherscan API endpoint")
	rootCmd.PersistentFlags().String("ethereum.rpc-url", "", `e.g. "http://<hostname>:8545", required by the ipfs source`)
	rootCmd.PersistentFlags().String("ipfs.url", config.DefaultIpfsUrl, "IPFS gateway")

	rootCmd.PersistentFlags().Bool("datadog.statsd.enabled", false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String("datadog.statsd.url", "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool("prometheus.enabled", false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String("prometheus.textfile", "", `Write metrics to this file in text exposition format on exit`)

	rootCmd.AddCommand(newVersionCmd())

	for _, flags := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
		flags.VisitAll(func(f *pflag.Flag) {
			key := config.KebabToSnakeCase(f.Name)
			viper.BindPFlag(key, f) //nolint:errcheck
			viper.BindEnv(key)      //nolint:errcheck
		})
	}

	return rootCmd
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, Console: true})
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	ctx, cancel := shutdown.WithGracefulShutdown(ctx, l)
	defer cancel()

	clients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		l.Sugar().Errorw("Failed to setup metrics sink", zap.Error(err))
		return err
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, clients)
	if err != nil {
		l.Sugar().Errorw("Failed to setup metrics sink", zap.Error(err))
		return err
	}
	defer func() {
		if err := sink.Flush(); err != nil {
			l.Sugar().Errorw("Failed to flush metrics", zap.Error(err))
		}
	}()

	if cfg.Command == config.Command_Fetch {
		return runFetch(ctx, cfg, sink, stdout, l)
	}
	return runFormat(ctx, cfg, sink, stdout, l)
}

// Run executes the CLI against the process arguments and returns the exit code.
func Run() int {
	viper.Reset()
	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func Execute() {
	if code := Run(); code != 0 {
		os.Exit(code)
	}
}
