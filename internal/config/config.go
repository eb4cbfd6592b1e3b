package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "ABI_TOOL"

// Keys as stored in viper. Flags are registered in kebab-case and bound through
// KebabToSnakeCase, so "solc.max-banner-lines" lands on SolcMaxBannerLines.
const (
	Debug = "debug"

	Command    = "cmd"
	InputPath  = "in"
	InputType  = "itype"
	OutputType = "otype"
	OutputPath = "out"
	Address    = "addr"
	ConfigFile = "conf"

	SolcPath           = "solc.path"
	SolcVersion        = "solc.version"
	SolcTimeout        = "solc.timeout"
	SolcMaxBannerLines = "solc.max_banner_lines"

	UniqueNames = "unique_names"
	Manifest    = "manifest"
	Progress    = "progress"

	AbiSource      = "abi_source"
	EtherscanUrl   = "etherscan.url"
	EthereumRpcUrl = "ethereum.rpc_url"
	IpfsUrl        = "ipfs.url"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample_rate"

	PrometheusEnabled  = "prometheus.enabled"
	PrometheusTextfile = "prometheus.textfile"
)

const (
	Command_Format = "format"
	Command_Fetch  = "fetch"

	AbiSource_Etherscan = "etherscan"
	AbiSource_Ipfs      = "ipfs"

	DefaultSolcPath           = "solc"
	DefaultSolcMaxBannerLines = 16
	DefaultEtherscanUrl       = "https://api.etherscan.io/api"
	DefaultIpfsUrl            = "https://ipfs.io/ipfs"
)

type Config struct {
	Debug             bool
	Command           string
	ConversionConfig  ConversionConfig
	SolcConfig        SolcConfig
	FetchConfig       FetchConfig
	EtherscanConfig   EtherscanConfig
	EthereumRpcConfig EthereumRpcConfig
	IpfsConfig        IpfsConfig
	DataDogConfig     DataDogConfig
	PrometheusConfig  PrometheusConfig
}

type ConversionConfig struct {
	InputPath   string
	InputType   string
	OutputType  string
	OutputPath  string
	UniqueNames bool
	Manifest    bool
}

type SolcConfig struct {
	Path           string
	Version        string
	Timeout        time.Duration
	MaxBannerLines int
}

type FetchConfig struct {
	Address    string
	ConfigFile string
	AbiSource  string
	Progress   bool
}

type EtherscanConfig struct {
	Url string
}

type EthereumRpcConfig struct {
	BaseUrl string
}

type IpfsConfig struct {
	Url string
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type PrometheusConfig struct {
	Enabled  bool
	Textfile string
}

func NewConfig() *Config {
	return &Config{
		Debug:   viper.GetBool(Debug),
		Command: viper.GetString(Command),

		ConversionConfig: ConversionConfig{
			InputPath:   viper.GetString(InputPath),
			InputType:   viper.GetString(InputType),
			OutputType:  viper.GetString(OutputType),
			OutputPath:  viper.GetString(OutputPath),
			UniqueNames: viper.GetBool(UniqueNames),
			Manifest:    viper.GetBool(Manifest),
		},

		SolcConfig: SolcConfig{
			Path:           stringOrDefault(viper.GetString(SolcPath), DefaultSolcPath),
			Version:        viper.GetString(SolcVersion),
			Timeout:        viper.GetDuration(SolcTimeout),
			MaxBannerLines: intOrDefault(viper.GetInt(SolcMaxBannerLines), DefaultSolcMaxBannerLines),
		},

		FetchConfig: FetchConfig{
			Address:    viper.GetString(Address),
			ConfigFile: viper.GetString(ConfigFile),
			AbiSource:  stringOrDefault(viper.GetString(AbiSource), AbiSource_Etherscan),
			Progress:   viper.GetBool(Progress),
		},

		EtherscanConfig: EtherscanConfig{
			Url: stringOrDefault(viper.GetString(EtherscanUrl), DefaultEtherscanUrl),
		},

		EthereumRpcConfig: EthereumRpcConfig{
			BaseUrl: viper.GetString(EthereumRpcUrl),
		},

		IpfsConfig: IpfsConfig{
			Url: stringOrDefault(viper.GetString(IpfsUrl), DefaultIpfsUrl),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(DataDogStatsdEnabled),
				Url:        viper.GetString(DataDogStatsdUrl),
				SampleRate: viper.GetFloat64(DataDogStatsdSampleRate),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled:  viper.GetBool(PrometheusEnabled),
			Textfile: viper.GetString(PrometheusTextfile),
		},
	}
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func stringOrDefault(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOrDefault(i int, def int) int {
	if i <= 0 {
		return def
	}
	return i
}
