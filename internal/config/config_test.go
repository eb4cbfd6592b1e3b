package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func Test_Config(t *testing.T) {
	t.Run("Should apply defaults when nothing is set", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		cfg := NewConfig()
		assert.False(t, cfg.Debug)
		assert.Equal(t, DefaultSolcPath, cfg.SolcConfig.Path)
		assert.Equal(t, DefaultSolcMaxBannerLines, cfg.SolcConfig.MaxBannerLines)
		assert.Equal(t, time.Duration(0), cfg.SolcConfig.Timeout)
		assert.Equal(t, AbiSource_Etherscan, cfg.FetchConfig.AbiSource)
		assert.Equal(t, DefaultEtherscanUrl, cfg.EtherscanConfig.Url)
		assert.Equal(t, DefaultIpfsUrl, cfg.IpfsConfig.Url)
	})
	t.Run("Should read values set in viper", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		viper.Set(Command, "format")
		viper.Set(InputPath, "sample.sol")
		viper.Set(InputType, "sol")
		viper.Set(OutputType, "json_mini")
		viper.Set(SolcTimeout, "30s")
		viper.Set(SolcMaxBannerLines, 4)
		viper.Set(UniqueNames, true)

		cfg := NewConfig()
		assert.Equal(t, Command_Format, cfg.Command)
		assert.Equal(t, "sample.sol", cfg.ConversionConfig.InputPath)
		assert.Equal(t, "sol", cfg.ConversionConfig.InputType)
		assert.Equal(t, "json_mini", cfg.ConversionConfig.OutputType)
		assert.Equal(t, 30*time.Second, cfg.SolcConfig.Timeout)
		assert.Equal(t, 4, cfg.SolcConfig.MaxBannerLines)
		assert.True(t, cfg.ConversionConfig.UniqueNames)
	})
	t.Run("Should read prefixed environment variables", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		t.Setenv("ABI_TOOL_SOLC_PATH", "/opt/solc/solc-0.8.26")
		viper.SetEnvPrefix(ENV_PREFIX)
		assert.Nil(t, viper.BindEnv(SolcPath, "ABI_TOOL_SOLC_PATH"))

		cfg := NewConfig()
		assert.Equal(t, "/opt/solc/solc-0.8.26", cfg.SolcConfig.Path)
	})
}

func Test_KebabToSnakeCase(t *testing.T) {
	assert.Equal(t, "solc.max_banner_lines", KebabToSnakeCase("solc.max-banner-lines"))
	assert.Equal(t, "unique_names", KebabToSnakeCase("unique-names"))
	assert.Equal(t, "in", KebabToSnakeCase("in"))
}
