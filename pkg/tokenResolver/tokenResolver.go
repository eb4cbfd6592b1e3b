package tokenResolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Layr-Labs/abi-tool/pkg/abiErrors"
	"github.com/spf13/viper"
)

const (
	EnvApiKey    = "ETHERSCAN_API_KEY"
	ConfigApiKey = "etherscan_api_key"
)

type TokenResolver interface {
	// Resolve returns the explorer API token, read from the config file at configPath or, when
	// configPath is empty, from the environment.
	Resolve(configPath string) (string, error)
}

type DefaultTokenResolver struct {
	LookupEnv func(key string) (string, bool)
}

func NewDefaultTokenResolver() *DefaultTokenResolver {
	return &DefaultTokenResolver{LookupEnv: os.LookupEnv}
}

func (r *DefaultTokenResolver) Resolve(configPath string) (string, error) {
	var token string
	if configPath == "" {
		lookup := r.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		value, ok := lookup(EnvApiKey)
		if !ok {
			return "", abiErrors.Newf("resolve_token", abiErrors.ErrConfig, "%s is not set", EnvApiKey)
		}
		token = value
	} else {
		value, err := readConfigToken(configPath)
		if err != nil {
			return "", err
		}
		token = value
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", abiErrors.New("resolve_token", abiErrors.ErrConfig, "API token is empty")
	}
	return token, nil
}

func readConfigToken(configPath string) (string, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	if filepath.Ext(configPath) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return "", abiErrors.Wrapf("resolve_token", abiErrors.ErrConfig, err, "cannot read config %s", configPath)
	}
	if !v.IsSet(ConfigApiKey) {
		return "", abiErrors.Newf("resolve_token", abiErrors.ErrConfig, "%s missing from %s", ConfigApiKey, configPath)
	}
	return v.GetString(ConfigApiKey), nil
}

// StaticTokenResolver always returns Token.
type StaticTokenResolver struct {
	Token string
}

func (r *StaticTokenResolver) Resolve(string) (string, error) {
	if r.Token == "" {
		return "", abiErrors.New("resolve_token", abiErrors.ErrConfig, "API token is empty")
	}
	return r.Token, nil
}
