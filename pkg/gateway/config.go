package gateway

import (
	"time"

	"github.com/spf13/viper"

	"github.com/fuego-wallet/fuego-server/pkg/wallet"
)

// Config is the gateway process configuration, bound from the environment.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	ListenAddress string `mapstructure:"listen_address"`

	// DefaultNetwork is used when a request doesn't name a cluster.
	DefaultNetwork string `mapstructure:"default_network"`

	// WalletDir holds wallet.json / wallet-config.json.
	WalletDir string `mapstructure:"wallet_dir"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

var defaultConfig = Config{
	LogLevel: "info",

	ListenAddress:  "127.0.0.1:8080",
	DefaultNetwork: "mainnet-beta",

	ShutdownGracePeriod: 30 * time.Second,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("listen_address", "LISTEN_ADDRESS")
	_ = viper.BindEnv("default_network", "DEFAULT_NETWORK")
	_ = viper.BindEnv("wallet_dir", "WALLET_DIR")
	_ = viper.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")
}

// LoadConfig resolves the configuration from the environment with defaults
// applied.
func LoadConfig() (*Config, error) {
	config := defaultConfig

	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.WalletDir == "" {
		config.WalletDir = wallet.DefaultDir()
	}

	return &config, nil
}
