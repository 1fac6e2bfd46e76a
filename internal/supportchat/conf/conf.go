package conf

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DefaultHTTPAddr = "127.0.0.1:5040"

	// Development credentials; deployments override these via config file or
	// SUPPORTCHAT_* environment variables.
	defaultOperatorUser = "support"
	defaultOperatorPass = "sesame"
)

// OperatorAuth is the single privileged credential pair allowed to read and
// write the support state document.
type OperatorAuth struct {
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
}

// ServerConfig is the process configuration.
type ServerConfig struct {
	HTTPAddr string       `mapstructure:"http_addr" json:"http_addr"`
	DataDir  string       `mapstructure:"data_dir" json:"data_dir"`
	Auth     OperatorAuth `mapstructure:"auth" json:"auth"`

	// AuthKey is the secret handed to an authenticated support console so it
	// can connect to the chat SDK as the support user. Injected from the
	// environment or a secret store, never baked into source.
	AuthKey string `mapstructure:"auth_key" json:"auth_key"`
}

// Normalize trims fields and applies defaults.
func (c *ServerConfig) Normalize() {
	if c == nil {
		return
	}
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	c.DataDir = strings.TrimSpace(c.DataDir)
	c.Auth.Username = strings.TrimSpace(c.Auth.Username)
	c.Auth.Password = strings.TrimSpace(c.Auth.Password)
	if c.Auth.Username == "" {
		c.Auth.Username = defaultOperatorUser
	}
	if c.Auth.Password == "" {
		c.Auth.Password = defaultOperatorPass
	}
	c.AuthKey = strings.TrimSpace(c.AuthKey)
}

// Load reads configuration from the optional file at path, the working
// directory, and SUPPORTCHAT_* environment variables, in ascending priority.
func Load(path string) (*ServerConfig, *viper.Viper, error) {
	v := viper.New()
	v.SetDefault("http_addr", DefaultHTTPAddr)
	v.SetDefault("data_dir", "")
	v.SetDefault("auth.username", defaultOperatorUser)
	v.SetDefault("auth.password", defaultOperatorPass)
	v.SetDefault("auth_key", "")

	v.SetEnvPrefix("supportchat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("supportchat")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, nil, err
		}
		log.Debug().Err(err).Msg("no config file, using defaults and environment")
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, err
	}
	cfg.Normalize()
	return &cfg, v, nil
}

// Watch re-reads the config file on change and hands the fresh config to
// onChange. Lets operators rotate credentials without a restart.
func Watch(v *viper.Viper, onChange func(*ServerConfig)) {
	if v == nil || onChange == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg ServerConfig
		if err := v.Unmarshal(&cfg); err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("ignoring config change")
			return
		}
		cfg.Normalize()
		log.Info().Str("file", e.Name).Msg("config reloaded")
		onChange(&cfg)
	})
	v.WatchConfig()
}
