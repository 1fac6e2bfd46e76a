package ctx

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/ysy950803/supportchat/internal/supportchat/conf"
	"github.com/ysy950803/supportchat/pkg/util"
)

// Context is the process-wide runtime state: the effective configuration
// behind a lock, so the HTTP service always reads current credentials even
// across config reloads.
type Context struct {
	mu sync.RWMutex
	v  *viper.Viper

	HTTPAddr string
	DataDir  string

	operatorUser string
	operatorPass string
	authKey      string
}

func New(configPath string) (*Context, error) {
	cfg, v, err := conf.Load(configPath)
	if err != nil {
		return nil, err
	}

	c := &Context{v: v}
	c.Apply(cfg)
	return c, nil
}

// Apply replaces the effective configuration.
func (c *Context) Apply(cfg *conf.ServerConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.HTTPAddr = cfg.HTTPAddr
	c.DataDir = cfg.DataDir
	if c.DataDir == "" {
		c.DataDir = util.DefaultWorkDir("data")
	}
	c.operatorUser = cfg.Auth.Username
	c.operatorPass = cfg.Auth.Password
	c.authKey = cfg.AuthKey
}

// WatchConfig reloads credentials and the auth key when the config file
// changes. The listen address and data dir stay fixed for the process
// lifetime.
func (c *Context) WatchConfig() {
	conf.Watch(c.v, func(cfg *conf.ServerConfig) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.operatorUser = cfg.Auth.Username
		c.operatorPass = cfg.Auth.Password
		c.authKey = cfg.AuthKey
	})
}

func (c *Context) GetHTTPAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HTTPAddr
}

func (c *Context) SetHTTPAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HTTPAddr = addr
}

func (c *Context) GetDataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DataDir
}

// GetOperatorCredentials returns the basic-auth pair gating the state API.
func (c *Context) GetOperatorCredentials() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operatorUser, c.operatorPass
}

// GetAuthKey returns the chat SDK secret served to authenticated consoles.
func (c *Context) GetAuthKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authKey
}
