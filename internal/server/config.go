package server

import (
	"fmt"

	"github.com/openmined/fileagent/internal/server/auth"
)

const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultRateLimit = "120-M"
)

type Config struct {
	HTTP    HTTPConfig  `mapstructure:"http"`
	Auth    auth.Config `mapstructure:"auth"`
	ACL     ACLConfig   `mapstructure:"acl"`
	RootDir string      `mapstructure:"root_dir"`
	DBPath  string      `mapstructure:"db_path"`
}

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	CertFile  string `mapstructure:"cert_file"`
	KeyFile   string `mapstructure:"key_file"`
	RateLimit string `mapstructure:"rate_limit"`
}

type ACLConfig struct {
	// Enforce gates file operations on the authorization engine in addition
	// to path safety. ACL management endpoints work either way.
	Enforce bool `mapstructure:"enforce"`
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}
	if c.HTTP.RateLimit == "" {
		c.HTTP.RateLimit = DefaultRateLimit
	}
	if c.RootDir == "" {
		return fmt.Errorf("`root_dir` is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("`db_path` is required")
	}
	if c.ACL.Enforce && !c.Auth.Enabled {
		return fmt.Errorf("`acl.enforce` requires auth to be enabled")
	}
	return c.Auth.Validate()
}
