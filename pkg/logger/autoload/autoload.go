// Package autoload initializes the global logger from LOG_* env vars
// as a side effect of being imported.
package autoload

import (
	configx "github.com/verifyd/kyc-agent-pipeline/pkg/config"
	logx "github.com/verifyd/kyc-agent-pipeline/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
