package cmd

import (
	"sentiment-lens/pkg/server"
	"sentiment-lens/pkg/signals"

	"github.com/spf13/cobra"
)

func NewServeCommand(o *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Long:  "提供 /api/health、/api/analyze、/api/validate 和 /metrics 接口",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg
			if addr != "" {
				cfg.ServerConfig.Addr = addr
			}

			ctx := signals.SetupSignalHandler()
			app, err := newApplication(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.close()

			return server.New(cfg.ServerConfig, app.loader, app.pipeline, app.metrics).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖配置 server.addr")
	return cmd
}
