package cmd

import (
	"sentiment-lens/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "sentiment-lens",
		Short:         "文本情感分析与模型验证工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径，不存在时使用默认配置")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别，覆盖配置文件中的 log.level")

	rootCmd.AddCommand(NewAnalyzeCommand(opts))
	rootCmd.AddCommand(NewValidateCommand(opts))
	rootCmd.AddCommand(NewCompareCommand(opts))
	rootCmd.AddCommand(NewServeCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		zap.S().Info("使用 'analyze' 子命令分析数据集，'validate' 子命令验证模型")
		cmd.Help()
	}
	rootCmd.Version = util.GetVersion().Version
	return rootCmd
}
