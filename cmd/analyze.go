package cmd

import (
	"sentiment-lens/pkg/service"
	"sentiment-lens/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewAnalyzeCommand(o *rootOptions) *cobra.Command {
	var (
		translate  bool
		validate   bool
		output     string
		format     string
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "对数据集做情感分类",
		Long:  "自动识别文本列并分类，存在标注列时附带验证报告。source 可以是本地文件、http(s) 地址或 s3://bucket/key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg := o.cfg
			if !cmd.Flags().Changed("translate") {
				translate = cfg.PipelineConfig.Translate
			}
			if !cmd.Flags().Changed("validate") {
				validate = cfg.PipelineConfig.ValidateOnAnalyze
			}

			ctx := signals.SetupSignalHandler()
			app, err := newApplication(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.close()

			ds, err := app.loader.Load(ctx, args[0])
			if err != nil {
				return err
			}
			report, processed, err := app.pipeline.Analyze(ctx, ds, service.RunOptions{Translate: translate, Validate: validate})
			if err != nil {
				return err
			}
			logAnalysis(report)

			if exportPath != "" {
				if err := app.exporter.Export(ctx, processed, exportPath); err != nil {
					zap.S().Errorf("导出结果失败: %v", err)
				}
			}
			return writeReport(output, format, report)
		},
	}

	cmd.Flags().BoolVar(&translate, "translate", false, "分类前翻译为英文（默认取配置 pipeline.translate）")
	cmd.Flags().BoolVar(&validate, "validate", true, "存在标注列时计算验证指标（默认取配置 pipeline.validate）")
	cmd.Flags().StringVarP(&output, "output", "o", "", "报告输出文件，默认标准输出")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "报告格式 json|yaml")
	cmd.Flags().StringVar(&exportPath, "export", "", "导出逐行结果 (.csv/.parquet/.json)")
	return cmd
}
