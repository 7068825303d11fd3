package cmd

import (
	"sentiment-lens/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewValidateCommand(o *rootOptions) *cobra.Command {
	var (
		translate  bool
		output     string
		format     string
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "validate <source>",
		Short: "用标注数据验证分类效果",
		Long:  "数据集必须包含标注列（sentiment/label/score/rating 等），无法识别标注的行会被丢弃",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg := o.cfg
			if !cmd.Flags().Changed("translate") {
				translate = cfg.PipelineConfig.Translate
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
			report, processed, err := app.pipeline.Validate(ctx, ds, translate)
			if err != nil {
				return err
			}
			if report.RemovedNoTruth > 0 {
				zap.S().Infof("丢弃无标注行: %d", report.RemovedNoTruth)
			}
			logAnalysis(report)

			if exportPath != "" {
				if err := app.exporter.Export(ctx, processed, exportPath); err != nil {
					zap.S().Errorf("导出结果失败: %v", err)
				}
			}
			return writeReport(output, format, report.Validation)
		},
	}

	cmd.Flags().BoolVar(&translate, "translate", false, "分类前翻译为英文（默认取配置 pipeline.translate）")
	cmd.Flags().StringVarP(&output, "output", "o", "", "报告输出文件，默认标准输出")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "报告格式 json|yaml")
	cmd.Flags().StringVar(&exportPath, "export", "", "导出逐行结果 (.csv/.parquet/.json)")
	return cmd
}
