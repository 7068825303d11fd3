package cmd

import (
	"fmt"

	"sentiment-lens/config"
	"sentiment-lens/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewCompareCommand(o *rootOptions) *cobra.Command {
	var (
		output   string
		format   string
		profiles []string
	)

	cmd := &cobra.Command{
		Use:   "compare <source>",
		Short: "对比多组流水线配置的验证指标",
		Long:  "依次使用 compare.profiles 中的每组配置运行验证，某组失败时记录错误并继续",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			selected, err := selectProfiles(o.cfg.CompareConfig.Profiles, profiles)
			if err != nil {
				return err
			}

			ctx := signals.SetupSignalHandler()
			app, err := newApplication(ctx, o.cfg)
			if err != nil {
				return err
			}
			defer app.close()

			ds, err := app.loader.Load(ctx, args[0])
			if err != nil {
				return err
			}
			results := app.pipeline.Compare(ctx, ds, selected)

			zap.S().Infof("%-16s %10s %10s %10s %10s", "配置", "accuracy", "precision", "recall", "f1")
			for _, r := range results {
				if r.Metrics == nil {
					zap.S().Warnf("%-16s 失败: %s", r.Name, r.Error)
					continue
				}
				zap.S().Infof("%-16s %10.4f %10.4f %10.4f %10.4f", r.Name, r.Metrics.Accuracy, r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1Score)
			}
			return writeReport(output, format, results)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "报告输出文件，默认标准输出")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "报告格式 json|yaml")
	cmd.Flags().StringSliceVarP(&profiles, "profile", "p", nil, "只运行指定名称的配置，可重复")
	return cmd
}

// selectProfiles 按名称筛选，names 为空时返回全部
func selectProfiles(all []config.ProfileConfig, names []string) ([]config.ProfileConfig, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("compare.profiles 未配置")
	}
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]config.ProfileConfig, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}
	out := make([]config.ProfileConfig, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("未找到配置 %q", name)
		}
		out = append(out, p)
	}
	return out, nil
}
