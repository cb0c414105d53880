package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"HoursGuard/internal/export"
	"HoursGuard/internal/model"
	"HoursGuard/internal/service"
	"HoursGuard/internal/stats"
)

func newStatsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "工时统计（周、月、自定义区间）",
	}

	var ref string
	week := &cobra.Command{
		Use:   "week",
		Short: "本周统计，周一至周日",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.ws.Records.WeekStats(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return c.printStats(st)
		},
	}
	week.Flags().StringVar(&ref, "date", "", "统计该日期所在的周，默认今天")

	month := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "月度统计，默认当月",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m string
			if len(args) == 1 {
				m = args[0]
			}
			st, err := c.ws.Records.MonthStats(cmd.Context(), m)
			if err != nil {
				return err
			}
			return c.printStats(st)
		},
	}

	rangeCmd := &cobra.Command{
		Use:   "range <start> <end>",
		Short: "自定义区间统计，包含首尾两天",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.ws.Records.RangeStats(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.printStats(st)
		},
	}

	cmd.AddCommand(week, month, rangeCmd)
	return cmd
}

func (c *cli) printStats(st model.Stats) error {
	return c.emit(st, func(w io.Writer) {
		fmt.Fprintf(w, "统计区间：%s 至 %s\n", st.Period.Start, st.Period.End)
		fmt.Fprintf(w, "完成天数：%d（共 %d 条记录）\n", st.WorkDays, st.TotalRecords)
		fmt.Fprintf(w, "总时长：%s（%.2f 小时）\n", st.TotalText, st.TotalHours)
		fmt.Fprintf(w, "平均时长：%s（%.2f 小时）\n", st.AvgText, st.AvgHours)
	})
}

func newExportCmd(c *cli) *cobra.Command {
	var format, month, from, to, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出打卡记录（text、csv、xlsx、json）",
		Example: `  hoursguard export --format csv --month 2024-01
  hoursguard export --format xlsx --from 2024-01-01 --to 2024-03-31 -o q1.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			var period *model.Period
			switch {
			case month != "":
				p, err := stats.ParseMonth(month)
				if err != nil {
					return err
				}
				period = &p
			case from != "" || to != "":
				p, err := stats.RangePeriod(from, to)
				if err != nil {
					return err
				}
				period = &p
			}

			doc, err := c.ws.Records.Export(cmd.Context(), period, f)
			if err != nil {
				return err
			}

			// 文本格式默认直接输出
			if output == "" && f == export.FormatText {
				_, err := c.out.Write(doc.Body)
				return err
			}
			if output == "" {
				output = doc.Filename
			}
			if err := os.WriteFile(output, doc.Body, 0o644); err != nil {
				return err
			}
			abs, _ := filepath.Abs(output)
			fmt.Fprintf(c.out, "已导出到 %s\n", abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "导出格式 text|csv|xlsx|json")
	cmd.Flags().StringVar(&month, "month", "", "月份 YYYY-MM")
	cmd.Flags().StringVar(&from, "from", "", "起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "结束日期 YYYY-MM-DD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认使用导出文件名")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "从 JSON 导出文件导入记录",
		Long: `从 JSON 文件导入记录，文件可以是 export --format json 的导出结果，也可以是记录数组。
任意一条记录不合法时整批拒绝。merge 模式按日期覆盖已有记录，replace 模式替换全部记录。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			records, err := export.ParseDump(data)
			if err != nil {
				return err
			}

			res, err := c.ws.Records.ImportRecords(cmd.Context(), records, service.ImportMode(mode))
			if err != nil {
				return err
			}
			return c.emit(res, func(w io.Writer) {
				fmt.Fprintf(w, "已导入 %d 条记录（%s），当前共 %d 条\n", res.Imported, res.Mode, res.Total)
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(service.ImportMerge), "导入模式 merge|replace")
	return cmd
}

func newCleanupCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "删除指定天数之前的记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := c.ws.Records.CleanupOldData(cmd.Context(), days)
			if err != nil {
				return err
			}
			return c.emit(map[string]int{"removed": removed}, func(w io.Writer) {
				fmt.Fprintf(w, "已清理 %d 条记录\n", removed)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "保留最近多少天的记录")
	return cmd
}
