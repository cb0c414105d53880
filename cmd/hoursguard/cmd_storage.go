package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"HoursGuard/internal/model"
	"HoursGuard/internal/schedule"
	apperrors "HoursGuard/pkg/errors"
)

const timeLayout = "2006-01-02 15:04"

func newBackupCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "管理本地备份",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "立即创建备份",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.ws.Store.ForceBackup(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(summary, func(w io.Writer) {
				fmt.Fprintf(w, "已创建备份 %s（%d 条记录）\n", summary.Timestamp.Local().Format(timeLayout), summary.RecordCount)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "列出备份，0 为最新",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backups := c.ws.Store.ListBackups(cmd.Context())
			return c.emit(backups, func(w io.Writer) {
				if len(backups) == 0 {
					fmt.Fprintln(w, "尚未创建备份")
					return
				}
				for _, b := range backups {
					fmt.Fprintf(w, "[%d] %s  %d 条记录\n", b.Index, b.Timestamp.Local().Format(timeLayout), b.RecordCount)
				}
			})
		},
	}

	restore := &cobra.Command{
		Use:   "restore [index]",
		Short: "从备份恢复，默认最新的一份",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return apperrors.Validation("cli.backup.restore", apperrors.InvalidRequest)
				}
				index = n
			}

			result := c.ws.Store.RestoreFromBackup(cmd.Context(), index)
			if !result.Success {
				return apperrors.User("cli.backup.restore", apperrors.BackupNotFound).WithUserMessage(result.Message)
			}
			return c.emit(result, func(w io.Writer) {
				fmt.Fprintln(w, result.Message)
			})
		},
	}

	cmd.AddCommand(create, list, restore)
	return cmd
}

func newHealthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "检查存储健康状况和用量",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			report := c.ws.Store.CheckStorageHealth(ctx)
			info, err := c.ws.Store.StorageInfo(ctx)
			if err != nil {
				return err
			}

			out := struct {
				Health model.HealthReport `json:"health"`
				Info   model.StorageInfo  `json:"info"`
			}{report, info}
			return c.emit(out, func(w io.Writer) {
				if report.IsHealthy {
					fmt.Fprintln(w, "存储状态：正常")
				} else {
					fmt.Fprintln(w, "存储状态：异常")
				}
				for _, issue := range report.Issues {
					fmt.Fprintf(w, "  问题：%s\n", issue)
				}
				for _, s := range report.Suggestions {
					fmt.Fprintf(w, "  建议：%s\n", s)
				}
				fmt.Fprintf(w, "已用 %.1f KB / %.0f KB（%.1f%%）\n",
					float64(info.CurrentSize)/1024, float64(info.LimitSize)/1024, info.UsageRatio*100)
			})
		},
	}
}

func newErrorsCmd(c *cli) *cobra.Command {
	var clear bool
	var exportPath string
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "查看最近的错误日志",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if clear {
				if err := c.ws.Errors.ClearErrorLogs(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "已清空错误日志")
				return nil
			}
			if exportPath != "" {
				data, err := c.ws.Errors.ExportErrorLogs(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(exportPath, data, 0o644); err != nil {
					return apperrors.File("cli.errors", err)
				}
				fmt.Fprintf(c.out, "错误日志已导出到 %s\n", exportPath)
				return nil
			}

			logs, err := c.ws.Errors.ErrorLogs(ctx)
			if err != nil {
				return err
			}
			return c.emit(logs, func(w io.Writer) {
				if len(logs) == 0 {
					fmt.Fprintln(w, "暂无错误日志")
					return
				}
				for _, l := range logs {
					fmt.Fprintf(w, "%s [%s/%s] %s: %s\n",
						l.Timestamp.Local().Format(timeLayout), l.Type, l.Severity, l.Context, l.Message)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "清空错误日志")
	cmd.Flags().StringVar(&exportPath, "export", "", "导出错误日志到 JSON 文件")
	return cmd
}

func newDaemonCmd(c *cli) *cobra.Command {
	var interval time.Duration
	var cleanupDays int
	var once bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "前台运行定时维护（备份、健康检查、自动清理）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app != nil {
				if !cmd.Flags().Changed("interval") {
					interval = c.app.Config.SchedulerInterval
				}
				if !cmd.Flags().Changed("cleanup-days") {
					cleanupDays = c.app.Config.AutoCleanupDays
				}
			}
			s := schedule.New(c.provider, schedule.Options{
				Interval:        interval,
				AutoCleanupDays: cleanupDays,
			})
			if once {
				results, err := s.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				return c.emit(results, func(w io.Writer) {
					for _, r := range results {
						if r.ReadErr != nil {
							fmt.Fprintf(w, "%s 读取失败，已跳过备份和清理：%s\n", r.DeviceID, apperrors.UserMessageOf(r.ReadErr))
							continue
						}
						fmt.Fprintf(w, "%s 备份=%t 健康=%t 清理=%d\n", r.DeviceID, r.BackedUp, r.Health.IsHealthy, r.CleanedUp)
					}
				})
			}

			fmt.Fprintf(c.errOut, "维护任务已启动，间隔 %s，按 Ctrl+C 退出\n", interval)
			s.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "维护间隔，默认读取 SCHEDULER_INTERVAL")
	cmd.Flags().IntVar(&cleanupDays, "cleanup-days", 0, "自动清理多少天之前的记录，0 表示不清理，默认读取 AUTO_CLEANUP_DAYS")
	cmd.Flags().BoolVar(&once, "once", false, "只执行一次")
	return cmd
}
