package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"HoursGuard/internal/model"
	"HoursGuard/internal/stats"
	"HoursGuard/utils"
)

type clockFunc func(ctx context.Context, date, clock string) (model.AttendanceRecord, error)

func newClockInCmd(c *cli) *cobra.Command {
	return newClockCmd(c, "in", "上班打卡", "上班", func(ctx context.Context, date, clock string) (model.AttendanceRecord, error) {
		return c.ws.Records.ClockIn(ctx, date, clock)
	})
}

func newClockOutCmd(c *cli) *cobra.Command {
	return newClockCmd(c, "out", "下班打卡（支持跨天下班）", "下班", func(ctx context.Context, date, clock string) (model.AttendanceRecord, error) {
		return c.ws.Records.ClockOut(ctx, date, clock)
	})
}

func newClockCmd(c *cli, use, short, verb string, fn clockFunc) *cobra.Command {
	var date, clock string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + "。不指定 --date 和 --time 时使用当前时间。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := fn(cmd.Context(), date, clock)
			if err != nil {
				return err
			}
			return c.emit(r, func(w io.Writer) {
				fmt.Fprintf(w, "%s打卡成功：%s\n", verb, formatRecord(r))
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "时间 HH:MM")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var on, off string
	var clearOn, clearOff bool
	cmd := &cobra.Command{
		Use:   "edit <date>",
		Short: "修改某天的上下班时间，记录不存在时创建",
		Example: `  hoursguard edit 2024-01-15 --on 09:00 --off 18:30
  hoursguard edit 2024-01-15 --clear-off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := c.ws.Records.GetRecord(ctx, args[0])
			if err != nil {
				current = model.AttendanceRecord{Date: args[0]}
			}

			newOn, newOff := current.On, current.Off
			if cmd.Flags().Changed("on") {
				newOn = model.StringPtr(on)
			}
			if cmd.Flags().Changed("off") {
				newOff = model.StringPtr(off)
			}
			if clearOn {
				newOn = nil
			}
			if clearOff {
				newOff = nil
			}

			r, err := c.ws.Records.UpdateRecord(ctx, args[0], newOn, newOff)
			if err != nil {
				return err
			}
			return c.emit(r, func(w io.Writer) {
				fmt.Fprintf(w, "已更新：%s\n", formatRecord(r))
			})
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "上班时间 HH:MM")
	cmd.Flags().StringVar(&off, "off", "", "下班时间 HH:MM")
	cmd.Flags().BoolVar(&clearOn, "clear-on", false, "清除上班时间")
	cmd.Flags().BoolVar(&clearOff, "clear-off", false, "清除下班时间")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <date>",
		Aliases: []string{"delete"},
		Short:   "删除某天的记录",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ws.Records.DeleteRecord(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "已删除 %s 的记录\n", args[0])
			})
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	var from, to, month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "按日期列出打卡记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != "" {
				p, err := stats.ParseMonth(month)
				if err != nil {
					return err
				}
				from, to = p.Start, p.End
			}

			records, err := c.ws.Records.ListRecords(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return c.emit(records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "暂无打卡记录")
					return
				}
				for _, r := range records {
					fmt.Fprintln(w, formatRecord(r))
				}
				fmt.Fprintf(w, "共 %d 条\n", len(records))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "结束日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&month, "month", "", "月份 YYYY-MM，优先于 --from/--to")
	return cmd
}

func newTodayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "查看今日打卡状态",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.ws.Records.Today(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(st, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", st.Date, stateLabel(st.State))
				if st.Record != nil {
					fmt.Fprintf(w, "上班 %s  下班 %s\n", valueOr(st.Record.On), valueOr(st.Record.Off))
				}
				if st.DurationMinutes > 0 {
					fmt.Fprintf(w, "工作时长 %s\n", st.Duration)
				}
			})
		},
	}
}

func formatRecord(r model.AttendanceRecord) string {
	line := fmt.Sprintf("%s %s  上班 %s  下班 %s", r.Date, utils.WeekdayName(r.Date), valueOr(r.On), valueOr(r.Off))
	if r.IsComplete() {
		line += "  时长 " + utils.CalculateDuration(*r.On, *r.Off)
	}
	return line
}

func stateLabel(state string) string {
	switch state {
	case model.StateClockedIn.String():
		return "上班中"
	case model.StateComplete.String():
		return "已下班"
	case model.StateIncomplete.String():
		return "缺少上班时间"
	default:
		return "未打卡"
	}
}

func valueOr(s *string) string {
	if s == nil || *s == "" {
		return "--:--"
	}
	return *s
}
