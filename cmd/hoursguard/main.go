package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"HoursGuard/config"
	"HoursGuard/internal/app"
	"HoursGuard/internal/errhandler"
	"HoursGuard/internal/notify"
	"HoursGuard/internal/service"
	apperrors "HoursGuard/pkg/errors"
	"HoursGuard/pkg/logger"
)

// localDevice CLI 使用的固定设备
const localDevice = "local"

// cli 命令共享的状态。ws 非空时跳过初始化（测试注入）
type cli struct {
	out    io.Writer
	errOut io.Writer

	// 全局参数
	dbPath   string
	deviceID string
	asJSON   bool
	verbose  bool

	app      *app.App
	provider *service.Provider
	ws       *service.Workspace
	notices  *notify.Collector
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, errOut: os.Stderr}
	err := c.run(ctx, os.Args[1:])
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

// run 执行一条命令。命令失败时写入设备错误日志，提示和错误一并输出到 errOut
func (c *cli) run(ctx context.Context, args []string) error {
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	err := root.ExecuteContext(ctx)
	if err != nil && c.ws != nil {
		c.ws.Errors.Handle(ctx, err, errhandler.Options{Silent: true})
	}
	c.printNotices()
	if err != nil {
		c.printError(err)
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "hoursguard",
		Short: "HoursGuard - 上下班打卡与工时统计",
		Long: `HoursGuard 记录每天的上下班时间，统计周、月和任意区间的工时，
支持导出为文本、CSV、Excel 和 JSON，并自动维护本地备份。

数据默认保存在当前目录的 SQLite 文件中，可通过 --db 或 SQLITE_PATH 修改。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, col := notify.WithCollector(cmd.Context())
			cmd.SetContext(ctx)
			c.notices = col
			return c.init(ctx)
		},
	}

	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite 数据文件路径（默认读取 SQLITE_PATH）")
	root.PersistentFlags().StringVar(&c.deviceID, "device", localDevice, "设备 ID，不同设备的数据互相隔离")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "以 JSON 输出")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newClockInCmd(c),
		newClockOutCmd(c),
		newEditCmd(c),
		newRemoveCmd(c),
		newListCmd(c),
		newTodayCmd(c),
		newStatsCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newCleanupCmd(c),
		newBackupCmd(c),
		newHealthCmd(c),
		newErrorsCmd(c),
		newDaemonCmd(c),
	)
	return root
}

func (c *cli) init(ctx context.Context) error {
	if c.ws != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.SQLitePath = c.dbPath
	}
	// 标准输出留给命令结果
	if cfg.LoggerOutputPath == "stdout" {
		cfg.LoggerOutputPath = "stderr"
	}
	cfg.LoggerLevel = "WARN"
	if c.verbose {
		cfg.LoggerLevel = "DEBUG"
	}
	if err := logger.Init(cfg); err != nil {
		return err
	}

	a, err := app.Build(ctx, cfg, app.Options{
		Component: "cli",
		Notifier:  notify.Context{},
	})
	if err != nil {
		return err
	}
	c.app = a

	if _, err := a.Provider.Devices().Ensure(ctx, c.deviceID, c.deviceID); err != nil {
		return err
	}
	c.provider = a.Provider
	c.ws = a.Provider.Workspace(c.deviceID)
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		logger.Sync()
	}
}

func (c *cli) printNotices() {
	if c.notices == nil {
		return
	}
	for _, n := range c.notices.Notices() {
		if n.Title != "" {
			fmt.Fprintf(c.errOut, "【%s】%s\n", n.Title, n.Message)
		} else {
			fmt.Fprintf(c.errOut, "提示：%s\n", n.Message)
		}
		for _, s := range n.Suggestions {
			fmt.Fprintf(c.errOut, "  - %s\n", s)
		}
	}
}

func (c *cli) printError(err error) {
	msg := apperrors.UserMessageOf(err)
	if def, ok := apperrors.DefinitionOf(err); ok {
		fmt.Fprintf(c.errOut, "错误：%s（%s）\n", msg, def.Code)
	} else {
		fmt.Fprintf(c.errOut, "错误：%s\n", msg)
	}
	if c.verbose {
		fmt.Fprintf(c.errOut, "  %v\n", err)
	}
}

// emit --json 时输出 JSON，否则调用 text
func (c *cli) emit(v any, text func(w io.Writer)) error {
	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(c.out)
	return nil
}
