package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/temmie0232/ShiftManager/internal/config"
	"github.com/temmie0232/ShiftManager/internal/database"
	"github.com/temmie0232/ShiftManager/internal/repository"
	"github.com/temmie0232/ShiftManager/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var months int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机时间预设, 3: 插入过去几个月的提交记录)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量，或每个员工的时间预设数量")
	flag.IntVar(&months, "months", 3, "要生成提交记录的月份数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	if err := database.RunMigrations(dbpool, logger); err != nil {
		logger.Error("数据库迁移失败", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	loc, err := time.LoadLocation(cfg.Planning.Timezone)
	if err != nil {
		logger.Error("无法加载时区", "error", err)
		return
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}
		cnt := seed.SeedEmployees(context.Background(), repo, n, cfg.Seed.Employee.PIN, cfg.Email.UserDomain)
		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的时间预设数量")
			return
		}
		cnt := seed.SeedPresets(context.Background(), repo, n)
		slog.Info("插入时间预设成功", slog.Int("count", cnt))
	case 3:
		if months <= 0 {
			slog.Error("请输入合法的月份数量")
			return
		}
		cnt := seed.SeedHistory(context.Background(), repo, time.Now().In(loc), months)
		slog.Info("插入提交记录成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
