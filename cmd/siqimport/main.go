// siqimport 把本地的 .siq 题包批量导入数据库，与管理接口 POST /api/v1/admin/packages 的效果相同。
//
//	siqimport [-dry-run] file.siq [file2.siq ...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SlpAus/sistatistics-backend/internal/identity"
	"github.com/SlpAus/sistatistics-backend/internal/platform/config"
	"github.com/SlpAus/sistatistics-backend/internal/platform/database"
	"github.com/SlpAus/sistatistics-backend/internal/platform/logger"
	"github.com/SlpAus/sistatistics-backend/internal/platform/metrics"
	"github.com/SlpAus/sistatistics-backend/internal/platform/startup"
	"github.com/SlpAus/sistatistics-backend/internal/question"
	"github.com/SlpAus/sistatistics-backend/internal/siq"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "只解析题包，不写入数据库")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: siqimport [-dry-run] file.siq [file2.siq ...]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var service *question.Service
	if !*dryRun {
		if err := database.InitDB(cfg.Database, cfg.Server.Mode); err != nil {
			log.Fatal("database init failed", "error", err)
		}
		if err := startup.InitializeApplication(ctx, database.DB, log); err != nil {
			log.Fatal("application init failed", "error", err)
		}
		resolver := identity.NewResolver(database.DB, cfg.Statistics.MaxIndexedTextBytes)
		service = question.NewModule(database.DB, resolver, metrics.Nop(), cfg.Statistics.CollectedAnswersThreshold, log).Service
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := importFile(ctx, service, path, log); err != nil {
			failed++
			log.Error("import failed", "file", path, "error", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, service *question.Service, path string, log *logger.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pkg, err := siq.Read(data)
	if err != nil {
		return err
	}

	if service == nil {
		questions := 0
		for _, round := range pkg.Rounds {
			for _, theme := range round.Themes {
				questions += len(theme.Questions)
			}
		}
		log.Info("package parsed", "file", path, "package", pkg.Name, "rounds", len(pkg.Rounds), "questions", questions)
		return nil
	}

	result, err := service.ImportPackage(ctx, pkg)
	if err != nil {
		return err
	}
	log.Info("package imported", "file", path, "package", pkg.Name, "collected", len(result.CollectedAnswers))
	return nil
}
