package main

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/app"
	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

// cli хранит общее состояние команд: конфигурацию, logger и потоки ввода-вывода.
type cli struct {
	configPath string
	logLevel   string

	cfg    app.Config
	logger *log.Entry
	in     io.Reader
	out    io.Writer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:   "rahmet",
		Short: "Заказ еды с собой из ресторанов Rahmet",
		Long: `rahmet — консольный клиент заказа еды с собой.

Показывает рестораны и меню, собирает корзину и отправляет заказ в API.
Для локальной разработки поднимает mock API с тем же контрактом.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	root.AddCommand(
		newRestaurantsCmd(c),
		newMenuCmd(c),
		newOrderCmd(c),
		newShopCmd(c),
		newReceiptsCmd(c),
		newStatusCmd(c),
		newVersionCmd(c),
		newMockAPICmd(c),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, warnings, err := app.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := setupLogger(cfg.LogLevel); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = log.WithField("component", "cli").WithField("command", cmd.Name())
	for _, w := range warnings {
		c.logger.Warn(w)
	}
	c.logger.WithField("build", version.String()).Debug("cli initialized")
	return nil
}

func (c *cli) dependencies(ctx context.Context) (*app.Dependencies, error) {
	return app.NewDependencies(ctx, c.cfg, c.logger)
}
