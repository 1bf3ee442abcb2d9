package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"

	"github.com/trendly/backend/internal/infrastructure/catalog"
	"github.com/trendly/backend/internal/setup"
	"github.com/trendly/backend/internal/usecase"
)

var ErrMissingArgument = errors.New("missing argument")

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	return newApp().Run(context.Background(), os.Args)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze outfit images and manage the product catalog",
		Commands: []*cli.Command{
			{
				Name:      "image",
				Usage:     "Analyze a local outfit image and print matching products",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Only print matches in this product category",
					},
				},
				Action: analyzeImage,
			},
			{
				Name:  "catalog",
				Usage: "Manage the sqlite product catalog",
				Commands: []*cli.Command{
					{
						Name:  "seed",
						Usage: "Create the products table and load the default products",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "dsn",
								Usage:    "sqlite data source name, e.g. file:catalog.db",
								Required: true,
							},
						},
						Action: seedCatalog,
					},
				},
			},
		},
	}
}

func analyzeImage(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("%w: image path", ErrMissingArgument)
	}
	path := c.Args().First()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	result, err := app.Service.AnalyzeAndMatch(ctx, usecase.ImageFile{Reader: file, Name: path})
	if err != nil {
		return fmt.Errorf("failed to analyze image: %w", err)
	}

	if category := c.String("category"); category != "" {
		result.Matches = usecase.FilterMatchesByCategory(result.Matches, category)
	}

	output, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Println(string(output))
	return nil
}

func seedCatalog(ctx context.Context, c *cli.Command) error {
	store, err := catalog.NewSQLiteCatalog(ctx, c.String("dsn"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	products := catalog.DefaultProducts()
	if err := store.Seed(ctx, products); err != nil {
		return err
	}

	log.Printf("Seeded %d products into %s", len(products), c.String("dsn"))
	return nil
}
