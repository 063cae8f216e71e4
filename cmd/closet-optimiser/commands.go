package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/archive"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/config"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/optimiser"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logger     *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{logger: logrus.New()}
	opts.logger.SetOutput(os.Stderr)

	root := &cobra.Command{
		Use:          constants.Name,
		Short:        "Divide closet columns between storage components",
		Long:         `closet-optimiser searches for a column layout of drawers, shelves and hanging space that honours target percentages and minimum component heights.`,
		Version:      constants.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				opts.logger.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(optimiseCommand(opts))
	root.AddCommand(initConfigCommand())
	root.AddCommand(historyCommand(opts))
	root.AddCommand(showCommand(opts))

	return root
}

// loadConfig reads the configuration file, or the defaults when no file is given
func loadConfig(opts *rootOptions) (*types.Config, error) {
	manager := config.NewManager()
	if opts.configPath != "" {
		if err := manager.Load(opts.configPath); err != nil {
			return nil, err
		}
	} else if err := manager.LoadEnv(); err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()
	if opts.verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		opts.logger.SetLevel(logrus.DebugLevel)
	}
	return cfg, nil
}

func optimiseCommand(root *rootOptions) *cobra.Command {
	var (
		seed        int64
		population  int
		generations int
		workers     int
		archivePath string
		exportDir   string
	)

	cmd := &cobra.Command{
		Use:     "optimise",
		Aliases: []string{"optimize", "run"},
		Short:   "Run the evolutionary search and print the best arrangement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Algorithm.Seed = seed
			}
			if flags.Changed("population") {
				cfg.Algorithm.PopulationSize = population
			}
			if flags.Changed("generations") {
				cfg.Algorithm.Generations = generations
			}
			if flags.Changed("workers") {
				cfg.Evaluator.ParallelWorkers = workers
			}
			if flags.Changed("archive") {
				cfg.Archive.Path = archivePath
			}
			if flags.Changed("export") {
				cfg.Archive.ExportDir = exportDir
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			opt, err := optimiser.New(*cfg)
			if err != nil {
				return err
			}
			opt.SetLogger(root.logger)

			result, runErr := opt.Run(cmd.Context())
			if result == nil {
				return runErr
			}

			arrangement, err := opt.Arrangement(result)
			if err != nil {
				return err
			}
			printArrangement(cmd.OutOrStdout(), opt.Layout(), result, arrangement)

			if cfg.Archive.Path != "" {
				store, err := archive.NewStore(cfg.Archive.Path)
				if err != nil {
					return err
				}
				defer store.Close()
				store.SetLogger(root.logger)
				// cmd.Context() is already done when the run was interrupted
				if err := store.SaveRun(context.Background(), result); err != nil {
					return err
				}
			}
			if cfg.Archive.ExportDir != "" {
				path, err := archive.ExportRun(cfg.Archive.ExportDir, result, arrangement)
				if err != nil {
					return err
				}
				root.logger.WithField("file", path).Info("Exported run")
			}

			return runErr
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVarP(&population, "population", "p", constants.DefaultPopulationSize, "population size")
	cmd.Flags().IntVarP(&generations, "generations", "g", constants.DefaultGenerations, "number of generations")
	cmd.Flags().IntVar(&workers, "workers", constants.DefaultParallelWorkers, "parallel evaluation workers")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to record the run in")
	cmd.Flags().StringVar(&exportDir, "export", "", "directory for the JSON run export")

	return cmd
}

func initConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := constants.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}

func historyCommand(root *rootOptions) *cobra.Command {
	var (
		archivePath string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(root, archivePath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, run := range runs {
				status := ""
				if run.Cancelled {
					status = " (cancelled)"
				}
				fmt.Fprintf(out, "%s  %s  fitness=%.2f  gens=%d  pop=%d  %v%s\n",
					run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					run.BestFitness, run.Generations, run.Population, run.Components, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite archive file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")

	return cmd
}

func showCommand(root *rootOptions) *cobra.Command {
	var archivePath string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the arrangement of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(root, archivePath)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if result.Best == nil {
				return fmt.Errorf("run %s has no best candidate", result.ID)
			}
			l, err := layout.Resolve(result.Config.Closet)
			if err != nil {
				return err
			}
			arrangement, err := layout.ToArrangement(result.Best.Genes, l)
			if err != nil {
				return err
			}
			printArrangement(cmd.OutOrStdout(), l, result, arrangement)
			return nil
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite archive file")

	return cmd
}

// openArchive resolves the archive path from the flag, then the configuration
func openArchive(root *rootOptions, path string) (*archive.Store, error) {
	if path == "" {
		cfg, err := loadConfig(root)
		if err != nil {
			return nil, err
		}
		path = cfg.Archive.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no archive configured: pass --archive or set archive.path")
	}

	store, err := archive.NewStore(path)
	if err != nil {
		return nil, err
	}
	store.SetLogger(root.logger)
	return store, nil
}

func printArrangement(w io.Writer, l *layout.Layout, result *types.RunResult, arrangement *types.Arrangement) {
	fmt.Fprintf(w, "Run %s  fitness %.3f\n", result.ID, result.BestFitness)
	for _, column := range arrangement.Columns {
		total := 0
		fmt.Fprintf(w, "  column %d:", column.Index)
		for _, alloc := range column.Allocations {
			fmt.Fprintf(w, " %s=%d", alloc.Component, alloc.Height)
			total += alloc.Height
		}
		fmt.Fprintf(w, "  (%d/%d)\n", total, l.Height)
	}

	capacity := float64(l.Capacity())
	for _, comp := range l.Components {
		share := 100 * float64(arrangement.ComponentTotal(comp.Name)) / capacity
		fmt.Fprintf(w, "  %-14s %6.2f%% (target %.2f%%)\n", comp.Name, share, comp.Target)
	}
}
