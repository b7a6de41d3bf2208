package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/depgraph/internal/advice"
	"github.com/gyaneshwarpardhi/depgraph/internal/config"
	"github.com/gyaneshwarpardhi/depgraph/internal/dag"
	"github.com/gyaneshwarpardhi/depgraph/internal/impact"
)

var (
	flagConfig string
	flagJSON   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "depgraph",
		Short: "Inspect a task dependency board offline",
		Long: `depgraph loads a board YAML file, checks that its dependencies form a DAG,
and answers impact, blocker and cycle questions without starting the server.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "configs/board.yaml", "Board YAML path")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(impactCmd())
	rootCmd.AddCommand(blockersCmd())
	rootCmd.AddCommand(layersCmd())
	rootCmd.AddCommand(cycleCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadBoard is shared by every command: parse, validate, build.
func loadBoard() (*config.BoardConfig, *dag.Graph, error) {
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	g, err := dag.Build(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build board: %w", err)
	}
	return cfg, g, nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the board file and confirm it is acyclic",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, g, err := loadBoard()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("✗"), err)
				return err
			}
			if _, err := impact.FromConfig(cfg, advice.Default()); err != nil {
				fmt.Fprintf(os.Stderr, "%s impact rules: %v\n", boldRed("✗"), err)
				return err
			}
			if flagJSON {
				return outputJSON(map[string]interface{}{
					"board": cfg.Board.Name,
					"tasks": g.NodeCount(),
					"edges": g.EdgeCount(),
					"valid": true,
				})
			}
			fmt.Printf("%s %s\n", green("✓"), bold(cfg.Board.Name))
			fmt.Printf("  Tasks: %s  Dependencies: %s  %s\n",
				bold(g.NodeCount()), bold(g.EdgeCount()), dim("no cycles"))
			return nil
		},
	}
}

func impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <task-id>",
		Short: "Show what a delay of the task would hold up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, g, err := loadBoard()
			if err != nil {
				return err
			}
			a, err := impact.FromConfig(cfg, advice.Default())
			if err != nil {
				return err
			}
			res, err := a.Analyze(g, args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(res)
			}
			printImpact(g, res)
			return nil
		},
	}
}

func printImpact(g *dag.Graph, res *impact.Analysis) {
	n, _ := g.Node(res.TargetID)
	fmt.Printf("%s %s  %s\n", boldCyan("Impact of"), magenta(res.TargetID), n.Task.Title)
	fmt.Println(cyan(strings.Repeat("─", 40)))
	crit := dim("no")
	if res.CriticalPath {
		crit = boldYellow("⚡ yes")
	}
	fmt.Printf("Downstream:      %s tasks\n", bold(len(res.DownstreamTasks)))
	fmt.Printf("Cumulative delay: %s\n", bold(fmt.Sprintf("%gh", res.CumulativeDelay)))
	fmt.Printf("Critical path:   %s\n", crit)
	for _, t := range res.DownstreamTasks {
		fmt.Printf("  %s  %s %s\n", magenta(t.ID), t.Title, dim(fmt.Sprintf("(%gh, %s)", t.EstimatedHours, t.Status)))
	}
	fmt.Println()
	fmt.Println(bold("Suggested actions"))
	for _, s := range res.Suggestions {
		fmt.Printf("  %s %s\n    %s\n", cyan(s.Type), s.Description, dim(s.Impact))
	}
}

func blockersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blockers",
		Short: "List unfinished tasks that other tasks are waiting on",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := loadBoard()
			if err != nil {
				return err
			}
			ids := g.Blockers()
			if flagJSON {
				return outputJSON(map[string]interface{}{"blockers": ids})
			}
			if len(ids) == 0 {
				fmt.Println(green("Nothing is blocked."))
				return nil
			}
			for _, id := range ids {
				n, _ := g.Node(id)
				waiting, _ := g.Dependents(id)
				fmt.Printf("%s  %s %s  blocks %s\n", magenta(id), n.Task.Title, dim("["+string(n.Task.Status)+"]"), bold(strings.Join(waiting, ", ")))
			}
			return nil
		},
	}
}

func layersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "Group tasks into dependency layers (columns of the auto layout)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := loadBoard()
			if err != nil {
				return err
			}
			layers := g.Layers()
			byLayer := make(map[int][]string)
			top := 0
			for _, n := range g.Nodes() {
				l := layers[n.ID]
				byLayer[l] = append(byLayer[l], n.ID)
				if l > top {
					top = l
				}
			}
			if flagJSON {
				out := make([][]string, top+1)
				for l := range out {
					out[l] = byLayer[l]
				}
				return outputJSON(map[string]interface{}{"layers": out})
			}
			keys := make([]int, 0, len(byLayer))
			for l := range byLayer {
				keys = append(keys, l)
			}
			sort.Ints(keys)
			for _, l := range keys {
				dep := dim("independent")
				if l > 0 {
					dep = dim(fmt.Sprintf("after layer %d", l))
				}
				fmt.Printf("%s %d (%d tasks, %s):\n", bold("Layer"), l+1, len(byLayer[l]), dep)
				for _, id := range byLayer[l] {
					n, _ := g.Node(id)
					fmt.Printf("  %s  %s\n", magenta(id), n.Task.Title)
				}
			}
			return nil
		},
	}
}

func cycleCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle-check <prerequisite> <dependent>",
		Short: "Report whether making <dependent> wait on <prerequisite> would create a cycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, err := loadBoard()
			if err != nil {
				return err
			}
			path, err := g.CyclePath(args[0], args[1])
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(map[string]interface{}{
					"would_create_cycle": path != nil,
					"path":               path,
				})
			}
			if path == nil {
				fmt.Printf("%s %s can depend on %s\n", green("✓"), args[1], args[0])
				return nil
			}
			loop := append(path, path[0])
			fmt.Printf("%s would create a cycle: %s\n", boldRed("✗"), boldYellow(strings.Join(loop, " → ")))
			return nil
		},
	}
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
