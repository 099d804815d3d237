// Command primalcut is the thin driver around the solver package: it
// accepts a TSPLIB problem file or random-instance parameters, runs the
// branch-cut-price engine, and reports the resulting tour (spec.md §6).
// This driver is explicitly out of scope for correctness testing, per
// spec.md §6 — it is a convenience wrapper, not a solver-correctness
// surface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"

	"github.com/katalvlaran/primalcut/instance"
	"github.com/katalvlaran/primalcut/logx"
	"github.com/katalvlaran/primalcut/solver"
)

// exitCode is set by run() so main can choose the process exit status
// without depending on how this cli version propagates ExitCoder errors
// out of App.Run.
var exitCode = 0

func main() {
	app := &cli.App{
		Name:  "primalcut",
		Usage: "primal cutting-plane / branch-cut-price solver for symmetric TSP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "TSPLIB .tsp problem file"},
			&cli.StringFlag{Name: "start-tour", Usage: "optional starting-tour file (one node index per line)"},
			&cli.IntFlag{Name: "nodes", Aliases: []string{"n"}, Usage: "random instance: node count"},
			&cli.Float64Flag{Name: "grid", Value: 1000, Usage: "random instance: coordinate grid size"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random instance seed"},
			&cli.Float64Flag{Name: "ph-epsilon", Value: 0.01, Usage: "separation-round progress threshold"},
			&cli.IntFlag{Name: "max-nodes", Value: 10000, Usage: "branch-and-bound node limit (0 = unbounded)"},
			&cli.IntFlag{Name: "branch-iter-limit", Value: 50, Usage: "pivots allowed per strong-branching trial"},
			&cli.BoolFlag{Name: "json", Usage: "print the result as JSON instead of plain text"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "primalcut:", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		logx.Configure(logging.DEBUG)
	}

	inst, err := loadInstance(c)
	if err != nil {
		return fmt.Errorf("load instance: %w", err)
	}

	opts := []solver.Option{
		solver.WithPHEpsilon(c.Float64("ph-epsilon")),
		solver.WithMaxNodes(c.Int("max-nodes")),
		solver.WithBranchIterLimit(c.Int("branch-iter-limit")),
	}
	if path := c.String("start-tour"); path != "" {
		nodes, err := instance.ReadStartTour(path, inst.N)
		if err != nil {
			return fmt.Errorf("load start tour: %w", err)
		}
		opts = append(opts, solver.WithStartTour(nodes))
	}
	sv, err := solver.New(inst, opts...)
	if err != nil {
		return fmt.Errorf("build solver: %w", err)
	}

	started := time.Now()
	result, err := sv.Solve()
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	elapsed := time.Since(started)

	if result.Status != solver.StatusOptimal {
		exitCode = 2
	}
	if c.Bool("json") {
		return printJSON(result, elapsed)
	}
	printPlain(result, elapsed)
	return nil
}

func loadInstance(c *cli.Context) (*instance.Instance, error) {
	if path := c.String("problem"); path != "" {
		return instance.LoadTSPLIB(path)
	}
	n := c.Int("nodes")
	if n <= 0 {
		return nil, fmt.Errorf("must supply either --problem or --nodes")
	}
	return instance.RandomEuclidean(n, c.Float64("grid"), c.Int64("seed"))
}

type jsonResult struct {
	Status        string  `json:"status"`
	TourNodes     []int   `json:"tour_nodes"`
	TourLength    float64 `json:"tour_length"`
	NodesExplored int     `json:"nodes_explored"`
	LiveCuts      int     `json:"live_cuts"`
	ElapsedMillis int64   `json:"elapsed_millis"`
}

func printJSON(r solver.Result, elapsed time.Duration) error {
	out := jsonResult{
		Status:        r.Status.String(),
		TourNodes:     r.TourNodes,
		TourLength:    r.TourLength,
		NodesExplored: r.NodesExplored,
		LiveCuts:      r.LiveCuts,
		ElapsedMillis: elapsed.Milliseconds(),
	}
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(out)
}

func printPlain(r solver.Result, elapsed time.Duration) {
	fmt.Printf("status:     %s\n", r.Status)
	fmt.Printf("tour len:   %.6f\n", r.TourLength)
	fmt.Printf("nodes:      %d explored, %d live cuts\n", r.NodesExplored, r.LiveCuts)
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("tour:       %v\n", r.TourNodes)
}
