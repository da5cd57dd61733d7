package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lazypower/recognition/internal/engine"
	"github.com/lazypower/recognition/internal/graph"
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/store"
)

// withStore loads config, opens the database and hands both to fn.
func withStore(g *globals, fn func(db *store.DB, opts engine.Options) error) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db, engine.Options{
		Layout: cfg.LayoutParams(),
		View:   cfg.ViewParams(),
		FPS:    cfg.Layout.FPS,
	})
}

// --- graph ---

func newGraphCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "List moments and their connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(g, func(db *store.DB, _ engine.Options) error {
				gr, err := db.LoadGraph()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(gr.Nodes) == 0 {
					fmt.Fprintln(w, "The field is empty.")
					return nil
				}

				fmt.Fprintf(w, "%s  %d moments, %d connections\n\n", Brand.Sprint("recognition"), len(gr.Nodes), len(gr.Links))
				rows := make([][]string, 0, len(gr.Nodes))
				for _, n := range gr.Nodes {
					nb := graph.Neighbors(n.ID, gr.Links)
					rows = append(rows, []string{strconv.Itoa(n.ID), clip(n.Title, 40), strconv.Itoa(len(nb.Connected))})
				}
				table(w, []string{"ID", "TITLE", "LINKS"}, rows)

				if len(gr.Links) > 0 {
					fmt.Fprintln(w)
					rows = rows[:0]
					for _, l := range gr.Links {
						rows = append(rows, []string{strconv.Itoa(l.Source), strconv.Itoa(l.Target), kindLabel(l.Kind)})
					}
					table(w, []string{"FROM", "TO", "KIND"}, rows)
				}
				return nil
			})
		},
	}
}

// --- show ---

func newShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one moment and what it connects to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id must be an integer: %q", args[0])
			}
			return withStore(g, func(db *store.DB, _ engine.Options) error {
				gr, err := db.LoadGraph()
				if err != nil {
					return err
				}
				n, ok := graph.Find(gr.Nodes, id)
				if !ok {
					return graph.NewNotFound(fmt.Sprintf("node %d", id))
				}
				rel, err := graph.Related(id, gr.Nodes, gr.Links)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s %s\n\n", Subtle.Sprintf("#%d", n.ID), Brand.Sprint(n.Title))
				fmt.Fprintln(w, n.Content)
				fmt.Fprintln(w)

				nb := graph.Neighbors(id, gr.Links)
				tip := interaction.Tooltip{ConnectedCount: len(nb.Connected)}
				Subtle.Fprintln(w, tip.Summary())
				for _, r := range rel {
					arrow := "→"
					if r.Direction == graph.Incoming {
						arrow = "←"
					}
					fmt.Fprintf(w, "  %s #%d %s  %s\n", arrow, r.Node.ID, r.Node.Title, kindLabel(r.Kind))
				}
				return nil
			})
		},
	}
}

// --- add ---

func newAddCmd(g *globals) *cobra.Command {
	var in engine.AddInput
	var kind string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a moment connected to an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Kind = kind
			return withStore(g, func(db *store.DB, opts engine.Options) error {
				eng := engine.New(db, opts)
				if err := eng.Load(); err != nil {
					return err
				}
				added, err := eng.AddMoment(in)
				if err != nil {
					if fields := graph.FieldErrors(err); len(fields) > 0 {
						keys := make([]string, 0, len(fields))
						for k := range fields {
							keys = append(keys, k)
						}
						sort.Strings(keys)
						for _, k := range keys {
							Bad.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", k, fields[k])
						}
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added #%d %s → #%d (%s)\n",
					Good.Sprint("✓"), added.Node.ID, added.Node.Title, added.Link.Target, kindLabel(added.Link.Kind))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "moment title")
	cmd.Flags().StringVarP(&in.Content, "content", "c", "", "what happened (at least 10 characters)")
	cmd.Flags().IntVar(&in.Target, "target", 0, "id of the moment to connect to")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "resonance, tension or evolution (default resonance)")
	return cmd
}

// --- reset ---

func newResetCmd(g *globals) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the stored graph with the seed moments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards every added moment; pass --yes to confirm")
			}
			return withStore(g, func(db *store.DB, _ engine.Options) error {
				gr, err := db.ResetGraph()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset to %d seed moments\n", Good.Sprint("✓"), len(gr.Nodes))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

// --- simulate ---

func newSimulateCmd(g *globals) *cobra.Command {
	var (
		steps  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the layout headless and print final positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return withStore(g, func(db *store.DB, opts engine.Options) error {
				eng := engine.New(db, opts)
				if err := eng.Load(); err != nil {
					return err
				}
				f := eng.Simulate(steps)

				w := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(f)
				}

				state := "cooled"
				if f.Running {
					state = "still moving"
				}
				fmt.Fprintf(w, "%d steps, alpha %.4f, %s\n\n", f.Step, f.Alpha, state)
				rows := make([][]string, 0, len(f.Nodes))
				for _, n := range f.Nodes {
					rows = append(rows, []string{
						strconv.Itoa(n.ID),
						fmt.Sprintf("%.1f", n.X),
						fmt.Sprintf("%.1f", n.Y),
						clip(n.Title, 40),
					})
				}
				table(w, []string{"ID", "X", "Y", "TITLE"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 300, "maximum number of steps")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the final frame as JSON")
	return cmd
}

// --- export ---

func newExportCmd(g *globals) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored graph to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(g, func(db *store.DB, _ engine.Options) error {
				gr, err := db.LoadGraph()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				switch strings.ToLower(format) {
				case "json":
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(gr)
				case "yaml", "yml":
					enc := yaml.NewEncoder(w)
					enc.SetIndent(2)
					defer enc.Close()
					return enc.Encode(gr)
				default:
					return fmt.Errorf("unknown format %q (want json or yaml)", format)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}

// --- history ---

func newHistoryCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent additions and resets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(g, func(db *store.DB, _ engine.Options) error {
				evs, err := db.RecentEvents(limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(evs) == 0 {
					fmt.Fprintln(w, "No changes recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(evs))
				for _, e := range evs {
					node := "-"
					if e.NodeID != nil {
						node = strconv.FormatInt(*e.NodeID, 10)
					}
					rows = append(rows, []string{
						time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04"),
						e.Kind,
						node,
						clip(e.Detail, 60),
					})
				}
				table(w, []string{"WHEN", "KIND", "NODE", "DETAIL"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
