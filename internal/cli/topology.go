package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/topology"
)

// TopologyOptions holds flags for the topology command.
type TopologyOptions struct {
	*RootOptions
	File   string // CUE datasets instead of the register
	Object string // report the relations of one object
}

// ObjectReport lists the neighbourhood of one object.
type ObjectReport struct {
	ID          string          `json:"id"`
	Dataset     string          `json:"dataset,omitempty"`
	Extent      string          `json:"extent"`
	Predecessor string          `json:"predecessor,omitempty"`
	Successor   string          `json:"successor,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	Edges       []topology.Edge `json:"edges"`
}

// TopologyResult holds the topology report.
type TopologyResult struct {
	Datasets   []string         `json:"datasets"`
	Policy     string           `json:"policy"`
	Summary    topology.Summary `json:"summary"`
	Components [][]string       `json:"components"`
	Object     *ObjectReport    `json:"object,omitempty"`
}

// NewTopologyCommand creates the topology command.
func NewTopologyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TopologyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "topology [dataset-id...]",
		Short: "Build and summarise the temporal topology of datasets",
		Long: `Build the relation graph of one or more datasets.

A single dataset is related with itself, so its series order is visible.
Several datasets are related pairwise across datasets only. The report
counts edges per relation and lists the groups of maps that share time.

Examples:
  tgis topology --db ./tgis.db precip
  tgis topology --file ./datasets.cue monthly quarterly
  tgis topology --db ./tgis.db precip --object precip_3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopology(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "CUE datasets file or directory")
	cmd.Flags().StringVar(&opts.Object, "object", "", "report the relations of one map")

	return cmd
}

func runTopology(opts *TopologyOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	datasets, err := loadSource(context.Background(), opts.RootOptions, opts.File, ids)
	if err != nil {
		exit, code := sourceErrorCode(err)
		return formatter.Fail(exit, code, err.Error())
	}
	if len(datasets) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "no datasets to relate")
	}
	policy, err := opts.policy()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArgument, err.Error())
	}

	var topo *topology.Topology
	if len(datasets) == 1 {
		topo, err = topology.Build(datasets[0].Objects, topology.WithPolicy(policy))
	} else {
		topo, err = topology.BuildDatasets(datasets, topology.WithPolicy(policy))
	}
	if err != nil {
		return formatter.Fail(ExitFailure, codeOf(err), err.Error())
	}
	logger.Debug("topology built", "nodes", topo.Len(), "datasets", len(datasets))

	result := TopologyResult{
		Policy:     policy.String(),
		Summary:    topo.Summary(),
		Components: topo.Components(topology.SharesTime),
	}
	for _, ds := range datasets {
		result.Datasets = append(result.Datasets, ds.ID)
	}

	if opts.Object != "" {
		report, err := objectReport(topo, opts.Object)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error())
		}
		for _, w := range report.Warnings {
			logger.Warn(w)
		}
		result.Object = report
	}

	return formatter.Emit(result, func(w io.Writer) { writeTopologyText(w, result) })
}

// objectReport collects the edges and single neighbours of one object.
func objectReport(topo *topology.Topology, id string) (*ObjectReport, error) {
	node, ok := topo.Node(id)
	if !ok {
		return nil, fmt.Errorf("map %q is not in the topology", id)
	}
	edges, err := topo.RelationsOf(id)
	if err != nil {
		return nil, err
	}
	report := &ObjectReport{
		ID:      id,
		Dataset: node.Dataset,
		Extent:  node.Object.Extent.String(),
		Edges:   edges,
	}
	pred, err := topo.Predecessor(id)
	if err != nil {
		return nil, err
	}
	succ, err := topo.Successor(id)
	if err != nil {
		return nil, err
	}
	report.Predecessor, report.Successor = pred.ID, succ.ID
	for _, l := range []topology.Link{pred, succ} {
		if l.Warning != nil {
			report.Warnings = append(report.Warnings, l.Warning.Error())
		}
	}
	return report, nil
}

func writeTopologyText(w io.Writer, r TopologyResult) {
	fmt.Fprintf(w, "Topology of %v (%s)\n\n", r.Datasets, r.Policy)
	fmt.Fprintf(w, "  maps:     %d\n", r.Summary.Objects)
	fmt.Fprintf(w, "  edges:    %d\n", r.Summary.Edges)
	fmt.Fprintf(w, "  gaps:     %d\n", r.Summary.Gaps)
	fmt.Fprintf(w, "  clusters: %d\n", r.Summary.Clusters)

	rels := make([]relation.Relation, 0, len(r.Summary.Relations))
	for rel := range r.Summary.Relations {
		rels = append(rels, rel)
	}
	slices.Sort(rels)
	if len(rels) > 0 {
		fmt.Fprintln(w, "\nRelations:")
		for _, rel := range rels {
			fmt.Fprintf(w, "  %-14s %d\n", rel, r.Summary.Relations[rel])
		}
	}

	if o := r.Object; o != nil {
		fmt.Fprintf(w, "\n%s %s\n", o.ID, o.Extent)
		if o.Predecessor != "" {
			fmt.Fprintf(w, "  predecessor: %s\n", o.Predecessor)
		}
		if o.Successor != "" {
			fmt.Fprintf(w, "  successor:   %s\n", o.Successor)
		}
		for _, e := range o.Edges {
			fmt.Fprintf(w, "  %s %s\n", e.Relation, e.To)
		}
	}
}
