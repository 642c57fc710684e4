package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mendel/internal/core"
	"mendel/pkg/genetics"
)

// errInvalid signals that output was already printed and the command should
// exit non-zero without another message.
var errInvalid = errors.New("invalid input")

func newValidateCmd(a *app) *cobra.Command {
	var arity string
	cmd := &cobra.Command{
		Use:   "validate PARENT1 [PARENT2]",
		Short: "Validate one or two genotypes for a cross type",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p2 := ""
			if len(args) == 2 {
				p2 = args[1]
			}
			parsed, ok := genetics.ParseCrossArity(arity)
			if !ok {
				return core.ErrInvalidInput{Field: "arity", Reason: fmt.Sprintf("unknown cross type %q", arity)}
			}
			form := core.ValidateForm(parsed, args[0], p2)
			if form.Error != nil {
				v := a.translator.FieldValidation(a.tag, string(form.ErrorField), *form.Error)
				form.Error = &v
			}
			if a.jsonOut {
				if err := a.printJSON(cmd, form); err != nil {
					return err
				}
			} else if form.Error != nil {
				fmt.Fprintln(cmd.OutOrStdout(), form.Error.Message)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
			}
			if form.Error != nil {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&arity, "arity", string(genetics.Mono), "Cross type: mono, di or poly")
	return cmd
}

func newGametesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gametes GENOTYPE",
		Short: "List the distinct gametes of a genotype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return core.ErrInvalidInput{Field: "genotype", Reason: "must not be empty"}
			}
			if v := genetics.Validate(args[0], genetics.Poly); !v.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), a.translator.Validation(a.tag, v).Message)
				return errInvalid
			}
			genotype := genetics.Normalize(args[0])
			gametes := genetics.Gametes(genotype)
			if a.jsonOut {
				return a.printJSON(cmd, map[string]any{"genotype": genotype, "gametes": gametes})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", genotype, strings.Join(gametes, " "))
			return nil
		},
	}
}

func newCrossCmd(a *app) *cobra.Command {
	var arity string
	cmd := &cobra.Command{
		Use:   "cross PARENT1 PARENT2",
		Short: "Cross two genotypes and print the Punnett square and distributions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := a.engineService(cmd)
			session, err := svc.CreateSession(ctx, arity)
			if err != nil {
				return err
			}
			res, err := svc.SubmitCross(ctx, session.ID, args[0], args[1])
			if err != nil {
				return a.reportFormError(cmd, err)
			}
			res.Law = a.translator.Law(a.tag, res.Arity)
			if a.jsonOut {
				return a.printJSON(cmd, res)
			}
			return writeCross(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&arity, "arity", string(genetics.Mono), "Cross type: mono, di or poly")
	return cmd
}

func (a *app) reportFormError(cmd *cobra.Command, err error) error {
	var formErr core.ErrFormInvalid
	if !errors.As(err, &formErr) {
		return err
	}
	if formErr.Form.Error == nil {
		return err
	}
	v := a.translator.FieldValidation(a.tag, string(formErr.Form.ErrorField), *formErr.Form.Error)
	fmt.Fprintln(cmd.OutOrStdout(), v.Message)
	return errInvalid
}

func writeCross(w io.Writer, res core.CrossResult) error {
	fmt.Fprintf(w, "%s × %s\n", res.Parent1, res.Parent2)
	if res.Law != "" {
		fmt.Fprintln(w, res.Law)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if res.Square != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "\t%s\n", strings.Join(res.Square.Columns, "\t"))
		for i, row := range res.Square.Rows {
			cells := make([]string, len(res.Square.Cells[i]))
			for j, c := range res.Square.Cells[i] {
				cells[j] = c.Genotype
			}
			fmt.Fprintf(tw, "%s\t%s\n", row, strings.Join(cells, "\t"))
		}
	}
	writeEntries(tw, "Genotypes", res.Genotypes)
	writeEntries(tw, "Phenotypes", res.Phenotypes)
	for _, rec := range res.Records {
		writeEntries(tw, rec.Label, rec.Distribution().Entries())
	}
	return tw.Flush()
}

func writeEntries(w io.Writer, title string, entries []genetics.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\t%d/%d\t%s%%\n", e.Key, e.Count, e.Total, e.Percentage)
	}
}

func newProbabilityCmd(a *app) *cobra.Command {
	var parent1, parent2 string
	cmd := &cobra.Command{
		Use:   "probability",
		Short: "Compound probabilities over independent genes",
	}
	cmd.PersistentFlags().StringVar(&parent1, "parent1", "", "First parent genotype")
	cmd.PersistentFlags().StringVar(&parent2, "parent2", "", "Second parent genotype")
	_ = cmd.MarkPersistentFlagRequired("parent1")
	_ = cmd.MarkPersistentFlagRequired("parent2")

	run := func(cmd *cobra.Command, query func(svc *core.Service, id string) (genetics.ProbabilityResult, error)) error {
		ctx := cmd.Context()
		svc := a.engineService(cmd)
		session, err := svc.CreateSession(ctx, string(genetics.Poly))
		if err != nil {
			return err
		}
		if _, err := svc.SubmitCross(ctx, session.ID, parent1, parent2); err != nil {
			return a.reportFormError(cmd, err)
		}
		res, err := query(svc, session.ID)
		if err != nil {
			return err
		}
		res = a.translator.Result(a.tag, res)
		if a.jsonOut {
			if err := a.printJSON(cmd, res); err != nil {
				return err
			}
		} else {
			writeProbability(cmd.OutOrStdout(), res)
		}
		if !res.Valid {
			return errInvalid
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "genotype GENOTYPE",
		Short: "Probability of a full multi-gene genotype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *core.Service, id string) (genetics.ProbabilityResult, error) {
				return svc.GenotypeProbability(cmd.Context(), id, args[0])
			})
		},
	}, &cobra.Command{
		Use:   "phenotype SELECTION...",
		Short: "Probability of one phenotype class per gene (dominant, recessive, intermediate)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *core.Service, id string) (genetics.ProbabilityResult, error) {
				return svc.PhenotypeProbability(cmd.Context(), id, args)
			})
		},
	})
	return cmd
}

func writeProbability(w io.Writer, res genetics.ProbabilityResult) {
	if !res.Valid {
		fmt.Fprintln(w, res.Message)
		return
	}
	fmt.Fprintf(w, "P(%s) = %s\n", res.Target, strings.Join(res.Steps, " × "))
	fmt.Fprintf(w, "       = %s\n", strings.Join(res.FractionSteps, " × "))
	fmt.Fprintf(w, "       = %s = %s%%\n", res.Simplified(), res.Percentage)
}
