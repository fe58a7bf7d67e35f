package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v0xg/autofill/internal/dom"
	"github.com/v0xg/autofill/internal/executor"
	"github.com/v0xg/autofill/internal/messaging"
)

// savedPage serves a parsed HTML file as the page.
type savedPage struct {
	doc *dom.Document
}

func (p savedPage) Snapshot(context.Context) (*dom.Document, error) {
	return p.doc, nil
}

func newInspectCmd() *cobra.Command {
	var (
		dataFile string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.html>",
		Short: "Analyze a saved HTML page without a browser",
		Long: `inspect runs field detection on a saved HTML file. Visibility comes from
inline styles and the hidden attribute only.

With --data the values are filled into the document in memory, and --out
writes the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fmt.Printf("→ Reading %s... ", args[0])
			f, err := os.Open(args[0])
			if err != nil {
				fmt.Println("failed")
				return err
			}
			doc, err := dom.Parse(f)
			f.Close()
			if err != nil {
				fmt.Println("failed")
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			fmt.Println("done")

			d := messaging.NewDispatcher(messaging.Deps{
				Page:    savedPage{doc},
				Mutator: executor.NewSnapshotMutator(),
				Verbose: verbose,
			}, logger)

			resp := d.Handle(ctx, messaging.Request{Action: messaging.ActionDebug})
			if !resp.Success {
				return errors.New(resp.Error)
			}
			printDebug(resp)

			resp = d.Handle(ctx, messaging.Request{Action: messaging.ActionAnalyze})
			if !resp.Success {
				return errors.New(resp.Error)
			}
			fmt.Printf("→ %d fillable fields\n", len(resp.Fields))
			printFields(resp.Fields)

			if dataFile == "" {
				return nil
			}
			data, err := readDataFile(dataFile)
			if err != nil {
				return err
			}
			resp = d.Handle(ctx, messaging.Request{Action: messaging.ActionFill, Data: data})
			if !resp.Success {
				return errors.New(resp.Error)
			}
			fmt.Printf("→ Filled %d, skipped %d\n", resp.FilledCount, resp.SkippedCount)

			if out != "" {
				html, err := doc.HTML()
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Printf("✓ Saved to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON object of values to fill")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the filled document to this file")
	return cmd
}

func printDebug(resp messaging.Response) {
	r := resp.Debug
	if r.Title != "" {
		fmt.Printf("  Title: %s\n", r.Title)
	}
	fmt.Printf("  Form elements: %d (inputs %d, textareas %d, selects %d)\n", r.Total(), r.Inputs, r.Textareas, r.Selects)
	fmt.Printf("  Modals: %d, disabled inputs: %d, read-only inputs: %d\n", r.Modals, r.Disabled, r.ReadOnly)
	for typ, n := range r.InputTypes {
		logVerbose("  input[type=%s]: %d", typ, n)
	}
	a := r.Analysis
	fmt.Printf("  Skipped: %d disabled, %d read-only, %d hidden, %d selector collisions\n",
		a.Disabled, a.ReadOnly, a.Hidden, a.Collisions)
	for _, s := range r.SampleFields {
		logVerbose("  sample %s id=%q name=%q visible=%v %s", s.Selector, s.ID, s.Name, s.Visible, s.OptionsInfo)
	}
}
