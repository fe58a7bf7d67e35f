package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v0xg/autofill/internal/fields"
	"github.com/v0xg/autofill/internal/gifgen"
	"github.com/v0xg/autofill/internal/messaging"
)

func newAnalyzeCmd() *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "List the fillable fields of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, args[0], messaging.Deps{})
			if err != nil {
				return err
			}
			defer s.Close()

			scope := messaging.ScopeDocument
			if pick {
				if scope, err = s.pick(ctx); err != nil {
					return err
				}
			}
			descs, err := s.detect(ctx, scope)
			if err != nil {
				return err
			}
			printFields(descs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the element to analyze by clicking it")
	return cmd
}

func newFillCmd() *cobra.Command {
	var (
		pick     bool
		record   string
		dataFile string
		wait     bool
	)
	cmd := &cobra.Command{
		Use:   "fill <url>",
		Short: "Fill a page's form with AI-generated test data",
		Long: `fill detects the form fields of a page, generates values for them with the
configured AI provider and writes them into the page.

Use --data to fill from a JSON object instead of calling the AI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logVerbose("Starting autofill")
			logVerbose("  URL: %s", args[0])
			logVerbose("  Provider: %s", cfg.AI.Provider)

			var deps messaging.Deps
			if dataFile == "" {
				prov, err := newProvider(ctx)
				if err != nil {
					return fmt.Errorf("AI provider init failed: %w", err)
				}
				store, err := openHistory()
				if err != nil {
					return err
				}
				deps.Provider, deps.History = prov, store
			}

			browser, err := openBrowser(ctx, args[0])
			if err != nil {
				return err
			}
			var rec *gifgen.Recorder
			if record != "" {
				rec = gifgen.NewRecorder(browser, logger)
				deps.Observers = append(deps.Observers, rec)
			}
			s, err := newSession(ctx, browser, deps)
			if err != nil {
				return err
			}
			defer s.Close()
			if rec != nil {
				rec.Capture(ctx)
			}

			scope := messaging.ScopeDocument
			if pick {
				if scope, err = s.pick(ctx); err != nil {
					return err
				}
			}

			descs, err := s.detect(ctx, scope)
			if err != nil {
				return err
			}
			if len(descs) == 0 {
				fmt.Println("✓ No fillable fields found")
				return nil
			}
			if verbose {
				printFields(descs)
			}
			if rec != nil {
				rec.Detected(ctx, descs)
			}

			data, err := loadOrGenerate(ctx, s, dataFile, descs)
			if err != nil {
				return err
			}

			fmt.Print("→ Filling... ")
			resp, err := s.do(ctx, messaging.Request{Action: messaging.ActionFill, Scope: scope, Data: data})
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Printf("done (%d filled, %d skipped", resp.FilledCount, resp.SkippedCount)
			if resp.FailedCount > 0 {
				fmt.Printf(", %d failed", resp.FailedCount)
			}
			fmt.Println(")")

			if rec != nil {
				fmt.Printf("→ Generating GIF (%d frames)... ", len(rec.Frames()))
				size, err := rec.Save(record, gifgen.Options{FrameDelay: 60, FinalDelay: 200, MaxWidth: 800})
				if err != nil {
					fmt.Println("failed")
					return fmt.Errorf("GIF generation failed: %w", err)
				}
				fmt.Println("done")
				fmt.Printf("✓ Saved to %s (%.1f MB)\n", record, float64(size)/(1024*1024))
			}

			if wait && !cfg.Browser.Headless {
				fmt.Println("Press Ctrl+C to close the browser")
				<-ctx.Done()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the element to fill by clicking it")
	cmd.Flags().StringVar(&record, "record", "", "Record the fill as a GIF to this file")
	cmd.Flags().StringVar(&dataFile, "data", "", "JSON object of values to fill instead of generating them")
	cmd.Flags().BoolVar(&wait, "wait", false, "Keep the browser open until interrupted")
	return cmd
}

func loadOrGenerate(ctx context.Context, s *session, dataFile string, descs []fields.Descriptor) (*fields.DataMap, error) {
	if dataFile != "" {
		fmt.Printf("→ Reading %s... ", dataFile)
		data, err := readDataFile(dataFile)
		if err != nil {
			fmt.Println("failed")
			return nil, err
		}
		fmt.Printf("done (%d values)\n", data.Len())
		return data, nil
	}

	fmt.Printf("→ Generating values via %s... ", cfg.AI.Provider)
	resp, err := s.do(ctx, messaging.Request{Action: messaging.ActionGenerate, Fields: descs})
	if err != nil {
		fmt.Println("failed")
		return nil, err
	}
	fmt.Printf("done (%d values)\n", resp.Data.Len())
	if verbose {
		printData(resp.Data)
	}
	return resp.Data, nil
}

func readDataFile(path string) (*fields.DataMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	data, err := fields.ParseDataMap(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return data, nil
}

func newClearCmd() *cobra.Command {
	var pick bool
	cmd := &cobra.Command{
		Use:   "clear <url>",
		Short: "Reset the form fields of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, args[0], messaging.Deps{})
			if err != nil {
				return err
			}
			defer s.Close()

			scope := messaging.ScopeDocument
			if pick {
				if scope, err = s.pick(ctx); err != nil {
					return err
				}
			}

			fmt.Print("→ Clearing... ")
			resp, err := s.do(ctx, messaging.Request{Action: messaging.ActionClear, Scope: scope})
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Printf("done (%d cleared)\n", resp.ClearedCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the element to clear by clicking it")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or reset the remembered generated values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			values := store.All()
			if len(values) == 0 {
				fmt.Println("No values remembered")
				return nil
			}
			for i, v := range values {
				fmt.Printf("  [%d] %s\n", i+1, v)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget every remembered value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Println("✓ History cleared")
			return nil
		},
	})
	return cmd
}
