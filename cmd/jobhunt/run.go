package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobhunt-assistant/internal/config"
	"github.com/jonathan/jobhunt-assistant/internal/feedback"
	"github.com/jonathan/jobhunt-assistant/internal/ingestion"
	"github.com/jonathan/jobhunt-assistant/internal/observability"
	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the resume optimization pipeline end-to-end",
	Long: `Runs validation -> analysis -> packaging -> optimization against the
given resume and job description, collects a decision per proposed edit,
then generates the final resume and optional interview preparation.`,
	RunE: runPipelineCmd,
}

var (
	runJDPath       string
	runResumePath   string
	runProjectsPath string
	runOutDir       string
	runFormats      []string
	runAcceptAll    bool
	runInterview    bool
	runVerbose      bool
)

func init() {
	runCommand.Flags().StringVarP(&runJDPath, "jd", "j", "", "Path to job description text file (required)")
	runCommand.Flags().StringVarP(&runResumePath, "resume", "r", "", "Path to resume text file (required)")
	runCommand.Flags().StringVarP(&runProjectsPath, "projects", "p", "", "Path to project materials text file (optional)")
	runCommand.Flags().StringVarP(&runOutDir, "out", "o", "exports", "Directory for exported resume files")
	runCommand.Flags().StringSliceVar(&runFormats, "formats", []string{"txt"}, "Export formats: txt, md, json")
	runCommand.Flags().BoolVar(&runAcceptAll, "accept-all", false, "Accept every proposed edit without prompting")
	runCommand.Flags().BoolVar(&runInterview, "interview", false, "Also generate interview preparation material")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed stage summaries")

	_ = runCommand.MarkFlagRequired("jd")
	_ = runCommand.MarkFlagRequired("resume")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	jd, err := ingestion.ReadFile(runJDPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	resume, err := ingestion.ReadFile(runResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	var projects string
	if runProjectsPath != "" {
		projects, err = ingestion.ReadFile(runProjectsPath)
		if err != nil {
			return fmt.Errorf("failed to read project materials: %w", err)
		}
	}

	ag, closeClient, err := buildAgents(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	printer := observability.NewPrinter(os.Stdout)

	wf := workflow.New(uuid.NewString(), workflow.Inputs{
		JobDescription: jd,
		Resume:         resume,
		Projects:       projects,
	}, ag, workflow.WithObserver(func(snap workflow.Snapshot) {
		fmt.Printf("[%3d%%] %s\n", snap.Progress, snap.Message)
	}))

	wf.Run(ctx)

	snap := wf.Snapshot()
	if snap.State == workflow.StateFailed {
		return fmt.Errorf("pipeline failed: %s", snap.Error)
	}

	if runVerbose {
		validation, _ := wf.Result("validation")
		printer.PrintValidation(validation)
		analysis, _ := wf.Result("analysis")
		printer.PrintMatchAssessment(analysis)
		packaged, _ := wf.Result("packaging")
		printer.PrintSelectedProjects(packaged)
	}
	printer.PrintWarnings(snap.Warnings)
	printer.PrintRecommendationItems(wf.Items())

	if err := collectDecisions(wf); err != nil {
		return err
	}

	artifact, err := wf.Finalize(ctx)
	if err != nil {
		return err
	}
	printer.PrintModificationSummary(artifact)

	paths, err := wf.Export(ctx, runOutDir, runFormats)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	for format, path := range paths {
		fmt.Printf("Exported %s: %s\n", format, path)
	}

	if runInterview {
		fmt.Println("Generating interview preparation...")
		if _, err := wf.PrepareInterview(ctx); err != nil {
			return err
		}
		prepPaths, err := wf.Export(ctx, runOutDir, []string{"json"})
		if err == nil {
			for _, path := range prepPaths {
				fmt.Printf("Interview material included in: %s\n", path)
			}
		}
	}

	return nil
}

// collectDecisions records a verdict for every proposed edit, either
// wholesale via --accept-all or interactively from stdin.
func collectDecisions(wf *workflow.Workflow) error {
	items := wf.Items()

	if runAcceptAll {
		for _, item := range items {
			if _, err := wf.Ledger().Record(item.ID, feedback.DecisionAccept, "", ""); err != nil {
				return err
			}
		}
		fmt.Printf("Accepted all %d proposed edits\n", len(items))
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	for _, item := range items {
		fmt.Printf("\n[%s] %s\n%s\nAccept? [y/N] ", item.ID, item.Type, item.Description)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read decision: %w", err)
		}

		decision := feedback.DecisionReject
		if answer := strings.ToLower(strings.TrimSpace(line)); answer == "y" || answer == "yes" {
			decision = feedback.DecisionAccept
		}
		if _, err := wf.Ledger().Record(item.ID, decision, "", ""); err != nil {
			return err
		}
	}
	return nil
}
