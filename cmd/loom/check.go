package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-loom/pkg/loom"
)

var (
	checkJSON      bool
	checkMaxIssues int
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Validate template files",
	Long: `Check template files for the problems rendering silently swallows:
tokens that never close, expressions the parser rejects, and
unbalanced control blocks.

The exit code is non-zero if any file has error-severity issues.`,
	Example: `  loom check welcome.txt
  loom check templates/*.txt --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false,
		"print results as JSON")
	checkCmd.Flags().IntVar(&checkMaxIssues, "max-issues", 0,
		"maximum issues to report per file (0 = unlimited)")

	rootCmd.AddCommand(checkCmd)
}

type checkReport struct {
	File   string                `json:"file"`
	Result loom.ValidationResult `json:"result"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	reports := make([]checkReport, 0, len(args))
	failures := loom.NewMultiError()

	for _, path := range args {
		text, err := loom.LoadTemplate(path)
		if err != nil {
			failures.Add(err)
			if !checkJSON {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			}
			continue
		}

		result := loom.ValidateTemplateWithLimit(text, checkMaxIssues)
		reports = append(reports, checkReport{File: path, Result: result})

		if !result.Valid {
			failures.Add(fmt.Errorf("%s: %d error(s)", path, result.Summary.ErrorCount))
		}

		if checkJSON {
			continue
		}

		if result.Valid && result.Summary.WarningCount == 0 {
			fmt.Fprintf(os.Stdout, "%s: ok (%d tokens checked)\n", path, result.Summary.CheckedTokens)
			continue
		}

		fmt.Fprintf(os.Stdout, "%s: %d error(s), %d warning(s)\n",
			path, result.Summary.ErrorCount, result.Summary.WarningCount)
		for _, issue := range result.Issues {
			fmt.Fprintf(os.Stdout, "  %s %s %s\n", issue.ID, issue.Severity, issue.String())
		}
		if result.IssuesTruncated {
			fmt.Fprintf(os.Stdout, "  (issue list truncated at %d)\n", checkMaxIssues)
		}
	}

	if checkJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			return err
		}
	}

	if err := failures.Err(); err != nil {
		return err
	}
	return nil
}
