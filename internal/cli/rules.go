package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conwaymd/conwaymd/internal/logging"
	"github.com/conwaymd/conwaymd/pkg/convert"
)

type rulesFlags struct {
	format string
}

const formatJSON = "json"

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	ID         string `json:"id"`
	Class      string `json:"class"`
	Queued     bool   `json:"queued"`
	QueueIndex int    `json:"queue_index"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules [file]",
		Short: "List the replacement rule cascade",
		Long: `List the replacement rules of the conversion cascade in application
order: every rule's id, declaration class, and queue placement.

Without arguments, lists the standard rules. With a CMD file argument,
the file's own rules region is layered on top, showing the effective
cascade for that document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			filePath := "STANDARD_RULES"
			var opts []convert.Option

			if len(args) == 1 {
				content, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				source = string(content)
				filePath = args[0]
				opts = append(opts, convert.WithIncluder(rulesIncluder()))
			}

			rules, diagnostics, err := convert.ListRules(source, filePath, opts...)
			if err != nil {
				return fmt.Errorf("legislate rules: %w", err)
			}

			logger := logging.Default()
			for _, diag := range diagnostics {
				logger.Warn(diag.Message, logging.FieldPath, diag.File, logging.FieldLine, diag.Line)
			}

			// Handle JSON output format.
			if flags.format == formatJSON {
				return outputRulesJSON(rules)
			}

			// Default to text output.
			interactive := logging.NewInteractive()
			interactive.Info("replacement rule cascade")

			for _, rule := range rules {
				if rule.Queued {
					interactive.Info("#"+rule.ID,
						logging.FieldClass, rule.Class,
						logging.FieldQueued, rule.QueueIndex,
					)
					continue
				}
				interactive.Info("#"+rule.ID,
					logging.FieldClass, rule.Class,
					logging.FieldQueued, "-",
				)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")

	return cmd
}

// rulesIncluder resolves `< file` inclusion lines against the current
// working directory, the same way a conversion run does.
func rulesIncluder() convert.Includer {
	return func(name string) (string, error) {
		content, err := os.ReadFile(filepath.FromSlash(name))
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
}

// outputRulesJSON outputs the cascade as a JSON array.
func outputRulesJSON(rules []convert.RuleInfo) error {
	infos := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ruleInfo{
			ID:         rule.ID,
			Class:      rule.Class,
			Queued:     rule.Queued,
			QueueIndex: rule.QueueIndex,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}
