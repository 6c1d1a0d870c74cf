package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/babelbridge/babelbridge/pkg/transcript"
)

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
	modeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	langStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#79c0ff"))
	arrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

func newTranscriptsCmd() *cobra.Command {
	var dir string
	var day string
	var filter string

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Show recorded translation events for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = time.Now().UTC().Format("20060102")
			}
			entries, err := transcript.ReadDay(dir, day)
			if err != nil {
				return err
			}

			var query *gojq.Query
			if filter != "" {
				query, err = gojq.Parse(filter)
				if err != nil {
					return fmt.Errorf("parse filter: %w", err)
				}
			}

			shown := 0
			for _, e := range entries {
				if query != nil {
					keep, err := matchFilter(query, e)
					if err != nil {
						return err
					}
					if !keep {
						continue
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderEntry(e))
				shown++
			}
			if shown == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no entries for %s\n", day)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "logs", "Transcript log directory")
	cmd.Flags().StringVar(&day, "day", "", "UTC day as YYYYMMDD (default today)")
	cmd.Flags().StringVar(&filter, "filter", "", `jq expression selecting entries, e.g. '.src_lang == "zh"'`)
	return cmd
}

// matchFilter runs the jq query over the entry's JSON form and keeps the
// entry if any output is truthy.
func matchFilter(query *gojq.Query, e transcript.Entry) (bool, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return false, err
	}

	iter := query.Run(value)
	for {
		v, ok := iter.Next()
		if !ok {
			return false, nil
		}
		if err, ok := v.(error); ok {
			return false, fmt.Errorf("filter: %w", err)
		}
		if v != nil && v != false {
			return true, nil
		}
	}
}

func renderEntry(e transcript.Entry) string {
	return fmt.Sprintf("%s %s %s %s %s %s",
		timeStyle.Render(e.Timestamp.Format("15:04:05")),
		modeStyle.Render("["+string(e.Mode)+"]"),
		langStyle.Render(string(e.SrcLang)),
		e.Original,
		arrowStyle.Render("->"),
		e.Translated,
	)
}
