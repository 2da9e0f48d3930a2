package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"nodeacademy/internal/client"
	"nodeacademy/internal/models"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the course lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		lessons, err := c.Lessons(cmd.Context())
		if err != nil {
			return err
		}

		var progress *models.ProgressView
		if c.LoggedIn() {
			progress, err = c.Progress(cmd.Context())
			if err != nil && !errors.Is(err, client.ErrUnauthorized) {
				return err
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tDURATION\tSTATUS")
		for _, l := range lessons {
			status := "-"
			if progress != nil {
				if p, ok := progress.Lessons[l.ID]; ok && p.Completed {
					status = fmt.Sprintf("done (%d)", p.Score)
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.Difficulty, l.Duration, status)
		}
		return tw.Flush()
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your progress and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		progress, err := c.Progress(cmd.Context())
		if err != nil {
			return err
		}
		catalog, err := c.Achievements(cmd.Context())
		if err != nil {
			return err
		}
		titles := make(map[string]string, len(catalog))
		for _, d := range catalog {
			titles[string(d.ID)] = d.Icon + " " + d.Title
		}
		printProgress(cmd.OutOrStdout(), progress, titles)
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List every achievement that can be earned",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		catalog, err := c.Achievements(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range catalog {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-15s %s\n", d.Icon, d.Title, d.Description)
		}
		return nil
	},
}

func printProgress(out io.Writer, p *models.ProgressView, titles map[string]string) {
	fmt.Fprintf(out, "Completed lessons: %d\n", p.CompletedLessons)
	fmt.Fprintf(out, "Total score:       %d\n", p.TotalScore)

	if len(p.Achievements) == 0 {
		fmt.Fprintln(out, "No achievements yet.")
		return
	}

	ids := make([]string, 0, len(p.Achievements))
	for id := range p.Achievements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return p.Achievements[ids[i]].Before(p.Achievements[ids[j]])
	})

	fmt.Fprintln(out, "Achievements:")
	for _, id := range ids {
		title := titles[id]
		if title == "" {
			title = id
		}
		fmt.Fprintf(out, "  %s  (%s)\n", title, p.Achievements[id].Local().Format(time.DateOnly))
	}
}
