package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediasorter/internal/config"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "parse <filename>...",
		Short: "Show how file names are parsed and tagged, without lookups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.offlineEngine()
			if err != nil {
				return err
			}
			if !config.IsValidMediaType(mediaType) {
				return fmt.Errorf("unknown media type %q (want auto, movie, or tv)", mediaType)
			}

			type parseView struct {
				File         string   `json:"file"`
				Type         string   `json:"type,omitempty"`
				Title        string   `json:"title,omitempty"`
				Year         int      `json:"year,omitempty"`
				Season       int      `json:"season,omitempty"`
				Episode      int      `json:"episode,omitempty"`
				EpisodeTitle string   `json:"episode_title,omitempty"`
				Tags         string   `json:"tags,omitempty"`
				Labels       []string `json:"labels,omitempty"`
				Error        string   `json:"error,omitempty"`
			}
			views := make([]parseView, 0, len(args))
			for _, name := range args {
				parsed, tags, err := engine.Parse(name, mediaType)
				view := parseView{File: name, Tags: tags.String(), Labels: tags.Labels()}
				if err != nil {
					view.Error = err.Error()
				} else {
					view.Type = parsed.Mode.String()
					view.Title = parsed.Title
					view.Year = parsed.Year
					view.Season = parsed.Season
					view.Episode = parsed.Episode
					view.EpisodeTitle = parsed.EpisodeTitle
				}
				views = append(views, view)
			}
			if jsonOut {
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				if v.Error != "" {
					rows = append(rows, []string{v.File, "-", v.Error, "", "", "", v.Tags})
					continue
				}
				number := ""
				if v.Type == "tv" {
					number = "S" + pad2(v.Season) + "E" + pad2(v.Episode)
				}
				year := ""
				if v.Year > 0 {
					year = strconv.Itoa(v.Year)
				}
				rows = append(rows, []string{v.File, v.Type, v.Title, year, number, v.EpisodeTitle, v.Tags})
			}
			renderRows(cmd.OutOrStdout(),
				cols("File", "Type", "Title", "Year", "Episode", "Episode Title", "Tags"), rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", config.MediaTypeAuto, "Media type: auto, movie, or tv")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
