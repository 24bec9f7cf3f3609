package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/melody-cli/melody/color"
	"github.com/melody-cli/melody/history"
	"github.com/melody-cli/melody/style"
	"github.com/melody-cli/melody/track"
	"github.com/melody-cli/melody/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tracksCmd)

	tracksCmd.Flags().StringP("search", "s", "", "Only show tracks matching the query")
	tracksCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	tracksCmd.Flags().BoolP("refresh", "r", false, "Ignore the cached catalog and fetch it again")

	tracksCmd.AddCommand(tracksSchemaCmd)
	tracksSchemaCmd.Flags().Bool("history", false, "Print the schema of history entries instead")
}

// tracksCmd lists the catalog.
var tracksCmd = &cobra.Command{
	Use:     "tracks",
	Short:   "List the tracks available for streaming",
	Aliases: []string{"ls"},
	Example: "  melody tracks --search lofi",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			query   = lo.Must(cmd.Flags().GetString("search"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			refresh = lo.Must(cmd.Flags().GetBool("refresh"))
		)

		catalog, fetcher := newCatalog(newClient())
		if refresh {
			handleErr(fetcher.Invalidate())
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		handleErr(catalog.Load(ctx))

		tracks := catalog.Tracks()
		if query != "" {
			tracks = catalog.Search(query)
		}

		if asJson {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(tracks))
			return
		}

		printTracks(cmd, tracks)
	},
}

func printTracks(cmd *cobra.Command, tracks []track.Track) {
	if len(tracks) == 0 {
		cmd.Println(style.Faint("no tracks"))
		return
	}

	idWidth := lo.Max(lo.Map(tracks, func(t track.Track, _ int) int { return len(t.ID) }))
	for _, t := range tracks {
		cmd.Printf(
			"%s  %s  %s %s\n",
			style.Fg(color.Purple)(fmt.Sprintf("%-*s", idWidth, t.ID)),
			style.Faint(util.FormatClock(t.Duration.Float())),
			style.Bold(t.Name),
			style.Faint(t.Description),
		)
	}

	total := lo.SumBy(tracks, func(t track.Track) float64 { return t.Duration.Float() })
	cmd.Printf("\n%s, %s\n", util.Quantify(len(tracks), "track", "tracks"), util.FormatTotal(total))
}

// tracksSchemaCmd prints the JSON schema of `tracks --json` output.
var tracksSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the structured output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return t.Name()
		}

		var schema *jsonschema.Schema
		switch {
		case lo.Must(cmd.Flags().GetBool("history")):
			schema = reflector.Reflect([]*history.Entry{})
		default:
			schema = reflector.Reflect([]track.Track{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
