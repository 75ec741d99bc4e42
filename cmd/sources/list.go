package sources

import (
	"fmt"
	"text/tabwriter"

	"github.com/djcass44/all-your-feeds/pkg/airutil"
	"github.com/djcass44/all-your-feeds/pkg/sources"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the package sources in a NuGet.Config file",
	RunE:  list,
}

const (
	flagConfigFile = "configfile"
)

func init() {
	listCmd.Flags().String(flagConfigFile, "NuGet.Config", "path to a NuGet.Config file")
	_ = listCmd.MarkFlagFilename(flagConfigFile, ".config", ".Config")
}

func list(cmd *cobra.Command, _ []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())

	path, _ := cmd.Flags().GetString(flagConfigFile)
	path = airutil.ExpandEnv(path)
	log.V(1).Info("reading package sources", "path", path)

	registry, err := sources.LoadConfig(cmd.Context(), path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tLOCATION\tLOCAL")
	for _, src := range registry.List() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\n", src.Name, src.Location, src.IsLocal)
	}
	return w.Flush()
}
