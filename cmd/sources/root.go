package sources

import "github.com/spf13/cobra"

var Command = &cobra.Command{
	Use:   "sources",
	Short: "Package source utilities",
}

func init() {
	Command.AddCommand(listCmd)
}
