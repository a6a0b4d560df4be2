package cli

import "github.com/spf13/cobra"

func newActivityCmd(st *state) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes to your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireLogin(); err != nil {
				return err
			}
			entries, err := st.api.ListActivity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return renderActivity(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (server default 20, max 100)")
	return cmd
}
