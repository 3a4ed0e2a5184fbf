package main

import (
	"fmt"
	"text/tabwriter"

	"baby-care-log/internal/adapters/commandapi"

	"github.com/spf13/cobra"
)

var newProfile commandapi.CreateProfileInput

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Perfiles del usuario",
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crear un perfil",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := client.CreateProfile(cmd.Context(), newProfile)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Listar mis perfiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := client.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tNICKNAME\tGENDER\tBORN")
		for _, p := range list {
			born := ""
			if p.DateOfBirth != nil {
				born = p.DateOfBirth.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Nickname, p.Gender, born)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesCreateCmd, profilesListCmd)

	f := profilesCreateCmd.Flags()
	f.StringVar(&newProfile.Name, "name", "", "nombre")
	f.StringVar(&newProfile.Nickname, "nickname", "", "apodo")
	f.StringVar(&newProfile.Gender, "gender", "", "male, female o unknown")
	f.StringVar(&newProfile.DateOfBirth, "dob", "", "fecha de nacimiento (YYYY-MM-DD)")
	f.StringVar(&newProfile.Notes, "notes", "", "notas")
	_ = profilesCreateCmd.MarkFlagRequired("name")
}
