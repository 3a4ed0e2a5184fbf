package main

import (
	"fmt"
	"time"

	"baby-care-log/internal/core/suggest"

	"github.com/spf13/cobra"
)

var typingInterval time.Duration

var prescriptionsCmd = &cobra.Command{
	Use:   "prescriptions",
	Short: "Recetas usadas en un perfil",
}

var prescriptionsSuggestCmd = &cobra.Command{
	Use:   "suggest <texto>...",
	Short: "Simular el autocompletado de receta",
	Long: `Cada argumento es el contenido del campo después de una tecla
(por ejemplo: a am amo). Las búsquedas pasan por el mismo debounce que el
diálogo y se muestran las opciones para el último texto.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := requireProfile()
		if err != nil {
			return err
		}

		window := cfg.Client.SuggestWindow.Std()
		var f *suggest.Fetcher
		f = suggest.New(client, profile, suggest.Config{
			Window: window,
			Logger: log,
			OnChange: func() {
				log.Debug("suggest", map[string]any{"state": f.State().String()})
			},
		})
		defer f.Close()

		for i, text := range args {
			f.Input(text, suggest.ReasonInput)
			if i < len(args)-1 {
				time.Sleep(typingInterval)
			}
		}

		// Esperar a que dispare el debounce y termine la consulta.
		time.Sleep(window + 20*time.Millisecond)
		f.Wait()

		last := args[len(args)-1]
		for _, c := range f.Options(last) {
			if c.Synthetic {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", c.Label)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", suggest.Choose(c))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prescriptionsCmd)
	prescriptionsCmd.AddCommand(prescriptionsSuggestCmd)
	prescriptionsSuggestCmd.Flags().DurationVar(&typingInterval, "typing-interval", 120*time.Millisecond, "pausa entre teclas")
}
