package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"baby-care-log/internal/core/commands"
	"baby-care-log/internal/core/optimistic"
	"baby-care-log/internal/domain/events"
	"baby-care-log/internal/editor"

	"github.com/spf13/cobra"
)

var (
	listKinds string
	listLimit int
	listQuery string
	listJSON  bool

	eventKind string
	eventID   string
	setPairs  []string

	stepField    string
	stepBy       int
	stepRepeat   int
	stepInterval time.Duration
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Listar y editar eventos de un perfil",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista canónica de eventos, más reciente primero",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := requireProfile()
		if err != nil {
			return err
		}

		filter := events.ListFilter{Limit: listLimit, Query: listQuery}
		for _, k := range splitCSV(listKinds) {
			kind := events.Kind(strings.ToUpper(k))
			if !kind.Known() {
				return fmt.Errorf("%w: %s", events.ErrUnknownKind, k)
			}
			filter.Kinds = append(filter.Kinds, kind)
		}

		list, err := client.ListEvents(cmd.Context(), profile, filter)
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		// Sin llamadas en vuelo las filas son la lista canónica tal cual.
		grid := editor.NewGrid(commands.NewDispatcher(client, optimistic.NewTracker()), editor.GridConfig{ReadOnly: true})
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tTYPE\tVALUES\tCOMMENT")
		for _, row := range grid.Rows(list) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				row.Event.ID,
				row.Event.Time.Local().Format("2006-01-02 15:04"),
				row.Label,
				inlineSummary(grid, row.Event),
				row.Event.Comment,
			)
		}
		return tw.Flush()
	},
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Actualizar campos de un evento (solo los indicados con --set)",
	Example: `  babylogctl events update --kind BOTTLE_FEED --id 0d1c... --set volume=120
  babylogctl events update --kind SLEEP --id 0d1c... --set duration=45m --set comment="siesta"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(eventKind)
		if err != nil {
			return err
		}
		changed, err := parseSet(kind, setPairs)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			return fmt.Errorf("nothing to update: use --set field=value")
		}

		disp, settled := settledDispatcher()
		if !disp.Update(cmd.Context(), kind, eventID, changed) {
			return fmt.Errorf("update not sent: missing --id or no update action for %s", kind)
		}
		if err := <-settled; err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", eventID)
		return nil
	},
}

var eventsStepCmd = &cobra.Command{
	Use:   "step",
	Short: "Sumar pasos a un campo numérico como lo hace la grilla",
	Long: `step repite la flecha del editor inline --repeat veces. Los cambios se
agrupan por el debounce de la grilla y salen en un único UPDATE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := requireProfile()
		if err != nil {
			return err
		}
		e, err := client.FindEvent(cmd.Context(), profile, eventID)
		if err != nil {
			return err
		}

		disp, settled := settledDispatcher()
		grid := editor.NewGrid(disp, editor.GridConfig{
			Window:  cfg.Client.GridWindow.Std(),
			Logger:  log,
			Context: cmd.Context(),
		})
		defer grid.Close()

		for i := 0; i < stepRepeat; i++ {
			if !grid.Step(e, stepField, stepBy) {
				return fmt.Errorf("field %q is not editable inline for %s", stepField, e.Kind())
			}
			log.Debug("step", map[string]any{"field": stepField, "value": grid.DisplayValue(e, stepField)})
			if stepInterval > 0 && i < stepRepeat-1 {
				time.Sleep(stepInterval)
			}
		}
		final := grid.DisplayValue(e, stepField)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.GridWindow.Std()+cfg.Client.Timeout.Std())
		defer cancel()
		select {
		case err := <-settled:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return fmt.Errorf("step: %w", ctx.Err())
		}

		inline, _ := events.LookupInlineField(e.Kind(), stepField)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", e.ID, stepField, formatNumber(final), inline.Unit)
		return nil
	},
}

var eventsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Borrar un evento",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(eventKind)
		if err != nil {
			return err
		}
		disp, settled := settledDispatcher()
		if !disp.Remove(cmd.Context(), kind, eventID) {
			return fmt.Errorf("remove not sent: missing --id or no remove action for %s", kind)
		}
		if err := <-settled; err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", eventID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd, eventsUpdateCmd, eventsStepCmd, eventsRemoveCmd)

	eventsListCmd.Flags().StringVar(&listKinds, "kinds", "", "kinds separados por coma (BOTTLE_FEED,SLEEP)")
	eventsListCmd.Flags().IntVar(&listLimit, "limit", 50, "máximo de eventos")
	eventsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "texto a buscar en comentario, título, receta y destino")
	eventsListCmd.Flags().BoolVar(&listJSON, "json", false, "salida en JSON (formato del wire)")

	for _, c := range []*cobra.Command{eventsUpdateCmd, eventsRemoveCmd} {
		c.Flags().StringVar(&eventKind, "kind", "", "kind del evento (BOTTLE_FEED, SLEEP, ...)")
		c.Flags().StringVar(&eventID, "id", "", "id del evento")
		_ = c.MarkFlagRequired("kind")
		_ = c.MarkFlagRequired("id")
	}
	eventsUpdateCmd.Flags().StringArrayVar(&setPairs, "set", nil, "campo=valor (repetible)")

	eventsStepCmd.Flags().StringVar(&eventID, "id", "", "id del evento")
	eventsStepCmd.Flags().StringVar(&stepField, "field", "", "campo inline (volume, leftDuration, height, ...)")
	eventsStepCmd.Flags().IntVar(&stepBy, "by", 1, "pasos por click (negativo resta)")
	eventsStepCmd.Flags().IntVar(&stepRepeat, "repeat", 1, "cantidad de clicks")
	eventsStepCmd.Flags().DurationVar(&stepInterval, "interval", 50*time.Millisecond, "pausa entre clicks")
	_ = eventsStepCmd.MarkFlagRequired("id")
	_ = eventsStepCmd.MarkFlagRequired("field")
}

// settledDispatcher arma un dispatcher contra el server y un canal que
// recibe el resultado de cada envío.
func settledDispatcher() (*commands.Dispatcher, <-chan error) {
	settled := make(chan error, 1)
	disp := commands.NewDispatcher(client, optimistic.NewTracker(),
		commands.WithLogger(log),
		commands.WithOnSettled(func(_ string, _ events.Action, err error) {
			select {
			case settled <- err:
			default:
			}
		}),
	)
	return disp, settled
}

func parseKind(s string) (events.Kind, error) {
	k := events.Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Known() {
		return "", fmt.Errorf("%w: %q", events.ErrUnknownKind, s)
	}
	return k, nil
}

// parseSet convierte pares campo=valor al formato del wire. Las duraciones
// aceptan la sintaxis de Go (15m, 1h30m) o ms; "true"/"false" son booleanos.
func parseSet(kind events.Kind, pairs []string) (events.Fields, error) {
	out := events.Fields{}
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want field=value", p)
		}
		if name != events.FieldTime && name != events.FieldComment && !events.HasField(kind, name) {
			return nil, fmt.Errorf("field %q not valid for %s", name, kind)
		}

		switch name {
		case events.FieldDuration, events.FieldLeftDuration, events.FieldRightDuration:
			ms, err := parseMillis(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = ms
		case events.FieldTime, events.FieldEndTime:
			t, err := events.ParseTime(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			out[name] = events.FormatTime(t)
		default:
			out[name] = scalar(raw)
		}
	}
	return out, nil
}

func parseMillis(raw string) (int64, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d.Milliseconds(), nil
}

func scalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func inlineSummary(grid *editor.Grid, e events.Event) string {
	var parts []string
	for _, f := range events.InlineFields(e.Kind()) {
		parts = append(parts, fmt.Sprintf("%s=%s%s", f.Name, formatNumber(grid.DisplayValue(e, f.Name)), f.Unit))
	}
	if d, ok := e.Details.(events.Medicine); ok && !events.IsUnspecified(d.Prescription) {
		parts = append(parts, d.Prescription)
	}
	if days, ok := events.TravelDays(e, time.Local); ok {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	return strings.Join(parts, " ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
