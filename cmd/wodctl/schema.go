package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/wodgen/internal/models"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the workout JSON Schema",
	Long: `Prints the JSON Schema sent to the model as its structured output format.
With --server, the schema is fetched from the server instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		if remote() {
			raw, err := newClient().Schema(cmd.Context())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "  "); err != nil {
				return fmt.Errorf("formatting schema: %w", err)
			}
			data = buf.Bytes()
		} else {
			var err error
			data, err = json.MarshalIndent(models.JSONSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimSpace(data)))
		return err
	},
}
