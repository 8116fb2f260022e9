package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamzambudio/rpa-lab/internal/service"
)

func transformCmd(a *app) *cobra.Command {
	opts := service.TransformOptions{}
	cmd := &cobra.Command{
		Use:     "transform",
		Short:   "Clean a sales CSV and export an Excel summary",
		Example: "rpa-cli transform --input data/ventas.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := service.Transform(cmd.Context(), opts, a.logger)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Println(a.ui.title("=== Transform Summary ==="))
			fmt.Printf("Valid rows:    %s\n", a.ui.ok(res.Valid))
			fmt.Printf("Rejected rows: %s\n", a.ui.warn(res.Rejected))
			fmt.Printf("Groups:        %d\n", res.Groups)
			fmt.Printf("Workbook:      %s\n", a.ui.info(opts.OutputXLSX))
			if res.Rejected > 0 {
				fmt.Printf("Rejects:       %s\n", a.ui.info(opts.RejectsCSV))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Input, "input", "data/ventas.csv", "sales CSV")
	cmd.Flags().StringVar(&opts.OutputXLSX, "output", "data/informe.xlsx", "output workbook")
	cmd.Flags().StringVar(&opts.RejectsCSV, "rejects", "data/rechazadas.csv", "rejected rows CSV")
	return cmd
}
