package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/natours/internal/lib/validate"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage/mongodb"
)

const defaultToursFile = "dev-data/tours.json"

// NewImportCmd создаёт подкоманду import.
func NewImportCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tours from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tours, err := readTours(file)
			if err != nil {
				return err
			}

			store, _, ctx, cancel, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer store.Close(ctx)

			n, err := mongodb.NewTourRepository(store.DB).InsertMany(ctx, tours)
			if err != nil {
				return fmt.Errorf("import tours: %w", err)
			}
			cmd.Printf("Imported %d tours\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", defaultToursFile, "path to the tours JSON file")
	cmd.Flags().Bool("verbose", false, "log database activity")
	return cmd
}

// NewDeleteCmd создаёт подкоманду delete.
func NewDeleteCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every tour",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, ctx, cancel, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer store.Close(ctx)

			n, err := mongodb.NewTourRepository(store.DB).DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("delete tours: %w", err)
			}
			cmd.Printf("Deleted %d tours\n", n)
			return nil
		},
	}
	cmd.Flags().Bool("verbose", false, "log database activity")
	return cmd
}

// readTours читает и проверяет туры из файла path.
func readTours(path string) ([]*models.Tour, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var tours []*models.Tour
	if err := json.Unmarshal(raw, &tours); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	v := validate.New()
	for i, t := range tours {
		t.Normalize()
		if err := v.Struct(t); err != nil {
			return nil, fmt.Errorf("tour #%d (%q): %w", i, t.Name, err)
		}
	}
	return tours, nil
}
