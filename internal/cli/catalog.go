package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// NewSeedCmd creates the 'seed' command that rebuilds the index from the demo catalog.
func NewSeedCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Drop the product index and load the demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer rt.Close()

			n, err := rt.catalog.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Setup complete: %d products indexed\n", n)
			return nil
		},
	}
}

// NewDrainCmd creates the 'drain' command that indexes everything waiting in the sync queue.
func NewDrainCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Index every product waiting in the sync queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireQueue(); err != nil {
				return err
			}

			names, err := rt.catalog.Drain(cmd.Context())
			out := cmd.OutOrStdout()
			for _, n := range names {
				fmt.Fprintf(out, "  synced  %s\n", n)
			}
			fmt.Fprintf(out, "%d products synced\n", len(names))
			return err
		},
	}
}

// NewUpsertCmd creates the 'upsert' command that indexes products from JSON files.
func NewUpsertCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upsert <file.json>...",
		Short: "Index products from JSON files (one object or an array per file)",
		Example: `  shopctl upsert product.json
  shopctl upsert --env prod catalog/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readProductFiles(args)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer rt.Close()

			for i := range products {
				res, err := rt.catalog.Upsert(cmd.Context(), &products[i])
				if err != nil {
					return fmt.Errorf("product %q: %w", products[i].ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", res, products[i].ID)
			}
			return nil
		},
	}
}

// NewEnqueueCmd creates the 'enqueue' command that pushes products onto the sync queue.
func NewEnqueueCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <file.json>...",
		Short: "Push products onto the sync queue for a later drain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readProductFiles(args)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.requireQueue(); err != nil {
				return err
			}

			payloads := make([][]byte, len(products))
			for i := range products {
				if payloads[i], err = json.Marshal(products[i]); err != nil {
					return err
				}
			}
			if err := rt.queue.Enqueue(cmd.Context(), payloads...); err != nil {
				return err
			}
			pending, err := rt.queue.Pending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d products queued on %s (%d pending)\n", len(payloads), rt.queue.Key(), pending)
			return nil
		},
	}
}

// readProductFiles decodes every file as either a product object or an array of them.
func readProductFiles(paths []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Clean(p))
		if err != nil {
			return nil, err
		}
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '[' {
			var batch []domain.Product
			if err := json.Unmarshal(data, &batch); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			out = append(out, batch...)
			continue
		}
		var one domain.Product
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, one)
	}
	return out, nil
}
