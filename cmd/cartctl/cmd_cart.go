package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikolayk812/cartstore-demo/internal/cart"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type variantFlags struct {
	productID int64
	color     string
	size      string
}

func (v *variantFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&v.productID, "id", 0, "product id")
	cmd.Flags().StringVar(&v.color, "color", "", "color variant")
	cmd.Flags().StringVar(&v.size, "size", "", "size variant")
	_ = cmd.MarkFlagRequired("id")
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart lines and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *cart.Store) domain.Snapshot {
				return s.Snapshot()
			})
		},
	}
}

func (a *app) newAddCmd() *cobra.Command {
	var (
		variant  variantFlags
		name     string
		price    string
		image    string
		maxStock int
		quantity int
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add units of a product configuration",
		Example: `  cartctl add --id 1 --name "Linen Shirt" --price 49.99 --max-stock 5 --color white --qty 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price[%s] is not valid: %w", price, err)
			}
			if unitPrice.IsNegative() {
				return fmt.Errorf("price[%s] is negative", price)
			}
			if maxStock < 1 {
				return fmt.Errorf("max-stock must be at least 1, got %d", maxStock)
			}

			line := domain.CartLine{
				ProductID: variant.productID,
				Name:      name,
				UnitPrice: unitPrice,
				Image:     image,
				Color:     variant.color,
				Size:      variant.size,
				MaxStock:  maxStock,
			}

			return a.withStore(cmd, func(s *cart.Store) domain.Snapshot {
				return s.AddItem(line, quantity)
			})
		},
	}

	variant.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&price, "price", "0", "unit price")
	cmd.Flags().StringVar(&image, "image", "", "image reference")
	cmd.Flags().IntVar(&maxStock, "max-stock", 1, "maximum quantity for this line")
	cmd.Flags().IntVar(&quantity, "qty", 1, "quantity to add")

	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	var variant variantFlags

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *cart.Store) domain.Snapshot {
				return s.RemoveItem(variant.productID, variant.color, variant.size)
			})
		},
	}
	variant.register(cmd)

	return cmd
}

func (a *app) newSetQtyCmd() *cobra.Command {
	var (
		variant  variantFlags
		quantity int
	)

	cmd := &cobra.Command{
		Use:   "set-qty",
		Short: "Set the quantity of a line, 0 removes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *cart.Store) domain.Snapshot {
				return s.UpdateQuantity(variant.productID, quantity, variant.color, variant.size)
			})
		},
	}
	variant.register(cmd)
	cmd.Flags().IntVar(&quantity, "qty", 0, "new quantity")
	_ = cmd.MarkFlagRequired("qty")

	return cmd
}

func (a *app) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *cart.Store) domain.Snapshot {
				return s.ClearCart()
			})
		},
	}
}

func (a *app) newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete the stored cart slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, release, err := a.openPersister(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer release()

			deleted, err := repo.Delete(cmd.Context())
			if err != nil {
				return fmt.Errorf("repo.Delete: %w", err)
			}

			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "slot %s deleted\n", a.cfg.Cart.Slot)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "slot %s not found\n", a.cfg.Cart.Slot)
			}

			return nil
		},
	}
}

func newKeyCmd() *cobra.Command {
	var variant variantFlags

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the identity key of a product configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), domain.KeyOf(variant.productID, variant.color, variant.size))
			return nil
		},
	}
	variant.register(cmd)

	return cmd
}

// withStore opens the cart, applies op, waits for the result to be
// persisted and prints it. The cart is only printed once it is stored.
func (a *app) withStore(cmd *cobra.Command, op func(s *cart.Store) domain.Snapshot) error {
	ctx := cmd.Context()

	repo, release, err := a.openPersister(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer release()

	s := cart.Open(ctx, repo,
		cart.WithLogger(a.logger.With(zap.String("slot", a.cfg.Cart.Slot))),
		cart.WithCurrency(a.cfg.Cart.Unit()),
		cart.WithSaveRetry(a.cfg.Cart.SaveMaxTries, a.cfg.Cart.SaveInitialInterval),
	)

	snapshot := op(s)

	// a dropped save fails the command; nothing was stored
	if err := s.Close(ctx); err != nil {
		return fmt.Errorf("s.Close: %w", err)
	}

	return printSnapshot(cmd.OutOrStdout(), snapshot)
}

func printSnapshot(out io.Writer, snapshot domain.Snapshot) error {
	if len(snapshot.Lines) == 0 {
		_, err := fmt.Fprintln(out, "cart is empty")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tPRICE\tQTY\tMAX")
	for _, line := range snapshot.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			line.Key(), line.Name, line.UnitPrice.StringFixed(2), line.Quantity, line.MaxStock)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("w.Flush: %w", err)
	}

	summary := domain.Summarize(snapshot)

	shipping := summary.Shipping.String()
	if summary.FreeShipping {
		shipping = "free"
	}

	fmt.Fprintf(out, "items: %d\n", summary.ItemCount)
	fmt.Fprintf(out, "subtotal: %s\n", summary.Subtotal)
	fmt.Fprintf(out, "shipping: %s\n", shipping)
	if !summary.FreeShipping {
		fmt.Fprintf(out, "free shipping in: %s\n", summary.UntilFreeShipping)
	}
	fmt.Fprintf(out, "tax: %s\n", summary.Tax)
	_, err := fmt.Fprintf(out, "total: %s\n", summary.Total)

	return err
}
