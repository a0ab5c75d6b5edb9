package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/get_product"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_movements"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/adjust_stock"
	"github.com/light-bringer/inventory-service/internal/services"
)

var (
	showBySKU     bool
	adjustDelta   int64
	adjustReason  string
	movementLimit int
)

var stockShowCmd = &cobra.Command{
	Use:   "stock:show <product-id|sku>",
	Short: "Show stock and pricing of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			req := &get_product.Request{ProductID: args[0], IncludeInactive: true}
			if showBySKU {
				req = &get_product.Request{SKU: args[0], IncludeInactive: true}
			}
			p, err := svc.GetProduct.Execute(ctx, req)
			if err != nil {
				return err
			}
			printProduct(out, p)
			return nil
		})
	},
}

var stockAdjustCmd = &cobra.Command{
	Use:   "stock:adjust <product-id>",
	Short: "Apply a signed change to stock on hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if adjustDelta == 0 {
			return fmt.Errorf("--delta must not be zero")
		}
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			level, err := svc.AdjustStock.Execute(ctx, &adjust_stock.Request{
				ProductID: args[0],
				Delta:     adjustDelta,
				Reason:    adjustReason,
			})
			if err != nil {
				return err
			}
			printLevel(out, args[0], level)
			return nil
		})
	},
}

var stockMovementsCmd = &cobra.Command{
	Use:   "stock:movements <product-id>",
	Short: "List recent stock adjustments of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			movements, err := svc.ListMovements.Execute(ctx, &list_movements.Request{
				ProductID: args[0],
				Limit:     movementLimit,
			})
			if err != nil {
				return err
			}
			if len(movements) == 0 {
				fmt.Fprintln(out, "No movements found")
				return nil
			}
			for _, m := range movements {
				fmt.Fprintf(out, "%s  %+d  on_hand=%d reserved=%d  %s\n",
					m.CreatedAt.Format(time.RFC3339), m.Delta, m.StockAfter, m.ReservedAfter, m.Reason)
			}
			return nil
		})
	},
}

func init() {
	stockShowCmd.Flags().BoolVar(&showBySKU, "sku", false, "Treat the argument as a SKU")

	stockAdjustCmd.Flags().Int64Var(&adjustDelta, "delta", 0, "Signed quantity to add to stock on hand (required)")
	stockAdjustCmd.Flags().StringVar(&adjustReason, "reason", "", "Reason recorded on the movement")
	_ = stockAdjustCmd.MarkFlagRequired("delta")

	stockMovementsCmd.Flags().IntVar(&movementLimit, "limit", 20, "Maximum number of movements")

	rootCmd.AddCommand(stockShowCmd, stockAdjustCmd, stockMovementsCmd)
}

func printProduct(out io.Writer, p *contracts.ProductDTO) {
	fmt.Fprintf(out, `
=== %s (%s) ===
ID:          %s
Active:      %t
Price:       %s
Discount:    %s%%
On hand:     %d
Reserved:    %d
Available:   %d
Low stock:   %t (threshold %d)
Tracked:     %t
Backorders:  %t
`, p.Name, p.SKU, p.ProductID, p.IsActive, p.Price, p.DiscountPercentage,
		p.StockQuantity, p.ReservedQuantity, p.AvailableQuantity,
		p.IsLowStock, p.LowStockThreshold, p.TrackInventory, p.AllowBackorders)
}

func printLevel(out io.Writer, productID string, level domain.StockLevel) {
	fmt.Fprintf(out, "%s: on_hand=%d reserved=%d available=%d low=%t\n",
		productID, level.StockQuantity, level.ReservedQuantity, level.Available(), level.IsLowStock())
}
