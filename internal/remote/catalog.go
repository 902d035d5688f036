package remote

import "shopcart/internal/domain"

func bundle(id int, slug, name string, cost int64, display string) domain.ResponseCartProduct {
	months := 12
	return domain.ResponseCartProduct{
		ProductID:               id,
		ProductSlug:             slug,
		ProductName:             name,
		Currency:                "USD",
		Volume:                  1,
		ItemOriginalCostInteger: cost,
		ItemOriginalCostDisplay: display,
		ItemSubtotalInteger:     cost,
		ItemSubtotalDisplay:     display,
		ProductCostInteger:      cost,
		ProductCostDisplay:      display,
		IsBundled:               true,
		MonthsPerBillPeriod:     &months,
	}
}

// DemoCatalog is the product list the in-memory endpoint serves when no
// remote URL is configured.
func DemoCatalog() []domain.ResponseCartProduct {
	return []domain.ResponseCartProduct{
		bundle(1009, "personal-bundle", "WordPress.com Personal", 14400, "$144"),
		bundle(1010, "business-bundle", "WordPress.com Business", 30000, "$300"),
	}
}
