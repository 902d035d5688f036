package domain

// RenewalPurchaseType marks a cart item that renews an existing subscription.
const RenewalPurchaseType = "renewal"

// NoUserCartKey is the cart key the remote endpoint uses for logged-out carts.
const NoUserCartKey = "no-user"

// ResponseCart is the server-authoritative snapshot of a cart. It is replaced
// wholesale on every remote read or write.
type ResponseCart struct {
	CartKey           string                `json:"cart_key"`
	CartGeneratedAt   int64                 `json:"cart_generated_at_timestamp"`
	Products          []ResponseCartProduct `json:"products"`
	Coupon            string                `json:"coupon"`
	IsCouponApplied   bool                  `json:"is_coupon_applied"`
	CouponDiscount    int64                 `json:"coupon_savings_total_integer"`
	Currency          string                `json:"currency"`
	SubTotalInteger   int64                 `json:"sub_total_integer"`
	SubTotalDisplay   string                `json:"sub_total_display"`
	TotalTaxInteger   int64                 `json:"total_tax_integer"`
	TotalTaxDisplay   string                `json:"total_tax_display"`
	TotalCostInteger  int64                 `json:"total_cost_integer"`
	TotalCostDisplay  string                `json:"total_cost_display"`
	AllowedPayMethods []string              `json:"allowed_payment_methods"`
	Temporary         bool                  `json:"temporary"`
	Tax               TaxInfo               `json:"tax"`
}

// TaxInfo is the tax/location sub-record of a cart.
type TaxInfo struct {
	DisplayTaxes bool        `json:"display_taxes"`
	Location     TaxLocation `json:"location"`
}

type TaxLocation struct {
	CountryCode     string `json:"country_code,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	SubdivisionCode string `json:"subdivision_code,omitempty"`
}

// CartLocation is the caller-facing shape of a tax location.
type CartLocation struct {
	CountryCode     string `json:"countryCode"`
	PostalCode      string `json:"postalCode"`
	SubdivisionCode string `json:"subdivisionCode"`
}

// ProductExtra carries per-item flags the server attaches to a product.
type ProductExtra struct {
	Context      string `json:"context,omitempty"`
	PurchaseType string `json:"purchaseType,omitempty"`
	PurchaseID   string `json:"purchaseId,omitempty"`
	Source       string `json:"source,omitempty"`
}

// ResponseCartProduct is an item the remote cart has accepted.
type ResponseCartProduct struct {
	ProductID               int          `json:"product_id"`
	ProductSlug             string       `json:"product_slug"`
	ProductName             string       `json:"product_name"`
	ProductType             string       `json:"product_type,omitempty"`
	Currency                string       `json:"currency"`
	UUID                    string       `json:"uuid"`
	Meta                    string       `json:"meta"`
	Volume                  int          `json:"volume"`
	Quantity                *int         `json:"quantity"`
	CurrentQuantity         int          `json:"current_quantity"`
	ItemOriginalCostInteger int64        `json:"item_original_cost_integer"`
	ItemOriginalCostDisplay string       `json:"item_original_cost_display"`
	ItemSubtotalInteger     int64        `json:"item_subtotal_integer"`
	ItemSubtotalDisplay     string       `json:"item_subtotal_display"`
	ProductCostInteger      int64        `json:"product_cost_integer"`
	ProductCostDisplay      string       `json:"product_cost_display"`
	IsDomainRegistration    bool         `json:"is_domain_registration"`
	IsBundled               bool         `json:"is_bundled"`
	IsSaleCouponApplied     bool         `json:"is_sale_coupon_applied"`
	MonthsPerBillPeriod     *int         `json:"months_per_bill_period"`
	TimeAddedToCart         int64        `json:"time_added_to_cart"`
	Extra                   ProductExtra `json:"extra"`
}

func (p ResponseCartProduct) IsRenewal() bool {
	return p.Extra.PurchaseType == RenewalPurchaseType
}

// Location returns the cart's tax location in caller-facing form.
func (c ResponseCart) Location() CartLocation {
	return CartLocation{
		CountryCode:     c.Tax.Location.CountryCode,
		PostalCode:      c.Tax.Location.PostalCode,
		SubdivisionCode: c.Tax.Location.SubdivisionCode,
	}
}

// ContainsRenewal reports whether any item in the cart is a renewal.
func (c ResponseCart) ContainsRenewal() bool {
	for _, p := range c.Products {
		if p.IsRenewal() {
			return true
		}
	}
	return false
}

// ProductSlugs lists the slugs of every item in cart order.
func (c ResponseCart) ProductSlugs() []string {
	out := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		out = append(out, p.ProductSlug)
	}
	return out
}

// EmptyResponseCart is the placeholder cart used before the first snapshot.
func EmptyResponseCart() ResponseCart {
	return ResponseCart{
		Products:          []ResponseCartProduct{},
		Currency:          "USD",
		SubTotalDisplay:   "0",
		TotalTaxDisplay:   "0",
		TotalCostDisplay:  "0",
		AllowedPayMethods: []string{},
	}
}
