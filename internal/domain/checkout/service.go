// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/code"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/settlement"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CodeResolver validates a raw code string against the code families
type CodeResolver interface {
	Resolve(ctx context.Context, raw string, subtotal int64, email string) (*code.Resolution, error)
}

// MethodGetter loads a shipping method by id
type MethodGetter interface {
	Get(ctx context.Context, id string) (*shipping.Method, error)
}

// CreditReader reports a customer's available store credit
type CreditReader interface {
	Available(ctx context.Context, customerID string) (int64, error)
}

// Settler dispatches an allocated order to its settlement backend
type Settler interface {
	Settle(ctx context.Context, method order.PaymentMethod, req *settlement.Request) (*settlement.Artifact, error)
}

// Recorder persists the order and applies ledger side effects
type Recorder interface {
	Record(ctx context.Context, o *order.Order, usage *ledger.Usage) (*ledger.Result, error)
}

// Service orchestrates a checkout submission: validate, price, allocate an
// order number, settle, record. Steps before allocation have no side effects
// anywhere; steps after it are strictly ordered so a failure leaves either
// nothing or a fully recorded order.
type Service struct {
	codes     CodeResolver
	shipping  MethodGetter
	credit    CreditReader
	allocator order.Allocator
	settler   Settler
	recorder  Recorder
	cfg       *config.Config
	logger    *logrus.Logger
}

// NewService creates a new checkout orchestrator
func NewService(
	codes CodeResolver,
	shippingMethods MethodGetter,
	creditReader CreditReader,
	allocator order.Allocator,
	settler Settler,
	recorder Recorder,
	cfg *config.Config,
	logger *logrus.Logger,
) *Service {
	return &Service{
		codes:     codes,
		shipping:  shippingMethods,
		credit:    creditReader,
		allocator: allocator,
		settler:   settler,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
}

// ItemInput represents one cart line as submitted at checkout
type ItemInput struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	VariantID    *uint  `json:"variant_id,omitempty"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity" binding:"required"`
	Price        int64  `json:"price"` // Unit price in cents
	BulkVariant  bool   `json:"bulk_variant,omitempty"`
	Subscription bool   `json:"subscription,omitempty"`
	Interval     string `json:"billing_interval,omitempty"`
}

// SubmitRequest represents a checkout submission
type SubmitRequest struct {
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`

	Items  []ItemInput     `json:"items" binding:"required"`
	AddOns []pricing.AddOn `json:"add_ons,omitempty"`

	// Raw code strings; always re-resolved server side, never trusted from
	// an earlier validate-code response. Code carries the promotional or
	// SMS discount, AffiliateCode the affiliate incentive; the two
	// families stack, two codes of one family do not.
	Code          string `json:"code,omitempty"`
	AffiliateCode string `json:"affiliate_code,omitempty"`
	UseCredit     bool   `json:"use_credit,omitempty"`

	Region           string `json:"region"`
	ShippingMethodID string `json:"shipping_method_id"`

	PaymentMethod string `json:"payment_method" binding:"required"`

	ShippingAddress       json.RawMessage `json:"shipping_address" binding:"required"`
	BillingAddress        json.RawMessage `json:"billing_address,omitempty"`
	BillingSameAsShipping bool            `json:"billing_same_as_shipping,omitempty"`

	ReferralSource string `json:"referral_source"`
	TestOrder      bool   `json:"test_order,omitempty"`
}

// SubmitResponse represents a placed order
type SubmitResponse struct {
	OrderNumber   int64               `json:"order_number"`
	Quote         pricing.Quote       `json:"quote"`
	ProcessingFee int64               `json:"processing_fee"`
	Total         int64               `json:"total"` // Gross total including processing fee
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	Reference     string              `json:"reference,omitempty"`
	PaymentHandle string              `json:"payment_handle,omitempty"`
	RedirectURL   string              `json:"redirect_url,omitempty"`
	Warnings      []string            `json:"-"`
}

// validated holds the outcome of request validation: parsed addresses, the
// parsed payment method and the resolved shipping method
type validated struct {
	method          order.PaymentMethod
	shippingAddress order.Address
	billingAddress  order.Address
	shippingMethod  *shipping.Method
}

// Submit runs the full checkout flow. Validation and pricing failures are
// recoverable and mutate nothing. A settlement failure after allocation
// burns the order number but records nothing else. A recording failure
// after settlement returns a PersistenceError.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	v, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	// Subtotal for code minimum-purchase checks
	var subtotal int64
	for _, item := range req.Items {
		subtotal += item.Price * int64(item.Quantity)
	}

	promo, affiliate, err := s.resolveCodes(ctx, req.Code, req.AffiliateCode, subtotal, req.Email)
	if err != nil {
		return nil, err
	}

	var availableCredit int64
	if req.UseCredit {
		availableCredit, err = s.credit.Available(ctx, customerID(req.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to load credit balance: %w", err)
		}
	}

	quote := pricing.Calculate(pricingInput(req, promo, affiliate, availableCredit, v.shippingMethod))

	fee := int64(0)
	total := quote.Total
	if model, ok := FeeModelFor(v.method, s.cfg.Payments); ok {
		total, fee = pricing.GrossForNet(quote.Total, model)
	}

	number, err := s.allocator.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	artifact, err := s.settler.Settle(ctx, v.method, &settlement.Request{
		OrderNumber:     number,
		Email:           req.Email,
		Currency:        "USD",
		Total:           total,
		Items:           buildLineItems(req, &quote, fee),
		ShippingName:    v.shippingMethod.Name,
		ShippingAmount:  quote.ShippingCost,
		HasSubscription: hasSubscription(req.Items),
		TestOrder:       req.TestOrder || s.cfg.Payments.TestMode,
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_number":   number,
			"payment_method": v.method,
		}).WithError(err).Error("Settlement failed, order not recorded")
		return nil, err
	}

	o := buildOrder(req, v, &quote, promo, affiliate, fee, total, number, artifact)

	result, err := s.recorder.Record(ctx, o, &ledger.Usage{
		Discount:        promo,
		Affiliate:       affiliate,
		DiscountAmount:  quote.DiscountAmount,
		AffiliateAmount: quote.AffiliateAmount,
		CreditUsed:      quote.CreditUsed,
		CustomerEmail:   req.Email,
	})
	if err != nil {
		perr := &PersistenceError{OrderNumber: number, Err: err}
		s.logger.WithFields(logrus.Fields{
			"order_number":         number,
			"payment_method":       v.method,
			"settlement_reference": artifact.Reference,
			"total":                total,
		}).WithError(err).Error("Order recording failed after settlement")
		return nil, perr
	}

	return &SubmitResponse{
		OrderNumber:   number,
		Quote:         quote,
		ProcessingFee: fee,
		Total:         total,
		PaymentStatus: artifact.PaymentStatus,
		Reference:     artifact.Reference,
		PaymentHandle: artifact.Handle,
		RedirectURL:   artifact.RedirectURL,
		Warnings:      result.Warnings,
	}, nil
}

// resolveCodes re-resolves the submitted code strings against the live code
// families. At most one promotional (or SMS) discount and at most one
// affiliate incentive may be active at once; store credit stacks with both.
// A code in the promotional slot that resolves to an affiliate code still
// fills the affiliate slot, so a customer pasting their only code into the
// wrong box is not punished for it.
func (s *Service) resolveCodes(ctx context.Context, promoRaw, affiliateRaw string, subtotal int64, email string) (*code.Resolution, *code.Resolution, error) {
	var promo, affiliate *code.Resolution

	if raw := strings.TrimSpace(promoRaw); raw != "" {
		res, err := s.codes.Resolve(ctx, raw, subtotal, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve code: %w", err)
		}
		if !res.Valid {
			return nil, nil, newValidationError("code", res.Reason)
		}
		if res.Type == code.CodeTypeAffiliate {
			affiliate = res
		} else {
			promo = res
		}
	}

	if raw := strings.TrimSpace(affiliateRaw); raw != "" {
		res, err := s.codes.Resolve(ctx, raw, subtotal, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve affiliate code: %w", err)
		}
		if !res.Valid {
			return nil, nil, newValidationError("affiliate_code", res.Reason)
		}
		if res.Type != code.CodeTypeAffiliate {
			return nil, nil, newValidationError("affiliate_code", "not an affiliate code")
		}
		if affiliate != nil {
			return nil, nil, newValidationError("affiliate_code", "only one affiliate code may be applied")
		}
		affiliate = res
	}

	return promo, affiliate, nil
}

// QuoteRequest represents a pricing preview request. It shares the pricing
// path with Submit, so previewed and charged totals cannot drift.
type QuoteRequest struct {
	Email            string          `json:"email,omitempty"`
	Items            []ItemInput     `json:"items" binding:"required"`
	AddOns           []pricing.AddOn `json:"add_ons,omitempty"`
	Code             string          `json:"code,omitempty"`
	AffiliateCode    string          `json:"affiliate_code,omitempty"`
	UseCredit        bool            `json:"use_credit,omitempty"`
	Region           string          `json:"region"`
	ShippingMethodID string          `json:"shipping_method_id,omitempty"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
}

// QuoteResponse represents a pricing preview
type QuoteResponse struct {
	Quote         pricing.Quote `json:"quote"`
	ProcessingFee int64         `json:"processing_fee"`
	Total         int64         `json:"total"`

	// Set when the corresponding code was rejected
	CodeReason          string `json:"code_reason,omitempty"`
	AffiliateCodeReason string `json:"affiliate_code_reason,omitempty"`
}

// Quote prices a cart without placing an order. A rejected code does not
// fail the preview; it prices without the code and reports the reason.
func (s *Service) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	if len(req.Items) == 0 {
		return nil, newValidationError("items", "cart is empty")
	}

	var subtotal int64
	for _, item := range req.Items {
		subtotal += item.Price * int64(item.Quantity)
	}

	resp := &QuoteResponse{}

	var promo, affiliate *code.Resolution
	if strings.TrimSpace(req.Code) != "" {
		res, err := s.codes.Resolve(ctx, req.Code, subtotal, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve code: %w", err)
		}
		switch {
		case !res.Valid:
			resp.CodeReason = res.Reason
		case res.Type == code.CodeTypeAffiliate:
			affiliate = res
		default:
			promo = res
		}
	}

	if raw := strings.TrimSpace(req.AffiliateCode); raw != "" {
		res, err := s.codes.Resolve(ctx, raw, subtotal, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve affiliate code: %w", err)
		}
		switch {
		case !res.Valid:
			resp.AffiliateCodeReason = res.Reason
		case res.Type != code.CodeTypeAffiliate:
			resp.AffiliateCodeReason = "not an affiliate code"
		case affiliate != nil:
			resp.AffiliateCodeReason = "only one affiliate code may be applied"
		default:
			affiliate = res
		}
	}

	var availableCredit int64
	if req.UseCredit && req.Email != "" {
		var err error
		availableCredit, err = s.credit.Available(ctx, customerID(req.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to load credit balance: %w", err)
		}
	}

	var method *shipping.Method
	if req.ShippingMethodID != "" {
		var err error
		method, err = s.shipping.Get(ctx, req.ShippingMethodID)
		if err != nil {
			return nil, newValidationError("shipping_method_id", "unknown shipping method")
		}
	}

	sub := &SubmitRequest{Items: req.Items, AddOns: req.AddOns, UseCredit: req.UseCredit}
	resp.Quote = pricing.Calculate(pricingInput(sub, promo, affiliate, availableCredit, method))
	resp.Total = resp.Quote.Total

	if req.PaymentMethod != "" {
		if pm, err := order.ParsePaymentMethod(req.PaymentMethod); err == nil {
			if model, ok := FeeModelFor(pm, s.cfg.Payments); ok {
				resp.Total, resp.ProcessingFee = pricing.GrossForNet(resp.Quote.Total, model)
			}
		}
	}
	return resp, nil
}

// validate checks the submission and parses its compound fields. All field
// failures are collected into one ValidationError so the client can surface
// them together.
func (s *Service) validate(ctx context.Context, req *SubmitRequest) (*validated, error) {
	fields := map[string]string{}
	v := &validated{}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		fields["email"] = "a valid email address is required"
	}
	req.Email = email

	if strings.TrimSpace(req.Phone) == "" {
		fields["phone"] = "a contact phone number is required"
	}
	if strings.TrimSpace(req.ReferralSource) == "" {
		fields["referral_source"] = "please tell us how you found us"
	}

	if len(req.Items) == 0 {
		fields["items"] = "cart is empty"
	}
	for i, item := range req.Items {
		if item.Price < 0 {
			fields[fmt.Sprintf("items[%d].price", i)] = "price cannot be negative"
			continue
		}
		if err := cart.ValidateQuantity(item.Quantity, item.BulkVariant); err != nil {
			fields[fmt.Sprintf("items[%d].quantity", i)] = err.Error()
		}
	}
	for i, addOn := range req.AddOns {
		if addOn.Price < 0 {
			fields[fmt.Sprintf("add_ons[%d].price", i)] = "price cannot be negative"
		}
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		fields["payment_method"] = "unknown payment method"
	} else {
		switch {
		case method == order.PaymentMethodCard && !s.cfg.Payments.CardEnabled:
			fields["payment_method"] = "card payments are currently unavailable"
		case method == order.PaymentMethodBankTransfer && !s.cfg.Payments.BankEnabled:
			fields["payment_method"] = "bank transfer is currently unavailable"
		}
		v.method = method
	}

	addr, err := ParseAddress(req.ShippingAddress)
	if err != nil {
		fields["shipping_address"] = err.Error()
	} else if !addr.Complete() {
		fields["shipping_address"] = "shipping address is incomplete"
	}
	v.shippingAddress = addr

	if req.BillingSameAsShipping || len(req.BillingAddress) == 0 {
		v.billingAddress = v.shippingAddress
	} else {
		billing, err := ParseAddress(req.BillingAddress)
		if err != nil {
			fields["billing_address"] = err.Error()
		} else if !billing.Complete() {
			fields["billing_address"] = "billing address is incomplete"
		}
		v.billingAddress = billing
	}

	if req.ShippingMethodID == "" {
		fields["shipping_method_id"] = "a shipping method is required"
	} else {
		m, err := s.shipping.Get(ctx, req.ShippingMethodID)
		switch {
		case err != nil:
			fields["shipping_method_id"] = "unknown shipping method"
		case !m.Active:
			fields["shipping_method_id"] = "shipping method is no longer offered"
		case !m.ServesProducts(productIDs(req.Items)):
			fields["shipping_method_id"] = "shipping method does not apply to this cart"
		case len(m.Regions) > 0 && !m.ServesRegion(req.Region):
			fields["shipping_method_id"] = "shipping method does not serve this region"
		default:
			v.shippingMethod = m
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return v, nil
}

// FeeModelFor selects the processing-fee model for a payment method. Bank
// transfers and crypto carry no fee; the false return means charge net.
func FeeModelFor(method order.PaymentMethod, p config.PaymentsConfig) (pricing.FeeModel, bool) {
	switch method {
	case order.PaymentMethodCard:
		return pricing.FeeModel{Rate: p.CardFeeRate, Flat: p.CardFeeFlat}, true
	case order.PaymentMethodPeerToPeer:
		return pricing.FeeModel{Rate: p.PeerFeeRate, Flat: p.PeerFeeFlat}, true
	default:
		return pricing.FeeModel{}, false
	}
}

func pricingInput(req *SubmitRequest, promo, affiliate *code.Resolution, availableCredit int64, method *shipping.Method) pricing.Input {
	in := pricing.Input{
		Items:           make([]pricing.Item, 0, len(req.Items)),
		AddOns:          req.AddOns,
		AvailableCredit: availableCredit,
		UseCredit:       req.UseCredit,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, pricing.Item{
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			Quantity:     item.Quantity,
			Price:        item.Price,
			BulkVariant:  item.BulkVariant,
			Subscription: item.Subscription,
			Interval:     item.Interval,
		})
	}
	if promo != nil {
		in.Discount = promo.Discount
	}
	if affiliate != nil {
		in.Affiliate = affiliate.Affiliate
	}
	if method != nil {
		in.Shipping = &pricing.Shipping{
			MethodID:      method.ID,
			Price:         method.Price,
			FreeThreshold: method.EffectiveFreeThreshold(),
		}
	}
	return in
}

// buildLineItems shapes the settlement line items. When no reduction is in
// play the backend shows the cart as-is; with a discount, affiliate cut or
// credit applied the goods collapse into one consolidated line so the lines
// always sum to the authoritative total.
func buildLineItems(req *SubmitRequest, quote *pricing.Quote, fee int64) []settlement.LineItem {
	reduced := quote.DiscountAmount+quote.AffiliateAmount+quote.CreditUsed > 0

	var items []settlement.LineItem
	if reduced {
		items = append(items, settlement.LineItem{
			Name:     "Order total (discounts applied)",
			Amount:   quote.AfterCredit,
			Quantity: 1,
		})
	} else {
		for _, item := range req.Items {
			name := item.Name
			if name == "" {
				name = fmt.Sprintf("Product %d", item.ProductID)
			}
			items = append(items, settlement.LineItem{
				Name:      name,
				Amount:    item.Price,
				Quantity:  item.Quantity,
				Recurring: item.Subscription,
				Interval:  item.Interval,
			})
		}
	}
	for _, addOn := range req.AddOns {
		if !addOn.Selected {
			continue
		}
		items = append(items, settlement.LineItem{Name: addOn.Name, Amount: addOn.Price, Quantity: 1})
	}
	if fee > 0 {
		items = append(items, settlement.LineItem{Name: "Processing fee", Amount: fee, Quantity: 1})
	}
	return items
}

func buildOrder(
	req *SubmitRequest,
	v *validated,
	quote *pricing.Quote,
	promo, affiliate *code.Resolution,
	fee, total, number int64,
	artifact *settlement.Artifact,
) *order.Order {
	o := &order.Order{
		OrderNumber:         number,
		PaymentMethod:       v.method,
		PaymentStatus:       artifact.PaymentStatus,
		SettlementReference: artifact.Reference,
		Email:               req.Email,
		Name:                strings.TrimSpace(v.shippingAddress.FirstName + " " + v.shippingAddress.LastName),
		Phone:               req.Phone,
		ShippingAddress:     v.shippingAddress,
		BillingAddress:      v.billingAddress,
		SubtotalAmount:      quote.Subtotal,
		DiscountAmount:      quote.DiscountAmount,
		AffiliateAmount:     quote.AffiliateAmount,
		CreditUsed:          quote.CreditUsed,
		AddOnAmount:         quote.AddOnTotal,
		ShippingAmount:      quote.ShippingCost,
		ProcessingFee:       fee,
		TotalAmount:         total,
		ShippingMethod:      v.shippingMethod.ID,
		ReferralSource:      req.ReferralSource,
		Currency:            "USD",
		TestOrder:           req.TestOrder,
	}
	if promo != nil && promo.Discount != nil {
		o.DiscountCode = promo.Discount.Code
	}
	if affiliate != nil && affiliate.Affiliate != nil {
		o.AffiliateCode = affiliate.Affiliate.Code
	}

	for _, item := range req.Items {
		o.Items = append(o.Items, order.Item{
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Price:        item.Price,
			TotalPrice:   item.Price * int64(item.Quantity),
			Subscription: item.Subscription,
			Interval:     item.Interval,
		})
	}
	for _, addOn := range req.AddOns {
		if !addOn.Selected {
			continue
		}
		o.Items = append(o.Items, order.Item{
			Name:       addOn.Name,
			Quantity:   1,
			Price:      addOn.Price,
			TotalPrice: addOn.Price,
			AddOn:      true,
		})
	}
	return o
}

// customerID derives the store-credit customer key from the checkout email
func customerID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func productIDs(items []ItemInput) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func hasSubscription(items []ItemInput) bool {
	for _, item := range items {
		if item.Subscription {
			return true
		}
	}
	return false
}
