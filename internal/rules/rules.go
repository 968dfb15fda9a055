package rules

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// Transaction action visibility
// ============================================================================
//
// Decides which action buttons (capture / refund / cancel) and which status
// label the dashboard shows for a single transaction row. Pure function over
// the record plus the caller's session permissions; no I/O.

const (
	SourceUPI = "upi"
)

const (
	TypeCharge           = "charge"
	TypeCapture          = "capture"
	TypeCaptureDashboard = "capture_dashboard"
	TypeCaptureOnline    = "capture_online"
	TypePOSPayment       = "pos_payment"
	TypePOSCapture       = "pos_capture"
	TypePOSRefund        = "pos_refund"
	TypeRefund           = "refund"
)

const (
	StatusAuthorized = "authorized"
	StatusSuccess    = "success"
	StatusPending    = "pending"
	StatusCancelled  = "cancelled"
	StatusDelayed    = "delayed"
)

// TransactionRecord is the flat row the engine evaluates. Amount fields keep
// the upstream contract: string-typed numerics that may be absent or
// malformed, never assumed parseable.
type TransactionRecord struct {
	Source              string `json:"source"`
	Type                string `json:"type"`
	Status              string `json:"status"`
	AuthorizedRemaining string `json:"amount_authorized_remaining"`
	RemainingBalance    string `json:"remaining_balance"`
	AmountCaptured      string `json:"amount_captured"`
	AmountRefunded      string `json:"amount_refunded"`
	Gateway             string `json:"payment_gateway"`
	Method              string `json:"payment_method"`
	PreAuth             int    `json:"pre_auth"`
}

// ActionVisibility is the complete evaluation result. All fields default to
// false/empty; no field implies another.
type ActionVisibility struct {
	ShowCapture bool   `json:"show_capture"`
	ShowRefund  bool   `json:"show_refund"`
	ShowCancel  bool   `json:"show_cancel"`
	ShowStatus  bool   `json:"show_status"`
	StatusText  string `json:"status_text"`
}

// Evaluate maps a transaction record and the caller's permissions to the set
// of visible actions. canRefund comes from the session, hasPreAuth from the
// merchant contract; both are opaque flags here.
func Evaluate(rec TransactionRecord, canRefund, hasPreAuth bool) ActionVisibility {
	if strings.EqualFold(rec.Source, SourceUPI) {
		return evaluateUPI(rec, canRefund)
	}
	return evaluateNonUPI(rec, canRefund, hasPreAuth)
}

// ----------------------------------------------------------------------------
// UPI rule set
// ----------------------------------------------------------------------------

// gatewayOverride narrows the base predicates for one gateway. Overrides may
// only turn flags off; the sole read of an existing flag is the refund
// narrowing in sbps/xendit/cil/gmo, which conditions on the current value.
type gatewayOverride func(v *ActionVisibility, rec TransactionRecord, method string)

var upiOverrides = map[string]gatewayOverride{
	"sbps":        overrideSBPS,
	"wechatpay":   overrideWalletGateways,
	"upop":        overrideWalletGateways,
	"alipay":      overrideWalletGateways,
	"fomo":        overrideWalletGateways,
	"aps":         overrideWalletGateways,
	"flutterwave": overridePendingNoCancel,
	"ppro":        overridePendingNoCancel,
	"xendit":      overrideXendit,
	"cil":         overrideCIL,
	"gmo":         overrideGMO,
}

func evaluateUPI(rec TransactionRecord, canRefund bool) ActionVisibility {
	var v ActionVisibility

	v.ShowCapture = rec.Type == TypeCharge &&
		rec.Status == StatusAuthorized &&
		isPositive(rec.AuthorizedRemaining)

	v.ShowRefund = isCaptureFamily(rec.Type) &&
		rec.Status == StatusSuccess &&
		canRefund &&
		isPositive(rec.RemainingBalance)

	v.ShowCancel = rec.Type == TypeCharge &&
		(rec.Status == StatusAuthorized || rec.Status == StatusPending) &&
		isNonPositive(rec.AmountCaptured)

	// Status label is independent of the three action flags on the UPI path.
	if rec.Status == StatusPending || rec.Status == StatusCancelled {
		v.ShowStatus = true
		v.StatusText = rec.Status
	}

	if override, ok := upiOverrides[strings.ToLower(rec.Gateway)]; ok {
		override(&v, rec, strings.ToLower(rec.Method))
	}

	return v
}

func isCaptureFamily(txType string) bool {
	switch txType {
	case TypeCharge, TypeCapture, TypeCaptureDashboard, TypeCaptureOnline:
		return true
	}
	return false
}

var sbpsWalletMethods = map[string]bool{
	"linepay":    true,
	"paypay":     true,
	"rakutenpay": true,
	"alipay":     true,
	"upop":       true,
}

func overrideSBPS(v *ActionVisibility, rec TransactionRecord, method string) {
	if !sbpsWalletMethods[method] {
		return
	}
	v.ShowCapture = false
	v.ShowCancel = false
	// SBPS wallet refunds are only exposed once a refund has already been
	// registered on the gateway side.
	v.ShowRefund = v.ShowRefund && isPositive(rec.AmountRefunded)
}

func overrideWalletGateways(v *ActionVisibility, rec TransactionRecord, method string) {
	if strings.EqualFold(rec.Gateway, "upop") && method == "card" {
		return
	}
	v.ShowCapture = false
	v.ShowCancel = false
}

func overridePendingNoCancel(v *ActionVisibility, rec TransactionRecord, _ string) {
	if rec.Status == StatusPending {
		v.ShowCancel = false
	}
}

var xenditRefundMethods = map[string]bool{
	"card":      true,
	"shopeepay": true,
	"gcash":     true,
	"paymaya":   true,
	"grabpay":   true,
}

func overrideXendit(v *ActionVisibility, _ TransactionRecord, method string) {
	v.ShowCapture = v.ShowCapture && method == "card"
	v.ShowCancel = v.ShowCancel && method == "card"
	v.ShowRefund = v.ShowRefund && xenditRefundMethods[method]
}

var cilRefundMethods = map[string]bool{
	"alipay_hk":         true,
	"kor_onlinebanking": true,
	"payco":             true,
	"kakaopay":          true,
	"naverpay":          true,
	"toss":              true,
	"paypay":            true,
	"linepay":           true,
	"merpay":            true,
	"rakutenpay":        true,
	"au":                true,
	"softbank":          true,
	"ntt_docomo":        true,
	"card":              true,
	"wechatpay":         true,
}

func overrideCIL(v *ActionVisibility, _ TransactionRecord, method string) {
	v.ShowCapture = v.ShowCapture && method == "card"
	v.ShowCancel = v.ShowCancel && method == "card"
	v.ShowRefund = v.ShowRefund && cilRefundMethods[method]
}

var gmoRefundMethods = map[string]bool{
	"paypay":     true,
	"merpay":     true,
	"rakutenpay": true,
	"au":         true,
	"ntt_docomo": true,
	"amazon":     true,
}

func overrideGMO(v *ActionVisibility, _ TransactionRecord, method string) {
	v.ShowCapture = false
	v.ShowCancel = false
	v.ShowRefund = v.ShowRefund && gmoRefundMethods[method]
}

// ----------------------------------------------------------------------------
// Non-UPI rule set
// ----------------------------------------------------------------------------

var nonUPIRefundMethods = map[string]bool{
	"alipay_hk": true,
	"dana":      true,
	"gcash":     true,
	"kakaopay":  true,
}

func evaluateNonUPI(rec TransactionRecord, canRefund, hasPreAuth bool) ActionVisibility {
	var v ActionVisibility

	if hasPreAuth {
		v.ShowCapture = rec.Type == TypePOSPayment &&
			rec.PreAuth == 1 &&
			isNonPositive(rec.AmountCaptured)
		v.ShowRefund = rec.Type == TypePOSCapture &&
			isPositive(rec.RemainingBalance)
		v.ShowCancel = v.ShowCapture
	}

	// Wallet refund override: can turn refund on even when the pre-auth
	// branch left it off, never turns it off.
	method := strings.ToLower(rec.Method)
	refundableType := rec.Type == TypeCharge || rec.Type == TypePOSPayment || rec.Type == TypePOSCapture
	if refundableType && !v.ShowCapture &&
		rec.Status != StatusCancelled &&
		canRefund &&
		isPositive(rec.RemainingBalance) &&
		(strings.Contains(method, "cup") || nonUPIRefundMethods[method]) {
		v.ShowRefund = true
	}

	if strings.EqualFold(rec.Gateway, "upside") {
		v.ShowCancel = false
	}

	// Terminal states show the status label instead of a refund button.
	// Applied last, unconditionally.
	if rec.Status == StatusPending || rec.Status == StatusDelayed || rec.Status == StatusCancelled {
		v.ShowStatus = true
		v.StatusText = rec.Status
		v.ShowRefund = false
	}

	return v
}

// ----------------------------------------------------------------------------
// Numeric parsing
// ----------------------------------------------------------------------------
//
// Upstream sends amounts as strings that may be absent, empty, or garbage.
// The two predicates are deliberately asymmetric: absence never passes the
// "positive" test but always passes the "non-positive" test. Callers rely on
// that exact convention.

func isPositive(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f > 0
}

func isNonPositive(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return true
	}
	return f <= 0
}
