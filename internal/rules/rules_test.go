package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func upiCharge() TransactionRecord {
	return TransactionRecord{
		Source:              "upi",
		Type:                TypeCharge,
		Status:              StatusAuthorized,
		AuthorizedRemaining: "1000",
		Gateway:             "stripe",
		Method:              "card",
	}
}

func TestEvaluateUPIBasePredicates(t *testing.T) {
	tests := []struct {
		name      string
		rec       TransactionRecord
		canRefund bool
		want      ActionVisibility
	}{
		{
			name:      "authorized charge with remaining auth shows capture and cancel",
			rec:       upiCharge(),
			canRefund: true,
			want:      ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "successful capture with balance shows refund",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCaptureDashboard,
				Status:           StatusSuccess,
				RemainingBalance: "500",
				Gateway:          "stripe",
			},
			canRefund: true,
			want:      ActionVisibility{ShowRefund: true},
		},
		{
			name: "refund permission gate",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "500",
			},
			canRefund: false,
			want:      ActionVisibility{},
		},
		{
			name: "captured amount blocks cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				AmountCaptured:      "50",
			},
			canRefund: true,
			want:      ActionVisibility{ShowCapture: true},
		},
		{
			name: "absent captured amount counts as not captured",
			rec: TransactionRecord{
				Source: "upi",
				Type:   TypeCharge,
				Status: StatusPending,
			},
			canRefund: true,
			want:      ActionVisibility{ShowCancel: true, ShowStatus: true, StatusText: "pending"},
		},
		{
			name: "malformed authorized remaining blocks capture",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "abc",
			},
			canRefund: true,
			want:      ActionVisibility{ShowCancel: true},
		},
		{
			name: "cancelled status shows label without suppressing anything",
			rec: TransactionRecord{
				Source: "upi",
				Type:   TypeRefund,
				Status: StatusCancelled,
			},
			canRefund: true,
			want:      ActionVisibility{ShowStatus: true, StatusText: "cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, tt.canRefund, false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUPIGatewayOverrides(t *testing.T) {
	tests := []struct {
		name string
		rec  TransactionRecord
		want ActionVisibility
	}{
		{
			name: "sbps wallet method clears capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "SBPS",
				Method:              "PayPay",
			},
			want: ActionVisibility{},
		},
		{
			name: "sbps card method untouched",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "sbps",
				Method:              "card",
			},
			want: ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "sbps wallet refund needs a registered refund amount",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				AmountRefunded:   "10",
				Gateway:          "sbps",
				Method:           "linepay",
			},
			want: ActionVisibility{ShowRefund: true},
		},
		{
			name: "sbps wallet refund without prior refund is hidden",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Gateway:          "sbps",
				Method:           "linepay",
			},
			want: ActionVisibility{},
		},
		{
			name: "wechatpay clears capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "WeChatPay",
				Method:              "wechatpay",
			},
			want: ActionVisibility{},
		},
		{
			name: "upop card keeps capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "upop",
				Method:              "card",
			},
			want: ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "upop wallet clears capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "upop",
				Method:              "upop",
			},
			want: ActionVisibility{},
		},
		{
			name: "flutterwave pending clears cancel only",
			rec: TransactionRecord{
				Source:  "upi",
				Type:    TypeCharge,
				Status:  StatusPending,
				Gateway: "flutterwave",
			},
			want: ActionVisibility{ShowStatus: true, StatusText: "pending"},
		},
		{
			name: "ppro authorized keeps cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "ppro",
			},
			want: ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "xendit non-card loses capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "xendit",
				Method:              "ovo",
			},
			want: ActionVisibility{},
		},
		{
			name: "xendit gcash refund allowed",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Gateway:          "xendit",
				Method:           "gcash",
			},
			want: ActionVisibility{ShowRefund: true},
		},
		{
			name: "cil refund allow-list",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Gateway:          "cil",
				Method:           "kakaopay",
			},
			want: ActionVisibility{ShowRefund: true},
		},
		{
			name: "cil refund outside allow-list hidden",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Gateway:          "cil",
				Method:           "dana",
			},
			want: ActionVisibility{},
		},
		{
			name: "gmo always clears capture and cancel",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "GMO",
				Method:              "card",
			},
			want: ActionVisibility{},
		},
		{
			name: "gmo merpay refund allowed",
			rec: TransactionRecord{
				Source:           "upi",
				Type:             TypeCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Gateway:          "gmo",
				Method:           "merpay",
			},
			want: ActionVisibility{ShowRefund: true},
		},
		{
			name: "unknown gateway leaves base predicates alone",
			rec: TransactionRecord{
				Source:              "upi",
				Type:                TypeCharge,
				Status:              StatusAuthorized,
				AuthorizedRemaining: "100",
				Gateway:             "adyen",
			},
			want: ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, true, false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNonUPI(t *testing.T) {
	tests := []struct {
		name       string
		rec        TransactionRecord
		canRefund  bool
		hasPreAuth bool
		want       ActionVisibility
	}{
		{
			name: "pre-auth pos payment shows capture and cancel",
			rec: TransactionRecord{
				Type:    TypePOSPayment,
				Status:  StatusAuthorized,
				PreAuth: 1,
			},
			canRefund:  true,
			hasPreAuth: true,
			want:       ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "absent captured amount treated as not captured",
			rec: TransactionRecord{
				Type:    TypePOSPayment,
				Status:  StatusSuccess,
				PreAuth: 1,
			},
			canRefund:  false,
			hasPreAuth: true,
			want:       ActionVisibility{ShowCapture: true, ShowCancel: true},
		},
		{
			name: "captured pos payment loses capture",
			rec: TransactionRecord{
				Type:           TypePOSPayment,
				Status:         StatusSuccess,
				PreAuth:        1,
				AmountCaptured: "100",
			},
			canRefund:  true,
			hasPreAuth: true,
			want:       ActionVisibility{},
		},
		{
			name: "pos capture with balance shows refund",
			rec: TransactionRecord{
				Type:             TypePOSCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
			},
			canRefund:  true,
			hasPreAuth: true,
			want:       ActionVisibility{ShowRefund: true},
		},
		{
			name: "no pre-auth merchant gets nothing from pre-auth branch",
			rec: TransactionRecord{
				Type:    TypePOSPayment,
				Status:  StatusSuccess,
				PreAuth: 1,
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{},
		},
		{
			name: "cup method enables refund without pre-auth",
			rec: TransactionRecord{
				Type:             TypeCharge,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Method:           "CUP_HK",
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{ShowRefund: true},
		},
		{
			name: "wallet refund override requires refund permission",
			rec: TransactionRecord{
				Type:             TypePOSCapture,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Method:           "kakaopay",
			},
			canRefund:  false,
			hasPreAuth: false,
			want:       ActionVisibility{},
		},
		{
			name: "wallet refund override respects permission flag",
			rec: TransactionRecord{
				Type:             TypePOSPayment,
				Status:           StatusSuccess,
				RemainingBalance: "100",
				Method:           "dana",
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{ShowRefund: true},
		},
		{
			name: "upside forces cancel off",
			rec: TransactionRecord{
				Type:    TypePOSPayment,
				Status:  StatusAuthorized,
				PreAuth: 1,
				Gateway: "Upside",
			},
			canRefund:  true,
			hasPreAuth: true,
			want:       ActionVisibility{ShowCapture: true},
		},
		{
			name: "pending status forces refund off",
			rec: TransactionRecord{
				Type:             TypeCharge,
				Status:           StatusPending,
				RemainingBalance: "100",
				Method:           "gcash",
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{ShowStatus: true, StatusText: "pending"},
		},
		{
			name: "delayed status shows label",
			rec: TransactionRecord{
				Type:   TypeCharge,
				Status: StatusDelayed,
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{ShowStatus: true, StatusText: "delayed"},
		},
		{
			name: "cancelled status blocks wallet refund override",
			rec: TransactionRecord{
				Type:             TypeCharge,
				Status:           StatusCancelled,
				RemainingBalance: "100",
				Method:           "alipay_hk",
			},
			canRefund:  true,
			hasPreAuth: false,
			want:       ActionVisibility{ShowStatus: true, StatusText: "cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.rec, tt.canRefund, tt.hasPreAuth)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	recs := []TransactionRecord{
		upiCharge(),
		{Source: "upi", Type: TypeCapture, Status: StatusSuccess, RemainingBalance: "3.50", Gateway: "xendit", Method: "shopeepay"},
		{Type: TypePOSPayment, Status: StatusPending, PreAuth: 1, Method: "cup"},
		{Type: TypeCharge, Status: StatusSuccess, RemainingBalance: "-1", Method: "dana"},
	}
	for _, rec := range recs {
		for _, canRefund := range []bool{true, false} {
			for _, hasPreAuth := range []bool{true, false} {
				first := Evaluate(rec, canRefund, hasPreAuth)
				second := Evaluate(rec, canRefund, hasPreAuth)
				assert.Equal(t, first, second)
			}
		}
	}
}

func TestNumericPredicatesAsymmetry(t *testing.T) {
	tests := []struct {
		in          string
		positive    bool
		nonPositive bool
	}{
		{"", false, true},
		{"abc", false, true},
		{"0", false, true},
		{"-5", false, true},
		{"0.01", true, false},
		{"1000", true, false},
		{" 12 ", true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.positive, isPositive(tt.in), "isPositive(%q)", tt.in)
		assert.Equal(t, tt.nonPositive, isNonPositive(tt.in), "isNonPositive(%q)", tt.in)
	}
}
