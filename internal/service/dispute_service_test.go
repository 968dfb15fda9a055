package service

import (
	"testing"

	"merchantdash/internal/model"

	"github.com/stretchr/testify/assert"
)

func fieldKeys(fields []FormField) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestKlarnaFormFields(t *testing.T) {
	tests := []struct {
		name     string
		dispute  model.Dispute
		wantKeys []string
	}{
		{
			name: "goods not received, digital goods",
			dispute: model.Dispute{
				Reason:       model.DisputeReasonGoodsNotReceived,
				DigitalGoods: true,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"access_log", "delivery_email",
			},
		},
		{
			name: "goods not received, shipped physical goods",
			dispute: model.Dispute{
				Reason:  model.DisputeReasonGoodsNotReceived,
				Shipped: true,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"tracking_number", "carrier", "shipped_at", "proof_of_delivery",
			},
		},
		{
			name: "goods not received, not yet shipped",
			dispute: model.Dispute{
				Reason: model.DisputeReasonGoodsNotReceived,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"expected_ship_date", "order_status",
			},
		},
		{
			name: "not as described, physical goods ask for return policy",
			dispute: model.Dispute{
				Reason: model.DisputeReasonNotAsDescribed,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"product_description", "customer_communication", "return_policy",
			},
		},
		{
			name: "not as described, digital goods skip return policy",
			dispute: model.Dispute{
				Reason:       model.DisputeReasonNotAsDescribed,
				DigitalGoods: true,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"product_description", "customer_communication",
			},
		},
		{
			name: "unauthorized card payment",
			dispute: model.Dispute{
				Reason: model.DisputeReasonUnauthorized,
				Method: "Card",
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"avs_result", "cvv_result", "billing_address", "device_fingerprint",
			},
		},
		{
			name: "unauthorized wallet payment",
			dispute: model.Dispute{
				Reason: model.DisputeReasonUnauthorized,
				Method: "paypay",
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"wallet_account_id", "device_fingerprint",
			},
		},
		{
			name: "incorrect amount",
			dispute: model.Dispute{
				Reason: model.DisputeReasonIncorrectAmount,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"order_amount", "invoice",
			},
		},
		{
			name: "already refunded",
			dispute: model.Dispute{
				Reason: model.DisputeReasonAlreadyRefunded,
			},
			wantKeys: []string{
				"contact_email", "merchant_comment",
				"refund_reference", "refund_date",
			},
		},
		{
			name: "unknown reason falls back to base fields",
			dispute: model.Dispute{
				Reason: "something_else",
			},
			wantKeys: []string{"contact_email", "merchant_comment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := KlarnaFormFields(&tt.dispute)
			assert.Equal(t, tt.wantKeys, fieldKeys(fields))
		})
	}
}

func TestKlarnaFormFieldsRequiredFlags(t *testing.T) {
	fields := KlarnaFormFields(&model.Dispute{
		Reason:  model.DisputeReasonGoodsNotReceived,
		Shipped: true,
	})

	required := map[string]bool{}
	for _, f := range fields {
		required[f.Key] = f.Required
	}

	assert.True(t, required["contact_email"])
	assert.True(t, required["tracking_number"])
	assert.True(t, required["shipped_at"])
	assert.False(t, required["merchant_comment"])
	assert.False(t, required["proof_of_delivery"])
}
