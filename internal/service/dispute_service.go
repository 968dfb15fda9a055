package service

import (
	"context"
	"fmt"
	"strings"

	"merchantdash/internal/model"
	"merchantdash/internal/repository"
	"merchantdash/pkg/money"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DisputeService struct {
	disputeRepo *repository.DisputeRepository
	logger      *zap.Logger
}

func NewDisputeService(db *gorm.DB, logger *zap.Logger) *DisputeService {
	return &DisputeService{
		disputeRepo: repository.NewDisputeRepository(db),
		logger:      logger,
	}
}

type DisputeListResult struct {
	Items    []*model.Dispute `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (s *DisputeService) List(ctx context.Context, merchantID, status string, page, pageSize int) (*DisputeListResult, error) {
	items, total, err := s.disputeRepo.ListByMerchant(ctx, merchantID, status, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	return &DisputeListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *DisputeService) Get(ctx context.Context, disputeNo string) (*model.Dispute, error) {
	return s.disputeRepo.GetByDisputeNo(ctx, disputeNo)
}

// DisputeForm is the rendered evidence form for one dispute.
type DisputeForm struct {
	DisputeNo     string      `json:"dispute_no"`
	Reason        string      `json:"reason"`
	DisplayAmount string      `json:"display_amount"`
	Fields        []FormField `json:"fields"`
}

type FormField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Form derives the evidence form for a dispute.
func (s *DisputeService) Form(ctx context.Context, disputeNo string) (*DisputeForm, error) {
	dispute, err := s.disputeRepo.GetByDisputeNo(ctx, disputeNo)
	if err != nil {
		return nil, err
	}

	return &DisputeForm{
		DisputeNo:     dispute.DisputeNo,
		Reason:        dispute.Reason,
		DisplayAmount: money.FormatCurrency(dispute.Amount, dispute.Currency),
		Fields:        KlarnaFormFields(dispute),
	}, nil
}

// KlarnaFormFields derives which evidence fields the Klarna dispute form
// asks for. What is required depends on the dispute reason, whether the
// order was physical or digital, whether it shipped, and the payment method.
func KlarnaFormFields(d *model.Dispute) []FormField {
	fields := []FormField{
		{Key: "contact_email", Label: "Contact email", Type: "email", Required: true},
		{Key: "merchant_comment", Label: "Comment", Type: "textarea", Required: false},
	}

	switch d.Reason {
	case model.DisputeReasonGoodsNotReceived:
		if d.DigitalGoods {
			fields = append(fields,
				FormField{Key: "access_log", Label: "Service access log", Type: "file", Required: true},
				FormField{Key: "delivery_email", Label: "Delivery confirmation email", Type: "file", Required: false},
			)
			break
		}
		if d.Shipped {
			fields = append(fields,
				FormField{Key: "tracking_number", Label: "Tracking number", Type: "text", Required: true},
				FormField{Key: "carrier", Label: "Shipping carrier", Type: "text", Required: true},
				FormField{Key: "shipped_at", Label: "Ship date", Type: "date", Required: true},
				FormField{Key: "proof_of_delivery", Label: "Proof of delivery", Type: "file", Required: false},
			)
		} else {
			fields = append(fields,
				FormField{Key: "expected_ship_date", Label: "Expected ship date", Type: "date", Required: true},
				FormField{Key: "order_status", Label: "Current order status", Type: "text", Required: true},
			)
		}

	case model.DisputeReasonNotAsDescribed:
		fields = append(fields,
			FormField{Key: "product_description", Label: "Product description shown at checkout", Type: "textarea", Required: true},
			FormField{Key: "customer_communication", Label: "Customer communication", Type: "file", Required: true},
		)
		if !d.DigitalGoods {
			fields = append(fields,
				FormField{Key: "return_policy", Label: "Return policy", Type: "file", Required: false},
			)
		}

	case model.DisputeReasonUnauthorized:
		if strings.Contains(strings.ToLower(d.Method), "card") {
			fields = append(fields,
				FormField{Key: "avs_result", Label: "AVS check result", Type: "text", Required: true},
				FormField{Key: "cvv_result", Label: "CVV check result", Type: "text", Required: true},
				FormField{Key: "billing_address", Label: "Billing address", Type: "textarea", Required: false},
			)
		} else {
			fields = append(fields,
				FormField{Key: "wallet_account_id", Label: "Wallet account identifier", Type: "text", Required: true},
			)
		}
		fields = append(fields,
			FormField{Key: "device_fingerprint", Label: "Device fingerprint", Type: "text", Required: false},
		)

	case model.DisputeReasonIncorrectAmount:
		fields = append(fields,
			FormField{Key: "order_amount", Label: "Agreed order amount", Type: "text", Required: true},
			FormField{Key: "invoice", Label: "Invoice copy", Type: "file", Required: true},
		)

	case model.DisputeReasonAlreadyRefunded:
		fields = append(fields,
			FormField{Key: "refund_reference", Label: "Refund reference", Type: "text", Required: true},
			FormField{Key: "refund_date", Label: "Refund date", Type: "date", Required: true},
		)
	}

	return fields
}
