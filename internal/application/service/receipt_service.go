package service

import (
	"context"
	"strings"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/utils"
)

const maxReceiptCodeLen = 10

// ReceiptDetails is a searched receipt with its products, cashier, and shop resolved.
type ReceiptDetails struct {
	Receipt *entity.Receipt
	Cashier entity.User
	Shop    entity.Shop
	View    ReceiptView
}

// ReceiptService looks receipts up by code and reprints them
type ReceiptService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	staffRepo   repository.StaffRepository
	shopRepo    repository.ShopRepository
	printer     *PrinterService
	now         func() time.Time
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	staffRepo repository.StaffRepository,
	shopRepo repository.ShopRepository,
	printer *PrinterService,
) *ReceiptService {
	return &ReceiptService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		staffRepo:   staffRepo,
		shopRepo:    shopRepo,
		printer:     printer,
		now:         time.Now,
	}
}

// ValidateReceiptCode checks the code is 1 to 10 digits.
func ValidateReceiptCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperror.NewValidationError([]apperror.FieldError{{Field: "receiptCode", Message: "Please enter a receipt ID"}})
	}
	if len(code) > maxReceiptCodeLen || !utils.IsDigits(code) {
		return "", apperror.NewValidationError([]apperror.FieldError{{Field: "receiptCode", Message: "Receipt ID must be numeric"}})
	}
	return code, nil
}

// Search finds a receipt and resolves the details needed to render it.
// A missing shop is tolerated; the receipt renders with a generic header.
func (s *ReceiptService) Search(ctx context.Context, code string) (*ReceiptDetails, error) {
	code, err := ValidateReceiptCode(code)
	if err != nil {
		return nil, err
	}
	rc, err := s.saleRepo.Search(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, rc)
}

func (s *ReceiptService) enrich(ctx context.Context, rc *entity.Receipt) (*ReceiptDetails, error) {
	log := logging.FromContext(ctx)

	if ids := unresolvedProducts(rc); len(ids) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]entity.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for i, line := range rc.Products {
			if p, ok := byID[line.Product.ID]; ok && !line.Product.Resolved() {
				rc.Products[i].Product = entity.RefTo(p.ID, p)
			}
		}
	}

	var cashier entity.User
	switch {
	case rc.Cashier.Value != nil:
		cashier = *rc.Cashier.Value
	case rc.Cashier.ID != "":
		u, err := s.staffRepo.GetByID(ctx, rc.Cashier.ID)
		if err != nil {
			return nil, err
		}
		cashier = *u
		rc.Cashier = entity.RefTo(u.ID, *u)
	}

	shop := entity.Shop{}
	switch {
	case rc.Shop.Value != nil:
		shop = *rc.Shop.Value
	case cashier.ShopID() != "" || rc.Shop.ID != "":
		shopID := cashier.ShopID()
		if shopID == "" {
			shopID = rc.Shop.ID
		}
		if sh, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
			log.Warn("failed to fetch shop details", "shop_id", shopID, "error", err)
		} else {
			shop = *sh
		}
	default:
		log.Warn("no shop found for receipt", "receipt_code", rc.ReceiptCode)
	}

	return &ReceiptDetails{
		Receipt: rc,
		Cashier: cashier,
		Shop:    shop,
		View:    s.printer.Renderer().View(rc, shop, cashier.FullName(), s.now()),
	}, nil
}

// Reprint bumps the receipt's print count, prints it, and returns the refreshed details.
// The printed copy carries the COPY watermark.
func (s *ReceiptService) Reprint(ctx context.Context, code string) (*ReceiptDetails, error) {
	code, err := ValidateReceiptCode(code)
	if err != nil {
		return nil, err
	}
	if _, err := s.saleRepo.Reprint(ctx, code); err != nil {
		return nil, err
	}
	details, err := s.Search(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.printer.Print(details.View); err != nil {
		return details, err
	}
	return details, nil
}

func unresolvedProducts(rc *entity.Receipt) []string {
	var ids []string
	seen := map[string]bool{}
	for _, line := range rc.Products {
		if line.Product.Resolved() || line.Product.ID == "" || seen[line.Product.ID] {
			continue
		}
		seen[line.Product.ID] = true
		ids = append(ids, line.Product.ID)
	}
	return ids
}
