package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/pagination"
)

// StaffService manages the admin's cashiers
type StaffService struct {
	staffRepo repository.StaffRepository
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo repository.StaffRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo}
}

// ListStaff lists users, newest backend order preserved, paged.
func (s *StaffService) ListStaff(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	users, err := s.staffRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if q := strings.ToLower(strings.TrimSpace(search)); q != "" {
		var matched []entity.User
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.FullName()), q) || strings.Contains(strings.ToLower(u.Email), q) {
				matched = append(matched, u)
			}
		}
		users = matched
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Role.IsAdmin() && !users[j].Role.IsAdmin()
	})
	if params == nil {
		params = pagination.DefaultPagination()
	}
	return pagination.Paginate(users, params), nil
}

// GetStaff fetches a user by id.
func (s *StaffService) GetStaff(ctx context.Context, id string) (*entity.User, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// InviteCashierInput is the invite form including the confirmation field.
type InviteCashierInput struct {
	repository.InviteCashierInput
	ConfirmPassword string
}

// InviteCashier validates the form and invites the cashier.
func (s *StaffService) InviteCashier(ctx context.Context, input *InviteCashierInput) error {
	if err := validateInvite(input); err != nil {
		return err
	}
	return s.staffRepo.InviteCashier(ctx, &input.InviteCashierInput)
}

// AssignCashier attaches a cashier to the admin's shop.
func (s *StaffService) AssignCashier(ctx context.Context, admin entity.User, cashierID string) error {
	shopID := admin.ShopID()
	if shopID == "" {
		return apperror.NewBadRequestError("Your account has no shop to assign cashiers to")
	}
	return s.staffRepo.AssignCashier(ctx, cashierID, shopID)
}

// ToggleBlock blocks an active user or unblocks a blocked one. It returns the new blocked state.
func (s *StaffService) ToggleBlock(ctx context.Context, admin entity.User, userID string) (bool, error) {
	if userID == admin.ID {
		return false, apperror.NewBadRequestError("You cannot block your own account")
	}
	user, err := s.staffRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := s.staffRepo.ToggleDeactivation(ctx, userID); err != nil {
		return false, err
	}
	return !user.IsAccountDeactivated, nil
}

func validateInvite(in *InviteCashierInput) error {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FirstName == "" {
		add("firstName", "Please input first name!")
	}
	if in.LastName == "" {
		add("lastName", "Please input last name!")
	}
	// the form's validator checks the address format
	if in.Email == "" {
		add("email", "Please input email!")
	}
	if strings.TrimSpace(in.Phone) == "" {
		add("phone", "Please input phone number!")
	}
	if strings.TrimSpace(in.GuarantorName) == "" {
		add("guarantorName", "Please input guarantor's name!")
	}
	if strings.TrimSpace(in.GuarantorPhone) == "" {
		add("guarantorPhone", "Please input guarantor's phone number!")
	}
	if in.Password == "" {
		add("password", "Please input password!")
	}
	if in.ConfirmPassword != in.Password {
		add("confirmPassword", "The two passwords do not match!")
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
