package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/request"
)

const staffPath = "/staff"

// StaffListView is the staff table page.
type StaffListView struct {
	Pager
	Search string
}

// StaffHandler handles the admin's staff pages
type StaffHandler struct {
	*Base
	staffService *service.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(base *Base, staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{Base: base, staffService: staffService}
}

// List renders the staff table
func (h *StaffHandler) List(c *gin.Context) {
	var req request.ListRequest
	_ = c.ShouldBindQuery(&req)

	result, err := h.staffService.ListStaff(c.Request.Context(), pageParams(req.Page, req.PerPage), req.Search)
	if err != nil {
		h.errorPage(c, err)
		return
	}
	h.render(c, http.StatusOK, "staff", Page{
		Title:   "Staff",
		Section: "staff",
		Data: StaffListView{
			Pager:  Pager{Result: result, Base: listURL(staffPath, "search", req.Search)},
			Search: req.Search,
		},
	})
}

// ShowInvite renders the invite-cashier form
func (h *StaffHandler) ShowInvite(c *gin.Context) {
	h.render(c, http.StatusOK, "staff_form", Page{Title: "Invite cashier", Section: "staff", Form: &request.InviteCashierRequest{}})
}

// Invite creates a cashier account
func (h *StaffHandler) Invite(c *gin.Context) {
	var req request.InviteCashierRequest
	err := c.ShouldBind(&req)
	if err == nil {
		err = h.staffService.InviteCashier(c.Request.Context(), req.ToInput())
	}
	if err != nil {
		if fields, ok := formErrors(err); ok {
			req.Password, req.ConfirmPassword = "", ""
			h.render(c, http.StatusUnprocessableEntity, "staff_form", Page{
				Title:   "Invite cashier",
				Section: "staff",
				Form:    &req,
				Errors:  fields,
			})
			return
		}
		h.fail(c, err, staffPath+"/invite")
		return
	}
	h.redirect(c, staffPath, FlashSuccess, "Cashier invited successfully")
}

// Assign attaches a cashier to the admin's shop
func (h *StaffHandler) Assign(c *gin.Context) {
	if err := h.staffService.AssignCashier(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.fail(c, err, staffPath)
		return
	}
	h.redirect(c, staffPath, FlashSuccess, "Cashier assigned to your shop")
}

// ConfirmBlock asks before blocking or unblocking a user
func (h *StaffHandler) ConfirmBlock(c *gin.Context) {
	user, err := h.staffService.GetStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, staffPath)
		return
	}
	action, message := "Block", "Block "+user.FullName()+"? They will no longer be able to sign in."
	if user.IsAccountDeactivated {
		action, message = "Unblock", "Unblock "+user.FullName()+"? They will be able to sign in again."
	}
	h.render(c, http.StatusOK, "confirm", Page{
		Title:   action + " user",
		Section: "staff",
		Data: ConfirmView{
			Message: message,
			Action:  staffPath + "/" + user.ID + "/block",
			Cancel:  staffPath,
			Confirm: action,
		},
	})
}

// ToggleBlock blocks or unblocks a user
func (h *StaffHandler) ToggleBlock(c *gin.Context) {
	blocked, err := h.staffService.ToggleBlock(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, staffPath)
		return
	}
	message := "User unblocked"
	if blocked {
		message = "User blocked"
	}
	h.redirect(c, staffPath, FlashSuccess, message)
}
