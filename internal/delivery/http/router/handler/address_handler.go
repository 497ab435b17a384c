package handler

import (
	"net/http"

	"savoro/internal/delivery/http/response"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AddressHandler serves the authenticated address-book endpoints.
type AddressHandler struct {
	addresses usecase.AddressUsecase
}

// NewAddressHandler is the constructor for AddressHandler, injected by Fx.
func NewAddressHandler(addresses usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addressRequest struct {
	Label        string  `json:"label" validate:"omitempty,oneof=home work other"`
	Line1        string  `json:"line1" validate:"required,max=255"`
	Line2        string  `json:"line2" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"required,max=100"`
	State        string  `json:"state" validate:"required,max=100"`
	Pincode      string  `json:"pincode" validate:"required,len=6,numeric"`
	Country      string  `json:"country" validate:"omitempty,max=100"`
	Latitude     float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    float64 `json:"longitude" validate:"omitempty,longitude"`
	ContactName  string  `json:"contactName" validate:"omitempty,max=100"`
	ContactPhone string  `json:"contactPhone" validate:"omitempty,len=10,numeric"`
	IsDefault    bool    `json:"isDefault"`
}

func (req *addressRequest) toInput() *usecase.AddressInput {
	return &usecase.AddressInput{
		Label:        req.Label,
		Line1:        req.Line1,
		Line2:        req.Line2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Country:      req.Country,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		IsDefault:    req.IsDefault,
	}
}

// Create adds an address to the caller's address book.
func (h *AddressHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	address, err := h.addresses.CreateAddress(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, address, "Address created successfully")
}

// List returns the caller's addresses, default first.
func (h *AddressHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	addresses, err := h.addresses.ListAddresses(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, addresses, "Addresses fetched successfully")
}

// Get returns a single address owned by the caller.
func (h *AddressHandler) Get(c echo.Context) error {
	userID, addressID, err := addressScope(c)
	if err != nil {
		return err
	}

	address, err := h.addresses.GetAddress(c.Request().Context(), userID, addressID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, address, "Address fetched successfully")
}

// Update replaces an address owned by the caller.
func (h *AddressHandler) Update(c echo.Context) error {
	userID, addressID, err := addressScope(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	address, err := h.addresses.UpdateAddress(c.Request().Context(), userID, addressID, req.toInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, address, "Address updated successfully")
}

// Delete removes an address owned by the caller.
func (h *AddressHandler) Delete(c echo.Context) error {
	userID, addressID, err := addressScope(c)
	if err != nil {
		return err
	}

	if err := h.addresses.DeleteAddress(c.Request().Context(), userID, addressID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Address deleted successfully")
}

// SetDefault marks an address as the caller's default delivery target.
func (h *AddressHandler) SetDefault(c echo.Context) error {
	userID, addressID, err := addressScope(c)
	if err != nil {
		return err
	}

	address, err := h.addresses.SetDefaultAddress(c.Request().Context(), userID, addressID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, address, "Default address updated")
}

func addressScope(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, domainerrors.ErrAddressNotFound
	}

	return userID, addressID, nil
}
