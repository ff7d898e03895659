package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	appmw "github.com/yshino/fleamarket-backend/internal/middleware"
	"github.com/yshino/fleamarket-backend/internal/service"
)

type ItemHandler struct {
	listing service.ListingService
	query   service.QueryService
}

func NewItemHandler(listing service.ListingService, query service.QueryService) *ItemHandler {
	return &ItemHandler{listing: listing, query: query}
}

func (h *ItemHandler) NewItems(c echo.Context) error {
	cursor, msg := parseCursor(c)
	if msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	page, err := h.query.NewItems(c.Request().Context(), cursor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ItemHandler) NewCategoryItems(c echo.Context) error {
	rootCategoryID, err := strconv.Atoi(trimmedParam(c, "root_category_id", ".json"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "incorrect category id")
	}

	cursor, msg := parseCursor(c)
	if msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	page, err := h.query.NewCategoryItems(c.Request().Context(), rootCategoryID, cursor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ItemHandler) UserItems(c echo.Context) error {
	userID, err := strconv.ParseUint(trimmedParam(c, "user_id", ".json"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "incorrect user id")
	}

	cursor, msg := parseCursor(c)
	if msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	page, err := h.query.UserItems(c.Request().Context(), userID, cursor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ItemHandler) Transactions(c echo.Context) error {
	user := appmw.CurrentUser(c)

	cursor, msg := parseCursor(c)
	if msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	page, err := h.query.Transactions(c.Request().Context(), user.ID, cursor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(trimmedParam(c, "item_id", ".json"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "incorrect item id")
	}

	detail, err := h.query.ItemDetail(c.Request().Context(), appmw.CurrentUser(c), itemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

type itemEditRequest struct {
	CSRFToken string `json:"csrf_token" form:"csrf_token"`
	ItemID    uint64 `json:"item_id" form:"item_id"`
	ItemPrice int    `json:"item_price" form:"item_price"`
}

type itemMutationResponse struct {
	ItemID        uint64 `json:"item_id"`
	ItemPrice     int    `json:"item_price"`
	ItemCreatedAt int64  `json:"item_created_at"`
	ItemUpdatedAt int64  `json:"item_updated_at"`
}

func (h *ItemHandler) Edit(c echo.Context) error {
	var req itemEditRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	user := appmw.CurrentUser(c)
	item, err := h.listing.EditPrice(c.Request().Context(), user.ID, req.ItemID, req.ItemPrice)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, itemMutationResponse{
		ItemID:        item.ID,
		ItemPrice:     item.Price,
		ItemCreatedAt: item.CreatedAt.UnixMilli(),
		ItemUpdatedAt: item.UpdatedAt.UnixMilli(),
	})
}

func (h *ItemHandler) Sell(c echo.Context) error {
	if !appmw.VerifyCSRF(c, c.FormValue("csrf_token")) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	categoryID, err := strconv.Atoi(c.FormValue("category_id"))
	if err != nil || categoryID < 0 {
		return errorJSON(c, http.StatusBadRequest, "category id error")
	}
	price, err := strconv.Atoi(c.FormValue("price"))
	if err != nil || price < 0 {
		return errorJSON(c, http.StatusBadRequest, "price error")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "image error")
	}
	f, err := fh.Open()
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "image error")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "image error")
	}

	user := appmw.CurrentUser(c)
	itemID, err := h.listing.Sell(c.Request().Context(), user.ID, service.SellInput{
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		Price:         price,
		CategoryID:    categoryID,
		ImageFilename: fh.Filename,
		ImageData:     data,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]uint64{"id": itemID})
}

type bumpRequest struct {
	CSRFToken string `json:"csrf_token" form:"csrf_token"`
	ItemID    uint64 `json:"item_id" form:"item_id"`
}

func (h *ItemHandler) Bump(c echo.Context) error {
	var req bumpRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "json decode error")
	}
	if !appmw.VerifyCSRF(c, req.CSRFToken) {
		return errorJSON(c, http.StatusUnprocessableEntity, "csrf token error")
	}

	user := appmw.CurrentUser(c)
	item, err := h.listing.Bump(c.Request().Context(), user.ID, req.ItemID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, itemMutationResponse{
		ItemID:        item.ID,
		ItemPrice:     item.Price,
		ItemCreatedAt: item.CreatedAt.UnixMilli(),
		ItemUpdatedAt: item.UpdatedAt.UnixMilli(),
	})
}
