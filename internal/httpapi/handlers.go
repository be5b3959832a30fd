package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"

	"github.com/kieracarman/bakery-storefront/internal/models"
	"github.com/kieracarman/bakery-storefront/internal/router"
)

// decode reads the body, checks it against schema and unmarshals it into v.
// It writes a 400 and returns false when any step fails.
func decode(w http.ResponseWriter, r *http.Request, schema gojsonschema.JSONLoader, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return false
	}
	if err := validateJSONSchema(schema, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sf.Products())
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sf.Cart())
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if !decode(w, r, addCartItemLoader, &req) {
		return
	}

	view, err := s.sf.AddToCart(req.ProductID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, updateQuantityLoader, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.sf.UpdateCartQuantity(chi.URLParam(r, "id"), req.Quantity))
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sf.RemoveFromCart(chi.URLParam(r, "id")))
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer      models.CustomerInfo  `json:"customer"`
		PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	}
	if !decode(w, r, checkoutLoader, &req) {
		return
	}

	res, err := s.sf.Checkout(r.Context(), req.Customer, req.PaymentMethod)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.Order != nil {
		writeJSON(w, http.StatusCreated, res)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handlePendingPix(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.sf.PendingPix()
	if !ok {
		writeError(w, http.StatusNotFound, "no pix payment awaiting confirmation")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleConfirmPix(w http.ResponseWriter, r *http.Request) {
	o, err := s.sf.ConfirmPix(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleCancelPix(w http.ResponseWriter, r *http.Request) {
	s.sf.CancelPix()
	w.WriteHeader(http.StatusNoContent)
}

type pageBody struct {
	Page router.Page `json:"page"`
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pageBody{Page: s.sf.Page()})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page string `json:"page"`
	}
	if !decode(w, r, pageLoader, &req) {
		return
	}

	page, err := router.ParsePage(req.Page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.sf.Navigate(page)
	writeJSON(w, http.StatusOK, pageBody{Page: page})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sf.Orders())
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sf.Board())
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, orderStatusLoader, &req) {
		return
	}

	o, err := s.sf.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), models.OrderStatus(req.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.sf.AdvanceOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.NewProduct
	if !decode(w, r, newProductLoader, &req) {
		return
	}
	writeJSON(w, http.StatusCreated, s.sf.AddProduct(req))
}

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	if !s.sf.RemoveProduct(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
