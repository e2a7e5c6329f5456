package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apporder "github.com/Zhima-Mochi/lessonshop/internal/application/order"
	domorder "github.com/Zhima-Mochi/lessonshop/internal/domain/order"
)

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.ListOrders.Execute(r.Context(), struct{}{})
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && (typeErr.Field == "lessonIDs" || typeErr.Field == "quantities" ||
			strings.HasPrefix(typeErr.Field, "lessonIDs.") || strings.HasPrefix(typeErr.Field, "quantities.")) {
			writeMessage(w, http.StatusBadRequest, apporder.MsgInvalidItems)
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.deps.PlaceOrder.Execute(r.Context(), apporder.PlaceOrderInput{
		Customer: domorder.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Address:   req.Address,
			City:      req.City,
			Country:   req.Country,
			Postcode:  req.Postcode,
			Phone:     req.Phone,
			Email:     req.Email,
		},
		LessonIDs:     req.LessonIDs,
		Quantities:    req.Quantities,
		PaymentMethod: req.PaymentMethod,
		CardLast4:     req.CardLast4,
		CardBrand:     req.CardBrand,
	})
	if err != nil {
		writePlacementError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Message:        apporder.MsgPlaced,
		InsertedID:     res.OrderID,
		PaymentStatus:  string(res.PaymentStatus),
		PaymentMessage: res.PaymentMessage,
	})
}

func writePlacementError(w http.ResponseWriter, err error) {
	pe, ok := apporder.AsPlacement(err)
	if !ok {
		writeFailure(w, http.StatusInternalServerError, apporder.MsgPlacementFailed, err)
		return
	}
	switch pe.Kind {
	case apporder.KindInvalid:
		writeMessage(w, http.StatusBadRequest, pe.Message)
	case apporder.KindNotFound:
		writeMessage(w, http.StatusNotFound, pe.Message)
	default:
		writeFailure(w, http.StatusInternalServerError, pe.Message, pe.Err)
	}
}
