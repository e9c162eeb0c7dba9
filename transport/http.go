package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	stockapp "github.com/Pinto1232/pos-system-sub004/application/stock"
	"github.com/Pinto1232/pos-system-sub004/cmd/config"
	"github.com/Pinto1232/pos-system-sub004/constant"
	"github.com/Pinto1232/pos-system-sub004/model"
	utilsContext "github.com/Pinto1232/pos-system-sub004/utils/context"
	"github.com/Pinto1232/pos-system-sub004/utils/errors"
	validatorx "github.com/Pinto1232/pos-system-sub004/utils/validator"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RestHandler struct {
	StockApp stockapp.StockApp
}

func NewTransport(stockApp stockapp.StockApp, cfg *config.Config) http.Handler {
	mux := mux.NewRouter()

	rh := &RestHandler{
		StockApp: stockApp,
	}

	// Swagger UI
	mux.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Operational endpoints
	mux.HandleFunc("/healthz", rh.Health).Methods(http.MethodGet)
	mux.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public read routes
	mux.HandleFunc("/v1/stock", rh.GetAllStockLocks).Methods(http.MethodGet)
	mux.HandleFunc("/v1/stock/sales", rh.GetSalesLog).Methods(http.MethodGet)
	mux.HandleFunc("/v1/stock/{productID:[0-9]+}", rh.GetStockInfo).Methods(http.MethodGet)
	mux.HandleFunc("/v1/stock/{productID:[0-9]+}/reservations", rh.GetProductReservations).Methods(http.MethodGet)

	// Protected mutation routes
	mux.HandleFunc("/v1/stock/reserve", rh.ReserveStock).Methods(http.MethodPost)
	mux.HandleFunc("/v1/reservation/{reservationID}/release", rh.ReleaseReservation).Methods(http.MethodPost)
	mux.HandleFunc("/v1/stock/sale", rh.ProcessSale).Methods(http.MethodPost)
	mux.HandleFunc("/v1/stock/return", rh.ProcessReturn).Methods(http.MethodPost)
	mux.HandleFunc("/v1/stock/{productID:[0-9]+}", rh.SetStock).Methods(http.MethodPut)

	// Internal routes (expiration consumer)
	internal := mux.PathPrefix("/internal/v1").Subrouter()
	internal.Use(InternalMiddleware(cfg.Auth.InternalAPIKey))
	internal.HandleFunc("/reservation/{reservationID}/release", rh.ReleaseReservation).Methods(http.MethodPost)
	internal.HandleFunc("/stock/sweep", rh.SweepExpired).Methods(http.MethodPost)

	// middleware
	mux.Use(LoggingMiddleware())
	mux.Use(AuthMiddleware(cfg.Auth.JWTSecret))

	return mux
}

func (s *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok"})
}

// ReserveStock handler
// @Summary Reserve stock
// @Description Place a time-bound claim on product stock
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body model.ReserveStockRequest true "Reserve Request"
// @Success 200 {object} model.ReserveStockResult
// @Failure 400 {object} errors.CustomError
// @Security BearerAuth
// @Router /v1/stock/reserve [post]
func (s *RestHandler) ReserveStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ReserveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	// default the holder to the authenticated identity
	if req.ReservedBy == "" {
		if holderID, ok := utilsContext.GetHolderID(ctx); ok {
			req.ReservedBy = holderID
		}
	}

	res := s.StockApp.ReserveStock(ctx, &req)
	if !res.Success {
		writeError(w, errors.SetCustomError(res.ErrorType))
		return
	}

	writeSuccess(w, res)
}

// ReleaseReservation handler
// @Summary Release a reservation
// @Description Return a reservation's quantity to the available pool
// @Tags Stock
// @Produce json
// @Param reservationID path string true "Reservation ID"
// @Success 200 {object} model.ReleaseReservationResult
// @Failure 400 {object} errors.CustomError
// @Security BearerAuth
// @Router /v1/reservation/{reservationID}/release [post]
func (s *RestHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reservationID := mux.Vars(r)["reservationID"]
	if reservationID == "" {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res := s.StockApp.ReleaseReservation(ctx, reservationID)
	if !res.Success {
		writeError(w, errors.SetCustomError(res.ErrorType))
		return
	}

	writeSuccess(w, res)
}

// ProcessSale handler
// @Summary Commit a sale
// @Description Permanently decrement stock, optionally consuming a reservation
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body model.SaleRequest true "Sale Request"
// @Success 200 {object} model.StockMutationResult
// @Failure 400 {object} errors.CustomError
// @Failure 409 {object} errors.CustomError
// @Security BearerAuth
// @Router /v1/stock/sale [post]
func (s *RestHandler) ProcessSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res := s.StockApp.ProcessSale(ctx, &req)
	if !res.Success {
		writeError(w, errors.SetCustomError(res.ErrorType))
		return
	}

	writeSuccess(w, res)
}

// ProcessReturn handler
// @Summary Process a return
// @Description Increment stock for a returned order
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body model.ReturnRequest true "Return Request"
// @Success 200 {object} model.StockMutationResult
// @Failure 400 {object} errors.CustomError
// @Security BearerAuth
// @Router /v1/stock/return [post]
func (s *RestHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res := s.StockApp.ProcessReturn(ctx, &req)
	if !res.Success {
		writeError(w, errors.SetCustomError(res.ErrorType))
		return
	}

	writeSuccess(w, res)
}

// SetStock handler
// @Summary Set physical stock
// @Description Override a product's total stock (admin)
// @Tags Stock
// @Accept json
// @Produce json
// @Param productID path int true "Product ID"
// @Param request body model.SetStockRequest true "Set Stock Request"
// @Success 200 {object} model.StockMutationResult
// @Failure 400 {object} errors.CustomError
// @Security BearerAuth
// @Router /v1/stock/{productID} [put]
func (s *RestHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := parseProductID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	var req model.SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	req.ProductID = productID

	res := s.StockApp.SetStock(ctx, &req)
	if !res.Success {
		writeError(w, errors.SetCustomError(res.ErrorType))
		return
	}

	writeSuccess(w, res)
}

// GetStockInfo handler
// @Summary Get stock info
// @Description Ledger snapshot for one product
// @Tags Stock
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} model.StockLedgerEntry
// @Failure 400 {object} errors.CustomError
// @Router /v1/stock/{productID} [get]
func (s *RestHandler) GetStockInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := parseProductID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	entry := s.StockApp.GetStockInfo(ctx, productID)
	if entry == nil {
		writeError(w, errors.SetCustomError(constant.ErrUnknownProduct))
		return
	}

	writeSuccess(w, entry)
}

// GetAllStockLocks handler
// @Summary List all ledger entries
// @Tags Stock
// @Produce json
// @Success 200 {object} map[string]model.StockLedgerEntry
// @Router /v1/stock [get]
func (s *RestHandler) GetAllStockLocks(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.StockApp.GetAllStockLocks(r.Context()))
}

// GetProductReservations handler
// @Summary List active reservations for a product
// @Tags Stock
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {array} model.Reservation
// @Router /v1/stock/{productID}/reservations [get]
func (s *RestHandler) GetProductReservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := parseProductID(r)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	writeSuccess(w, s.StockApp.GetProductReservations(ctx, productID))
}

// GetSalesLog handler
// @Summary List recorded sale events
// @Tags Stock
// @Produce json
// @Param product_id query int false "Filter by product"
// @Param limit query int false "Max events returned"
// @Success 200 {array} model.SaleEvent
// @Router /v1/stock/sales [get]
func (s *RestHandler) GetSalesLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var productID uint64
	if v := r.URL.Query().Get("product_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
			return
		}
		productID = id
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
			return
		}
		limit = n
	}

	writeSuccess(w, s.StockApp.GetSalesLog(ctx, productID, limit))
}

// SweepExpired handler releases lapsed reservations on demand. The
// recurring sweeper makes this redundant in steady state; it exists for
// the internal consumer and for operators.
func (s *RestHandler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	released := s.StockApp.SweepExpired(r.Context())
	writeSuccess(w, map[string]int{"released": released})
}

func parseProductID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["productID"], 10, 64)
}
