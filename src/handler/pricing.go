package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
	"github.com/jiaming2012/lattice-pricer/src/eventservices"
)

const (
	RequestIDHeader  = "X-Request-Id"
	DefaultDoublings = 4
	maxBodyBytes     = 1 << 20
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type PricingHandler struct {
	service *eventservices.PricingService
}

func NewPricingHandler(service *eventservices.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// SetupRouter registers the pricing API on a new router.
func SetupRouter(service *eventservices.PricingService) *mux.Router {
	h := NewPricingHandler(service)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)

	handleFunc(router, "/health", h.Health).Methods(http.MethodGet)
	handleFunc(router, "/price", h.GetPrice).Methods(http.MethodGet)
	handleFunc(router, "/price", h.PostPrice).Methods(http.MethodPost)
	handleFunc(router, "/price/batch", h.PostBatch).Methods(http.MethodPost)
	handleFunc(router, "/converge", h.GetConvergence).Methods(http.MethodGet)

	return router
}

// handleFunc is a replacement for mux.HandleFunc which enriches the handler's
// HTTP instrumentation with the pattern as the http.route.
func handleFunc(router *mux.Router, pattern string, f func(http.ResponseWriter, *http.Request)) *mux.Route {
	return router.Handle(pattern, otelhttp.WithRouteTag(pattern, http.HandlerFunc(f)))
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func parseQuery(r *http.Request) (eventmodels.ContractRequest, error) {
	var req eventmodels.ContractRequest
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("failed to parse query: %w", err)
	}

	if err := decoder.Decode(&req, r.Form); err != nil {
		return req, fmt.Errorf("failed to decode query: %w", err)
	}

	return req, nil
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request, obj *T) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(obj); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}

	return nil
}

func (h *PricingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeResponse(&map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}, w)
}

func (h *PricingHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		if respErr := SetErrorResponse("parser", 400, err, w); respErr != nil {
			log.Errorf("GetPrice: failed to set error response: %v", respErr)
		}
		return
	}

	h.priceOne(w, r, req)
}

func (h *PricingHandler) PostPrice(w http.ResponseWriter, r *http.Request) {
	var req eventmodels.ContractRequest
	if err := decodeBody(w, r, &req); err != nil {
		if respErr := SetErrorResponse("parser", 400, err, w); respErr != nil {
			log.Errorf("PostPrice: failed to set error response: %v", respErr)
		}
		return
	}

	h.priceOne(w, r, req)
}

func (h *PricingHandler) priceOne(w http.ResponseWriter, r *http.Request, req eventmodels.ContractRequest) {
	result, err := h.service.PriceContract(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeResponse(result, w)
}

func (h *PricingHandler) PostBatch(w http.ResponseWriter, r *http.Request) {
	var batch eventmodels.BatchRequest
	if err := decodeBody(w, r, &batch); err != nil {
		if respErr := SetErrorResponse("parser", 400, err, w); respErr != nil {
			log.Errorf("PostBatch: failed to set error response: %v", respErr)
		}
		return
	}

	results, err := h.service.PriceBatch(r.Context(), batch.Contracts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeResponse(&eventmodels.BatchResponse{
		RequestID: w.Header().Get(RequestIDHeader),
		Results:   results,
	}, w)
}

func (h *PricingHandler) GetConvergence(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r)
	if err != nil {
		if respErr := SetErrorResponse("parser", 400, err, w); respErr != nil {
			log.Errorf("GetConvergence: failed to set error response: %v", respErr)
		}
		return
	}

	doublings := DefaultDoublings
	if v := r.Form.Get("doublings"); v != "" {
		if doublings, err = strconv.Atoi(v); err != nil {
			if respErr := SetErrorResponse("parser", 400, fmt.Errorf("invalid doublings %q", v), w); respErr != nil {
				log.Errorf("GetConvergence: failed to set error response: %v", respErr)
			}
			return
		}
	}

	report, err := h.service.Converge(r.Context(), req, doublings)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeResponse(eventmodels.NewConvergenceReportDTO(report), w)
}
