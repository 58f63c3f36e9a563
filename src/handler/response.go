package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/eventmodels"
	"github.com/jiaming2012/lattice-pricer/src/pricing"
)

func SetResponse[T any](obj *T, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		return fmt.Errorf("SetResponse: encode: %w", err)
	}

	return nil
}

func SetErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := eventmodels.NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// writeServiceError maps invalid contracts to 400 and everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	errType, status := "internal", 500
	if errors.Is(err, pricing.ErrInvalidParameter) {
		errType, status = "validation", 400
	}

	if respErr := SetErrorResponse(errType, status, err, w); respErr != nil {
		log.Errorf("writeServiceError: failed to set error response: %v", respErr)
	}
}

func writeResponse[T any](obj *T, w http.ResponseWriter) {
	if err := SetResponse(obj, w); err != nil {
		log.Errorf("writeResponse: %v", err)
	}
}
