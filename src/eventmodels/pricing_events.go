package eventmodels

type ContractPricedEvent struct {
	Result *PricingResult
}

type ContractRejectedEvent struct {
	Request ContractRequest
	Err     error
}

type ErrorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func NewErrorResponse(errType string, msg string) *ErrorResponse {
	return &ErrorResponse{
		Type: errType,
		Msg:  msg,
	}
}
