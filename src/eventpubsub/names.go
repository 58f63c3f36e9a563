package eventpubsub

const (
	ContractPricedEvent   = "ContractPricedEvent"
	ContractRejectedEvent = "ContractRejectedEvent"
	BatchCompletedEvent   = "BatchCompletedEvent"
)
