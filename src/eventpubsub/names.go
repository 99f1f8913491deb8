package eventpubsub

const (
	NewBarEvent         = "NewBarEvent"
	NewTapeBatchEvent   = "NewTapeBatchEvent"
	OrderFlowAlertEvent = "OrderFlowAlertEvent"
	RuleActivationEvent = "RuleActivationEvent"
	PositionPlanEvent   = "PositionPlanEvent"
	AtrUpdateEvent      = "AtrUpdateEvent"
	TradingHaltedEvent  = "TradingHaltedEvent"
	Error               = "DefaultError"
)
